package handlers

import (
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/media"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AssetHandlers manages page image assets.
type AssetHandlers struct {
	imageProcessor *media.ImageProcessor
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewAssetHandlers creates asset handlers with injected dependencies
func NewAssetHandlers(imageProcessor *media.ImageProcessor, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AssetHandlers {
	return &AssetHandlers{
		imageProcessor: imageProcessor,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostAsset handles POST /api/v1/assets - stores a base64-encoded image.
func (h *AssetHandlers) PostAsset(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("upload_asset_request", projectCtx.ProjectID)
	defer marker.Complete()

	var req struct {
		Data     string `json:"data" binding:"required"`
		Filename string `json:"filename" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data and filename are required"})
		return
	}

	url, err := h.imageProcessor.ProcessBase64Image(req.Data, req.Filename, projectCtx.ProjectID)
	if err != nil {
		h.logger.Media().Error("Asset upload failed", "projectId", projectCtx.ProjectID, "filename", req.Filename, "error", err.Error())
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process image"})
		return
	}

	h.logger.Media().Info("Stored asset", "projectId", projectCtx.ProjectID, "url", url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DeleteAsset handles DELETE /api/v1/assets - removes an image and its thumbnails.
func (h *AssetHandlers) DeleteAsset(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	if err := h.imageProcessor.DeleteImageAndThumbnails(req.Path); err != nil {
		h.logger.Media().Error("Asset delete failed", "projectId", projectCtx.ProjectID, "path", req.Path, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
