package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/messaging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// PageHandlers contains editor CRUD handlers for pages.
type PageHandlers struct {
	pageService *services.PageService
	broadcaster *messaging.PreviewBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPageHandlers creates page handlers with injected dependencies
func NewPageHandlers(pageService *services.PageService, broadcaster *messaging.PreviewBroadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PageHandlers {
	return &PageHandlers{
		pageService: pageService,
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type pageRequest struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Payload     json.RawMessage `json:"payload"`
	IsPublished bool            `json:"isPublished"`
}

// GetPages handles GET /api/v1/pages
func (h *PageHandlers) GetPages(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_pages_request", projectCtx.ProjectID)
	defer marker.Complete()

	pageList, err := h.pageService.List(projectCtx)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pages"})
		return
	}

	c.JSON(http.StatusOK, pageList)
}

// GetPage handles GET /api/v1/pages/:id
func (h *PageHandlers) GetPage(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	page, err := h.pageService.GetByID(projectCtx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
		return
	}
	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// PostPage handles POST /api/v1/pages
func (h *PageHandlers) PostPage(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("create_page_request", projectCtx.ProjectID)
	defer marker.Complete()

	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.Create(projectCtx, req.Slug, req.Title, req.Payload)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.broadcaster.BroadcastPageEvent(projectCtx.ProjectID, messaging.PageEvent{
		Type:   "page_updated",
		PageID: page.ID,
		Slug:   page.Slug,
	})

	c.JSON(http.StatusCreated, page)
}

// PutPage handles PUT /api/v1/pages/:id
func (h *PageHandlers) PutPage(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("update_page_request", projectCtx.ProjectID)
	defer marker.Complete()

	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.Update(projectCtx, c.Param("id"), req.Slug, req.Title, req.Payload, req.IsPublished)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.broadcaster.BroadcastPageEvent(projectCtx.ProjectID, messaging.PageEvent{
		Type:   "page_updated",
		PageID: page.ID,
		Slug:   page.Slug,
	})

	c.JSON(http.StatusOK, page)
}

// DeletePage handles DELETE /api/v1/pages/:id
func (h *PageHandlers) DeletePage(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	id := c.Param("id")
	if err := h.pageService.Delete(projectCtx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete page"})
		return
	}

	h.broadcaster.BroadcastPageEvent(projectCtx.ProjectID, messaging.PageEvent{
		Type:   "page_deleted",
		PageID: id,
	})

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
