package handlers

import (
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SettingsHandlers exposes project tracking settings.
type SettingsHandlers struct {
	settingsService *services.SettingsService
	logger          *logging.ChanneledLogger
}

// NewSettingsHandlers creates settings handlers with injected dependencies
func NewSettingsHandlers(settingsService *services.SettingsService, logger *logging.ChanneledLogger) *SettingsHandlers {
	return &SettingsHandlers{settingsService: settingsService, logger: logger}
}

// GetTrackingSettings handles GET /api/v1/settings/tracking
func (h *SettingsHandlers) GetTrackingSettings(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	config, err := h.settingsService.GetTrackingConfig(projectCtx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, config)
}

// PutTrackingSettings handles PUT /api/v1/settings/tracking
func (h *SettingsHandlers) PutTrackingSettings(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	var config visitor.TrackingConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if config.CookieExpiryDays <= 0 {
		config.CookieExpiryDays = 365
	}

	if err := h.settingsService.UpdateTrackingConfig(projectCtx, &config); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, &config)
}
