package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/stores"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SystemHandlers exposes health and operational endpoints.
type SystemHandlers struct {
	sessions    *stores.SessionsStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	startedAt   time.Time
}

// NewSystemHandlers creates system handlers with injected dependencies
func NewSystemHandlers(sessions *stores.SessionsStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		sessions:    sessions,
		logger:      logger,
		perfTracker: perfTracker,
		startedAt:   time.Now().UTC(),
	}
}

// GetHealth handles GET /health
func (h *SystemHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(h.startedAt).String(),
		"sessions": h.sessions.CountSessions(config.DefaultProjectID),
	})
}

// GetMetrics handles GET /api/v1/system/metrics
func (h *SystemHandlers) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.perfTracker.OverallStats())
}

// GetLogLevels handles GET /api/v1/system/logs/levels
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/v1/system/logs/levels
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and level are required"})
		return
	}

	var level slog.Level
	switch req.Level {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level " + req.Level})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": req.Level})
}
