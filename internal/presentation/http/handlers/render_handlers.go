// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// RenderHandlers serves published pages with visitor personalization.
type RenderHandlers struct {
	renderService   *services.RenderService
	sessionService  *services.SessionService
	visitorService  *services.VisitorService
	trackingService *services.TrackingService
	settingsService *services.SettingsService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewRenderHandlers creates render handlers with injected dependencies
func NewRenderHandlers(
	renderService *services.RenderService,
	sessionService *services.SessionService,
	visitorService *services.VisitorService,
	trackingService *services.TrackingService,
	settingsService *services.SettingsService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *RenderHandlers {
	return &RenderHandlers{
		renderService:   renderService,
		sessionService:  sessionService,
		visitorService:  visitorService,
		trackingService: trackingService,
		settingsService: settingsService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetRenderedPage handles GET /api/v1/render/:slug - renders a published page
// for this visitor, hydrating session state and applying visitor tracking.
func (h *RenderHandlers) GetRenderedPage(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("render_page_request", projectCtx.ProjectID)
	defer marker.Complete()

	slug := c.Param("slug")
	h.logger.Render().Debug("Received render request", "projectId", projectCtx.ProjectID, "slug", slug)

	sessionID, _ := c.Cookie(services.SessionCookieName)
	sessionID, isNewSession := h.sessionService.EnsureSession(projectCtx, sessionID)
	if isNewSession {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(services.SessionCookieName, sessionID, config.SessionCookieMaxAge, "/", "", false, true)
	}

	requestCookies := cookiesFromRequest(c)
	store := h.sessionService.HydrateStore(projectCtx, sessionID, &state.Seed{Cookies: requestCookies})

	trackingConfig, err := h.settingsService.GetTrackingConfig(projectCtx)
	if err != nil {
		h.logger.Render().Warn("Failed to load tracking settings", "projectId", projectCtx.ProjectID, "error", err.Error())
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	visitorCtx := h.visitorService.BuildContext(c)
	visitorCtx = h.visitorService.ApplyFieldToggles(visitorCtx, trackingConfig)
	visitorCtx = h.trackingService.ApplyVisitorTracking(visitorCtx, store.VariableStore, trackingConfig, c.Request.URL.RequestURI())

	page, err := h.renderService.RenderPage(projectCtx, slug, store)
	if err != nil {
		h.logger.Render().Error("Render failed", "projectId", projectCtx.ProjectID, "slug", slug, "error", err.Error())
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}
	if page == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	h.sessionService.CommitStore(projectCtx, store)

	if visitorCtx.Tracking != nil && h.trackingService.ShouldSetTrackingCookie(store.VariableStore, trackingConfig) {
		c.Writer.Header().Add("Set-Cookie", h.trackingService.BuildTrackingCookie(visitorCtx.Tracking, trackingConfig))
	}
	writeStoreCookies(c, store.VariableStore, requestCookies)

	h.logger.Render().Info("Rendered page",
		"projectId", projectCtx.ProjectID,
		"slug", slug,
		"sessionId", sessionID,
		"duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"page":      page,
		"visitor":   visitorCtx,
		"sessionId": sessionID,
	})
}

// cookiesFromRequest collects all request cookies into a name/value map.
func cookiesFromRequest(c *gin.Context) map[string]string {
	cookies := make(map[string]string)
	for _, cookie := range c.Request.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}

// writeStoreCookies emits Set-Cookie headers for cookies the store added or
// changed during the request, honoring their recorded options.
func writeStoreCookies(c *gin.Context, store *state.VariableStore, requestCookies map[string]string) {
	for name, value := range store.GetCookies() {
		if previous, ok := requestCookies[name]; ok && previous == value {
			continue
		}

		cookie := &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		}
		if options, ok := store.GetCookieOptions(name); ok {
			cookie.MaxAge = options.MaxAge
			cookie.HttpOnly = options.HTTPOnly
			cookie.Secure = options.Secure
			if options.Path != "" {
				cookie.Path = options.Path
			}
			if options.Expires != nil {
				cookie.Expires = *options.Expires
			}
			switch options.SameSite {
			case "Strict":
				cookie.SameSite = http.SameSiteStrictMode
			case "None":
				cookie.SameSite = http.SameSiteNoneMode
			}
		}
		http.SetCookie(c.Writer, cookie)
	}
}
