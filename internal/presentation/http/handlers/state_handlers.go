package handlers

import (
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// StateUpdate is a single scoped variable mutation.
type StateUpdate struct {
	Scope   string               `json:"scope" binding:"required"`
	Key     string               `json:"key" binding:"required"`
	Value   any                  `json:"value"`
	Options *state.CookieOptions `json:"options,omitempty"`
}

// StateRequest is the POST /state body.
type StateRequest struct {
	Updates      []StateUpdate `json:"updates"`
	ClearSession bool          `json:"clearSession"`
}

// StateHandlers contains all state-related HTTP handlers
type StateHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewStateHandlers creates state handlers with injected dependencies
func NewStateHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StateHandlers {
	return &StateHandlers{
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostState handles POST /api/v1/state - applies scoped variable mutations
// for the visitor's session.
func (h *StateHandlers) PostState(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_state_request", projectCtx.ProjectID)
	defer marker.Complete()

	sessionID := sessionIDFromRequest(c)
	if sessionID == "" {
		h.logger.State().Error("State request missing session ID", "projectId", projectCtx.ProjectID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session ID required"})
		return
	}

	var req StateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, _ = h.sessionService.EnsureSession(projectCtx, sessionID)
	requestCookies := cookiesFromRequest(c)
	store := h.sessionService.HydrateStore(projectCtx, sessionID, &state.Seed{Cookies: requestCookies})

	if req.ClearSession {
		store.ClearSessionVariables()
	}

	for _, update := range req.Updates {
		switch update.Scope {
		case "page":
			store.SetPageVariable(update.Key, update.Value)
		case "session":
			store.SetSessionVariable(update.Key, update.Value)
		case "cookie":
			value, _ := update.Value.(string)
			store.SetCookie(update.Key, value, update.Options)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scope " + update.Scope})
			return
		}
	}

	h.sessionService.CommitStore(projectCtx, store)
	writeStoreCookies(c, store.VariableStore, requestCookies)

	h.logger.State().Debug("Applied state updates",
		"projectId", projectCtx.ProjectID,
		"sessionId", sessionID,
		"updates", len(req.Updates),
		"clearSession", req.ClearSession)

	c.JSON(http.StatusOK, gin.H{
		"sessionId":        sessionID,
		"sessionVariables": store.GetSessionVariables(),
	})
}

// GetResolve handles GET /api/v1/state/resolve - resolves one expression
// against the visitor's current state.
func (h *StateHandlers) GetResolve(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("resolve_state_request", projectCtx.ProjectID)
	defer marker.Complete()

	expression := c.Query("expression")
	if expression == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expression query parameter required"})
		return
	}

	sessionID := sessionIDFromRequest(c)
	store := h.sessionService.HydrateStore(projectCtx, sessionID, &state.Seed{Cookies: cookiesFromRequest(c)})

	value, found := store.ResolveVariable(expression)
	c.JSON(http.StatusOK, gin.H{"value": value, "found": found})
}

// DeleteSession handles DELETE /api/v1/state/session - clears the visitor's
// session variables everywhere.
func (h *StateHandlers) DeleteSession(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	sessionID := sessionIDFromRequest(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session ID required"})
		return
	}

	if err := h.sessionService.ClearSession(projectCtx, sessionID); err != nil {
		h.logger.State().Error("Failed to clear session", "projectId", projectCtx.ProjectID, "sessionId", sessionID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// sessionIDFromRequest prefers the explicit session header over the cookie.
func sessionIDFromRequest(c *gin.Context) string {
	if sessionID := c.GetHeader("X-FlowBuild-Session-ID"); sessionID != "" {
		return sessionID
	}
	sessionID, _ := c.Cookie(services.SessionCookieName)
	return sessionID
}
