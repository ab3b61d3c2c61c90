package handlers

import (
	"net/http"
	"strings"

	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/v1/auth/login - exchanges a password for a token.
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_login_request", projectCtx.ProjectID)
	defer marker.Complete()

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, role, err := h.authService.Login(projectCtx, req.Password)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": role})
}

// GetAuthStatus handles GET /api/v1/auth/status - reports token validity.
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := h.authService.ValidateToken(projectCtx, token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "role": claims["role"]})
}

// PostInvite handles POST /api/v1/auth/invite - emails an editor invitation.
func (h *AuthHandlers) PostInvite(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_invite_request", projectCtx.ProjectID)
	defer marker.Complete()

	var req struct {
		Email   string `json:"email" binding:"required"`
		BaseURL string `json:"baseUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and baseUrl are required"})
		return
	}

	if err := h.authService.InviteEditor(projectCtx, req.Email, req.BaseURL); err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send invitation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// AuthMiddleware requires a valid bearer token for the project.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectCtx, exists := middleware.GetProjectContext(c)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
			c.Abort()
			return
		}

		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := h.authService.ValidateToken(projectCtx, token)
		if err != nil {
			h.logger.Auth().Debug("Rejected token", "projectId", projectCtx.ProjectID, "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("role", claims["role"])
		c.Next()
	}
}

// AdminOnlyMiddleware requires the admin role. Apply after AuthMiddleware.
func (h *AuthHandlers) AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role != services.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
