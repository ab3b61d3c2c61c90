// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	"github.com/gin-gonic/gin"
)

const projectContextKey = "projectCtx"

// ProjectMiddleware resolves the X-Project-ID header, falling back to the
// default project, and attaches the loaded project context for handlers.
func ProjectMiddleware(manager *project.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.GetHeader("X-Project-ID")
		if projectID == "" {
			projectID = config.DefaultProjectID
		}

		projectCtx, err := manager.GetContext(projectID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			c.Abort()
			return
		}

		c.Set(projectContextKey, projectCtx)
		c.Next()
	}
}

// GetProjectContext retrieves the project context from gin context.
func GetProjectContext(c *gin.Context) (*project.Context, bool) {
	value, exists := c.Get(projectContextKey)
	if !exists {
		return nil, false
	}

	projectCtx, ok := value.(*project.Context)
	return projectCtx, ok
}
