// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"path/filepath"

	"github.com/flowbuild/flowbuild-go/internal/application/container"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/handlers"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Processed image assets are served straight from disk.
	r.Static("/media", filepath.Join(config.HomeRoot, "media"))

	// Initialize handlers
	renderHandlers := handlers.NewRenderHandlers(
		container.RenderService,
		container.SessionService,
		container.VisitorService,
		container.TrackingService,
		container.SettingsService,
		container.Logger,
		container.PerfTracker,
	)
	stateHandlers := handlers.NewStateHandlers(container.SessionService, container.Logger, container.PerfTracker)
	pageHandlers := handlers.NewPageHandlers(container.PageService, container.Broadcaster, container.Logger, container.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	settingsHandlers := handlers.NewSettingsHandlers(container.SettingsService, container.Logger)
	assetHandlers := handlers.NewAssetHandlers(container.ImageProcessor, container.Logger, container.PerfTracker)
	previewHandlers := handlers.NewPreviewHandlers(container.Broadcaster, container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.SessionsStore, container.Logger, container.PerfTracker)

	r.GET("/health", systemHandlers.GetHealth)

	// API routes with project middleware
	api := r.Group("/api/v1")
	api.Use(middleware.ProjectMiddleware(container.ProjectManager))
	{
		// Visitor-facing endpoints
		api.GET("/render/:slug", renderHandlers.GetRenderedPage)
		api.POST("/state", stateHandlers.PostState)
		api.GET("/state/resolve", stateHandlers.GetResolve)
		api.DELETE("/state/session", stateHandlers.DeleteSession)

		// Authentication
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.GET("/status", authHandlers.GetAuthStatus)
			auth.POST("/invite", authHandlers.AuthMiddleware(), authHandlers.AdminOnlyMiddleware(), authHandlers.PostInvite)
		}

		// Editor endpoints
		pages := api.Group("/pages")
		pages.Use(authHandlers.AuthMiddleware())
		{
			pages.GET("", pageHandlers.GetPages)
			pages.GET("/:id", pageHandlers.GetPage)
			pages.POST("", pageHandlers.PostPage)
			pages.PUT("/:id", pageHandlers.PutPage)
			pages.DELETE("/:id", pageHandlers.DeletePage)
		}

		assets := api.Group("/assets")
		assets.Use(authHandlers.AuthMiddleware())
		{
			assets.POST("", assetHandlers.PostAsset)
			assets.DELETE("", assetHandlers.DeleteAsset)
		}

		// Settings (admin only)
		settings := api.Group("/settings")
		settings.Use(authHandlers.AuthMiddleware())
		{
			settings.GET("/tracking", settingsHandlers.GetTrackingSettings)
			settings.PUT("/tracking", authHandlers.AdminOnlyMiddleware(), settingsHandlers.PutTrackingSettings)
		}

		// Live preview websocket
		api.GET("/preview/ws", previewHandlers.GetPreviewSocket)

		// Operational endpoints
		system := api.Group("/system")
		system.Use(authHandlers.AuthMiddleware(), authHandlers.AdminOnlyMiddleware())
		{
			system.GET("/metrics", systemHandlers.GetMetrics)
			system.GET("/logs/levels", systemHandlers.GetLogLevels)
			system.POST("/logs/levels", systemHandlers.SetLogLevel)
		}
	}

	return r
}
