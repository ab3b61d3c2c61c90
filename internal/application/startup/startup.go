// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/application/container"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/cleanup"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/server"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until shutdown.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  █▀▀ █   █▀█ █ █ █ █▀▄ █ █ █ █   █▀▄
  █▀▀ █   █ █ █▄█▄█ █▀▄ █ █ █ █   █ █
  ▀   ▀▀▀ ▀▀▀  ▀▀▀  ▀▀▀ ▀▀▀ ▀ ▀▀▀ ▀▀▀
` + "\033[97m" + `
  low-code website builder
` + "\033[0m")

	log.Println("Initializing...")

	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()

	mediaBasePath := filepath.Join(config.HomeRoot, "media")
	appContainer := container.NewContainer(logger, mediaBasePath)
	logger.Startup().Info("Dependency injection container created")

	// Warm the default project so the first request does not pay for
	// config loading and schema checks.
	logger.Startup().Info("Activating default project", "projectId", config.DefaultProjectID)
	if _, err := appContainer.ProjectManager.GetContext(config.DefaultProjectID); err != nil {
		logger.Startup().Warn("Default project activation failed", "projectId", config.DefaultProjectID, "error", err.Error())
	} else {
		appContainer.SessionsStore.InitializeProject(config.DefaultProjectID)
		logger.Startup().Info("Default project activated", "projectId", config.DefaultProjectID)
	}

	logger.Startup().Info("Starting live preview broadcaster...")
	go appContainer.Broadcaster.Run()

	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(appContainer.SessionsStore, appContainer.PerfTracker, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)

	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing project manager...")
	if err := appContainer.ProjectManager.Close(); err != nil {
		logger.Shutdown().Error("Error closing project manager", "error", err.Error())
	} else {
		logger.Shutdown().Info("Project manager closed successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
