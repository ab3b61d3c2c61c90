// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/flowbuild/flowbuild-go/internal/application/services"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/stores"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/email"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/media"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/messaging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons)
	VisitorService  *services.VisitorService
	TrackingService *services.TrackingService
	SessionService  *services.SessionService
	RenderService   *services.RenderService
	PageService     *services.PageService
	SettingsService *services.SettingsService
	AuthService     *services.AuthService

	// Infrastructure dependencies
	ProjectManager *project.Manager
	SessionsStore  *stores.SessionsStore
	Broadcaster    *messaging.PreviewBroadcaster
	ImageProcessor *media.ImageProcessor
	EmailService   email.Service
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger, mediaBasePath string) *Container {
	sessionsStore := stores.NewSessionsStore(logger)

	// Email delivery is optional; without a Resend key invitations are disabled.
	emailService, err := email.NewService()
	if err != nil {
		logger.Startup().Warn("Email service unavailable", "reason", err.Error())
		emailService = nil
	}

	return &Container{
		VisitorService:  services.NewVisitorService(logger),
		TrackingService: services.NewTrackingService(logger),
		SessionService:  services.NewSessionService(sessionsStore, logger),
		RenderService:   services.NewRenderService(logger),
		PageService:     services.NewPageService(logger),
		SettingsService: services.NewSettingsService(logger),
		AuthService:     services.NewAuthService(emailService, logger),

		ProjectManager: project.NewManager(logger),
		SessionsStore:  sessionsStore,
		Broadcaster:    messaging.NewPreviewBroadcaster(sessionsStore),
		ImageProcessor: media.NewImageProcessor(mediaBasePath),
		EmailService:   emailService,
		Logger:         logger,
		PerfTracker:    performance.NewTracker(),
	}
}
