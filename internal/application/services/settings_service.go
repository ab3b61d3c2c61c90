package services

import (
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
)

// SettingsService reads and writes per-project tracking settings.
type SettingsService struct {
	logger *logging.ChanneledLogger
}

// NewSettingsService creates the settings service singleton.
func NewSettingsService(logger *logging.ChanneledLogger) *SettingsService {
	return &SettingsService{logger: logger}
}

// GetTrackingConfig loads the project's tracking settings, falling back to
// defaults when none have been saved.
func (s *SettingsService) GetTrackingConfig(projectCtx *project.Context) (*visitor.TrackingConfig, error) {
	return project.LoadTrackingConfig(projectCtx.ProjectID)
}

// UpdateTrackingConfig persists new tracking settings for the project.
func (s *SettingsService) UpdateTrackingConfig(projectCtx *project.Context, config *visitor.TrackingConfig) error {
	if err := project.SaveTrackingConfig(projectCtx.ProjectID, config); err != nil {
		return err
	}
	s.logger.System().Info("Updated tracking settings",
		"projectId", projectCtx.ProjectID,
		"enabled", config.EnableVisitorTracking,
		"requireConsent", config.RequireCookieConsent,
		"cookieExpiryDays", config.CookieExpiryDays)
	return nil
}
