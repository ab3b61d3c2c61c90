// Package project handles loading and providing per-project configurations
// and request contexts.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/visitor"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/security"
	appconfig "github.com/flowbuild/flowbuild-go/pkg/config"
)

// Config represents the structure of a single project's configuration
type Config struct {
	ProjectID      string   `json:"projectId"`
	Domains        []string `json:"domains"`
	Status         string   `json:"status"`
	DatabaseType   string   `json:"databaseType"`
	TursoDatabase  string   `json:"TURSO_DATABASE_URL"`
	TursoToken     string   `json:"TURSO_AUTH_TOKEN"`
	JWTSecret      string   `json:"JWT_SECRET"`
	AdminPassword  string   `json:"ADMIN_PASSWORD,omitempty"`
	EditorPassword string   `json:"EDITOR_PASSWORD,omitempty"`
	HomeSlug       string   `json:"HOME_SLUG,omitempty"`
	SQLitePath     string   `json:"-"`
}

// LoadProjectConfig loads configuration for a specific project from its
// env.json file under the FlowBuild server home.
func LoadProjectConfig(projectID string) (*Config, error) {
	configPath := filepath.Join(appconfig.HomeRoot, "config", projectID, "env.json")
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read project config file: %w", err)
	}

	var projectConfig Config
	if err := json.Unmarshal(configFile, &projectConfig); err != nil {
		return nil, fmt.Errorf("could not parse project config json: %w", err)
	}

	projectConfig.ProjectID = projectID
	projectConfig.SQLitePath = filepath.Join(appconfig.HomeRoot, "db", projectID, "flowbuild.db")
	if projectConfig.HomeSlug == "" {
		projectConfig.HomeSlug = "home"
	}
	if projectConfig.JWTSecret == "" {
		// Ephemeral secret; tokens will not survive a restart until one is
		// set in env.json.
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return nil, fmt.Errorf("could not generate jwt secret: %w", err)
		}
		projectConfig.JWTSecret = secret
	}

	return &projectConfig, nil
}

// trackingConfigPath returns the tracking.json location for a project.
func trackingConfigPath(projectID string) string {
	return filepath.Join(appconfig.HomeRoot, "config", projectID, "tracking.json")
}

// LoadTrackingConfig loads the visitor tracking settings for a project.
// A missing file yields the defaults (tracking disabled, consent required).
func LoadTrackingConfig(projectID string) (*visitor.TrackingConfig, error) {
	raw, err := os.ReadFile(trackingConfigPath(projectID))
	if os.IsNotExist(err) {
		return visitor.DefaultTrackingConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read tracking config: %w", err)
	}

	var cfg visitor.TrackingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse tracking config json: %w", err)
	}
	if cfg.CookieExpiryDays <= 0 {
		cfg.CookieExpiryDays = 365
	}
	return &cfg, nil
}

// SaveTrackingConfig writes the visitor tracking settings for a project.
func SaveTrackingConfig(projectID string, cfg *visitor.TrackingConfig) error {
	path := trackingConfigPath(projectID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create project config directory: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize tracking config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("could not write tracking config: %w", err)
	}
	return nil
}
