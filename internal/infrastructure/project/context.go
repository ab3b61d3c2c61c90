package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/database"
	pagesrepo "github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/pages"
	staterepo "github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/state"
)

// Context bundles everything request handlers need for one project: its
// configuration and an open database connection.
type Context struct {
	ProjectID string
	Config    *Config
	Database  *database.DB
	Logger    *logging.ChanneledLogger
}

// newContext opens the project database and prepares its schema.
func newContext(projectID string, cfg *Config, logger *logging.ChanneledLogger) (*Context, error) {
	if cfg.DatabaseType != "turso" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory for project %s: %w", projectID, err)
		}
	}

	db, err := database.Open(database.DriverSettings{
		DatabaseType:  cfg.DatabaseType,
		SQLitePath:    cfg.SQLitePath,
		TursoDatabase: cfg.TursoDatabase,
		TursoToken:    cfg.TursoToken,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for project %s: %w", projectID, err)
	}

	ctx := context.Background()
	if err := pagesrepo.NewRepository(db, logger).EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := staterepo.NewSessionRepository(db, logger).EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Context{
		ProjectID: projectID,
		Config:    cfg,
		Database:  db,
		Logger:    logger,
	}, nil
}

// PageRepo returns a page repository bound to this project's database.
func (c *Context) PageRepo() *pagesrepo.Repository {
	return pagesrepo.NewRepository(c.Database, c.Logger)
}

// SessionRepo returns a session variable repository bound to this project's database.
func (c *Context) SessionRepo() *staterepo.SessionRepository {
	return staterepo.NewSessionRepository(c.Database, c.Logger)
}

// Close releases the project's database connection.
func (c *Context) Close() error {
	if c.Database != nil {
		return c.Database.Close()
	}
	return nil
}
