// Package database provides the core functionality for creating and managing
// database connections for project page and session storage.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// DB wraps the standard SQL database connection.
type DB struct {
	*sql.DB
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)

	return &DB{db}, nil
}

// NewConnectionWithLogger establishes a new database connection with logging.
func NewConnectionWithLogger(driverName, dataSourceName string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := NewConnection(driverName, dataSourceName)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	logger.Database().Info("Database connection established", "driverName", driverName, "duration", time.Since(start))
	return db, nil
}

// DriverSettings selects the driver and DSN for a project.
type DriverSettings struct {
	DatabaseType  string // "sqlite3" or "turso"
	SQLitePath    string
	TursoDatabase string
	TursoToken    string
}

// Open resolves the project driver settings to a live connection.
func Open(settings DriverSettings, logger *logging.ChanneledLogger) (*DB, error) {
	switch settings.DatabaseType {
	case "turso":
		dsn := fmt.Sprintf("%s?authToken=%s", settings.TursoDatabase, settings.TursoToken)
		return NewConnectionWithLogger("libsql", dsn, logger)
	default:
		return NewConnectionWithLogger("sqlite3", settings.SQLitePath, logger)
	}
}
