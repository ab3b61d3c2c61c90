// Package config provides centralized default values for FlowBuild
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Println("Loaded configuration overrides from .env file")
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Project Configuration
	DefaultProjectID string
	HomeRoot         string

	// Session Configuration
	MaxSessionsPerProject int
	SessionTTL            time.Duration
	SessionCookieMaxAge   int

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// Cleanup Intervals
	SessionCleanupInterval time.Duration
	PerfCleanupInterval    time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Project Configuration
	DefaultProjectID = getEnvString("DEFAULT_PROJECT_ID", "default")
	HomeRoot = getEnvString("FLOWBUILD_HOME", defaultHomeRoot())

	// Session Configuration
	MaxSessionsPerProject = getEnvInt("MAX_SESSIONS_PER_PROJECT", 5000)
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	SessionCookieMaxAge = getEnvInt("SESSION_COOKIE_MAX_AGE_SECONDS", 86400)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// Cleanup Intervals
	SessionCleanupInterval = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 15)) * time.Minute
	PerfCleanupInterval = time.Duration(getEnvInt("PERF_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute
}

func defaultHomeRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "flowbuild-server"
	}
	return filepath.Join(homeDir, "flowbuild-server")
}
