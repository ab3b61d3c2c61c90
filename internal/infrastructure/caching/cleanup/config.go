// Package cleanup provides the background eviction worker for session state.
package cleanup

import (
	"time"

	"github.com/flowbuild/flowbuild-go/pkg/config"
)

// Config controls the cleanup worker cadence and eviction policy.
type Config struct {
	Interval       time.Duration
	MaxSessionIdle time.Duration
}

// NewConfig returns cleanup settings derived from the application defaults.
func NewConfig() *Config {
	return &Config{
		Interval:       config.SessionCleanupInterval,
		MaxSessionIdle: config.SessionTTL,
	}
}
