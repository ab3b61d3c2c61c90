package cleanup

import (
	"context"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/stores"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/performance"
)

// Worker periodically evicts idle sessions and prunes performance markers.
type Worker struct {
	sessions *stores.SessionsStore
	perf     *performance.Tracker
	config   *Config
	logger   *logging.ChanneledLogger
}

// NewWorker creates a cleanup worker.
func NewWorker(sessions *stores.SessionsStore, perf *performance.Tracker, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		sessions: sessions,
		perf:     perf,
		config:   config,
		logger:   logger,
	}
}

// Start runs the cleanup loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cleanup worker started", "interval", w.config.Interval, "maxSessionIdle", w.config.MaxSessionIdle)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *Worker) runOnce() {
	start := time.Now()
	removed := w.sessions.RemoveExpired(w.config.MaxSessionIdle)
	w.perf.Cleanup()

	w.logger.Cache().Debug("Cleanup pass completed", "sessionsEvicted", removed, "duration", time.Since(start))
}
