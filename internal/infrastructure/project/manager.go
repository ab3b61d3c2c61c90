package project

import (
	"fmt"
	"sync"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
)

// Manager coordinates project context creation and caching. Contexts are
// created lazily on first request and reused across requests.
type Manager struct {
	contexts       map[string]*Context
	contextMutexes sync.Map // per-project mutexes for fine-grained locking
	globalMutex    sync.RWMutex
	logger         *logging.ChanneledLogger
}

// NewManager creates a project manager.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		contexts: make(map[string]*Context),
		logger:   logger,
	}
}

// GetContext returns the cached context for a project, creating it when
// needed.
func (m *Manager) GetContext(projectID string) (*Context, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[projectID]; exists {
		m.globalMutex.RUnlock()
		return ctx, nil
	}
	m.globalMutex.RUnlock()

	mutexAny, _ := m.contextMutexes.LoadOrStore(projectID, &sync.Mutex{})
	projectMutex := mutexAny.(*sync.Mutex)

	projectMutex.Lock()
	defer projectMutex.Unlock()

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[projectID]; exists {
		m.globalMutex.RUnlock()
		return ctx, nil
	}
	m.globalMutex.RUnlock()

	cfg, err := LoadProjectConfig(projectID)
	if err != nil {
		return nil, fmt.Errorf("project %s not configured: %w", projectID, err)
	}

	ctx, err := newContext(projectID, cfg, m.logger)
	if err != nil {
		return nil, err
	}

	m.globalMutex.Lock()
	m.contexts[projectID] = ctx
	m.globalMutex.Unlock()

	m.logger.System().Info("Project context created", "projectId", projectID, "databaseType", cfg.DatabaseType)
	return ctx, nil
}

// Close releases every cached project context.
func (m *Manager) Close() error {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	var firstErr error
	for projectID, ctx := range m.contexts {
		if err := ctx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.contexts, projectID)
	}
	return firstErr
}
