// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/types"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/pkg/config"
)

// SessionsStore implements session state caching with project isolation
type SessionsStore struct {
	projectCaches map[string]*types.ProjectSessionCache
	mu            sync.RWMutex
	logger        *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store")
	}
	return &SessionsStore{
		projectCaches: make(map[string]*types.ProjectSessionCache),
		logger:        logger,
	}
}

// InitializeProject creates cache structures for a project
func (ss *SessionsStore) InitializeProject(projectID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.projectCaches[projectID] == nil {
		ss.projectCaches[projectID] = &types.ProjectSessionCache{
			Sessions:   make(map[string]*types.SessionState),
			LastLoaded: time.Now().UTC(),
		}
		if ss.logger != nil {
			ss.logger.Cache().Info("Project session cache initialized", "projectId", projectID)
		}
	}
}

// GetProjectCache safely retrieves a project's session cache
func (ss *SessionsStore) GetProjectCache(projectID string) (*types.ProjectSessionCache, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	cache, exists := ss.projectCaches[projectID]
	return cache, exists
}

// GetSession retrieves session state by session ID
func (ss *SessionsStore) GetSession(projectID, sessionID string) (*types.SessionState, bool) {
	start := time.Now()
	cache, exists := ss.GetProjectCache(projectID)
	if !exists {
		if ss.logger != nil {
			ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "projectId", projectID, "sessionId", sessionID, "hit", false, "reason", "project_not_initialized", "duration", time.Since(start))
		}
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	session, found := cache.Sessions[sessionID]
	if found && time.Since(session.LastActivity) > config.SessionTTL {
		if ss.logger != nil {
			ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "projectId", projectID, "sessionId", sessionID, "hit", false, "reason", "expired", "duration", time.Since(start))
		}
		return nil, false
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "projectId", projectID, "sessionId", sessionID, "hit", found, "duration", time.Since(start))
	}
	return session, found
}

// SetSession stores session state
func (ss *SessionsStore) SetSession(projectID string, session *types.SessionState) {
	cache, exists := ss.GetProjectCache(projectID)
	if !exists {
		ss.InitializeProject(projectID)
		cache, _ = ss.GetProjectCache(projectID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.Sessions[session.SessionID] = session

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set", "type", "session", "projectId", projectID, "sessionId", session.SessionID)
	}
}

// SetSessionVariables replaces the variable snapshot for a session, creating
// the session record when missing.
func (ss *SessionsStore) SetSessionVariables(projectID, sessionID string, variables map[string]any) {
	cache, exists := ss.GetProjectCache(projectID)
	if !exists {
		ss.InitializeProject(projectID)
		cache, _ = ss.GetProjectCache(projectID)
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	session, found := cache.Sessions[sessionID]
	if !found {
		session = types.NewSessionState(sessionID)
		cache.Sessions[sessionID] = session
	}

	snapshot := make(map[string]any, len(variables))
	for k, v := range variables {
		snapshot[k] = v
	}
	session.Variables = snapshot
	session.Touch()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "set_variables", "type", "session", "projectId", projectID, "sessionId", sessionID, "count", len(variables))
	}
}

// RemoveSession removes a session record
func (ss *SessionsStore) RemoveSession(projectID, sessionID string) {
	cache, exists := ss.GetProjectCache(projectID)
	if !exists {
		return
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	delete(cache.Sessions, sessionID)

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "remove", "type", "session", "projectId", projectID, "sessionId", sessionID)
	}
}

// CountSessions returns the number of cached sessions for a project
func (ss *SessionsStore) CountSessions(projectID string) int {
	cache, exists := ss.GetProjectCache(projectID)
	if !exists {
		return 0
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()
	return len(cache.Sessions)
}

// RemoveExpired evicts sessions idle longer than maxIdle across all projects
// and returns the eviction count.
func (ss *SessionsStore) RemoveExpired(maxIdle time.Duration) int {
	ss.mu.RLock()
	projectIDs := make([]string, 0, len(ss.projectCaches))
	for projectID := range ss.projectCaches {
		projectIDs = append(projectIDs, projectID)
	}
	ss.mu.RUnlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0

	for _, projectID := range projectIDs {
		cache, exists := ss.GetProjectCache(projectID)
		if !exists {
			continue
		}

		cache.Mu.Lock()
		for sessionID, session := range cache.Sessions {
			if session.LastActivity.Before(cutoff) {
				delete(cache.Sessions, sessionID)
				removed++
			}
		}
		cache.Mu.Unlock()
	}

	if removed > 0 && ss.logger != nil {
		ss.logger.Cache().Info("Expired sessions evicted", "count", removed, "maxIdle", maxIdle)
	}
	return removed
}
