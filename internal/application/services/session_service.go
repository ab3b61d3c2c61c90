package services

import (
	"github.com/flowbuild/flowbuild-go/internal/domain/entities/state"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/stores"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/types"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/security"
)

// SessionCookieName identifies the visitor's session across requests.
const SessionCookieName = "fb_session_id"

// SessionService owns session identity and the lifecycle of per-request
// variable stores backed by the session cache and database.
type SessionService struct {
	sessions *stores.SessionsStore
	logger   *logging.ChanneledLogger
}

// NewSessionService creates the session service singleton.
func NewSessionService(sessions *stores.SessionsStore, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{sessions: sessions, logger: logger}
}

// EnsureSession returns a valid session ID for the request, minting a new one
// when the supplied ID is empty or unknown. The second return reports whether
// a new session was created.
func (s *SessionService) EnsureSession(projectCtx *project.Context, sessionID string) (string, bool) {
	if sessionID != "" {
		if _, found := s.sessions.GetSession(projectCtx.ProjectID, sessionID); found {
			return sessionID, false
		}
	}

	newID := security.GenerateULID()
	s.sessions.SetSession(projectCtx.ProjectID, types.NewSessionState(newID))
	s.logger.State().Debug("Created session", "projectId", projectCtx.ProjectID, "sessionId", newID)
	return newID, true
}

// HydrateStore builds the variable store for one request. Cached session
// variables sit under the request seed, and database-persisted variables sit
// under both, so fresher values always win.
func (s *SessionService) HydrateStore(projectCtx *project.Context, sessionID string, seed *state.Seed) *state.PersistentVariableStore {
	effective := state.Seed{}
	if seed != nil {
		effective = *seed
	}

	if cached, found := s.sessions.GetSession(projectCtx.ProjectID, sessionID); found {
		merged := make(map[string]any, len(cached.Variables)+len(effective.SessionVariables))
		for key, value := range cached.Variables {
			merged[key] = value
		}
		for key, value := range effective.SessionVariables {
			merged[key] = value
		}
		effective.SessionVariables = merged
	}

	return state.NewPersistentVariableStore(sessionID, &effective, projectCtx.SessionRepo(), s.logger.State())
}

// CommitStore writes the store's session variables back into the session cache.
func (s *SessionService) CommitStore(projectCtx *project.Context, store *state.PersistentVariableStore) {
	s.sessions.SetSessionVariables(projectCtx.ProjectID, store.SessionID(), store.GetSessionVariables())
}

// ClearSession drops a session from cache and removes its persisted variables.
func (s *SessionService) ClearSession(projectCtx *project.Context, sessionID string) error {
	s.sessions.RemoveSession(projectCtx.ProjectID, sessionID)
	return projectCtx.SessionRepo().Remove(sessionID)
}
