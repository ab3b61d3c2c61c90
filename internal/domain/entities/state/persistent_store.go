package state

import "log/slog"

// SessionPersistence is the storage contract for mirroring the session scope
// of a store to durable storage, keyed by session id. Implementations follow
// read-then-overwrite semantics; concurrent writers race and the last writer
// wins, which is accepted for session variables.
type SessionPersistence interface {
	Load(sessionID string) (map[string]any, error)
	Save(sessionID string, variables map[string]any) error
	Remove(sessionID string) error
}

// PersistentVariableStore wraps a VariableStore and mirrors every session-scope
// mutation to a persistence backend. Persistence is strictly best-effort: the
// in-memory write always commits first, and a failed mirror write is logged as
// a warning and swallowed, never rolled back or surfaced to the caller.
type PersistentVariableStore struct {
	*VariableStore
	sessionID   string
	persistence SessionPersistence
	logger      *slog.Logger
}

// NewPersistentVariableStore creates a session-persistence-backed store. Any
// previously persisted session variables are loaded and merged under the
// seed's session values, with seed values winning on duplicate keys. A nil
// persistence backend disables mirroring entirely; an unreadable persisted
// snapshot is treated as empty.
func NewPersistentVariableStore(sessionID string, seed *Seed, persistence SessionPersistence, logger *slog.Logger) *PersistentVariableStore {
	merged := Seed{}
	if seed != nil {
		merged = *seed
	}

	if persistence != nil {
		persisted, err := persistence.Load(sessionID)
		if err != nil {
			if logger != nil {
				logger.Warn("Failed to load persisted session variables", "sessionId", sessionID, "error", err.Error())
			}
		} else if len(persisted) > 0 {
			combined := make(map[string]any, len(persisted)+len(merged.SessionVariables))
			for k, v := range persisted {
				combined[k] = v
			}
			for k, v := range merged.SessionVariables {
				combined[k] = v
			}
			merged.SessionVariables = combined
		}
	}

	return &PersistentVariableStore{
		VariableStore: NewVariableStore(&merged),
		sessionID:     sessionID,
		persistence:   persistence,
		logger:        logger,
	}
}

// SessionID returns the session this store persists under.
func (ps *PersistentVariableStore) SessionID() string {
	return ps.sessionID
}

// SetSessionVariable commits the value in memory, then overwrites the
// persisted entry with the full current session map.
func (ps *PersistentVariableStore) SetSessionVariable(key string, value any) {
	ps.VariableStore.SetSessionVariable(key, value)
	if ps.persistence == nil {
		return
	}
	if err := ps.persistence.Save(ps.sessionID, ps.GetSessionVariables()); err != nil {
		if ps.logger != nil {
			ps.logger.Warn("Failed to persist session variables", "sessionId", ps.sessionID, "key", key, "error", err.Error())
		}
	}
}

// ClearSessionVariables empties the session scope in memory, then removes the
// persisted entry.
func (ps *PersistentVariableStore) ClearSessionVariables() {
	ps.VariableStore.ClearSessionVariables()
	if ps.persistence == nil {
		return
	}
	if err := ps.persistence.Remove(ps.sessionID); err != nil {
		if ps.logger != nil {
			ps.logger.Warn("Failed to remove persisted session variables", "sessionId", ps.sessionID, "error", err.Error())
		}
	}
}
