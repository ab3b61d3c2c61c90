// Package types defines session state data structures for the cache layer.
package types

import (
	"sync"
	"time"
)

// ProjectSessionCache holds session state for a single project
type ProjectSessionCache struct {
	Sessions   map[string]*SessionState // sessionId -> state
	LastLoaded time.Time
	Mu         sync.RWMutex // Exported for access
}

// SessionState is the server-side snapshot of one visitor session: the
// session-scope variables last committed for it plus activity bookkeeping.
type SessionState struct {
	SessionID    string         `json:"sessionId"`
	Variables    map[string]any `json:"variables"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
}

// NewSessionState creates an empty session state record.
func NewSessionState(sessionID string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		SessionID:    sessionID,
		Variables:    make(map[string]any),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch updates the session activity timestamp.
func (s *SessionState) Touch() {
	s.LastActivity = time.Now().UTC()
}
