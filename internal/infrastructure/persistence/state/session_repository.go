// Package state implements durable storage for session variable snapshots.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/database"
)

// SessionRepository persists serialized session variable maps keyed by session
// id. It implements state.SessionPersistence with read-then-overwrite
// semantics; concurrent writers race and the last writer wins.
type SessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSessionRepository creates a session variable repository.
func NewSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// EnsureSchema creates the session_variables table when missing.
func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_variables (
			session_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create session_variables table: %w", err)
	}
	return nil
}

// Load returns the persisted session variable map, or nil when absent.
func (r *SessionRepository) Load(sessionID string) (map[string]any, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM session_variables WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session variables for %s: %w", sessionID, err)
	}

	var variables map[string]any
	if err := json.Unmarshal([]byte(payload), &variables); err != nil {
		return nil, fmt.Errorf("corrupt session variable payload for %s: %w", sessionID, err)
	}
	return variables, nil
}

// Save overwrites the persisted entry with the full variable map.
func (r *SessionRepository) Save(sessionID string, variables map[string]any) error {
	payload, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("failed to serialize session variables for %s: %w", sessionID, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO session_variables (session_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		sessionID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist session variables for %s: %w", sessionID, err)
	}

	if r.logger != nil {
		r.logger.Database().Debug("Session variables persisted", "sessionId", sessionID, "bytes", len(payload))
	}
	return nil
}

// Remove deletes the persisted entry for a session.
func (r *SessionRepository) Remove(sessionID string) error {
	if _, err := r.db.Exec(`DELETE FROM session_variables WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to remove session variables for %s: %w", sessionID, err)
	}
	return nil
}
