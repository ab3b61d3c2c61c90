package state

import (
	"context"
	"testing"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionRepository(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSessionRepository(db, nil)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestLoadMissingSession(t *testing.T) {
	repo := newTestSessionRepository(t)

	variables, err := repo.Load("unknown")
	require.NoError(t, err)
	assert.Nil(t, variables)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestSessionRepository(t)

	require.NoError(t, repo.Save("s1", map[string]any{"name": "Ada", "visits": float64(3)}))

	variables, err := repo.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", variables["name"])
	assert.Equal(t, float64(3), variables["visits"])
}

func TestSaveOverwrites(t *testing.T) {
	repo := newTestSessionRepository(t)

	require.NoError(t, repo.Save("s1", map[string]any{"a": float64(1), "b": float64(2)}))
	require.NoError(t, repo.Save("s1", map[string]any{"a": float64(9)}))

	variables, err := repo.Load("s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(9)}, variables)
}

func TestRemove(t *testing.T) {
	repo := newTestSessionRepository(t)

	require.NoError(t, repo.Save("s1", map[string]any{"a": float64(1)}))
	require.NoError(t, repo.Remove("s1"))

	variables, err := repo.Load("s1")
	require.NoError(t, err)
	assert.Nil(t, variables)

	// Removing a missing session is not an error.
	assert.NoError(t, repo.Remove("s1"))
}
