package stores

import (
	"testing"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionsStore(nil)

	_, found := store.GetSession("proj", "s1")
	assert.False(t, found)

	store.SetSession("proj", types.NewSessionState("s1"))
	session, found := store.GetSession("proj", "s1")
	require.True(t, found)
	assert.Equal(t, "s1", session.SessionID)
	assert.Equal(t, 1, store.CountSessions("proj"))

	store.RemoveSession("proj", "s1")
	_, found = store.GetSession("proj", "s1")
	assert.False(t, found)
	assert.Equal(t, 0, store.CountSessions("proj"))
}

func TestProjectIsolation(t *testing.T) {
	store := NewSessionsStore(nil)
	store.SetSession("a", types.NewSessionState("s1"))

	_, found := store.GetSession("b", "s1")
	assert.False(t, found)
	assert.Equal(t, 0, store.CountSessions("b"))
}

func TestSetSessionVariables(t *testing.T) {
	store := NewSessionsStore(nil)

	variables := map[string]any{"name": "Ada"}
	store.SetSessionVariables("proj", "s1", variables)

	session, found := store.GetSession("proj", "s1")
	require.True(t, found, "setting variables creates the session record")
	assert.Equal(t, "Ada", session.Variables["name"])

	// The stored snapshot must not alias the caller's map.
	variables["name"] = "changed"
	assert.Equal(t, "Ada", session.Variables["name"])
}

func TestRemoveExpired(t *testing.T) {
	store := NewSessionsStore(nil)

	stale := types.NewSessionState("stale")
	stale.LastActivity = time.Now().Add(-2 * time.Hour)
	store.SetSession("proj", stale)
	store.SetSession("proj", types.NewSessionState("fresh"))

	removed := store.RemoveExpired(time.Hour)

	assert.Equal(t, 1, removed)
	_, found := store.GetSession("proj", "stale")
	assert.False(t, found)
	_, found = store.GetSession("proj", "fresh")
	assert.True(t, found)
}

func TestInitializeProjectIdempotent(t *testing.T) {
	store := NewSessionsStore(nil)
	store.InitializeProject("proj")
	store.SetSession("proj", types.NewSessionState("s1"))
	store.InitializeProject("proj")

	assert.Equal(t, 1, store.CountSessions("proj"))
}
