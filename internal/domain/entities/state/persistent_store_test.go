package state

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersistence struct {
	data     map[string]map[string]any
	loadErr  error
	saveErr  error
	saves    int
	removals int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{data: make(map[string]map[string]any)}
}

func (f *fakePersistence) Load(sessionID string) (map[string]any, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.data[sessionID], nil
}

func (f *fakePersistence) Save(sessionID string, variables map[string]any) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data[sessionID] = variables
	return nil
}

func (f *fakePersistence) Remove(sessionID string) error {
	f.removals++
	delete(f.data, sessionID)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPersistentStoreLoadsUnderSeed(t *testing.T) {
	persistence := newFakePersistence()
	persistence.data["s1"] = map[string]any{"persisted": "old", "shared": "from-disk"}

	seed := &Seed{SessionVariables: map[string]any{"shared": "from-seed", "fresh": true}}
	ps := NewPersistentVariableStore("s1", seed, persistence, quietLogger())

	value, found := ps.GetSessionVariable("persisted")
	require.True(t, found)
	assert.Equal(t, "old", value)

	value, found = ps.GetSessionVariable("shared")
	require.True(t, found)
	assert.Equal(t, "from-seed", value, "seed values win over persisted values")

	_, found = ps.GetSessionVariable("fresh")
	assert.True(t, found)
}

func TestPersistentStoreWriteThrough(t *testing.T) {
	persistence := newFakePersistence()
	ps := NewPersistentVariableStore("s1", nil, persistence, quietLogger())

	ps.SetSessionVariable("a", 1)
	ps.SetSessionVariable("b", 2)

	assert.Equal(t, 2, persistence.saves)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, persistence.data["s1"])
}

func TestPersistentStoreSaveFailureIsSwallowed(t *testing.T) {
	persistence := newFakePersistence()
	persistence.saveErr = errors.New("disk full")
	ps := NewPersistentVariableStore("s1", nil, persistence, quietLogger())

	ps.SetSessionVariable("a", 1)

	// The in-memory write must survive a failed mirror write.
	value, found := ps.GetSessionVariable("a")
	require.True(t, found)
	assert.Equal(t, 1, value)
}

func TestPersistentStoreLoadFailureIsEmpty(t *testing.T) {
	persistence := newFakePersistence()
	persistence.loadErr = errors.New("corrupt")

	ps := NewPersistentVariableStore("s1", &Seed{SessionVariables: map[string]any{"seeded": true}}, persistence, quietLogger())

	assert.Equal(t, map[string]any{"seeded": true}, ps.GetSessionVariables())
}

func TestPersistentStoreClearRemoves(t *testing.T) {
	persistence := newFakePersistence()
	persistence.data["s1"] = map[string]any{"a": 1}
	ps := NewPersistentVariableStore("s1", nil, persistence, quietLogger())

	ps.ClearSessionVariables()

	assert.Empty(t, ps.GetSessionVariables())
	assert.Equal(t, 1, persistence.removals)
	_, exists := persistence.data["s1"]
	assert.False(t, exists)
}

func TestPersistentStoreNilBackend(t *testing.T) {
	ps := NewPersistentVariableStore("s1", nil, nil, quietLogger())

	ps.SetSessionVariable("a", 1)
	ps.ClearSessionVariables()

	assert.Empty(t, ps.GetSessionVariables())
}

func TestPersistentStorePageAndCookieScopesNotMirrored(t *testing.T) {
	persistence := newFakePersistence()
	ps := NewPersistentVariableStore("s1", nil, persistence, quietLogger())

	ps.SetPageVariable("p", 1)
	ps.SetCookie("c", "v", nil)

	assert.Zero(t, persistence.saves)
}
