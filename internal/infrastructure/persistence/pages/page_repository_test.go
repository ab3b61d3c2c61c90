package pages

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/pages"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, nil)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestUpsertAndGet(t *testing.T) {
	repo := newTestRepository(t)

	page := pages.NewPage("01J0TESTID", "home", "Home", json.RawMessage(`{"blocks":[]}`))
	page.IsPublished = true
	require.NoError(t, repo.Upsert(page))

	byID, err := repo.GetByID("01J0TESTID")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "home", byID.Slug)
	assert.True(t, byID.IsPublished)
	assert.JSONEq(t, `{"blocks":[]}`, string(byID.Payload))

	bySlug, err := repo.GetBySlug("home")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, page.ID, bySlug.ID)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := newTestRepository(t)

	page, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, page)

	page, err = repo.GetBySlug("nope")
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo := newTestRepository(t)

	page := pages.NewPage("p1", "about", "About", json.RawMessage(`{}`))
	require.NoError(t, repo.Upsert(page))

	page.Title = "About Us"
	page.IsPublished = true
	require.NoError(t, repo.Upsert(page))

	loaded, err := repo.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, "About Us", loaded.Title)
	assert.True(t, loaded.IsPublished)
}

func TestListOrderedBySlug(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Upsert(pages.NewPage("p2", "zebra", "Z", json.RawMessage(`{}`))))
	require.NoError(t, repo.Upsert(pages.NewPage("p1", "alpha", "A", json.RawMessage(`{}`))))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Slug)
	assert.Equal(t, "zebra", list[1].Slug)
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Upsert(pages.NewPage("p1", "a", "A", json.RawMessage(`{}`))))
	require.NoError(t, repo.Delete("p1"))

	page, err := repo.GetByID("p1")
	require.NoError(t, err)
	assert.Nil(t, page)

	// Deleting a missing page is not an error.
	assert.NoError(t, repo.Delete("p1"))
}
