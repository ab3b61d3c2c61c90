// Package pages implements the persistent page store keyed by id and slug.
package pages

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/pages"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/persistence/database"
)

// Repository provides page store operations over the project database.
type Repository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewRepository creates a page repository.
func NewRepository(db *database.DB, logger *logging.ChanneledLogger) *Repository {
	return &Repository{db: db, logger: logger}
}

// EnsureSchema creates the pages table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}',
			is_published INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create pages table: %w", err)
	}
	return nil
}

// GetByID returns the page with the given id, or nil when absent.
func (r *Repository) GetByID(id string) (*pages.Page, error) {
	row := r.db.QueryRow(
		`SELECT id, slug, title, payload, is_published, created_at, updated_at FROM pages WHERE id = ?`, id)
	return r.scanPage(row)
}

// GetBySlug returns the page with the given slug, or nil when absent.
func (r *Repository) GetBySlug(slug string) (*pages.Page, error) {
	row := r.db.QueryRow(
		`SELECT id, slug, title, payload, is_published, created_at, updated_at FROM pages WHERE slug = ?`, slug)
	return r.scanPage(row)
}

// Upsert inserts or replaces a page record by id.
func (r *Repository) Upsert(page *pages.Page) error {
	start := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO pages (id, slug, title, payload, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			payload = excluded.payload,
			is_published = excluded.is_published,
			updated_at = excluded.updated_at`,
		page.ID, page.Slug, page.Title, string(page.Payload), boolToInt(page.IsPublished), page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert page %s: %w", page.ID, err)
	}

	if r.logger != nil {
		r.logger.Database().Debug("Page upserted", "pageId", page.ID, "slug", page.Slug, "duration", time.Since(start))
	}
	return nil
}

// Delete removes a page by id.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", id, err)
	}
	return nil
}

// List returns all pages ordered by slug.
func (r *Repository) List() ([]*pages.Page, error) {
	rows, err := r.db.Query(
		`SELECT id, slug, title, payload, is_published, created_at, updated_at FROM pages ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var result []*pages.Page
	for rows.Next() {
		page, err := scanPageRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, page)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanPage(row *sql.Row) (*pages.Page, error) {
	page, err := scanPageRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return page, err
}

func scanPageRow(row rowScanner) (*pages.Page, error) {
	var page pages.Page
	var payload string
	var published int
	if err := row.Scan(&page.ID, &page.Slug, &page.Title, &payload, &published, &page.CreatedAt, &page.UpdatedAt); err != nil {
		return nil, err
	}
	page.Payload = []byte(payload)
	page.IsPublished = published != 0
	return &page, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
