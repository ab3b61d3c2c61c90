// Package pages defines the published page entity held by the page store.
package pages

import (
	"encoding/json"
	"time"
)

// Page is one page of a project: an opaque node-tree payload produced by the
// visual editor, addressed by id or slug.
type Page struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Payload     json.RawMessage `json:"payload"`
	IsPublished bool            `json:"isPublished"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewPage creates an unpublished page record. The caller assigns the id.
func NewPage(id, slug, title string, payload json.RawMessage) *Page {
	now := time.Now().UTC()
	return &Page{
		ID:        id,
		Slug:      slug,
		Title:     title,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the modification timestamp.
func (p *Page) Touch() {
	p.UpdatedAt = time.Now().UTC()
}
