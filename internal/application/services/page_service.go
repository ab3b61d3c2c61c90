package services

import (
	"encoding/json"
	"fmt"

	"github.com/flowbuild/flowbuild-go/internal/domain/entities/pages"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/project"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/security"
)

// PageService manages page records for the editor surface.
type PageService struct {
	logger *logging.ChanneledLogger
}

// NewPageService creates the page service singleton.
func NewPageService(logger *logging.ChanneledLogger) *PageService {
	return &PageService{logger: logger}
}

// List returns all pages for the project, ordered by slug.
func (s *PageService) List(projectCtx *project.Context) ([]*pages.Page, error) {
	return projectCtx.PageRepo().List()
}

// GetByID loads one page, returning nil when it does not exist.
func (s *PageService) GetByID(projectCtx *project.Context, id string) (*pages.Page, error) {
	return projectCtx.PageRepo().GetByID(id)
}

// GetBySlug loads one page by slug, returning nil when it does not exist.
func (s *PageService) GetBySlug(projectCtx *project.Context, slug string) (*pages.Page, error) {
	return projectCtx.PageRepo().GetBySlug(slug)
}

// Create stores a new page with a generated ID.
func (s *PageService) Create(projectCtx *project.Context, slug, title string, payload json.RawMessage) (*pages.Page, error) {
	if slug == "" {
		return nil, fmt.Errorf("page slug is required")
	}

	existing, err := projectCtx.PageRepo().GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("page slug %s already exists", slug)
	}

	page := pages.NewPage(security.GenerateULID(), slug, title, payload)
	if err := projectCtx.PageRepo().Upsert(page); err != nil {
		return nil, fmt.Errorf("failed to create page %s: %w", slug, err)
	}

	s.logger.Pages().Info("Created page", "projectId", projectCtx.ProjectID, "pageId", page.ID, "slug", slug)
	return page, nil
}

// Update replaces a page's editable fields and bumps its updated timestamp.
func (s *PageService) Update(projectCtx *project.Context, id, slug, title string, payload json.RawMessage, isPublished bool) (*pages.Page, error) {
	page, err := projectCtx.PageRepo().GetByID(id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page %s not found", id)
	}

	if slug != "" {
		page.Slug = slug
	}
	if title != "" {
		page.Title = title
	}
	if payload != nil {
		page.Payload = payload
	}
	page.IsPublished = isPublished
	page.Touch()

	if err := projectCtx.PageRepo().Upsert(page); err != nil {
		return nil, fmt.Errorf("failed to update page %s: %w", id, err)
	}

	s.logger.Pages().Info("Updated page", "projectId", projectCtx.ProjectID, "pageId", page.ID, "slug", page.Slug)
	return page, nil
}

// Delete removes a page. Deleting a missing page is not an error.
func (s *PageService) Delete(projectCtx *project.Context, id string) error {
	if err := projectCtx.PageRepo().Delete(id); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", id, err)
	}
	s.logger.Pages().Info("Deleted page", "projectId", projectCtx.ProjectID, "pageId", id)
	return nil
}
