package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// CatalogService manages the per-site reference data tickets point at:
// categories and reporters.
type CatalogService struct {
	categories repository.CategoryRepository
	reporters  repository.ReporterRepository
}

// NewCatalogService constructs the service.
func NewCatalogService(categories repository.CategoryRepository, reporters repository.ReporterRepository) *CatalogService {
	return &CatalogService{categories: categories, reporters: reporters}
}

// ListCategories lists a site's categories.
func (s *CatalogService) ListCategories(ctx context.Context, siteID string) ([]domain.Category, error) {
	return s.categories.ListBySite(ctx, siteID)
}

// CreateCategory adds a category to a site.
func (s *CatalogService) CreateCategory(ctx context.Context, siteID, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("category name required", map[string]any{"field": "Name"})
	}
	category := &domain.Category{ID: uuid.NewString(), SiteID: siteID, Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// RenameCategory updates a category's name.
func (s *CatalogService) RenameCategory(ctx context.Context, siteID, id, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("category name required", map[string]any{"field": "Name"})
	}
	if err := s.categories.Rename(ctx, siteID, id, name); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, err
	}
	return &domain.Category{ID: id, SiteID: siteID, Name: name}, nil
}

// DeleteCategory removes a category. Tickets referencing it keep their rows;
// the reference is nulled by the schema.
func (s *CatalogService) DeleteCategory(ctx context.Context, siteID, id string) error {
	return s.categories.Delete(ctx, siteID, id)
}

// ListReporters lists a site's reporters.
func (s *CatalogService) ListReporters(ctx context.Context, siteID string) ([]domain.Reporter, error) {
	return s.reporters.ListBySite(ctx, siteID)
}

// GetReporter loads one reporter.
func (s *CatalogService) GetReporter(ctx context.Context, id string) (*domain.Reporter, error) {
	reporter, err := s.reporters.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("reporter", map[string]any{"reporter_id": id})
		}
		return nil, err
	}
	return reporter, nil
}

// CreateReporter adds a reporter, reusing an existing row on an exact
// contact match.
func (s *CatalogService) CreateReporter(ctx context.Context, reporter domain.Reporter) (*domain.Reporter, error) {
	if strings.TrimSpace(reporter.Name) == "" {
		return nil, apperrors.NewValidationError("reporter name required", map[string]any{"field": "Name"})
	}
	existing, err := s.reporters.FindExact(ctx, reporter.SiteID, reporter.Name, reporter.Phone, reporter.Email, reporter.Company)
	if err == nil {
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}
	reporter.ID = uuid.NewString()
	if err := s.reporters.Create(ctx, &reporter); err != nil {
		return nil, err
	}
	return &reporter, nil
}
