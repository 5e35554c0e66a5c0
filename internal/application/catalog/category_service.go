package catalog

import (
	"context"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/google/uuid"
)

// CategoryService manages the local mirror of supplier categories.
// The mirror itself is refreshed by the sync pipeline; operators only
// toggle which categories participate.
type CategoryService struct {
	categories catalog.CategoryRepository
}

// NewCategoryService creates a category service
func NewCategoryService(categories catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// ListBySupplier returns the mirrored categories for one supplier
func (s *CategoryService) ListBySupplier(ctx context.Context, code supplier.Code) ([]catalog.Category, error) {
	if !code.IsValid() {
		return nil, supplier.ErrUnknownSupplier
	}
	return s.categories.FindBySupplier(ctx, code)
}

// GetByID retrieves one category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// SetActive toggles whether the category participates in "all" syncs
// and storefront navigation
func (s *CategoryService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalog.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		category.Activate()
	} else {
		category.Deactivate()
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
