package catalog

import (
	"context"
	"errors"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/google/uuid"
)

// BrandService manages admin-curated brands
type BrandService struct {
	brands catalog.BrandRepository
}

// NewBrandService creates a brand service
func NewBrandService(brands catalog.BrandRepository) *BrandService {
	return &BrandService{brands: brands}
}

// Create adds a new brand; duplicate names are rejected
func (s *BrandService) Create(ctx context.Context, name, slug, logoURL string) (*catalog.Brand, error) {
	existing, err := s.brands.FindByName(ctx, name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	brand, err := catalog.NewBrand(name, slug)
	if err != nil {
		return nil, err
	}
	brand.LogoURL = logoURL
	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// GetByID retrieves one brand
func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Brand, error) {
	return s.brands.FindByID(ctx, id)
}

// List returns a brand page
func (s *BrandService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Brand], error) {
	return s.brands.FindAll(ctx, filter)
}

// Update changes brand display data
func (s *BrandService) Update(ctx context.Context, id uuid.UUID, name, slug, logoURL string) (*catalog.Brand, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := brand.Update(name, slug, logoURL); err != nil {
		return nil, err
	}
	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// SetActive toggles brand visibility
func (s *BrandService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalog.Brand, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		brand.Activate()
	} else {
		brand.Deactivate()
	}
	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// Delete removes a brand
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.brands.FindByID(ctx, id); err != nil {
		return err
	}
	return s.brands.Delete(ctx, id)
}
