package catalog

import (
	"context"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GlobalMarkupSource provides the configured global markup percentage,
// needed when a per-product override is cleared
type GlobalMarkupSource interface {
	GlobalMarkupPercent(ctx context.Context) (decimal.Decimal, error)
}

// ProductService handles admin-facing product operations. The sync
// pipeline owns most product fields; this service only touches the
// admin-owned ones and read paths.
type ProductService struct {
	products catalog.ProductRepository
	markup   GlobalMarkupSource
}

// NewProductService creates a product service
func NewProductService(products catalog.ProductRepository, markup GlobalMarkupSource) *ProductService {
	return &ProductService{products: products, markup: markup}
}

// GetByID retrieves a product by its ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// GetByExternal retrieves a product by its supplier identity
func (s *ProductService) GetByExternal(ctx context.Context, code supplier.Code, externalID string) (*catalog.Product, error) {
	if !code.IsValid() {
		return nil, supplier.ErrUnknownSupplier
	}
	return s.products.FindByExternal(ctx, code, externalID)
}

// List returns a filtered product page
func (s *ProductService) List(ctx context.Context, filter catalog.ProductFilter) (shared.Paginated[catalog.Product], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.products.FindAll(ctx, filter)
}

// ListStale returns products whose last successful sync is older than
// the given age. These are the records that disappeared from the
// supplier feed; they are surfaced for an operator decision instead of
// being hidden automatically.
func (s *ProductService) ListStale(ctx context.Context, olderThan time.Duration, filter catalog.ProductFilter) (shared.Paginated[catalog.Product], error) {
	cutoff := time.Now().Add(-olderThan)
	filter.StaleSince = &cutoff
	return s.List(ctx, filter)
}

// SetFeatured toggles the featured flag
func (s *ProductService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.SetFeatured(featured)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetVisibility toggles storefront visibility
func (s *ProductService) SetVisibility(ctx context.Context, id uuid.UUID, visible bool) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.SetVisibility(visible)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetMarkupOverride stores a per-product markup override and reprices
// the product immediately
func (s *ProductService) SetMarkupOverride(ctx context.Context, id uuid.UUID, percent decimal.Decimal) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetMarkupOverride(percent); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ClearMarkupOverride removes the override and reprices with the
// configured global markup
func (s *ProductService) ClearMarkupOverride(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	globalPct := decimal.Zero
	if s.markup != nil {
		if pct, err := s.markup.GlobalMarkupPercent(ctx); err == nil {
			globalPct = pct
		}
	}
	product.ClearMarkupOverride(globalPct)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CountBySupplier returns product counts grouped by supplier
func (s *ProductService) CountBySupplier(ctx context.Context) (map[supplier.Code]int64, error) {
	return s.products.CountBySupplier(ctx)
}

// Delete removes a product. Sync never deletes; this is an explicit
// admin action only.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}
