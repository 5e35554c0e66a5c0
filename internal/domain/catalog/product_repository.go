package catalog

import (
	"context"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter extends the base filter with catalog-specific criteria
type ProductFilter struct {
	shared.Filter
	Supplier     *supplier.Code
	Brand        string
	CategoryID   string
	OnlyVisible  bool
	OnlyFeatured bool
	OnlyInStock  bool
	// StaleSince selects products whose last sync is older than the
	// given time (products that disappeared from the supplier feed)
	StaleSince *time.Time
}

// UpsertResult reports the outcome of one batch write
type UpsertResult struct {
	Written int
}

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByExternal(ctx context.Context, code supplier.Code, externalID string) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) (shared.Paginated[Product], error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	CountBySupplier(ctx context.Context) (map[supplier.Code]int64, error)

	// UpsertBatch writes normalized products keyed by (supplier,
	// external_id). On conflict only supplier-owned columns are
	// overwritten; admin-owned columns (is_visible, is_featured,
	// markup_override) are left untouched.
	UpsertBatch(ctx context.Context, products []*Product) (UpsertResult, error)

	// MarkupOverrides returns the stored per-product markup overrides
	// for the given external ids, keyed by external id. Missing ids are
	// simply absent from the map.
	MarkupOverrides(ctx context.Context, code supplier.Code, externalIDs []string) (map[string]decimal.Decimal, error)
}

// CategoryRepository defines persistence for supplier category mirrors
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySupplier(ctx context.Context, code supplier.Code) ([]Category, error)
	FindActiveBySupplier(ctx context.Context, code supplier.Code) ([]Category, error)
	Save(ctx context.Context, category *Category) error
	// UpsertBatch mirrors the supplier category list, keyed by
	// (supplier, external_id); IsActive is operator-owned and preserved.
	UpsertBatch(ctx context.Context, categories []*Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BrandRepository defines persistence for brands
type BrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	FindByName(ctx context.Context, name string) (*Brand, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Brand], error)
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BannerRepository defines persistence for banners
type BannerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Banner, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Banner], error)
	FindLive(ctx context.Context, now time.Time) ([]Banner, error)
	Save(ctx context.Context, banner *Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
}
