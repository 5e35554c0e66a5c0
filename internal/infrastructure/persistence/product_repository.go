package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// productConflictColumns is the upsert key
var productConflictColumns = []clause.Column{{Name: "supplier"}, {Name: "external_id"}}

// productAssignmentColumns are the supplier-owned columns a sync may
// overwrite. is_visible, is_featured and markup_override are admin-owned
// and deliberately absent.
var productAssignmentColumns = []string{
	"sku",
	"title",
	"description",
	"brand",
	"base_price",
	"markup_percent",
	"final_price",
	"stock",
	"images",
	"categories",
	"synced_at",
	"updated_at",
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByExternal finds a product by its supplier identity
func (r *GormProductRepository) FindByExternal(ctx context.Context, code supplier.Code, externalID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("supplier = ? AND external_id = ?", code, externalID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds products matching the filter, paginated
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) (shared.Paginated[catalog.Product], error) {
	var total int64
	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}

	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	query = applyOrdering(applyPagination(query, filter.Filter), filter.Filter, "created_at")
	if err := query.Find(&products).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}
	return shared.NewPaginated(products, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySupplier returns product counts grouped by supplier
func (r *GormProductRepository) CountBySupplier(ctx context.Context) (map[supplier.Code]int64, error) {
	var rows []struct {
		Supplier supplier.Code
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("supplier, count(*) as total").
		Group("supplier").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[supplier.Code]int64, len(rows))
	for _, row := range rows {
		counts[row.Supplier] = row.Total
	}
	return counts, nil
}

// UpsertBatch writes normalized products keyed by (supplier, external_id).
// On conflict only the supplier-owned columns are assigned, so the
// admin-owned flags and markup override survive every sync.
func (r *GormProductRepository) UpsertBatch(ctx context.Context, products []*catalog.Product) (catalog.UpsertResult, error) {
	if len(products) == 0 {
		return catalog.UpsertResult{}, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   productConflictColumns,
		DoUpdates: clause.AssignmentColumns(productAssignmentColumns),
	}).Create(&products)
	if result.Error != nil {
		return catalog.UpsertResult{}, result.Error
	}
	return catalog.UpsertResult{Written: len(products)}, nil
}

// MarkupOverrides returns the stored per-product overrides for the given
// external ids
func (r *GormProductRepository) MarkupOverrides(ctx context.Context, code supplier.Code, externalIDs []string) (map[string]decimal.Decimal, error) {
	if len(externalIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	var rows []struct {
		ExternalID     string
		MarkupOverride *decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("external_id, markup_override").
		Where("supplier = ? AND external_id IN ? AND markup_override IS NOT NULL", code, externalIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	overrides := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		if row.MarkupOverride != nil {
			overrides[row.ExternalID] = *row.MarkupOverride
		}
	}
	return overrides, nil
}

// applyFilter applies product criteria without pagination or ordering
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR sku LIKE ? OR brand LIKE ?", pattern, pattern, pattern)
	}
	if filter.Supplier != nil {
		query = query.Where("supplier = ?", *filter.Supplier)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.CategoryID != "" {
		// Categories live in a jsonb array of {id, name, level}
		query = query.Where("categories::text LIKE ?", `%"id":"`+filter.CategoryID+`"%`)
	}
	if filter.OnlyVisible {
		query = query.Where("is_visible = ?", true)
	}
	if filter.OnlyFeatured {
		query = query.Where("is_featured = ?", true)
	}
	if filter.OnlyInStock {
		query = query.Where("stock > 0")
	}
	if filter.StaleSince != nil {
		query = query.Where("synced_at < ?", *filter.StaleSince)
	}
	return query
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
