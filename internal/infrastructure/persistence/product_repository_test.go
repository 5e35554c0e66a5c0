package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewSQLiteDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.DB.AutoMigrate(
		&catalog.Product{},
		&catalog.Category{},
		&catalog.Brand{},
		&catalog.Banner{},
	))
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func syncedProduct(t *testing.T, externalID, sku string, base float64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(supplier.CodeSyscom, externalID, sku, "Producto "+sku)
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(decimal.NewFromFloat(base), decimal.NewFromInt(20)))
	require.NoError(t, product.SetStock(5))
	product.Images = catalog.ImageList{"https://img.example.com/" + sku + ".jpg"}
	return product
}

func TestUpsertBatchInsertsAndUpdates(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	first := []*catalog.Product{
		syncedProduct(t, "1001", "RB750", 1000),
		syncedProduct(t, "1002", "RB760", 1500),
	}
	result, err := repo.UpsertBatch(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Written)

	// Re-sync with changed supplier-owned data
	second := []*catalog.Product{syncedProduct(t, "1001", "RB750v2", 1100)}
	second[0].SyncedAt = time.Now().Add(time.Hour)
	_, err = repo.UpsertBatch(ctx, second)
	require.NoError(t, err)

	count, err := repo.Count(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "upsert must not create a duplicate row")

	updated, err := repo.FindByExternal(ctx, supplier.CodeSyscom, "1001")
	require.NoError(t, err)
	assert.Equal(t, "RB750v2", updated.SKU)
	assert.Equal(t, "1320.00", updated.FinalPrice.StringFixed(2))
}

func TestUpsertBatchPreservesAdminOwnedFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []*catalog.Product{syncedProduct(t, "1001", "RB750", 1000)})
	require.NoError(t, err)

	// Admin curates the product between syncs
	stored, err := repo.FindByExternal(ctx, supplier.CodeSyscom, "1001")
	require.NoError(t, err)
	stored.SetFeatured(true)
	stored.SetVisibility(false)
	require.NoError(t, stored.SetMarkupOverride(decimal.NewFromInt(35)))
	require.NoError(t, repo.Save(ctx, stored))

	// Next sync rewrites the supplier-owned columns
	_, err = repo.UpsertBatch(ctx, []*catalog.Product{syncedProduct(t, "1001", "RB750", 1200)})
	require.NoError(t, err)

	after, err := repo.FindByExternal(ctx, supplier.CodeSyscom, "1001")
	require.NoError(t, err)
	assert.True(t, after.IsFeatured, "is_featured must survive the sync")
	assert.False(t, after.IsVisible, "is_visible must survive the sync")
	require.NotNil(t, after.MarkupOverride, "markup_override must survive the sync")
	assert.Equal(t, "35", after.MarkupOverride.StringFixed(0))
	assert.Equal(t, "1200", after.BasePrice.StringFixed(0), "supplier-owned price must update")
}

func TestMarkupOverridesLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	withOverride := syncedProduct(t, "2001", "CAM-1", 800)
	require.NoError(t, withOverride.SetMarkupOverride(decimal.NewFromInt(40)))
	plain := syncedProduct(t, "2002", "CAM-2", 900)
	_, err := repo.UpsertBatch(ctx, []*catalog.Product{withOverride, plain})
	require.NoError(t, err)

	overrides, err := repo.MarkupOverrides(ctx, supplier.CodeSyscom, []string{"2001", "2002", "2999"})
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, "40", overrides["2001"].StringFixed(0))
}

func TestProductFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	visible := syncedProduct(t, "3001", "SW-8", 700)
	hidden := syncedProduct(t, "3002", "SW-16", 1400)
	hidden.SetVisibility(false)
	outOfStock := syncedProduct(t, "3003", "SW-24", 2100)
	require.NoError(t, outOfStock.SetStock(0))
	_, err := repo.UpsertBatch(ctx, []*catalog.Product{visible, hidden, outOfStock})
	require.NoError(t, err)

	page, err := repo.FindAll(ctx, catalog.ProductFilter{
		Filter:      shared.Filter{Page: 1, PageSize: 10},
		OnlyVisible: true,
		OnlyInStock: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "SW-8", page.Items[0].SKU)
}

func TestStaleFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	fresh := syncedProduct(t, "4001", "NVR-1", 3000)
	stale := syncedProduct(t, "4002", "NVR-2", 3500)
	stale.SyncedAt = time.Now().Add(-96 * time.Hour)
	_, err := repo.UpsertBatch(ctx, []*catalog.Product{fresh, stale})
	require.NoError(t, err)

	cutoff := time.Now().Add(-48 * time.Hour)
	page, err := repo.FindAll(ctx, catalog.ProductFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 10},
		StaleSince: &cutoff,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "NVR-2", page.Items[0].SKU)
}
