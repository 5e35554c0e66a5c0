package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeGateway struct {
	code          supplier.Code
	categories    []supplier.RawCategory
	categoriesErr error
	pages         map[string][]supplier.ProductPage
	pageErrs      map[string]map[int]error
	networkCalls  int
}

func (g *fakeGateway) Supplier() supplier.Code { return g.code }

func (g *fakeGateway) FetchCategories(_ context.Context) ([]supplier.RawCategory, error) {
	g.networkCalls++
	if g.categoriesErr != nil {
		return nil, g.categoriesErr
	}
	return g.categories, nil
}

func (g *fakeGateway) FetchProductsPage(_ context.Context, categoryID string, page int) (supplier.ProductPage, error) {
	g.networkCalls++
	if errs, ok := g.pageErrs[categoryID]; ok {
		if err, ok := errs[page]; ok {
			return supplier.ProductPage{}, err
		}
	}
	pages := g.pages[categoryID]
	if page > len(pages) {
		return supplier.ProductPage{}, nil
	}
	return pages[page-1], nil
}

type fakeProductRepo struct {
	mu        sync.Mutex
	batches   [][]*catalog.Product
	failBatch map[int]error
	overrides map[string]decimal.Decimal
}

func (r *fakeProductRepo) FindByID(context.Context, uuid.UUID) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByExternal(context.Context, supplier.Code, string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(context.Context, catalog.ProductFilter) (shared.Paginated[catalog.Product], error) {
	return shared.Paginated[catalog.Product]{}, nil
}

func (r *fakeProductRepo) Save(context.Context, *catalog.Product) error { return nil }
func (r *fakeProductRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (r *fakeProductRepo) Count(context.Context, catalog.ProductFilter) (int64, error) {
	return 0, nil
}

func (r *fakeProductRepo) CountBySupplier(context.Context) (map[supplier.Code]int64, error) {
	return nil, nil
}

func (r *fakeProductRepo) UpsertBatch(_ context.Context, products []*catalog.Product) (catalog.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, products)
	if err, ok := r.failBatch[len(r.batches)]; ok {
		return catalog.UpsertResult{}, err
	}
	return catalog.UpsertResult{Written: len(products)}, nil
}

func (r *fakeProductRepo) MarkupOverrides(context.Context, supplier.Code, []string) (map[string]decimal.Decimal, error) {
	if r.overrides == nil {
		return map[string]decimal.Decimal{}, nil
	}
	return r.overrides, nil
}

type fakeCategoryRepo struct {
	mirrored []*catalog.Category
}

func (r *fakeCategoryRepo) FindByID(context.Context, uuid.UUID) (*catalog.Category, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCategoryRepo) FindBySupplier(context.Context, supplier.Code) ([]catalog.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) FindActiveBySupplier(context.Context, supplier.Code) ([]catalog.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) Save(context.Context, *catalog.Category) error { return nil }
func (r *fakeCategoryRepo) Delete(context.Context, uuid.UUID) error       { return nil }

func (r *fakeCategoryRepo) UpsertBatch(_ context.Context, categories []*catalog.Category) error {
	r.mirrored = append(r.mirrored, categories...)
	return nil
}

type fakeRunRepo struct {
	mu    sync.Mutex
	saved []*supplier.SyncRun
}

func (r *fakeRunRepo) FindByID(context.Context, uuid.UUID) (*supplier.SyncRun, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeRunRepo) FindAll(context.Context, shared.Filter) (shared.Paginated[supplier.SyncRun], error) {
	return shared.Paginated[supplier.SyncRun]{}, nil
}

func (r *fakeRunRepo) FindLatestBySupplier(context.Context, supplier.Code) (*supplier.SyncRun, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeRunRepo) Save(_ context.Context, run *supplier.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, run)
	return nil
}

type fakeLock struct {
	mu   sync.Mutex
	held map[supplier.Code]bool
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[supplier.Code]bool)}
}

func (l *fakeLock) TryAcquire(_ context.Context, code supplier.Code) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[code] {
		return false, nil
	}
	l.held[code] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, code supplier.Code) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[code] = false
	return nil
}

type fakeConfigSource struct {
	mode      settings.MarkupMode
	globalPct decimal.Decimal
	selection supplier.CategorySelection
}

func (c *fakeConfigSource) MarkupMode(context.Context) (settings.MarkupMode, error) {
	return c.mode, nil
}

func (c *fakeConfigSource) GlobalMarkupPercent(context.Context) (decimal.Decimal, error) {
	return c.globalPct, nil
}

func (c *fakeConfigSource) CategorySelection(context.Context, supplier.Code) (supplier.CategorySelection, error) {
	return c.selection, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func rawWithStock(id string, stock int) supplier.RawProduct {
	return supplier.RawProduct{
		Source:     supplier.CodeSyscom,
		ExternalID: id,
		SKU:        "SKU-" + id,
		Title:      "Product " + id,
		ListPrice:  100,
		Stock:      stock,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CategoryDelay = 0
	cfg.BatchPause = 0
	return cfg
}

func newTestService(gw *fakeGateway, products *fakeProductRepo, cfg Config) (*Service, *fakeRunRepo, *fakeCategoryRepo, *fakeLock) {
	runs := &fakeRunRepo{}
	cats := &fakeCategoryRepo{}
	lock := newFakeLock()
	source := &fakeConfigSource{mode: settings.MarkupGlobal, globalPct: decimal.NewFromInt(20)}
	svc := NewService(
		map[supplier.Code]supplier.Gateway{gw.code: gw},
		products, cats, runs, lock, source, cfg, zap.NewNop(),
	)
	return svc, runs, cats, lock
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunSyncInvalidSource(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeGateway{code: supplier.CodeSyscom}, &fakeProductRepo{}, testConfig())
	_, err := svc.RunSync(context.Background(), Request{Source: "ebay"})
	assert.Error(t, err)
}

func TestRunSyncEmptySelectedSelection(t *testing.T) {
	gw := &fakeGateway{code: supplier.CodeSyscom}
	svc, _, _, _ := newTestService(gw, &fakeProductRepo{}, testConfig())

	summary, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected},
	})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusError, summary.Status)
	require.Len(t, summary.Runs, 1)
	assert.Equal(t, supplier.SyncStatusError, summary.Runs[0].Status)
	assert.Zero(t, gw.networkCalls, "no network calls may happen before fail-fast")
}

func TestRunSyncHappyPath(t *testing.T) {
	gw := &fakeGateway{
		code:       supplier.CodeSyscom,
		categories: []supplier.RawCategory{{ExternalID: "7", Name: "Redes"}},
		pages: map[string][]supplier.ProductPage{
			"7": {
				{Products: []supplier.RawProduct{rawWithStock("1", 5), rawWithStock("2", 0), rawWithStock("3", 2)}, HasNext: true},
				{Products: []supplier.RawProduct{rawWithStock("4", 9)}, HasNext: false},
			},
		},
	}
	products := &fakeProductRepo{}
	svc, runs, cats, _ := newTestService(gw, products, testConfig())

	summary, err := svc.RunSync(context.Background(), Request{Source: supplier.SourceSyscom})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusSuccess, summary.Status)
	assert.Equal(t, 4, summary.ProductsCollected)
	assert.Equal(t, 3, summary.ProductsWithStock, "zero-stock record filtered out")
	assert.Equal(t, 3, summary.ProductsSynced)
	assert.Empty(t, summary.Runs[0].Errors)

	// category mirror refreshed during resolution
	require.Len(t, cats.mirrored, 1)
	assert.Equal(t, "redes", cats.mirrored[0].Slug)

	// markup applied during normalization
	require.Len(t, products.batches, 1)
	assert.Equal(t, "120.00", products.batches[0][0].FinalPrice.StringFixed(2))

	// run persisted in terminal state
	require.NotEmpty(t, runs.saved)
	last := runs.saved[len(runs.saved)-1]
	assert.Equal(t, supplier.SyncStatusSuccess, last.Status)
	assert.NotNil(t, last.FinishedAt)
}

func TestRunSyncBatchFailureIsolation(t *testing.T) {
	var raws []supplier.RawProduct
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		raws = append(raws, rawWithStock(id, 3))
	}
	gw := &fakeGateway{
		code:  supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{"c": {{Products: raws}}},
	}
	products := &fakeProductRepo{failBatch: map[int]error{2: errors.New("write failed")}}

	cfg := testConfig()
	cfg.BatchSize = 2
	svc, _, _, _ := newTestService(gw, products, cfg)

	summary, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"c"}},
	})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusSuccess, summary.Status, "one bad batch does not fail the run")
	assert.Equal(t, 10, summary.ProductsWithStock)
	assert.Equal(t, 8, summary.ProductsSynced, "batches 1,3,4,5 written; batch 2 lost")
	assert.Len(t, products.batches, 5, "all batches attempted")
	require.Len(t, summary.Runs[0].Errors, 1)
	assert.Equal(t, "batch 2/5", summary.Runs[0].Errors[0].Context)
}

func TestRunSyncAuthFailureIsFatal(t *testing.T) {
	gw := &fakeGateway{
		code: supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{
			"a": {{Products: []supplier.RawProduct{rawWithStock("1", 2)}}},
		},
		pageErrs: map[string]map[int]error{"b": {1: supplier.ErrAuthFailed}},
	}
	products := &fakeProductRepo{}
	svc, _, _, _ := newTestService(gw, products, testConfig())

	summary, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"b", "a"}},
	})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusError, summary.Status)
	assert.Empty(t, products.batches, "nothing written after fatal auth rejection")
}

func TestRunSyncScopedPageErrorContinues(t *testing.T) {
	gw := &fakeGateway{
		code: supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{
			"good": {{Products: []supplier.RawProduct{rawWithStock("1", 2), rawWithStock("2", 1)}}},
		},
		pageErrs: map[string]map[int]error{"bad": {1: errors.New("HTTP 500")}},
	}
	svc, _, _, _ := newTestService(gw, &fakeProductRepo{}, testConfig())

	summary, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"bad", "good"}},
	})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusSuccess, summary.Status)
	assert.Equal(t, 2, summary.ProductsSynced)
	require.Len(t, summary.Runs[0].Errors, 1)
	assert.Equal(t, "category bad page 1", summary.Runs[0].Errors[0].Context)
}

func TestRunSyncRejectedWhileLocked(t *testing.T) {
	gw := &fakeGateway{code: supplier.CodeSyscom}
	svc, _, _, lock := newTestService(gw, &fakeProductRepo{}, testConfig())

	ok, err := lock.TryAcquire(context.Background(), supplier.CodeSyscom)
	require.NoError(t, err)
	require.True(t, ok)

	summary, err := svc.RunSync(context.Background(), Request{Source: supplier.SourceSyscom})
	require.NoError(t, err)

	assert.Equal(t, supplier.SyncStatusError, summary.Status)
	assert.Zero(t, gw.networkCalls)
	require.NotEmpty(t, summary.Runs[0].Errors)
	assert.Contains(t, summary.Runs[0].Errors[0].Message, "already in progress")
}

func TestRunSyncPersonalizedMarkup(t *testing.T) {
	gw := &fakeGateway{
		code: supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{
			"c": {{Products: []supplier.RawProduct{rawWithStock("55", 4), rawWithStock("56", 4)}}},
		},
	}
	products := &fakeProductRepo{
		overrides: map[string]decimal.Decimal{"55": decimal.NewFromInt(80)},
	}
	runs := &fakeRunRepo{}
	lock := newFakeLock()
	source := &fakeConfigSource{mode: settings.MarkupPersonalized, globalPct: decimal.NewFromInt(10)}
	svc := NewService(
		map[supplier.Code]supplier.Gateway{gw.code: gw},
		products, &fakeCategoryRepo{}, runs, lock, source, testConfig(), zap.NewNop(),
	)

	_, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"c"}},
	})
	require.NoError(t, err)

	require.Len(t, products.batches, 1)
	byID := map[string]string{}
	for _, p := range products.batches[0] {
		byID[p.ExternalID] = p.FinalPrice.StringFixed(2)
	}
	assert.Equal(t, "180.00", byID["55"], "stored override wins")
	assert.Equal(t, "110.00", byID["56"], "global markup as fallback")
}

func TestRunSyncAllSources(t *testing.T) {
	syscom := &fakeGateway{
		code:  supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{"a": {{Products: []supplier.RawProduct{rawWithStock("1", 1)}}}},
	}
	tecno := &fakeGateway{
		code: supplier.CodeTecnosinergia,
		pages: map[string][]supplier.ProductPage{"b": {{Products: []supplier.RawProduct{{
			Source: supplier.CodeTecnosinergia, ExternalID: "9", SKU: "T-9", Title: "Cam", ListPrice: 50, Stock: 2,
		}}}}},
	}
	products := &fakeProductRepo{}
	runs := &fakeRunRepo{}
	source := &fakeConfigSource{mode: settings.MarkupGlobal, globalPct: decimal.Zero}
	svc := NewService(
		map[supplier.Code]supplier.Gateway{syscom.code: syscom, tecno.code: tecno},
		products, &fakeCategoryRepo{}, runs, newFakeLock(), source, testConfig(), zap.NewNop(),
	)

	selA := supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"a", "b"}}
	summary, err := svc.RunSync(context.Background(), Request{Source: supplier.SourceAll, Selection: &selA})
	require.NoError(t, err)

	require.Len(t, summary.Runs, 2)
	assert.Equal(t, supplier.CodeSyscom, summary.Runs[0].Supplier)
	assert.Equal(t, supplier.CodeTecnosinergia, summary.Runs[1].Supplier)
	assert.Equal(t, 2, summary.ProductsSynced)
}

func TestRunSyncTimeoutReturnsPartial(t *testing.T) {
	gw := &fakeGateway{
		code: supplier.CodeSyscom,
		pages: map[string][]supplier.ProductPage{
			"a": {{Products: []supplier.RawProduct{rawWithStock("1", 2)}}},
			"b": {{Products: []supplier.RawProduct{rawWithStock("2", 2)}}},
		},
	}
	cfg := testConfig()
	cfg.RunTimeout = 50 * time.Millisecond
	cfg.CategoryDelay = 120 * time.Millisecond
	svc, _, _, _ := newTestService(gw, &fakeProductRepo{}, cfg)

	summary, err := svc.RunSync(context.Background(), Request{
		Source:    supplier.SourceSyscom,
		Selection: &supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"a", "b"}},
	})
	require.NoError(t, err)

	run := summary.Runs[0]
	assert.Equal(t, 1, run.ProductsCollected, "second category never fetched")
	found := false
	for _, e := range run.Errors {
		if e.Context == "timeout" {
			found = true
		}
	}
	assert.True(t, found, "timeout recorded on the run")
}
