package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/ComunidadDecidida/mayoristas/internal/application/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/ComunidadDecidida/mayoristas/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProductRepo struct {
	catalog.ProductRepository
	byID       map[uuid.UUID]*catalog.Product
	lastFilter catalog.ProductFilter
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, filter catalog.ProductFilter) (shared.Paginated[catalog.Product], error) {
	r.lastFilter = filter
	items := make([]catalog.Product, 0, len(r.byID))
	for _, p := range r.byID {
		items = append(items, *p)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.byID[product.ID] = product
	return nil
}

type fixedGlobalMarkup struct{ pct decimal.Decimal }

func (f fixedGlobalMarkup) GlobalMarkupPercent(context.Context) (decimal.Decimal, error) {
	return f.pct, nil
}

func newProductServer(repo *fakeProductRepo) *gin.Engine {
	svc := catalogapp.NewProductService(repo, fixedGlobalMarkup{pct: decimal.NewFromInt(20)})
	h := NewProductHandler(svc)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func storedProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(supplier.CodeSyscom, "EXT-1", "SKU-1", "Router inalambrico")
	require.NoError(t, err)
	product.ID = uuid.New()
	product.SetPricing(decimal.NewFromInt(1000), decimal.NewFromInt(20))
	product.SetStock(8)
	return product
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProductListReturnsEnvelope(t *testing.T) {
	repo := newFakeProductRepo()
	product := storedProduct(t)
	repo.byID[product.ID] = product
	r := newProductServer(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&page_size=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestProductListRejectsUnknownSupplier(t *testing.T) {
	r := newProductServer(newFakeProductRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?supplier=mouser", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestProductGetNotFound(t *testing.T) {
	r := newProductServer(newFakeProductRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestProductSetVisibility(t *testing.T) {
	repo := newFakeProductRepo()
	product := storedProduct(t)
	repo.byID[product.ID] = product
	r := newProductServer(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		"/api/v1/products/"+product.ID.String()+"/visibility",
		strings.NewReader(`{"value": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, repo.byID[product.ID].IsVisible)
}

func TestProductMarkupOverrideRoundTrip(t *testing.T) {
	repo := newFakeProductRepo()
	product := storedProduct(t)
	repo.byID[product.ID] = product
	r := newProductServer(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut,
		"/api/v1/products/"+product.ID.String()+"/markup-override",
		strings.NewReader(`{"percent": "50"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.byID[product.ID].MarkupOverride)
	assert.Equal(t, "1500.00", repo.byID[product.ID].FinalPrice.StringFixed(2))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete,
		"/api/v1/products/"+product.ID.String()+"/markup-override", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, repo.byID[product.ID].MarkupOverride)
	assert.Equal(t, "1200.00", repo.byID[product.ID].FinalPrice.StringFixed(2))
}

func TestProductInvalidIDIsBadRequest(t *testing.T) {
	r := newProductServer(newFakeProductRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
