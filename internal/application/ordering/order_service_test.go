package ordering

import (
	"context"
	"testing"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/ordering"
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

type fakeOrderRepo struct {
	saved map[uuid.UUID]*ordering.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{saved: make(map[uuid.UUID]*ordering.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	order, ok := r.saved[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*ordering.Order, error) {
	for _, order := range r.saved {
		if order.Number == number {
			return order, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(_ context.Context, filter ordering.OrderFilter) (shared.Paginated[ordering.Order], error) {
	var items []ordering.Order
	for _, order := range r.saved {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		items = append(items, *order)
	}
	return shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize), nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *ordering.Order) error {
	r.saved[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context) (map[ordering.Status]int64, error) {
	counts := make(map[ordering.Status]int64)
	for _, order := range r.saved {
		counts[order.Status]++
	}
	return counts, nil
}

type fakeProductLookup struct {
	catalog.ProductRepository
	products map[uuid.UUID]*catalog.Product
}

func (r *fakeProductLookup) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

type fixedTaxRate struct{ rate decimal.Decimal }

func (f fixedTaxRate) IVARate(context.Context) (decimal.Decimal, error) {
	return f.rate, nil
}

func storefrontProduct(t *testing.T, sku string, finalPrice string, stock int, visible bool) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(supplier.CodeSyscom, "ext-"+sku, sku, "Producto "+sku)
	require.NoError(t, err)
	product.ID = uuid.New()
	product.FinalPrice = decimal.RequireFromString(finalPrice)
	product.Stock = stock
	product.IsVisible = visible
	return product
}

func newOrderFixture(t *testing.T, products ...*catalog.Product) (*OrderService, *fakeOrderRepo) {
	t.Helper()
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, &fakeProductLookup{products: byID},
		fixedTaxRate{rate: decimal.NewFromInt(16)}, zap.NewNop())
	return svc, repo
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreateOrder(t *testing.T) {
	router := storefrontProduct(t, "RT-AX53", "1450.00", 8, true)
	cable := storefrontProduct(t, "CAB-UTP", "35.50", 200, true)
	svc, repo := newOrderFixture(t, router, cable)

	order, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayMercadoPago,
		Items: []ItemRequest{
			{ProductID: router.ID, Quantity: 2},
			{ProductID: cable.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ordering.StatusPending, order.Status)
	assert.Contains(t, order.Number, "ORD-")
	assert.Len(t, order.Items, 2)
	// 2*1450.00 + 4*35.50 = 3042.00, IVA 16% = 486.72
	assert.Equal(t, "3042.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "486.72", order.Tax.StringFixed(2))
	assert.Equal(t, "3528.72", order.Total.StringFixed(2))
	assert.Len(t, repo.saved, 1)
}

func TestCreateOrderRejectsHiddenProduct(t *testing.T) {
	hidden := storefrontProduct(t, "NAS-X", "5200.00", 3, false)
	svc, repo := newOrderFixture(t, hidden)

	_, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayStripe,
		Items:         []ItemRequest{{ProductID: hidden.ID, Quantity: 1}},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
	assert.Empty(t, repo.saved)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	scarce := storefrontProduct(t, "UPS-1K", "2100.00", 2, true)
	svc, _ := newOrderFixture(t, scarce)

	_, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayMercadoPago,
		Items:         []ItemRequest{{ProductID: scarce.ID, Quantity: 3}},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
}

func TestCreateOrderRejectsEmptyRequest(t *testing.T) {
	svc, _ := newOrderFixture(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayMercadoPago,
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_ORDER", domainErr.Code)
}

func TestUpdateStatus(t *testing.T) {
	router := storefrontProduct(t, "RT-AX53", "1450.00", 8, true)
	svc, _ := newOrderFixture(t, router)

	order, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayPayPal,
		Items:         []ItemRequest{{ProductID: router.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	paid, err := svc.UpdateStatus(context.Background(), order.ID, ordering.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, ordering.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = svc.UpdateStatus(context.Background(), order.ID, ordering.StatusPending)
	assert.Error(t, err, "cannot move back to pending")
}

func TestGetByNumber(t *testing.T) {
	router := storefrontProduct(t, "RT-AX53", "1450.00", 8, true)
	svc, _ := newOrderFixture(t, router)

	order, err := svc.Create(context.Background(), CreateRequest{
		CustomerName:  "Laura Méndez",
		CustomerEmail: "laura@example.com",
		Gateway:       ordering.GatewayMercadoPago,
		Items:         []ItemRequest{{ProductID: router.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	found, err := svc.GetByNumber(context.Background(), "  "+order.Number+" ")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.GetByNumber(context.Background(), "ORD-NOPE")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
