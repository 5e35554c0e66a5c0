// Package ordering implements order capture and fulfillment use cases.
package ordering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/ordering"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxRateSource supplies the IVA percentage applied to new orders
type TaxRateSource interface {
	IVARate(ctx context.Context) (decimal.Decimal, error)
}

// ItemRequest is one requested order line
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateRequest carries everything needed to place an order
type CreateRequest struct {
	CustomerName  string
	CustomerEmail string
	Gateway       ordering.PaymentGateway
	Items         []ItemRequest
}

// OrderService coordinates order placement and fulfillment
type OrderService struct {
	orders   ordering.OrderRepository
	products catalog.ProductRepository
	taxRates TaxRateSource
	logger   *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(orders ordering.OrderRepository, products catalog.ProductRepository, taxRates TaxRateSource, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, products: products, taxRates: taxRates, logger: logger}
}

// Create places an order. Lines are priced from the current catalog final
// price; hidden or out of stock products are rejected.
func (s *OrderService) Create(ctx context.Context, req CreateRequest) (*ordering.Order, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	taxRate, err := s.taxRates.IVARate(ctx)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(newOrderNumber(), req.CustomerName, req.CustomerEmail, req.Gateway)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsVisible {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				fmt.Sprintf("Product %s is not available", product.SKU))
		}
		if product.Stock < line.Quantity {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Product %s has %d units in stock", product.SKU, product.Stock))
		}
		if err := order.AddItem(product.ID, product.SKU, product.Title, product.FinalPrice, line.Quantity, taxRate); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("number", order.Number),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.String()))
	return order, nil
}

// GetByID retrieves one order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// GetByNumber retrieves one order by its public number
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*ordering.Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, shared.NewDomainError("MISSING_NUMBER", "Order number is required")
	}
	return s.orders.FindByNumber(ctx, number)
}

// List returns an order page
func (s *OrderService) List(ctx context.Context, filter ordering.OrderFilter) (shared.Paginated[ordering.Order], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	return s.orders.FindAll(ctx, filter)
}

// UpdateStatus moves an order through its fulfillment states
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next ordering.Status) (*ordering.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(next); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order status updated",
		zap.String("number", order.Number),
		zap.String("status", string(order.Status)))
	return order, nil
}

// CountByStatus returns order counts for the admin dashboard
func (s *OrderService) CountByStatus(ctx context.Context) (map[ordering.Status]int64, error) {
	return s.orders.CountByStatus(ctx)
}

// newOrderNumber builds a sortable public order number
func newOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
