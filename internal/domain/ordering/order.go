// Package ordering models customer orders placed through the storefront.
// Payment capture happens at the gateway; this package only records which
// gateway was used and tracks fulfillment state.
package ordering

import (
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the fulfillment state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// canTransitionTo encodes the allowed status transitions
func (s Status) canTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// PaymentGateway tags which external gateway handled the payment
type PaymentGateway string

const (
	GatewayMercadoPago PaymentGateway = "mercadopago"
	GatewayStripe      PaymentGateway = "stripe"
	GatewayPayPal      PaymentGateway = "paypal"
)

// IsValid checks if the gateway is known
func (g PaymentGateway) IsValid() bool {
	switch g {
	case GatewayMercadoPago, GatewayStripe, GatewayPayPal:
		return true
	}
	return false
}

// Item is one order line, priced at order time
type Item struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	SKU       string          `gorm:"type:varchar(100);not null"`
	Title     string          `gorm:"type:varchar(300);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity  int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// LineTotal returns unit price times quantity
func (i *Item) LineTotal() valueobject.Money {
	return valueobject.NewMoneyMXN(i.UnitPrice).MultiplyByInt(int64(i.Quantity))
}

// Order is the aggregate root for a storefront purchase
type Order struct {
	shared.BaseEntity
	Number        string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerName  string          `gorm:"type:varchar(200);not null"`
	CustomerEmail string          `gorm:"type:varchar(200);not null;index"`
	Status        Status          `gorm:"type:varchar(20);not null;default:'pending'"`
	Gateway       PaymentGateway  `gorm:"type:varchar(20);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Items         []Item          `gorm:"foreignKey:OrderID"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order with no items yet
func NewOrder(number, customerName, customerEmail string, gateway PaymentGateway) (*Order, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("MISSING_NUMBER", "Order number is required")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("MISSING_CUSTOMER", "Customer name is required")
	}
	if !strings.Contains(customerEmail, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Customer email is invalid")
	}
	if !gateway.IsValid() {
		return nil, shared.NewDomainError("INVALID_GATEWAY", "Unknown payment gateway")
	}
	return &Order{
		BaseEntity:    shared.NewBaseEntity(),
		Number:        strings.ToUpper(strings.TrimSpace(number)),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Status:        StatusPending,
		Gateway:       gateway,
		Subtotal:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         decimal.Zero,
	}, nil
}

// AddItem appends a line and recomputes totals. Items can only be added
// while the order is pending.
func (o *Order) AddItem(productID uuid.UUID, sku, title string, unitPrice decimal.Decimal, quantity int, taxRate decimal.Decimal) error {
	if o.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	o.Items = append(o.Items, Item{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		ProductID:  productID,
		SKU:        sku,
		Title:      title,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
	})
	o.recalculate(taxRate)
	return nil
}

// recalculate recomputes subtotal, tax and total from the items
func (o *Order) recalculate(taxRate decimal.Decimal) {
	subtotal := valueobject.ZeroMXN()
	for i := range o.Items {
		subtotal = subtotal.MustAdd(o.Items[i].LineTotal())
	}
	tax := subtotal.CalculatePercentage(taxRate).Round(2)
	total := subtotal.MustAdd(tax)

	o.Subtotal = subtotal.Amount().Round(2)
	o.Tax = tax.Amount()
	o.Total = total.Amount().Round(2)
	o.UpdatedAt = time.Now()
}

// TransitionTo moves the order to the next fulfillment state
func (o *Order) TransitionTo(next Status) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.canTransitionTo(next) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Order cannot move from "+string(o.Status)+" to "+string(next))
	}
	o.Status = next
	if next == StatusPaid {
		now := time.Now()
		o.PaidAt = &now
	}
	o.UpdatedAt = time.Now()
	return nil
}
