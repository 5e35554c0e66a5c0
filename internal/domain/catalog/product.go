package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// ImageList is an ordered, jsonb-backed list of image URLs. The cover
// image is always first.
type ImageList []string

// Value implements driver.Valuer
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *ImageList) Scan(value any) error {
	return scanJSON(value, l)
}

// CategoryRef is a category reference carried on a product
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// CategoryRefList is a jsonb-backed list of category references
type CategoryRefList []CategoryRef

// Value implements driver.Valuer
func (l CategoryRefList) Value() (driver.Value, error) {
	if l == nil {
		l = CategoryRefList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *CategoryRefList) Scan(value any) error {
	return scanJSON(value, l)
}

func scanJSON(value, dest any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("cannot scan %T as json", value)
}

// Product is a storefront product sourced from a supplier catalog.
// It is the aggregate root for catalog operations.
//
// Ownership of fields is split: the sync pipeline owns everything it
// normalizes (prices, stock, images, categories, descriptions), while
// IsFeatured, IsVisible and MarkupOverride are admin-owned and must
// survive any sync untouched.
type Product struct {
	shared.BaseEntity
	Supplier      supplier.Code   `gorm:"type:varchar(20);not null;uniqueIndex:idx_products_supplier_external,priority:1"`
	ExternalID    string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_supplier_external,priority:2"`
	SKU           string          `gorm:"type:varchar(100);not null;index"`
	Title         string          `gorm:"type:varchar(300);not null"`
	Description   string          `gorm:"type:text"`
	Brand         string          `gorm:"type:varchar(100);index"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MarkupPercent decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	FinalPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stock         int             `gorm:"not null;default:0"`
	Images        ImageList       `gorm:"type:jsonb"`
	Categories    CategoryRefList `gorm:"type:jsonb"`

	// Admin-owned fields, never written by the sync upsert
	IsVisible      bool             `gorm:"not null;default:true"`
	IsFeatured     bool             `gorm:"not null;default:false"`
	MarkupOverride *decimal.Decimal `gorm:"type:decimal(9,4)"`

	SyncedAt time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product for a supplier record. The identity pair
// (supplier, external id) and the sku are mandatory.
func NewProduct(code supplier.Code, externalID, sku, title string) (*Product, error) {
	if !code.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Unknown supplier code")
	}
	externalID = strings.TrimSpace(externalID)
	sku = strings.TrimSpace(sku)
	if externalID == "" {
		return nil, shared.NewDomainError("MISSING_EXTERNAL_ID", "Product external id is required")
	}
	if sku == "" {
		return nil, shared.NewDomainError("MISSING_SKU", "Product SKU is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("MISSING_TITLE", "Product title is required")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Supplier:   code,
		ExternalID: externalID,
		SKU:        sku,
		Title:      title,
		Images:     ImageList{},
		Categories: CategoryRefList{},
		IsVisible:  true,
		SyncedAt:   time.Now(),
	}, nil
}

// SetPricing sets the base price and applies a markup percentage. The
// final price is always recomputed here, never carried over from a
// previous write.
func (p *Product) SetPricing(basePrice, markupPercent decimal.Decimal) error {
	if !basePrice.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Base price must be positive")
	}
	if markupPercent.IsNegative() {
		return shared.NewDomainError("INVALID_MARKUP", "Markup percentage cannot be negative")
	}
	p.BasePrice = basePrice
	p.MarkupPercent = markupPercent
	p.FinalPrice = computeFinalPrice(basePrice, markupPercent)
	p.UpdatedAt = time.Now()
	return nil
}

// computeFinalPrice applies finalPrice = basePrice * (1 + markup/100),
// rounded to cents
func computeFinalPrice(base, markupPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(markupPercent.Div(decimal.NewFromInt(100)))
	return base.Mul(factor).Round(2)
}

// SetStock sets the stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	return nil
}

// SetFeatured toggles the admin-curated featured flag
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
}

// SetVisibility toggles storefront visibility
func (p *Product) SetVisibility(visible bool) {
	p.IsVisible = visible
	p.UpdatedAt = time.Now()
}

// SetMarkupOverride stores a per-product markup percentage that replaces
// the global markup while the personalized pricing mode is active. The
// current final price is recomputed immediately.
func (p *Product) SetMarkupOverride(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return shared.NewDomainError("INVALID_MARKUP", "Markup percentage cannot be negative")
	}
	p.MarkupOverride = &percent
	p.MarkupPercent = percent
	p.FinalPrice = computeFinalPrice(p.BasePrice, percent)
	p.UpdatedAt = time.Now()
	return nil
}

// ClearMarkupOverride removes the per-product override and reprices with
// the given global markup
func (p *Product) ClearMarkupOverride(globalPercent decimal.Decimal) {
	p.MarkupOverride = nil
	p.MarkupPercent = globalPercent
	p.FinalPrice = computeFinalPrice(p.BasePrice, globalPercent)
	p.UpdatedAt = time.Now()
}

// InStock reports whether the product can be sold
func (p *Product) InStock() bool {
	return p.Stock > 0
}
