// Package settings holds the system configuration store: a small
// key-value table the admin panel edits and the sync pipeline reads.
package settings

import (
	"context"
	"strings"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// MarkupMode selects how the sync prices products
type MarkupMode string

const (
	// MarkupGlobal applies one flat percentage to every product
	MarkupGlobal MarkupMode = "global"
	// MarkupPersonalized prefers a stored per-product override and
	// falls back to the global percentage
	MarkupPersonalized MarkupMode = "personalized"
)

// IsValid checks if the mode is known
func (m MarkupMode) IsValid() bool {
	return m == MarkupGlobal || m == MarkupPersonalized
}

// Well-known configuration keys
const (
	KeyMarkupMode          = "markup_mode"
	KeyGlobalMarkupPercent = "global_markup_percentage"
	KeyExchangeRateMXNUSD  = "exchange_rate_mxn_usd"
	KeyIVARate             = "iva_rate"

	// Per-supplier keys are built with SupplierKey, e.g.
	// category_selection_mode.syscom, selected_categories.syscom
	KeyCategorySelectionMode = "category_selection_mode"
	KeySelectedCategories    = "selected_categories"
)

// SupplierKey scopes a base key to one supplier
func SupplierKey(base, supplierCode string) string {
	return base + "." + supplierCode
}

// Setting is one configuration entry
type Setting struct {
	shared.BaseEntity
	Key   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "system_config"
}

// NewSetting creates a configuration entry
func NewSetting(key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("MISSING_KEY", "Setting key is required")
	}
	return &Setting{
		BaseEntity: shared.NewBaseEntity(),
		Key:        key,
		Value:      value,
	}, nil
}

// Repository defines persistence for settings
type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	GetAll(ctx context.Context) ([]Setting, error)
	// Set upserts the value for a key
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
