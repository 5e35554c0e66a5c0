package catalog

import (
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// Category is a supplier catalog category mirrored locally so operators
// can pick which ones to sync and the storefront can render navigation
type Category struct {
	shared.BaseEntity
	Supplier   supplier.Code `gorm:"type:varchar(20);not null;uniqueIndex:idx_categories_supplier_external,priority:1"`
	ExternalID string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_categories_supplier_external,priority:2"`
	Name       string        `gorm:"type:varchar(200);not null"`
	Slug       string        `gorm:"type:varchar(200);not null;index"`
	Level      int           `gorm:"not null;default:0"`
	IsActive   bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category mirror entry
func NewCategory(code supplier.Code, externalID, name, slug string) (*Category, error) {
	if !code.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Unknown supplier code")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewDomainError("MISSING_EXTERNAL_ID", "Category external id is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("MISSING_NAME", "Category name is required")
	}
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Supplier:   code,
		ExternalID: strings.TrimSpace(externalID),
		Name:       name,
		Slug:       slug,
		IsActive:   true,
	}, nil
}

// Rename updates the category name after a sync detected a change
func (c *Category) Rename(name, slug string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("MISSING_NAME", "Category name is required")
	}
	c.Name = name
	if slug != "" {
		c.Slug = slug
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Activate enables the category for syncing and display
func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
}

// Deactivate hides the category and excludes it from "all" syncs
func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
}
