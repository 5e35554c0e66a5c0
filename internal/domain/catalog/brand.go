package catalog

import (
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// Brand is an admin-curated manufacturer entry used for storefront
// filtering and landing pages
type Brand struct {
	shared.BaseEntity
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug     string `gorm:"type:varchar(100);not null;index"`
	LogoURL  string `gorm:"type:varchar(500)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Brand) TableName() string {
	return "brands"
}

// NewBrand creates a brand
func NewBrand(name, slug string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("MISSING_NAME", "Brand name is required")
	}
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	}
	return &Brand{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		IsActive:   true,
	}, nil
}

// Update changes the brand's display data
func (b *Brand) Update(name, slug, logoURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("MISSING_NAME", "Brand name is required")
	}
	b.Name = name
	if slug != "" {
		b.Slug = slug
	}
	b.LogoURL = logoURL
	b.UpdatedAt = time.Now()
	return nil
}

// Activate shows the brand on the storefront
func (b *Brand) Activate() {
	b.IsActive = true
	b.UpdatedAt = time.Now()
}

// Deactivate hides the brand
func (b *Brand) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}
