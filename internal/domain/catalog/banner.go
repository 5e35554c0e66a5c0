package catalog

import (
	"strings"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// Banner is a storefront hero/promo banner managed from the admin panel
type Banner struct {
	shared.BaseEntity
	Title    string `gorm:"type:varchar(200);not null"`
	ImageURL string `gorm:"type:varchar(500);not null"`
	LinkURL  string `gorm:"type:varchar(500)"`
	Position int    `gorm:"not null;default:0"`
	IsActive bool   `gorm:"not null;default:true"`
	StartsAt *time.Time
	EndsAt   *time.Time
}

// TableName returns the table name for GORM
func (Banner) TableName() string {
	return "banners"
}

// NewBanner creates a banner
func NewBanner(title, imageURL string) (*Banner, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("MISSING_TITLE", "Banner title is required")
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, shared.NewDomainError("MISSING_IMAGE", "Banner image URL is required")
	}
	return &Banner{
		BaseEntity: shared.NewBaseEntity(),
		Title:      title,
		ImageURL:   imageURL,
		IsActive:   true,
	}, nil
}

// Update changes the banner contents
func (b *Banner) Update(title, imageURL, linkURL string, position int) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("MISSING_TITLE", "Banner title is required")
	}
	if strings.TrimSpace(imageURL) == "" {
		return shared.NewDomainError("MISSING_IMAGE", "Banner image URL is required")
	}
	b.Title = title
	b.ImageURL = imageURL
	b.LinkURL = linkURL
	b.Position = position
	b.UpdatedAt = time.Now()
	return nil
}

// Schedule sets the active display window. A nil bound means unbounded
// on that side.
func (b *Banner) Schedule(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Banner end time must be after start time")
	}
	b.StartsAt = startsAt
	b.EndsAt = endsAt
	b.UpdatedAt = time.Now()
	return nil
}

// Activate enables the banner
func (b *Banner) Activate() {
	b.IsActive = true
	b.UpdatedAt = time.Now()
}

// Deactivate disables the banner regardless of schedule
func (b *Banner) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}

// IsLive reports whether the banner should display at the given time
func (b *Banner) IsLive(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && now.After(*b.EndsAt) {
		return false
	}
	return true
}
