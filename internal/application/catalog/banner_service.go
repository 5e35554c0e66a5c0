package catalog

import (
	"context"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/google/uuid"
)

// BannerService manages storefront banners
type BannerService struct {
	banners catalog.BannerRepository
}

// NewBannerService creates a banner service
func NewBannerService(banners catalog.BannerRepository) *BannerService {
	return &BannerService{banners: banners}
}

// Create adds a banner
func (s *BannerService) Create(ctx context.Context, title, imageURL, linkURL string, position int) (*catalog.Banner, error) {
	banner, err := catalog.NewBanner(title, imageURL)
	if err != nil {
		return nil, err
	}
	banner.LinkURL = linkURL
	banner.Position = position
	if err := s.banners.Save(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// GetByID retrieves one banner
func (s *BannerService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Banner, error) {
	return s.banners.FindByID(ctx, id)
}

// List returns a banner page
func (s *BannerService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Banner], error) {
	return s.banners.FindAll(ctx, filter)
}

// ListLive returns banners that should display right now, ordered by
// position
func (s *BannerService) ListLive(ctx context.Context) ([]catalog.Banner, error) {
	return s.banners.FindLive(ctx, time.Now())
}

// Update changes banner contents
func (s *BannerService) Update(ctx context.Context, id uuid.UUID, title, imageURL, linkURL string, position int) (*catalog.Banner, error) {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := banner.Update(title, imageURL, linkURL, position); err != nil {
		return nil, err
	}
	if err := s.banners.Save(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// Schedule sets the display window
func (s *BannerService) Schedule(ctx context.Context, id uuid.UUID, startsAt, endsAt *time.Time) (*catalog.Banner, error) {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := banner.Schedule(startsAt, endsAt); err != nil {
		return nil, err
	}
	if err := s.banners.Save(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// SetActive toggles the banner on or off
func (s *BannerService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalog.Banner, error) {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		banner.Activate()
	} else {
		banner.Deactivate()
	}
	if err := s.banners.Save(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

// Delete removes a banner
func (s *BannerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.banners.FindByID(ctx, id); err != nil {
		return err
	}
	return s.banners.Delete(ctx, id)
}
