package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// GormBannerRepository implements catalog.BannerRepository using GORM
type GormBannerRepository struct {
	db *gorm.DB
}

// NewGormBannerRepository creates a new GormBannerRepository
func NewGormBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

// FindByID finds a banner by its ID
func (r *GormBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Banner, error) {
	var banner catalog.Banner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &banner, nil
}

// FindAll returns a banner page
func (r *GormBannerRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Banner], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&catalog.Banner{}).Count(&total).Error; err != nil {
		return shared.Paginated[catalog.Banner]{}, err
	}

	var banners []catalog.Banner
	query := applyOrdering(applyPagination(r.db.WithContext(ctx).Model(&catalog.Banner{}), filter), filter, "position")
	if err := query.Find(&banners).Error; err != nil {
		return shared.Paginated[catalog.Banner]{}, err
	}
	return shared.NewPaginated(banners, total, filter.Page, filter.PageSize), nil
}

// FindLive returns active banners inside their display window, ordered
// by position
func (r *GormBannerRepository) FindLive(ctx context.Context, now time.Time) ([]catalog.Banner, error) {
	var banners []catalog.Banner
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("position ASC").
		Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// Save creates or updates a banner
func (r *GormBannerRepository) Save(ctx context.Context, banner *catalog.Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

// Delete deletes a banner
func (r *GormBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Banner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.BannerRepository = (*GormBannerRepository)(nil)
