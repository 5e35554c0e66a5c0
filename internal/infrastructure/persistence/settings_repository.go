package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get reads one setting by key
func (r *GormSettingsRepository) Get(ctx context.Context, key string) (*settings.Setting, error) {
	var setting settings.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// GetAll returns every stored setting
func (r *GormSettingsRepository) GetAll(ctx context.Context) ([]settings.Setting, error) {
	var all []settings.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// Set upserts the value for a key
func (r *GormSettingsRepository) Set(ctx context.Context, key, value string) error {
	setting, err := settings.NewSetting(key, value)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}

// Delete removes a setting
func (r *GormSettingsRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Delete(&settings.Setting{}, "key = ?", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
