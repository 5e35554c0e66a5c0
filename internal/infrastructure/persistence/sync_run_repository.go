package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// GormSyncRunRepository implements supplier.SyncRunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// FindByID finds a sync run by its ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.SyncRun, error) {
	var run supplier.SyncRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAll returns the run history, newest first by default
func (r *GormSyncRunRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[supplier.SyncRun], error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&supplier.SyncRun{})
		for key, value := range filter.Filters {
			switch key {
			case "supplier":
				query = query.Where("supplier = ?", value)
			case "status":
				query = query.Where("status = ?", value)
			}
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return shared.Paginated[supplier.SyncRun]{}, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "started_at"
		filter.OrderDir = "desc"
	}
	var runs []supplier.SyncRun
	query := applyOrdering(applyPagination(base(), filter), filter, "started_at")
	if err := query.Find(&runs).Error; err != nil {
		return shared.Paginated[supplier.SyncRun]{}, err
	}
	return shared.NewPaginated(runs, total, filter.Page, filter.PageSize), nil
}

// FindLatestBySupplier returns the most recent run for a supplier
func (r *GormSyncRunRepository) FindLatestBySupplier(ctx context.Context, code supplier.Code) (*supplier.SyncRun, error) {
	var run supplier.SyncRun
	if err := r.db.WithContext(ctx).
		Where("supplier = ?", code).
		Order("started_at DESC").
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// Save creates or updates a sync run
func (r *GormSyncRunRepository) Save(ctx context.Context, run *supplier.SyncRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

var _ supplier.SyncRunRepository = (*GormSyncRunRepository)(nil)
