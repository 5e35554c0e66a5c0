package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/ordering"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds an order by its public number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("number = ?", number).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns an order page
func (r *GormOrderRepository) FindAll(ctx context.Context, filter ordering.OrderFilter) (shared.Paginated[ordering.Order], error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&ordering.Order{})
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.CustomerEmail != "" {
			query = query.Where("customer_email = ?", filter.CustomerEmail)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("number LIKE ? OR customer_name LIKE ?", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return shared.Paginated[ordering.Order]{}, err
	}

	var orders []ordering.Order
	query := applyOrdering(applyPagination(base().Preload("Items"), filter.Filter), filter.Filter, "created_at")
	if err := query.Find(&orders).Error; err != nil {
		return shared.Paginated[ordering.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// Save creates or updates an order with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

// CountByStatus returns order counts grouped by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[ordering.Status]int64, error) {
	var rows []struct {
		Status ordering.Status
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[ordering.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
