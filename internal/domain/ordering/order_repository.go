package ordering

import (
	"context"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter extends the base filter with order criteria
type OrderFilter struct {
	shared.Filter
	Status        *Status
	CustomerEmail string
}

// OrderRepository defines persistence for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) (shared.Paginated[Order], error)
	Save(ctx context.Context, order *Order) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
