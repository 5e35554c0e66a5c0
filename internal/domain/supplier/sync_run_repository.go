package supplier

import (
	"context"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/google/uuid"
)

// SyncRunRepository persists sync run history
type SyncRunRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SyncRun, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[SyncRun], error)
	FindLatestBySupplier(ctx context.Context, code Code) (*SyncRun, error)
	Save(ctx context.Context, run *SyncRun) error
}
