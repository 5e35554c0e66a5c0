package sync

import (
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/google/uuid"
)

// Request describes one sync invocation. Selection and Filters are
// optional; when nil the configured selection and the default stock
// filter are used.
type Request struct {
	Source    supplier.Source
	Selection *supplier.CategorySelection
	Filters   *supplier.Filters
}

// RunReport is the per-supplier outcome of a sync invocation
type RunReport struct {
	RunID             uuid.UUID              `json:"run_id"`
	Supplier          supplier.Code          `json:"supplier"`
	Status            supplier.SyncStatus    `json:"status"`
	ProductsCollected int                    `json:"products_collected"`
	ProductsWithStock int                    `json:"products_with_stock"`
	ProductsSynced    int                    `json:"products_synced"`
	Errors            supplier.SyncErrorList `json:"errors"`
	Duration          time.Duration          `json:"duration_ns"`
}

// Summary aggregates one invocation across all targeted suppliers
type Summary struct {
	Source            supplier.Source     `json:"source"`
	Runs              []RunReport         `json:"runs"`
	ProductsCollected int                 `json:"products_collected"`
	ProductsWithStock int                 `json:"products_with_stock"`
	ProductsSynced    int                 `json:"products_synced"`
	Status            supplier.SyncStatus `json:"status"`
}

func newRunReport(run *supplier.SyncRun) RunReport {
	return RunReport{
		RunID:             run.ID,
		Supplier:          run.Supplier,
		Status:            run.Status,
		ProductsCollected: run.ProductsCollected,
		ProductsWithStock: run.ProductsWithStock,
		ProductsSynced:    run.ProductsSynced,
		Errors:            run.Errors,
		Duration:          run.Duration(),
	}
}
