package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of products written per upsert statement
const DefaultBatchSize = 100

// BatchWriter persists normalized products in fixed-size chunks. A failed
// chunk is recorded on the run and the writer moves on to the next one;
// one bad batch never aborts the rest.
type BatchWriter struct {
	products  catalog.ProductRepository
	batchSize int
	pause     time.Duration
	logger    *zap.Logger
}

// NewBatchWriter creates a batch writer. A non-positive batchSize falls
// back to DefaultBatchSize; pause is the politeness gap between batches.
func NewBatchWriter(products catalog.ProductRepository, batchSize int, pause time.Duration, logger *zap.Logger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchWriter{
		products:  products,
		batchSize: batchSize,
		pause:     pause,
		logger:    logger,
	}
}

// WriteAll upserts the products in order and returns how many were
// written. Batch failures are appended to the run's error list keyed by
// batch index.
func (w *BatchWriter) WriteAll(ctx context.Context, products []*catalog.Product, run *supplier.SyncRun) int {
	written := 0
	total := (len(products) + w.batchSize - 1) / w.batchSize

	for i := 0; i < len(products); i += w.batchSize {
		end := min(i+w.batchSize, len(products))
		batchNo := i/w.batchSize + 1

		if err := ctx.Err(); err != nil {
			run.RecordError(fmt.Sprintf("batch %d/%d", batchNo, total), "run cancelled before write: "+err.Error())
			return written
		}

		result, err := w.products.UpsertBatch(ctx, products[i:end])
		if err != nil {
			w.logger.Warn("batch upsert failed",
				zap.String("supplier", run.Supplier.String()),
				zap.Int("batch", batchNo),
				zap.Int("size", end-i),
				zap.Error(err))
			run.RecordError(fmt.Sprintf("batch %d/%d", batchNo, total), err.Error())
			continue
		}
		written += result.Written

		if w.pause > 0 && end < len(products) {
			sleepCtx(ctx, w.pause)
		}
	}
	return written
}

// sleepCtx waits for d or until the context is done, whichever first
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
