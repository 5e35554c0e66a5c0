package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/catalog"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config bounds one sync run
type Config struct {
	// RunTimeout caps the wall-clock time of one supplier run
	RunTimeout time.Duration
	// CategoryDelay is the politeness gap between categories, on top of
	// the per-request rate limiter
	CategoryDelay time.Duration
	// BatchSize and BatchPause govern the upsert writer
	BatchSize  int
	BatchPause time.Duration
	// MaxPagesPerCategory is the operator safety valve against runaway
	// pagination
	MaxPagesPerCategory int
	// MaxCategories caps how many categories one run walks; 0 means all
	MaxCategories int
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		RunTimeout:          10 * time.Minute,
		CategoryDelay:       2 * time.Second,
		BatchSize:           DefaultBatchSize,
		BatchPause:          100 * time.Millisecond,
		MaxPagesPerCategory: 50,
	}
}

// ConfigSource exposes the admin-managed settings the pipeline reads
type ConfigSource interface {
	MarkupMode(ctx context.Context) (settings.MarkupMode, error)
	GlobalMarkupPercent(ctx context.Context) (decimal.Decimal, error)
	CategorySelection(ctx context.Context, code supplier.Code) (supplier.CategorySelection, error)
}

// Service orchestrates sync runs: it resolves the category set, walks
// each category through the supplier gateway, filters and normalizes the
// collected records and writes them in batches. It never returns an
// error for per-unit failures; those end up on the run's error list.
type Service struct {
	gateways   map[supplier.Code]supplier.Gateway
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	runs       supplier.SyncRunRepository
	lock       supplier.RunLock
	config     ConfigSource
	cfg        Config
	logger     *zap.Logger
}

// NewService creates the sync orchestrator
func NewService(
	gateways map[supplier.Code]supplier.Gateway,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	runs supplier.SyncRunRepository,
	lock supplier.RunLock,
	config ConfigSource,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultConfig().RunTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Service{
		gateways:   gateways,
		products:   products,
		categories: categories,
		runs:       runs,
		lock:       lock,
		config:     config,
		cfg:        cfg,
		logger:     logger,
	}
}

// RunSync executes one sync invocation for the requested source. The
// returned summary always reflects whatever was attempted; an error is
// returned only for an invalid request.
func (s *Service) RunSync(ctx context.Context, req Request) (*Summary, error) {
	if !req.Source.IsValid() {
		return nil, fmt.Errorf("sync: invalid source %q", req.Source)
	}

	filters := supplier.DefaultFilters()
	if req.Filters != nil {
		filters = *req.Filters
	}

	summary := &Summary{Source: req.Source}
	for _, code := range req.Source.Codes() {
		gw, ok := s.gateways[code]
		if !ok {
			s.logger.Error("no gateway registered for supplier", zap.String("supplier", code.String()))
			continue
		}
		run := s.runOne(ctx, gw, req.Selection, filters)
		summary.Runs = append(summary.Runs, newRunReport(run))
		summary.ProductsCollected += run.ProductsCollected
		summary.ProductsWithStock += run.ProductsWithStock
		summary.ProductsSynced += run.ProductsSynced
	}

	summary.Status = supplier.SyncStatusError
	for _, r := range summary.Runs {
		if r.Status == supplier.SyncStatusSuccess {
			summary.Status = supplier.SyncStatusSuccess
			break
		}
	}
	return summary, nil
}

// runOne drives a full run against a single supplier. It always returns
// a terminal run; failures surface on the run, never as a panic or error.
func (s *Service) runOne(ctx context.Context, gw supplier.Gateway, sel *supplier.CategorySelection, filters supplier.Filters) (run *supplier.SyncRun) {
	code := gw.Supplier()
	selection := s.resolveSelection(ctx, code, sel)
	run = supplier.NewSyncRun(code, selection, filters)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sync run panicked", zap.String("supplier", code.String()), zap.Any("panic", r))
			run.Fail("internal", fmt.Sprintf("panic: %v", r))
			s.saveRun(run)
		}
	}()

	// Overlapping runs against the same supplier would interleave
	// upserts and corrupt the counters, so a second run fails fast.
	acquired, err := s.lock.TryAcquire(ctx, code)
	if err != nil {
		run.Fail("lock", err.Error())
		return run
	}
	if !acquired {
		run.Fail("lock", supplier.ErrRunInProgress.Error())
		return run
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), code); err != nil {
			s.logger.Warn("failed to release sync lock", zap.String("supplier", code.String()), zap.Error(err))
		}
	}()

	s.saveRun(run)
	s.logger.Info("sync run started",
		zap.String("supplier", code.String()),
		zap.String("selection", string(selection.Mode)),
		zap.Int("selected_categories", len(selection.IDs)))

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	categoryIDs, fatal := s.resolveCategories(runCtx, gw, selection, run)
	if fatal {
		s.saveRun(run)
		return run
	}

	raws := s.collect(runCtx, gw, categoryIDs, run)
	run.ProductsCollected = len(raws)

	if run.Status.IsTerminal() {
		// collect hit a fatal condition and already failed the run
		s.saveRun(run)
		return run
	}

	filtered := filterRecords(raws, filters)
	run.ProductsWithStock = len(filtered)

	markup := s.markupResolution(runCtx, code, filtered, run)

	normalized := make([]*catalog.Product, 0, len(filtered))
	for _, raw := range filtered {
		if p, ok := Normalize(raw, markup); ok {
			normalized = append(normalized, p)
		}
	}

	writer := NewBatchWriter(s.products, s.cfg.BatchSize, s.cfg.BatchPause, s.logger)
	run.ProductsSynced = writer.WriteAll(runCtx, normalized, run)

	run.Complete()
	s.saveRun(run)
	s.logger.Info("sync run finished",
		zap.String("supplier", code.String()),
		zap.String("status", string(run.Status)),
		zap.Int("collected", run.ProductsCollected),
		zap.Int("with_stock", run.ProductsWithStock),
		zap.Int("synced", run.ProductsSynced),
		zap.Int("errors", len(run.Errors)),
		zap.Duration("took", run.Duration()))
	return run
}

// resolveSelection prefers the explicit request selection, then the
// configured one, then "all"
func (s *Service) resolveSelection(ctx context.Context, code supplier.Code, sel *supplier.CategorySelection) supplier.CategorySelection {
	if sel != nil {
		return *sel
	}
	if s.config != nil {
		if configured, err := s.config.CategorySelection(ctx, code); err == nil && configured.Mode != "" {
			return configured
		}
	}
	return supplier.CategorySelection{Mode: supplier.SelectionAll}
}

// resolveCategories turns the selection into concrete category ids. The
// returned bool is true when the run was fatally failed here.
func (s *Service) resolveCategories(ctx context.Context, gw supplier.Gateway, selection supplier.CategorySelection, run *supplier.SyncRun) ([]string, bool) {
	var ids []string

	switch selection.Mode {
	case supplier.SelectionSelected:
		if len(selection.IDs) == 0 {
			run.Fail("categories", supplier.ErrEmptySelection.Error())
			return nil, true
		}
		ids = selection.IDs
	default:
		cats, err := gw.FetchCategories(ctx)
		if err != nil {
			run.Fail("categories", err.Error())
			return nil, true
		}
		s.mirrorCategories(ctx, gw.Supplier(), cats)
		for _, c := range cats {
			ids = append(ids, c.ExternalID)
		}
	}

	if s.cfg.MaxCategories > 0 && len(ids) > s.cfg.MaxCategories {
		s.logger.Warn("category list capped",
			zap.String("supplier", gw.Supplier().String()),
			zap.Int("resolved", len(ids)),
			zap.Int("cap", s.cfg.MaxCategories))
		ids = ids[:s.cfg.MaxCategories]
	}
	return ids, false
}

// mirrorCategories refreshes the local category mirror. Failures here
// are logged only; they never affect the product run.
func (s *Service) mirrorCategories(ctx context.Context, code supplier.Code, cats []supplier.RawCategory) {
	if s.categories == nil {
		return
	}
	mirror := make([]*catalog.Category, 0, len(cats))
	for _, c := range cats {
		entry, err := catalog.NewCategory(code, c.ExternalID, c.Name, catalog.Slugify(c.Name))
		if err != nil {
			continue
		}
		mirror = append(mirror, entry)
	}
	if err := s.categories.UpsertBatch(ctx, mirror); err != nil {
		s.logger.Warn("category mirror refresh failed", zap.String("supplier", code.String()), zap.Error(err))
	}
}

// collect pages through every category sequentially. Per-category fetch
// failures are scoped errors; an auth rejection fails the whole run.
func (s *Service) collect(ctx context.Context, gw supplier.Gateway, categoryIDs []string, run *supplier.SyncRun) []supplier.RawProduct {
	var raws []supplier.RawProduct

	for i, categoryID := range categoryIDs {
		if ctx.Err() != nil {
			run.RecordError("timeout", "run deadline reached, returning partial result")
			return raws
		}

		for page := 1; ; page++ {
			pg, err := gw.FetchProductsPage(ctx, categoryID, page)
			if err != nil {
				if errors.Is(err, supplier.ErrAuthFailed) {
					run.Fail(fmt.Sprintf("category %s page %d", categoryID, page), err.Error())
					return raws
				}
				if ctx.Err() != nil {
					run.RecordError("timeout", "run deadline reached, returning partial result")
					return raws
				}
				run.RecordError(fmt.Sprintf("category %s page %d", categoryID, page), err.Error())
				break
			}

			raws = append(raws, pg.Products...)
			if !pg.HasNext || len(pg.Products) == 0 {
				break
			}
			if s.cfg.MaxPagesPerCategory > 0 && page >= s.cfg.MaxPagesPerCategory {
				s.logger.Warn("page ceiling reached",
					zap.String("supplier", gw.Supplier().String()),
					zap.String("category", categoryID),
					zap.Int("pages", page))
				break
			}
		}

		if s.cfg.CategoryDelay > 0 && i < len(categoryIDs)-1 {
			sleepCtx(ctx, s.cfg.CategoryDelay)
		}
	}
	return raws
}

// filterRecords applies the stock and price filters. Records failing a
// filter are excluded entirely, not flagged.
func filterRecords(raws []supplier.RawProduct, filters supplier.Filters) []supplier.RawProduct {
	minStock := filters.MinStock
	if filters.OnlyWithStock && minStock < 1 {
		minStock = 1
	}

	out := make([]supplier.RawProduct, 0, len(raws))
	for _, raw := range raws {
		if filters.OnlyWithStock && raw.Stock < minStock {
			continue
		}
		price := raw.SpecialPrice
		if price <= 0 {
			price = raw.ListPrice
		}
		if filters.MinPrice != nil && price < *filters.MinPrice {
			continue
		}
		if filters.MaxPrice != nil && price > *filters.MaxPrice {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// markupResolution reads the pricing settings and, in personalized mode,
// bulk-loads the stored per-product overrides for the surviving records
func (s *Service) markupResolution(ctx context.Context, code supplier.Code, filtered []supplier.RawProduct, run *supplier.SyncRun) MarkupResolution {
	res := MarkupResolution{Mode: settings.MarkupGlobal, GlobalPercent: decimal.Zero}
	if s.config == nil {
		return res
	}

	if mode, err := s.config.MarkupMode(ctx); err == nil && mode.IsValid() {
		res.Mode = mode
	}
	if pct, err := s.config.GlobalMarkupPercent(ctx); err == nil {
		res.GlobalPercent = pct
	}

	if res.Mode != settings.MarkupPersonalized || len(filtered) == 0 {
		return res
	}

	ids := make([]string, 0, len(filtered))
	for _, raw := range filtered {
		if raw.ExternalID != "" {
			ids = append(ids, raw.ExternalID)
		}
	}
	overrides, err := s.products.MarkupOverrides(ctx, code, ids)
	if err != nil {
		run.RecordError("markup overrides", err.Error())
		return res
	}
	res.Overrides = overrides
	return res
}

func (s *Service) saveRun(run *supplier.SyncRun) {
	if s.runs == nil {
		return
	}
	// Runs are saved with a detached context so a terminal state still
	// lands after the run context expired.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Error("failed to persist sync run",
			zap.String("supplier", run.Supplier.String()),
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}
