package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/ComunidadDecidida/mayoristas/internal/application/sync"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// SyncRunner is the sync pipeline entry point the scheduler drives
type SyncRunner interface {
	RunSync(ctx context.Context, req appsync.Request) (*appsync.Summary, error)
}

// Config holds the periodic sync configuration
type Config struct {
	Enabled bool
	// Interval is the gap between automatic full syncs
	Interval time.Duration
	// Source selects which suppliers each automatic run targets
	Source supplier.Source
	// RunOnStart fires the first sync immediately instead of waiting a
	// full interval after startup
	RunOnStart bool
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Interval: 6 * time.Hour,
		Source:   supplier.SourceAll,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if !c.Source.IsValid() {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler triggers full catalog syncs on a fixed interval. A run
// that is already in progress holds the per-supplier run lock, so an
// overlapping tick degrades to a logged no-op for that supplier.
type SyncScheduler struct {
	config Config
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config Config, runner SyncRunner, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}, nil
}

// Start starts the scheduler loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.String("source", string(s.config.Source)),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one sync cycle outside the regular interval
func (s *SyncScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	s.runOnce(ctx)
	return nil
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	started := time.Now()
	summary, err := s.runner.RunSync(ctx, appsync.Request{Source: s.config.Source})
	if err != nil {
		s.logger.Error("Scheduled sync failed to start", zap.Error(err))
		return
	}

	for _, run := range summary.Runs {
		for _, runErr := range run.Errors {
			if runErr.Message == supplier.ErrRunInProgress.Error() {
				s.logger.Warn("Scheduled sync skipped, run already in progress",
					zap.String("supplier", run.Supplier.String()),
				)
			}
		}
	}

	s.logger.Info("Scheduled sync finished",
		zap.String("status", string(summary.Status)),
		zap.Int("products_collected", summary.ProductsCollected),
		zap.Int("products_synced", summary.ProductsSynced),
		zap.Duration("elapsed", time.Since(started)),
	)
}
