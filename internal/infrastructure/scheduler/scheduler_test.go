package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsync "github.com/ComunidadDecidida/mayoristas/internal/application/sync"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

type countingRunner struct {
	calls      atomic.Int32
	lastSource atomic.Value
}

func (r *countingRunner) RunSync(_ context.Context, req appsync.Request) (*appsync.Summary, error) {
	r.calls.Add(1)
	r.lastSource.Store(req.Source)
	return &appsync.Summary{Source: req.Source, Status: supplier.SyncStatusSuccess}, nil
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewSyncScheduler(Config{
		Enabled:  true,
		Interval: 10 * time.Millisecond,
		Source:   supplier.SourceAll,
	}, runner, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))

	assert.Equal(t, supplier.SourceAll, runner.lastSource.Load())
}

func TestSchedulerTriggerNow(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewSyncScheduler(Config{
		Enabled:  true,
		Interval: time.Hour,
		Source:   supplier.SourceSyscom,
	}, runner, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, s.TriggerNow(context.Background()), ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.TriggerNow(context.Background()))
	assert.Equal(t, int32(1), runner.calls.Load())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
}

func TestSchedulerRunOnStart(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewSyncScheduler(Config{
		Enabled:    true,
		Interval:   time.Hour,
		Source:     supplier.SourceAll,
		RunOnStart: true,
	}, runner, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return runner.calls.Load() == 1
	}, 2*time.Second, 5*time.Millisecond, "first run fires without waiting out the interval")

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
}

func TestSchedulerConfigValidation(t *testing.T) {
	_, err := NewSyncScheduler(Config{Interval: 0, Source: supplier.SourceAll}, &countingRunner{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSyncScheduler(Config{Interval: time.Minute, Source: "mouser"}, &countingRunner{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
