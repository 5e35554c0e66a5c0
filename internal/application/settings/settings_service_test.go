package settings

import (
	"context"
	"testing"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/settings"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	values map[string]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{values: make(map[string]string)}
}

func (r *memoryRepo) Get(_ context.Context, key string) (*settings.Setting, error) {
	value, ok := r.values[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	setting, _ := settings.NewSetting(key, value)
	return setting, nil
}

func (r *memoryRepo) GetAll(_ context.Context) ([]settings.Setting, error) {
	var out []settings.Setting
	for k, v := range r.values {
		setting, _ := settings.NewSetting(k, v)
		out = append(out, *setting)
	}
	return out, nil
}

func (r *memoryRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	delete(r.values, key)
	return nil
}

func TestMarkupModeDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo())

	mode, err := svc.MarkupMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.MarkupGlobal, mode)
}

func TestSetMarkupMode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.SetMarkupMode(ctx, settings.MarkupPersonalized))
	mode, err := svc.MarkupMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.MarkupPersonalized, mode)

	assert.Error(t, svc.SetMarkupMode(ctx, "dynamic"))
}

func TestGlobalMarkupPercent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	pct, err := svc.GlobalMarkupPercent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20", pct.String(), "default when unset")

	require.NoError(t, svc.SetGlobalMarkupPercent(ctx, decimal.NewFromFloat(32.5)))
	pct, err = svc.GlobalMarkupPercent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "32.5", pct.String())

	assert.Error(t, svc.SetGlobalMarkupPercent(ctx, decimal.NewFromInt(-1)))
}

func TestCategorySelectionRoundTrip(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	t.Run("defaults to all", func(t *testing.T) {
		sel, err := svc.CategorySelection(ctx, supplier.CodeSyscom)
		require.NoError(t, err)
		assert.Equal(t, supplier.SelectionAll, sel.Mode)
		assert.Empty(t, sel.IDs)
	})

	t.Run("selected list round trips", func(t *testing.T) {
		in := supplier.CategorySelection{Mode: supplier.SelectionSelected, IDs: []string{"12", "34"}}
		require.NoError(t, svc.SetCategorySelection(ctx, supplier.CodeSyscom, in))

		out, err := svc.CategorySelection(ctx, supplier.CodeSyscom)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("per supplier isolation", func(t *testing.T) {
		out, err := svc.CategorySelection(ctx, supplier.CodeTecnosinergia)
		require.NoError(t, err)
		assert.Equal(t, supplier.SelectionAll, out.Mode)
	})

	t.Run("selected mode requires ids", func(t *testing.T) {
		err := svc.SetCategorySelection(ctx, supplier.CodeSyscom,
			supplier.CategorySelection{Mode: supplier.SelectionSelected})
		assert.Error(t, err)
	})

	t.Run("unknown supplier rejected", func(t *testing.T) {
		_, err := svc.CategorySelection(ctx, "mouser")
		assert.ErrorIs(t, err, supplier.ErrUnknownSupplier)
	})
}

func TestIVARateDefault(t *testing.T) {
	svc := NewService(newMemoryRepo())
	rate, err := svc.IVARate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "16", rate.String())
}

func TestExchangeRate(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	require.NoError(t, svc.SetExchangeRate(ctx, decimal.NewFromFloat(18.35)))
	rate, err := svc.ExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "18.35", rate.String())

	assert.Error(t, svc.SetExchangeRate(ctx, decimal.Zero))
}
