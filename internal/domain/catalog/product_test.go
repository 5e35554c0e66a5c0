package catalog

import (
	"testing"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name       string
		code       supplier.Code
		externalID string
		sku        string
		title      string
		wantCode   string
	}{
		{name: "valid", code: supplier.CodeSyscom, externalID: "123", sku: "SKU-1", title: "Router"},
		{name: "invalid supplier", code: "mouser", externalID: "123", sku: "SKU-1", title: "Router", wantCode: "INVALID_SUPPLIER"},
		{name: "missing external id", code: supplier.CodeSyscom, externalID: "  ", sku: "SKU-1", title: "Router", wantCode: "MISSING_EXTERNAL_ID"},
		{name: "missing sku", code: supplier.CodeSyscom, externalID: "123", sku: "", title: "Router", wantCode: "MISSING_SKU"},
		{name: "missing title", code: supplier.CodeSyscom, externalID: "123", sku: "SKU-1", title: " ", wantCode: "MISSING_TITLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.code, tt.externalID, tt.sku, tt.title)
			if tt.wantCode != "" {
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.IsVisible)
			assert.False(t, p.IsFeatured)
			assert.NotEmpty(t, p.ID)
		})
	}
}

func TestProductSetPricing(t *testing.T) {
	p, err := NewProduct(supplier.CodeSyscom, "123", "SKU-1", "Router")
	require.NoError(t, err)

	t.Run("final price recomputed from markup", func(t *testing.T) {
		require.NoError(t, p.SetPricing(decimal.NewFromInt(100), decimal.NewFromInt(25)))
		assert.Equal(t, "125.00", p.FinalPrice.StringFixed(2))
	})

	t.Run("fractional markup rounds to cents", func(t *testing.T) {
		require.NoError(t, p.SetPricing(decimal.NewFromFloat(99.99), decimal.NewFromFloat(17.5)))
		// 99.99 * 1.175 = 117.48825
		assert.Equal(t, "117.49", p.FinalPrice.StringFixed(2))
	})

	t.Run("zero base price rejected", func(t *testing.T) {
		err := p.SetPricing(decimal.Zero, decimal.NewFromInt(25))
		assert.Error(t, err)
	})

	t.Run("negative markup rejected", func(t *testing.T) {
		err := p.SetPricing(decimal.NewFromInt(100), decimal.NewFromInt(-5))
		assert.Error(t, err)
	})
}

func TestProductMarkupOverride(t *testing.T) {
	p, err := NewProduct(supplier.CodeTecnosinergia, "A9", "SKU-9", "Camera")
	require.NoError(t, err)
	require.NoError(t, p.SetPricing(decimal.NewFromInt(200), decimal.NewFromInt(20)))

	require.NoError(t, p.SetMarkupOverride(decimal.NewFromInt(50)))
	require.NotNil(t, p.MarkupOverride)
	assert.Equal(t, "300.00", p.FinalPrice.StringFixed(2))

	p.ClearMarkupOverride(decimal.NewFromInt(20))
	assert.Nil(t, p.MarkupOverride)
	assert.Equal(t, "240.00", p.FinalPrice.StringFixed(2))
}

func TestProductStock(t *testing.T) {
	p, err := NewProduct(supplier.CodeSyscom, "1", "S", "T")
	require.NoError(t, err)

	assert.Error(t, p.SetStock(-1))
	require.NoError(t, p.SetStock(0))
	assert.False(t, p.InStock())
	require.NoError(t, p.SetStock(7))
	assert.True(t, p.InStock())
}

func TestBannerIsLive(t *testing.T) {
	b, err := NewBanner("Hot sale", "https://cdn.example.com/sale.png")
	require.NoError(t, err)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, b.IsLive(now))

	require.NoError(t, b.Schedule(&future, nil))
	assert.False(t, b.IsLive(now))

	require.NoError(t, b.Schedule(&past, &future))
	assert.True(t, b.IsLive(now))

	b.Deactivate()
	assert.False(t, b.IsLive(now))

	assert.Error(t, b.Schedule(&future, &past))
}
