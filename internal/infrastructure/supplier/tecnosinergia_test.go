package supplier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

func newTecnoFixture(t *testing.T, handler http.Handler) *TecnosinergiaAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &TecnosinergiaConfig{
		BaseURL:  server.URL,
		APIToken: "feed-token",
		Timeout:  5 * time.Second,
		PageSize: 2,
	}
	creds, err := NewStaticKeyProvider(config.APIToken)
	require.NoError(t, err)
	adapter, err := NewTecnosinergiaAdapter(config, creds, fastLimiter(), zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestTecnosinergiaFetchCategories(t *testing.T) {
	adapter := newTecnoFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/familias", r.URL.Path)
		assert.Equal(t, "feed-token", r.Header.Get("X-Api-Token"))
		w.Write([]byte(`[
			{"id":"F10","nombre":"Energía","padre":""},
			{"id":"F11","nombre":"UPS","padre":"F10"}
		]`))
	}))

	categories, err := adapter.FetchCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 0, categories[0].Level)
	assert.Equal(t, 1, categories[1].Level, "children sit one level down")
}

func TestTecnosinergiaPagination(t *testing.T) {
	adapter := newTecnoFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "F10", r.URL.Query().Get("familia"))
		assert.Equal(t, "2", r.URL.Query().Get("limite"))
		switch r.URL.Query().Get("desde") {
		case "0":
			w.Write([]byte(`{"total": 3, "productos": [
				{"clave":"T-1","modelo":"UPS-500","nombre":"No break 500VA","precio":980,"existencia":4},
				{"clave":"T-2","modelo":"UPS-800","nombre":"No break 800VA","precio":1350,"existencia":2}
			]}`))
		case "2":
			w.Write([]byte(`{"total": 3, "productos": [
				{"clave":"T-3","nombre":"Regulador","precio":450,"precio_oferta":399,"existencia":9,"familia_id":"F10","familia":"Energía"}
			]}`))
		default:
			t.Errorf("unexpected offset %s", r.URL.Query().Get("desde"))
		}
	}))

	first, err := adapter.FetchProductsPage(context.Background(), "F10", 1)
	require.NoError(t, err)
	assert.True(t, first.HasNext)
	require.Len(t, first.Products, 2)
	assert.Equal(t, domain.CodeTecnosinergia, first.Products[0].Source)
	assert.Equal(t, "UPS-500", first.Products[0].SKU)

	second, err := adapter.FetchProductsPage(context.Background(), "F10", 2)
	require.NoError(t, err)
	assert.False(t, second.HasNext)
	require.Len(t, second.Products, 1)

	last := second.Products[0]
	assert.Equal(t, "T-3", last.ExternalID)
	assert.Equal(t, "T-3", last.SKU, "clave backfills a missing model")
	assert.Equal(t, 399.0, last.SpecialPrice)
	require.Len(t, last.Categories, 1)
	assert.Equal(t, "F10", last.Categories[0].ID)
}

func TestTecnosinergiaConfigValidation(t *testing.T) {
	_, err := NewTecnosinergiaAdapter(&TecnosinergiaConfig{BaseURL: "https://x"}, nil, fastLimiter(), zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewStaticKeyProvider("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
