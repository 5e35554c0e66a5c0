package supplier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

func TestOAuthProviderCachesToken(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "my-id", r.PostForm.Get("client_id"))
		w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(OAuthConfig{
		TokenURL:     server.URL,
		ClientID:     "my-id",
		ClientSecret: "my-secret",
	})
	require.NoError(t, err)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	token, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int32(1), calls.Load(), "second call must use the cache")
}

func TestOAuthProviderRefreshesNearExpiry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(OAuthConfig{
		TokenURL:     server.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)

	now := time.Now()
	provider.now = func() time.Time { return now }
	_, err = provider.Token(context.Background())
	require.NoError(t, err)

	// Just inside the renewal margin
	provider.now = func() time.Time { return now.Add(3600*time.Second - 30*time.Second) }
	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOAuthProviderInvalidate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(OAuthConfig{TokenURL: server.URL, ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)

	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	provider.Invalidate()
	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOAuthProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider, err := NewOAuthProvider(OAuthConfig{TokenURL: server.URL, ClientID: "id", ClientSecret: "bad"})
	require.NoError(t, err)

	_, err = provider.Token(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestOAuthConfigValidation(t *testing.T) {
	_, err := NewOAuthProvider(OAuthConfig{ClientSecret: "s"})
	assert.ErrorIs(t, err, ErrMissingClientID)

	_, err = NewOAuthProvider(OAuthConfig{ClientID: "i"})
	assert.ErrorIs(t, err, ErrMissingClientSecret)
}
