package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// Errors for credential acquisition
var (
	ErrMissingClientID     = errors.New("supplier: oauth client id is required")
	ErrMissingClientSecret = errors.New("supplier: oauth client secret is required")
	ErrMissingAPIKey       = errors.New("supplier: api key is required")
)

// tokenExpiryMargin renews the token before the server-side expiry so
// in-flight requests never carry a token about to lapse.
const tokenExpiryMargin = 60 * time.Second

// OAuthConfig holds the client-credentials settings for a supplier that
// issues short-lived bearer tokens
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Validate checks the OAuth configuration
func (c *OAuthConfig) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// tokenResponse is the supplier's token endpoint payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// OAuthProvider implements supplier.CredentialProvider with a cached
// client-credentials token. The token is fetched lazily and refreshed
// shortly before it expires.
type OAuthProvider struct {
	config     OAuthConfig
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewOAuthProvider creates a token provider for the given endpoint
func NewOAuthProvider(config OAuthConfig) (*OAuthProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OAuthProvider{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}, nil
}

// Token returns a valid bearer token, fetching a new one when the cache
// is empty or near expiry
func (p *OAuthProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiresAt.Add(-tokenExpiryMargin)) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.config.ClientID)
	form.Set("client_secret", p.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("supplier: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("supplier: token endpoint returned %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("supplier: malformed token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", domain.ErrAuthFailed
	}

	p.token = payload.AccessToken
	p.expiresAt = p.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return p.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one
func (p *OAuthProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.expiresAt = time.Time{}
}

// StaticKeyProvider implements supplier.CredentialProvider for suppliers
// that authenticate with a fixed API key
type StaticKeyProvider struct {
	key string
}

// NewStaticKeyProvider creates a provider around a fixed key
func NewStaticKeyProvider(key string) (*StaticKeyProvider, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	return &StaticKeyProvider{key: key}, nil
}

// Token returns the configured key
func (p *StaticKeyProvider) Token(context.Context) (string, error) {
	return p.key, nil
}

// Invalidate is a no-op; a static key cannot be refreshed
func (p *StaticKeyProvider) Invalidate() {}
