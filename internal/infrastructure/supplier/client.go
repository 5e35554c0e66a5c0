package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	domain "github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// maxResponseSize caps supplier API responses at 10MB
const maxResponseSize = 10 * 1024 * 1024

// rateLimitCooldown is how long to back off after a 429 before retrying
// the same request. Slightly above the quota window so the budget has
// fully reset.
const rateLimitCooldown = 65 * time.Second

// maxRateLimitRetries bounds how many cooldown cycles a single request
// may go through before giving up.
const maxRateLimitRetries = 2

// authorize decorates a request with supplier-specific auth headers
type authorize func(req *http.Request, token string)

// apiClient wraps the shared request plumbing of the supplier adapters:
// the rate limiter gate, bearer/key injection, the 429 cooldown cycle
// and JSON decoding.
type apiClient struct {
	httpClient *http.Client
	limiter    *RateLimiter
	creds      domain.CredentialProvider
	authorize  authorize
	logger     *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func newAPIClient(httpClient *http.Client, limiter *RateLimiter, creds domain.CredentialProvider, auth authorize, logger *zap.Logger) *apiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &apiClient{
		httpClient: httpClient,
		limiter:    limiter,
		creds:      creds,
		authorize:  auth,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// getJSON issues a rate-limited GET and decodes the response into out.
// A 429 triggers a cooldown and a retry of the same URL. A 401 or 403
// invalidates the cached credentials and reports ErrAuthFailed. Any
// other non-2xx status is returned as a plain error.
func (c *apiClient) getJSON(ctx context.Context, url string, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.WaitForSlot(ctx); err != nil {
			return err
		}

		token, err := c.creds.Token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		c.authorize(req, token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("supplier: request failed: %w", err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= maxRateLimitRetries {
				return fmt.Errorf("%w: retries exhausted", domain.ErrRateLimited)
			}
			c.logger.Warn("supplier rate limit hit, cooling down",
				zap.String("url", url),
				zap.Duration("cooldown", rateLimitCooldown))
			if err := c.sleep(ctx, rateLimitCooldown); err != nil {
				return err
			}
			continue

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			c.creds.Invalidate()
			return domain.ErrAuthFailed

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("supplier: unexpected status %d from %s", resp.StatusCode, url)
		}

		if readErr != nil {
			return readErr
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("supplier: malformed response from %s: %w", url, err)
		}
		return nil
	}
}
