package supplier

import (
	"context"
	"errors"
)

// Errors returned by supplier gateways and the sync orchestrator
var (
	// ErrAuthFailed means the supplier rejected our credential. It is
	// fatal for the run: every subsequent call would fail the same way.
	ErrAuthFailed = errors.New("supplier: authentication rejected")

	// ErrRateLimited is the 429 throttling signal. Callers retry the
	// same page after a cooldown; it is not a run error by itself.
	ErrRateLimited = errors.New("supplier: rate limited by remote API")

	ErrUnknownSupplier = errors.New("supplier: unknown supplier code")
	ErrEmptySelection  = errors.New("supplier: category selection mode is 'selected' but the selection is empty")
	ErrRunInProgress   = errors.New("supplier: a sync run is already in progress for this supplier")
	ErrNoProgress      = errors.New("supplier: run made no progress")
)

// Gateway is the port one concrete supplier integration implements.
// Implementations gate every outbound request through a rate limiter and
// handle the supplier's own pagination scheme; callers only see pages.
type Gateway interface {
	// Supplier returns the code of the supplier this gateway talks to
	Supplier() Code

	// FetchCategories returns the supplier's category list. Single
	// call, no pagination.
	FetchCategories(ctx context.Context) ([]RawCategory, error)

	// FetchProductsPage returns one page of products for a category.
	// Pages are 1-based. A 429 from the remote API is absorbed by the
	// implementation (cooldown + retry of the same page) up to its
	// retry budget, after which ErrRateLimited is returned.
	FetchProductsPage(ctx context.Context, categoryID string, page int) (ProductPage, error)
}

// CredentialProvider supplies a valid API credential for one supplier.
// Implementations own caching and expiry-aware refresh; gateways just ask
// for a token before each request and never cache it themselves.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate discards any cached credential so the next Token call
	// fetches a fresh one
	Invalidate()
}

// RunLock serializes sync runs per supplier. TryAcquire returns false
// when another run currently holds the lock.
type RunLock interface {
	TryAcquire(ctx context.Context, code Code) (bool, error)
	Release(ctx context.Context, code Code) error
}
