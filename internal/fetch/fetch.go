package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/readhacker/readhacker/internal/providers"
)

const (
	defaultAttempts    = 3
	defaultBackoffBase = 2 * time.Second
	defaultBackoffMax  = 10 * time.Second
)

// Client wraps a provider with bounded retry. Transient failures (rate
// limits, 5xx responses, network errors) are retried with capped
// exponential backoff; everything else fails the fetch immediately.
// Deterministic data-shape failures never reach this layer.
type Client struct {
	provider    providers.Provider
	attempts    uint64
	backoffBase time.Duration
	backoffMax  time.Duration
}

// New returns a retrying client with the default policy: three attempts,
// exponential backoff starting at 2s capped at 10s.
func New(provider providers.Provider) *Client {
	return NewWithBackoff(provider, defaultAttempts, defaultBackoffBase, defaultBackoffMax)
}

// NewWithBackoff returns a retrying client with an explicit policy.
func NewWithBackoff(provider providers.Provider, attempts uint64, base, cap time.Duration) *Client {
	if attempts == 0 {
		attempts = defaultAttempts
	}
	return &Client{
		provider:    provider,
		attempts:    attempts,
		backoffBase: base,
		backoffMax:  cap,
	}
}

// ExtractText calls the wrapped provider, retrying transient failures.
func (c *Client) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	backoff := retry.WithCappedDuration(c.backoffMax, retry.NewExponential(c.backoffBase))
	backoff = retry.WithMaxRetries(c.attempts-1, backoff)

	var output string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, callErr := c.provider.ExtractText(ctx, config)
		if callErr != nil {
			if IsTransient(callErr) {
				slog.Warn("Transient provider error, retrying", "model", config.Model, "err", callErr)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		output = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return output, nil
}

// IsTransient reports whether the error is worth retrying: rate limiting,
// server-side failures, and network-level errors. Client errors (4xx other
// than 429) and context cancellation are terminal.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *providers.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests ||
			statusErr.Code >= http.StatusInternalServerError
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
