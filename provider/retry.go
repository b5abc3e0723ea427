package provider

import (
	"context"
	"errors"
	"time"

	"github.com/ZaguanLabs/lingocache"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryableProvider wraps a Provider with exponential-backoff retry.
// Retry policy lives here rather than in the cache service, which
// propagates provider errors unchanged.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider creates a provider with retry logic.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
	}
}

// Translate implements Provider, retrying retryable failures.
func (p *RetryableProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		result, err := p.provider.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return "", err
		}

		// Don't sleep after the last attempt
		if attempt < p.config.MaxRetries {
			delay := p.config.BaseDelay * time.Duration(1<<attempt)
			if delay > p.config.MaxDelay {
				delay = p.config.MaxDelay
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return "", lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *lingocache.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	// Context errors and everything unclassified are not retryable.
	return false
}

var _ Provider = (*RetryableProvider)(nil)
