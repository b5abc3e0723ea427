package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZaguanLabs/lingocache"
)

// scriptedProvider fails a fixed number of times before succeeding.
type scriptedProvider struct {
	failures  int
	err       error
	callCount int
}

func (p *scriptedProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	p.callCount++
	if p.callCount <= p.failures {
		return "", p.err
	}
	return "translated:" + text, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   100 * time.Millisecond,
	}
}

func TestRetryableProvider_Success(t *testing.T) {
	inner := &scriptedProvider{}
	p := NewRetryableProvider(inner, fastRetryConfig())

	result, err := p.Translate(context.Background(), "hello", "en", "es")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "translated:hello" {
		t.Errorf("Expected 'translated:hello', got %q", result)
	}
	if inner.callCount != 1 {
		t.Errorf("Expected 1 call, got %d", inner.callCount)
	}
}

func TestRetryableProvider_RetryableError(t *testing.T) {
	inner := &scriptedProvider{
		failures: 2,
		err:      &lingocache.ProviderError{Message: "rate limited", Retryable: true},
	}
	p := NewRetryableProvider(inner, fastRetryConfig())

	result, err := p.Translate(context.Background(), "hello", "en", "es")
	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}
	if result != "translated:hello" {
		t.Errorf("Expected 'translated:hello', got %q", result)
	}
	if inner.callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.callCount)
	}
}

func TestRetryableProvider_NonRetryableError(t *testing.T) {
	inner := &scriptedProvider{
		failures: 10,
		err:      &lingocache.ProviderError{Message: "invalid API key", Retryable: false},
	}
	p := NewRetryableProvider(inner, fastRetryConfig())

	_, err := p.Translate(context.Background(), "hello", "en", "es")
	if err == nil {
		t.Fatal("Expected error for non-retryable error")
	}

	// Should not retry non-retryable errors
	if inner.callCount != 1 {
		t.Errorf("Expected 1 call for non-retryable error, got %d", inner.callCount)
	}
}

func TestRetryableProvider_MaxRetriesExceeded(t *testing.T) {
	inner := &scriptedProvider{
		failures: 10,
		err:      &lingocache.ProviderError{Message: "rate limited", Retryable: true},
	}
	cfg := fastRetryConfig()
	cfg.MaxRetries = 2
	p := NewRetryableProvider(inner, cfg)

	_, err := p.Translate(context.Background(), "hello", "en", "es")
	if err == nil {
		t.Fatal("Expected error after max retries")
	}

	var provErr *lingocache.ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("Expected last ProviderError to surface, got: %v", err)
	}

	// Initial attempt + 2 retries = 3 calls
	if inner.callCount != 3 {
		t.Errorf("Expected 3 calls (1 + 2 retries), got %d", inner.callCount)
	}
}

func TestRetryableProvider_ContextCanceled(t *testing.T) {
	inner := &scriptedProvider{
		failures: 10,
		err:      &lingocache.ProviderError{Message: "rate limited", Retryable: true},
	}
	cfg := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second, // Long delay
		MaxDelay:   10 * time.Second,
	}
	p := NewRetryableProvider(inner, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := p.Translate(ctx, "hello", "en", "es")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}

	// Cancellation during the first backoff means exactly one attempt
	if inner.callCount != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", inner.callCount)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &lingocache.ProviderError{Message: "timeout", Retryable: true}, true},
		{"non-retryable provider error", &lingocache.ProviderError{Message: "bad key"}, false},
		{"wrapped provider error", &lingocache.ProviderError{Message: "503", Retryable: true, Cause: errors.New("io")}, true},
		{"plain error", errors.New("unknown"), false},
		{"context canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
