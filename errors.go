package lingocache

import "fmt"

// ProviderError indicates a remote provider failure (API error, rate
// limit, network down, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// OfflineNotAvailableError indicates an offline translation was
// requested for a pair with no installed model. The caller is expected
// to fall back to the remote provider.
type OfflineNotAvailableError struct {
	SourceLang string
	TargetLang string
}

func (e *OfflineNotAvailableError) Error() string {
	return fmt.Sprintf("offline translation not available for %s->%s", e.SourceLang, e.TargetLang)
}

// NoProviderError indicates a translation could not be served from any
// tier and no remote provider is configured.
type NoProviderError struct {
	SourceLang string
	TargetLang string
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("no translation source for %s->%s: cache miss, no offline model, no remote provider", e.SourceLang, e.TargetLang)
}
