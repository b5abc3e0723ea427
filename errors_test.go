package lingocache

import (
	"errors"
	"strings"
	"testing"
)

func TestProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ProviderError{Message: "API call failed", Cause: cause, Retryable: true}

	if !strings.Contains(err.Error(), "API call failed") {
		t.Errorf("Error() = %q, missing message", err.Error())
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, missing cause", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestProviderError_NoCause(t *testing.T) {
	err := &ProviderError{Message: "rate limited"}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Error() = %q, missing message", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap should return nil without a cause")
	}
}

func TestOfflineNotAvailableError(t *testing.T) {
	err := &OfflineNotAvailableError{SourceLang: "en", TargetLang: "es"}
	if !strings.Contains(err.Error(), "en->es") {
		t.Errorf("Error() = %q, missing language pair", err.Error())
	}

	var target *OfflineNotAvailableError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match the typed error")
	}
}

func TestNoProviderError(t *testing.T) {
	err := &NoProviderError{SourceLang: "en", TargetLang: "de"}
	if !strings.Contains(err.Error(), "no remote provider") {
		t.Errorf("Error() = %q, missing explanation", err.Error())
	}
}
