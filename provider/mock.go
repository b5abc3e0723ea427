package provider

import (
	"context"
	"fmt"

	"github.com/ZaguanLabs/lingocache/offline"
)

// MockProvider is a mock remote provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Translate was called
	Err          error             // If set, Translate fails with this error
}

// NewMockProvider creates a mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
			"Good night":  "Buenas noches",
		},
	}
}

// Translate returns mock translations. Unknown texts come back
// bracketed so tests can tell a mock result from a cached one.
func (m *MockProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	m.CallCount++
	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", text), nil
}

// Reset resets the call count.
func (m *MockProvider) Reset() {
	m.CallCount = 0
}

// MockDownloader is a mock model downloader for testing.
type MockDownloader struct {
	Models    map[string]offline.Model // keyed by model id
	Payloads  map[string][]byte        // keyed by model id
	CallCount int
	Err       error
}

// Fetch returns the prepared model for the pair, or Err.
func (m *MockDownloader) Fetch(_ context.Context, sourceLang, targetLang string) (offline.Model, []byte, error) {
	m.CallCount++
	if m.Err != nil {
		return offline.Model{}, nil, m.Err
	}
	id := offline.ModelID(sourceLang, targetLang)
	model, ok := m.Models[id]
	if !ok {
		return offline.Model{}, nil, fmt.Errorf("no mock model for %s", id)
	}
	return model, m.Payloads[id], nil
}

// Verify the mocks implement the collaborator interfaces.
var (
	_ Provider   = (*MockProvider)(nil)
	_ Downloader = (*MockDownloader)(nil)
)
