// Package offline tracks installed offline rule-models and performs
// word-substitution fallback translation when no network is available.
package offline

import (
	"strings"
	"unicode"
)

// Model is an installed offline rule-model for one language pair.
type Model struct {
	ID             string            `json:"id"`
	SourceLanguage string            `json:"source_language"`
	TargetLanguage string            `json:"target_language"`
	Version        string            `json:"version"`
	SizeBytes      int64             `json:"size_bytes"`
	Rules          map[string]string `json:"rules"`
	Confidence     float64           `json:"confidence"`
}

// ModelID derives the canonical model identifier for a language pair.
// Exactly one model may be installed per pair at a time. Language codes
// are normalized to the underscore locale form ("pt-BR" -> "pt_BR") so
// the "-" separating the pair stays unambiguous for ParseModelID.
func ModelID(sourceLang, targetLang string) string {
	return normalizeLangCode(sourceLang) + "-" + normalizeLangCode(targetLang)
}

// normalizeLangCode converts a locale code to its underscore form, the
// same canonical form the cache keys use.
func normalizeLangCode(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ParseModelID splits a model identifier back into its language pair.
// Returns ok=false for malformed ids.
func ParseModelID(id string) (sourceLang, targetLang string, ok bool) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Translate performs best-effort word substitution: tokens are split on
// whitespace, lowercased and stripped of punctuation for the rule
// lookup, and tokens with no matching rule pass through unchanged. The
// result is re-joined with single spaces.
//
// This is a fallback, not grammatical translation; it trades quality
// for working with no network at all.
func (m *Model) Translate(text string) string {
	tokens := strings.Fields(text)
	out := make([]string, len(tokens))
	for i, token := range tokens {
		lookup := normalizeToken(token)
		if translated, ok := m.Rules[lookup]; ok {
			out[i] = translated
		} else {
			out[i] = token
		}
	}
	return strings.Join(out, " ")
}

// normalizeToken lowercases a token and strips punctuation for rule
// lookup. A punctuation-only token normalizes to the empty string and
// therefore never matches a rule.
func normalizeToken(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
