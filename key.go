package lingocache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ZaguanLabs/lingocache/cache"
)

// DeriveKey generates the cache key for a translation request.
//
// The key is the normalized target language code followed by the
// SHA-256 hex digest of "sourceLang_targetLang_text". The digest keeps
// keys fixed-length, filesystem-safe, and collision-resistant; the
// language prefix is what makes language-scoped clears a prefix delete
// instead of a full scan. Language codes are locale-normalized so
// "pt-BR" and "pt_BR" address the same entries; text is hashed
// case-sensitively and untrimmed.
func DeriveKey(kind cache.Kind, sourceLang, targetLang, text string) string {
	switch kind {
	case cache.KindLanguageModel:
		return ModelKey(targetLang)
	case cache.KindVoiceRecognition:
		return VoiceKey(text)
	}
	src := NormalizeLocale(sourceLang)
	tgt := NormalizeLocale(targetLang)
	sum := sha256.Sum256([]byte(src + "_" + tgt + "_" + text))
	return tgt + "_" + hex.EncodeToString(sum[:])
}

// ModelKey generates the cache key for an offline model entry.
// Models are looked up by exact language code, not by content hash.
func ModelKey(languageCode string) string {
	return "model_" + languageCode
}

// VoiceKey generates the cache key for a voice recognition entry from
// the hash of the audio content.
func VoiceKey(audioContentHash string) string {
	return "voice_" + audioContentHash
}

// HashText computes the SHA-256 hex digest of a text payload. Used for
// audio content hashes and anywhere a raw fingerprint is needed.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
