// Package cache implements the two storage tiers behind the translation
// service: a bounded in-memory store and pluggable persistent stores
// (file, Redis, SQLite), plus the async write-through between them.
package cache

import "time"

// Kind classifies what a cache entry holds. Translation results are the
// common case; the other kinds share the store but carry their own key
// schemes.
type Kind string

const (
	KindTranslation      Kind = "translation"
	KindLanguageModel    Kind = "language_model"
	KindVoiceRecognition Kind = "voice_recognition"
	KindOther            Kind = "other"
)

// Entry is one cached record. Entries are immutable once stored; an
// update is a replacement under the same key.
type Entry struct {
	Key        string            `json:"key"`
	Value      string            `json:"value"`
	CreatedAt  time.Time         `json:"created_at"`
	Kind       Kind              `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Expired reports whether the entry's age exceeds the retention window.
func (e Entry) Expired(retention time.Duration) bool {
	return time.Since(e.CreatedAt) > retention
}

// approxBytes estimates the entry's in-memory footprint. Only payload
// strings are counted; struct overhead is noise at cache scale.
func (e Entry) approxBytes() int64 {
	n := int64(len(e.Key) + len(e.Value) + len(e.Kind))
	for k, v := range e.Attributes {
		n += int64(len(k) + len(v))
	}
	return n
}
