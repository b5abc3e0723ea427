package lingocache

import (
	"context"

	"github.com/ZaguanLabs/lingocache/offline"
)

// Provider is the interface for remote translation backends. Retry
// policy belongs to the provider (or a wrapper around it), not to the
// cache service.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Downloader acquires offline model payloads for installation. The
// acquisition transport (CDN, bundled assets, etc.) is the
// implementation's business.
type Downloader interface {
	Fetch(ctx context.Context, sourceLang, targetLang string) (offline.Model, []byte, error)
}

// Statistics is a point-in-time snapshot of cache health. It is derived
// on demand and never persisted.
type Statistics struct {
	ValidCount   int     `json:"valid_count"`
	ExpiredCount int     `json:"expired_count"`
	TotalCount   int     `json:"total_count"`
	HitRate      float64 `json:"hit_rate"`
	MemoryBytes  int64   `json:"memory_bytes"`
	DiskBytes    int64   `json:"disk_bytes"`
}
