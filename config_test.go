package lingocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaguanLabs/lingocache/cache"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxCacheItems != cache.DefaultMaxItems {
		t.Errorf("MaxCacheItems = %d, want %d", cfg.MaxCacheItems, cache.DefaultMaxItems)
	}
	if cfg.RetentionWindow != 24*time.Hour {
		t.Errorf("RetentionWindow = %s, want 24h", cfg.RetentionWindow)
	}
	if cfg.OfflineModeEnabled {
		t.Error("offline mode should default to disabled")
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want en", cfg.SourceLanguage)
	}
	if cfg.ModelsDir != filepath.Join(cfg.CacheDir, "models") {
		t.Errorf("ModelsDir = %q, want under CacheDir", cfg.ModelsDir)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lingocache.yaml")
	content := `
max_cache_items: 50
offline_mode_enabled: true
retention_window: 1h
cache_dir: /tmp/lingo-test
backend: sqlite
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxCacheItems != 50 {
		t.Errorf("MaxCacheItems = %d, want 50", cfg.MaxCacheItems)
	}
	if !cfg.OfflineModeEnabled {
		t.Error("OfflineModeEnabled should be true")
	}
	if cfg.RetentionWindow != time.Hour {
		t.Errorf("RetentionWindow = %s, want 1h", cfg.RetentionWindow)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	// Derived paths follow the configured cache dir
	if cfg.SQLitePath == "" {
		t.Error("SQLitePath should be derived when unset")
	}
	if cfg.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want default en", cfg.SourceLanguage)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative max items", "max_cache_items: -1"},
		{"unknown backend", "backend: memcached"},
		{"redis without url", "backend: redis"},
		{"bad yaml", ":\n:::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig should fail")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig should fail on a missing file")
	}
}
