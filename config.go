package lingocache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/lingocache/cache"
)

// Backend selects the persistent store implementation.
type Backend string

const (
	// BackendFile stores one JSON record per key under CacheDir.
	BackendFile Backend = "file"
	// BackendRedis stores records in Redis under a key prefix.
	BackendRedis Backend = "redis"
	// BackendSQLite stores records in a single SQLite database file.
	BackendSQLite Backend = "sqlite"
)

// Config is the configuration surface of the cache service.
type Config struct {
	// MaxCacheItems bounds the in-memory store (default 1000).
	MaxCacheItems int `yaml:"max_cache_items"`

	// OfflineModeEnabled allows the selector to consult installed
	// offline models on a full cache miss.
	OfflineModeEnabled bool `yaml:"offline_mode_enabled"`

	// RetentionWindow is how long an entry stays valid (default 24h).
	RetentionWindow time.Duration `yaml:"retention_window"`

	// SourceLanguage is the default source language for model downloads
	// keyed by target language only (default "en").
	SourceLanguage string `yaml:"source_language"`

	// CacheDir holds the persisted cache records (file backend) and
	// anchors the default models directory.
	CacheDir string `yaml:"cache_dir"`

	// ModelsDir holds offline model payloads and the install manifest.
	// Defaults to <CacheDir>/models.
	ModelsDir string `yaml:"models_dir"`

	// Backend selects the persistence implementation (default "file").
	Backend Backend `yaml:"backend"`

	// RedisURL configures the Redis backend.
	RedisURL string `yaml:"redis_url"`

	// SQLitePath configures the SQLite backend. Defaults to
	// <CacheDir>/cache.db.
	SQLitePath string `yaml:"sqlite_path"`
}

// DefaultConfig returns the configuration used when no options or file
// override it.
func DefaultConfig() Config {
	dir := defaultCacheDir()
	return Config{
		MaxCacheItems:   cache.DefaultMaxItems,
		RetentionWindow: cache.DefaultRetention,
		SourceLanguage:  "en",
		CacheDir:        dir,
		ModelsDir:       filepath.Join(dir, "models"),
		Backend:         BackendFile,
		SQLitePath:      filepath.Join(dir, "cache.db"),
	}
}

// LoadConfig reads a YAML config file and merges it over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = filepath.Join(cfg.CacheDir, "models")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.CacheDir, "cache.db")
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxCacheItems < 0 {
		return fmt.Errorf("max_cache_items must not be negative, got %d", c.MaxCacheItems)
	}
	if c.RetentionWindow < 0 {
		return fmt.Errorf("retention_window must not be negative, got %s", c.RetentionWindow)
	}
	switch c.Backend {
	case "", BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendRedis && c.RedisURL == "" {
		return fmt.Errorf("redis backend requires redis_url")
	}
	return nil
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "lingocache")
	}
	return filepath.Join(".", "lingocache")
}
