package lingocache

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ZaguanLabs/lingocache/cache"
	"github.com/ZaguanLabs/lingocache/offline"
)

// batchParallelism bounds concurrent requests in TranslateBatch.
const batchParallelism = 4

// Service is the translation source selector: it decides whether a
// request is served from memory, from the persisted cache, from an
// installed offline model, or from the remote provider, and it owns
// write-back into the cache tiers.
//
// A Service is safe for concurrent use. Construct one per application
// in the composition root and pass it to the translation engine; there
// is deliberately no shared global instance.
type Service struct {
	cfg        Config
	store      *cache.MemoryStore
	persist    cache.PersistentStore
	writer     *cache.Writer
	registry   *offline.Registry
	provider   Provider
	downloader Downloader
	stats      statsReporter
	logger     *zap.Logger
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithCacheDir sets the cache directory for the file backend and
// re-derives the paths nested under it (models directory, SQLite file).
// Apply WithModelsDir after this option to split the two apart.
func WithCacheDir(dir string) Option {
	return func(s *Service) {
		s.cfg.CacheDir = dir
		s.cfg.ModelsDir = filepath.Join(dir, "models")
		s.cfg.SQLitePath = filepath.Join(dir, "cache.db")
	}
}

// WithModelsDir sets the offline models directory.
func WithModelsDir(dir string) Option {
	return func(s *Service) {
		s.cfg.ModelsDir = dir
	}
}

// WithMaxCacheItems bounds the in-memory store.
func WithMaxCacheItems(n int) Option {
	return func(s *Service) {
		s.cfg.MaxCacheItems = n
	}
}

// WithOfflineMode enables or disables the offline-model fallback tier.
func WithOfflineMode(enabled bool) Option {
	return func(s *Service) {
		s.cfg.OfflineModeEnabled = enabled
	}
}

// WithRetention sets the entry retention window.
func WithRetention(window time.Duration) Option {
	return func(s *Service) {
		s.cfg.RetentionWindow = window
	}
}

// WithPersistentStore injects a persistent store, overriding the
// backend configuration.
func WithPersistentStore(store cache.PersistentStore) Option {
	return func(s *Service) {
		s.persist = store
	}
}

// WithDownloader sets the offline model downloader.
func WithDownloader(d Downloader) Option {
	return func(s *Service) {
		s.downloader = d
	}
}

// New creates a Service wrapping the given remote provider. A nil
// provider is allowed: requests then resolve from cache or offline
// models only.
//
// New bulk-loads the valid persisted entries into memory, so a restart
// starts warm.
func New(provider Provider, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:      DefaultConfig(),
		provider: provider,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cfg.ModelsDir == "" {
		s.cfg.ModelsDir = filepath.Join(s.cfg.CacheDir, "models")
	}

	s.store = cache.NewMemoryStore(s.cfg.MaxCacheItems, s.cfg.RetentionWindow)

	if s.persist == nil {
		persist, err := s.openBackend()
		if err != nil {
			return nil, err
		}
		s.persist = persist
	}

	registry, err := offline.NewRegistry(s.cfg.ModelsDir, s.logger)
	if err != nil {
		return nil, err
	}
	s.registry = registry

	entries, err := s.persist.LoadAllValid()
	if err != nil {
		// A unreadable persisted cache is a cold start, not a failure.
		s.logger.Warn("persisted cache load failed, starting cold", zap.Error(err))
	}
	for _, e := range entries {
		s.store.Put(e)
	}
	s.logger.Info("cache loaded",
		zap.Int("entries", len(entries)),
		zap.Int("max_items", s.cfg.MaxCacheItems))

	s.writer = cache.NewWriter(s.persist, s.logger)
	return s, nil
}

func (s *Service) openBackend() (cache.PersistentStore, error) {
	switch s.cfg.Backend {
	case BackendRedis:
		return cache.NewRedisStore(cache.RedisConfig{
			URL:       s.cfg.RedisURL,
			Retention: s.cfg.RetentionWindow,
		}, s.logger)
	case BackendSQLite:
		return cache.NewSQLiteStore(s.cfg.SQLitePath, s.cfg.RetentionWindow)
	default:
		return cache.NewFileStore(s.cfg.CacheDir, s.cfg.RetentionWindow, s.logger), nil
	}
}

// Translate resolves a translation request through the tiers: memory,
// disk, offline model (when enabled), then the remote provider. The
// computed result is written back through both cache tiers.
//
// Remote provider errors are propagated unchanged; retry policy belongs
// to the provider.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if cached, ok := s.GetCachedTranslation(text, sourceLang, targetLang); ok {
		return cached, nil
	}

	if s.cfg.OfflineModeEnabled && s.registry.IsInstalled(sourceLang, targetLang) {
		result, err := s.TranslateOffline(text, sourceLang, targetLang)
		if err == nil {
			s.CacheTranslation(text, result, sourceLang, targetLang)
			return result, nil
		}
		s.logger.Warn("offline translation failed, falling back to remote",
			zap.String("pair", offline.ModelID(sourceLang, targetLang)), zap.Error(err))
	}

	if s.provider == nil {
		return "", &NoProviderError{SourceLang: sourceLang, TargetLang: targetLang}
	}
	result, err := s.provider.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	s.CacheTranslation(text, result, sourceLang, targetLang)
	return result, nil
}

// TranslateBatch resolves several texts for the same language pair with
// bounded parallelism. Results are positionally aligned with texts; the
// first error cancels the remaining work.
func (s *Service) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	results := make([]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			result, err := s.Translate(ctx, text, sourceLang, targetLang)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetCachedTranslation returns a cached translation for the request, if
// one exists and has not expired. Memory is consulted first; a disk hit
// is promoted into memory so the next lookup skips disk.
func (s *Service) GetCachedTranslation(text, sourceLang, targetLang string) (string, bool) {
	key := DeriveKey(cache.KindTranslation, sourceLang, targetLang, text)

	if entry, ok := s.store.Get(key); ok && !entry.Expired(s.cfg.RetentionWindow) {
		s.stats.recordHit()
		return entry.Value, true
	}
	// Expired resident entries are left for lazy cleanup; removing
	// them here would put allocation on the hot path.

	entry, err := s.persist.LoadEntry(key)
	if err != nil {
		var storageErr *cache.StorageError
		if errors.As(err, &storageErr) && storageErr.Kind != cache.FailureNotFound {
			s.logger.Debug("disk cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.stats.recordMiss()
		return "", false
	}
	if entry.Expired(s.cfg.RetentionWindow) {
		s.stats.recordMiss()
		return "", false
	}

	s.store.Put(entry)
	s.stats.recordHit()
	return entry.Value, true
}

// CacheTranslation records a computed translation in the memory tier
// and schedules the write-through to the persistent tier.
func (s *Service) CacheTranslation(text, result, sourceLang, targetLang string) {
	entry := cache.Entry{
		Key:       DeriveKey(cache.KindTranslation, sourceLang, targetLang, text),
		Value:     result,
		CreatedAt: time.Now(),
		Kind:      cache.KindTranslation,
		Attributes: map[string]string{
			"source_language": sourceLang,
			"target_language": targetLang,
			"text_length":     strconv.Itoa(len(text)),
		},
	}
	s.store.Put(entry)
	s.writer.Enqueue(entry)
}

// IsOfflineAvailable reports whether an offline model is installed for
// the language pair.
func (s *Service) IsOfflineAvailable(sourceLang, targetLang string) bool {
	return s.registry.IsInstalled(sourceLang, targetLang)
}

// TranslateOffline translates using the installed offline model for the
// pair. Returns OfflineNotAvailableError when no model is installed.
func (s *Service) TranslateOffline(text, sourceLang, targetLang string) (string, error) {
	if !s.registry.IsInstalled(sourceLang, targetLang) {
		return "", &OfflineNotAvailableError{SourceLang: sourceLang, TargetLang: targetLang}
	}
	model, err := s.registry.Load(sourceLang, targetLang)
	if err != nil {
		return "", err
	}
	return model.Translate(text), nil
}

// DownloadLanguageModel acquires and installs the offline model for
// translating from the configured source language into language.
// Returns true when a model is installed after the call, including the
// already-installed case.
func (s *Service) DownloadLanguageModel(ctx context.Context, language string) (bool, error) {
	sourceLang := s.cfg.SourceLanguage
	if s.registry.IsInstalled(sourceLang, language) {
		return true, nil
	}
	if s.downloader == nil {
		return false, &offline.DownloadFailedError{
			Language: language,
			Cause:    errors.New("no model downloader configured"),
		}
	}
	model, payload, err := s.downloader.Fetch(ctx, sourceLang, language)
	if err != nil {
		return false, &offline.DownloadFailedError{Language: language, Cause: err}
	}
	if err := s.registry.Install(model, payload); err != nil {
		return false, err
	}
	return true, nil
}

// InstallModel installs an offline model directly from a payload,
// bypassing the downloader. Used for sideloading bundled models.
func (s *Service) InstallModel(model offline.Model, payload []byte) error {
	return s.registry.Install(model, payload)
}

// RemoveLanguageModel uninstalls the offline model for translating from
// the configured source language into language.
func (s *Service) RemoveLanguageModel(language string) error {
	return s.registry.Uninstall(s.cfg.SourceLanguage, language)
}

// InstalledLanguages lists target languages with an installed model.
func (s *Service) InstalledLanguages() []string {
	return s.registry.InstalledLanguages()
}

// ClearCache removes every cached entry from both tiers. Installed
// offline models are unaffected.
func (s *Service) ClearCache() {
	s.store.RemoveAll()
	if err := s.persist.DeleteAll(); err != nil {
		s.logger.Warn("persisted cache clear failed", zap.Error(err))
	}
}

// ClearCacheForLanguage removes cached entries whose target language is
// language, in both tiers. Keys carry the target language as a prefix,
// so this is a prefix delete.
func (s *Service) ClearCacheForLanguage(language string) {
	prefix := NormalizeLocale(language) + "_"
	s.store.RemoveWherePrefix(prefix)
	if err := s.persist.DeleteWherePrefix(prefix); err != nil {
		s.logger.Warn("persisted cache prefix clear failed",
			zap.String("prefix", prefix), zap.Error(err))
	}
}

// CleanExpired drops expired entries from the memory tier and returns
// how many were removed.
func (s *Service) CleanExpired() int {
	return s.store.CleanExpired()
}

// Statistics returns a point-in-time snapshot of cache health. It is
// diagnostic: the snapshot is consistent enough, not linearizable.
func (s *Service) Statistics() Statistics {
	valid, expired := s.store.Counts()
	return Statistics{
		ValidCount:   valid,
		ExpiredCount: expired,
		TotalCount:   valid + expired,
		HitRate:      s.stats.hitRate(),
		MemoryBytes:  s.store.MemoryBytes(),
		DiskBytes:    s.persist.DiskUsage(),
	}
}

// ExportCache writes the valid resident entries to a JSON file.
func (s *Service) ExportCache(path string, metadata map[string]string) error {
	return cache.ExportToFile(s.store, s.cfg.RetentionWindow, path, metadata)
}

// ImportCache loads entries from a JSON export file into the memory
// tier and write-through queue.
func (s *Service) ImportCache(path string) (*cache.ImportResult, error) {
	result, err := cache.ImportFromFile(s.store, s.cfg.RetentionWindow, path)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Entries {
		s.writer.Enqueue(e)
	}
	return result, nil
}

// Flush blocks until all pending write-through operations have been
// attempted.
func (s *Service) Flush() {
	s.writer.Flush()
}

// Close flushes pending writes and releases the persistent store.
func (s *Service) Close() error {
	s.writer.Close()
	return s.persist.Close()
}
