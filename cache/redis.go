package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultRedisPrefix namespaces lingocache records in a shared Redis.
const defaultRedisPrefix = "lingocache:"

// RedisStore is a Redis-backed persistent store, for deployments that
// share one durable cache across devices instead of using local files.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	Retention time.Duration // Entry retention window (default 24h)
	KeyPrefix string        // Prefix for all keys (default: "lingocache:")
}

// NewRedisStore creates a Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.Retention, cfg.KeyPrefix, logger), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, retention time.Duration, keyPrefix string, logger *zap.Logger) *RedisStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if keyPrefix == "" {
		keyPrefix = defaultRedisPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:    client,
		retention: retention,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// SaveEntry stores the JSON-encoded entry with the retention window as
// the Redis TTL, so Redis expires records on its own.
func (s *RedisStore) SaveEntry(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureCorrupt, Cause: err}
	}
	ctx := context.Background()
	if err := s.client.Set(ctx, s.keyPrefix+entry.Key, data, s.retention).Err(); err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureIO, Cause: err}
	}
	return nil
}

// LoadEntry reads a single entry.
func (s *RedisStore) LoadEntry(key string) (Entry, error) {
	ctx := context.Background()
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureNotFound, Cause: err}
	}
	if err != nil {
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureIO, Cause: err}
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureCorrupt, Cause: err}
	}
	return entry, nil
}

// LoadAllValid scans the key prefix and returns every record that
// decodes and has not expired.
func (s *RedisStore) LoadAllValid() ([]Entry, error) {
	ctx := context.Background()
	var entries []Entry
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			s.logger.Debug("skipping corrupt cache record",
				zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		if entry.Expired(s.retention) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return entries, &StorageError{Op: "load_all", Kind: FailureIO, Cause: err}
	}
	return entries, nil
}

// DeleteAll removes every record under the key prefix.
func (s *RedisStore) DeleteAll() error {
	return s.deleteMatching(s.keyPrefix + "*")
}

// DeleteWherePrefix removes records whose key begins with prefix.
func (s *RedisStore) DeleteWherePrefix(prefix string) error {
	return s.deleteMatching(s.keyPrefix + prefix + "*")
}

func (s *RedisStore) deleteMatching(pattern string) error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("failed to delete cache record",
				zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		return &StorageError{Op: "delete", Key: pattern, Kind: FailureIO, Cause: err}
	}
	return nil
}

// DiskUsage sums the stored value lengths under the key prefix.
func (s *RedisStore) DiskUsage() int64 {
	ctx := context.Background()
	var total int64
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		total += n
	}
	return total
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ PersistentStore = (*RedisStore)(nil)
