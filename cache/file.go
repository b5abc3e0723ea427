package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// loadParallelism bounds how many record files are decoded at once
// during the startup bulk load.
const loadParallelism = 8

// FileStore persists entries as one JSON file per key, named by the
// key, under a dedicated cache directory.
type FileStore struct {
	dir       string
	retention time.Duration
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir. The directory is
// created on first write if it does not exist.
func NewFileStore(dir string, retention time.Duration, logger *zap.Logger) *FileStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, retention: retention, logger: logger}
}

// Dir exposes the cache directory path.
func (s *FileStore) Dir() string {
	return s.dir
}

// SaveEntry writes the entry to disk, last write wins.
func (s *FileStore) SaveEntry(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureIO, Cause: err}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureCorrupt, Cause: err}
	}
	if err := os.WriteFile(s.pathFor(entry.Key), data, 0o644); err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureIO, Cause: err}
	}
	return nil
}

// LoadEntry reads a single entry from disk.
func (s *FileStore) LoadEntry(key string) (Entry, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureNotFound, Cause: err}
		}
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureIO, Cause: err}
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("discarding corrupt cache record",
			zap.String("key", key), zap.Error(err))
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureCorrupt, Cause: err}
	}
	return entry, nil
}

// LoadAllValid decodes every record under the cache directory and
// returns those that parse and have not expired. Corrupt and expired
// records are skipped, not deleted; they heal by overwrite or fall to
// a later clear.
func (s *FileStore) LoadAllValid() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "load_all", Kind: FailureIO, Cause: err}
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)
	g := new(errgroup.Group)
	g.SetLimit(loadParallelism)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		name := f.Name()
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(s.dir, name))
			if err != nil {
				return nil
			}
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				s.logger.Debug("skipping corrupt cache record",
					zap.String("file", name), zap.Error(err))
				return nil
			}
			if entry.Expired(s.retention) {
				return nil
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return entries, nil
}

// DeleteAll removes every record file in the cache directory.
// Subdirectories are left alone: the default layout nests the offline
// models directory under the cache directory, and clearing the cache
// must not uninstall models.
func (s *FileStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "delete_all", Kind: FailureIO, Cause: err}
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			s.logger.Warn("failed to remove cache record",
				zap.String("file", f.Name()), zap.Error(err))
		}
	}
	return nil
}

// DeleteWherePrefix removes record files whose key begins with prefix.
func (s *FileStore) DeleteWherePrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "delete_prefix", Key: prefix, Kind: FailureIO, Cause: err}
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasPrefix(f.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			s.logger.Warn("failed to remove cache record",
				zap.String("file", f.Name()), zap.Error(err))
		}
	}
	return nil
}

// DiskUsage sums the record file sizes under the cache directory.
func (s *FileStore) DiskUsage() int64 {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

// Close is a no-op; the file store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.dir, key+".json")
}

var _ PersistentStore = (*FileStore)(nil)
