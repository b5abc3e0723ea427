package cache

import "fmt"

// FailureKind classifies why a persistent store operation failed.
type FailureKind string

const (
	// FailureNotFound means the record does not exist. A normal miss.
	FailureNotFound FailureKind = "not_found"
	// FailureCorrupt means the record exists but could not be decoded.
	FailureCorrupt FailureKind = "corrupt"
	// FailureIO means the underlying storage could not be reached.
	FailureIO FailureKind = "io"
)

// StorageError is returned by PersistentStore implementations so that
// callers can classify failures. Every kind is recoverable: callers
// treat any storage error as a cache miss and the next successful
// write overwrites a corrupt record.
type StorageError struct {
	Op    string
	Key   string
	Kind  FailureKind
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s %q: %s: %v", e.Op, e.Key, e.Kind, e.Cause)
	}
	return fmt.Sprintf("storage %s %q: %s", e.Op, e.Key, e.Kind)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// PersistentStore is the durable tier behind MemoryStore. Implementations
// own their storage representation exclusively; no other component
// touches it directly.
//
// All failures must be reported as *StorageError. They are recoverable
// by contract: a load failure is a miss and a corrupt record heals on
// the next overwrite.
type PersistentStore interface {
	// SaveEntry persists an entry, overwriting any prior record under
	// the same key.
	SaveEntry(entry Entry) error

	// LoadEntry reads the entry stored under key. Missing or unreadable
	// records yield a *StorageError with the matching FailureKind.
	LoadEntry(key string) (Entry, error)

	// LoadAllValid enumerates every stored record, silently skipping
	// records that fail to decode or have expired, and returns the
	// valid subset. Consumed once at startup.
	LoadAllValid() ([]Entry, error)

	// DeleteAll removes every stored record.
	DeleteAll() error

	// DeleteWherePrefix removes records whose key begins with prefix.
	DeleteWherePrefix(prefix string) error

	// DiskUsage sums the stored record sizes in bytes. Returns 0 on any
	// enumeration failure; diagnostics never block normal operation.
	DiskUsage() int64

	// Close releases resources held by the store.
	Close() error
}
