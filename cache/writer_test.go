package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// flakyStore fails the first failCount SaveEntry calls, then succeeds.
type flakyStore struct {
	mu        sync.Mutex
	failCount int
	saves     int
	saved     map[string]Entry
}

func newFlakyStore(failCount int) *flakyStore {
	return &flakyStore{failCount: failCount, saved: make(map[string]Entry)}
}

func (f *flakyStore) SaveEntry(entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failCount > 0 {
		f.failCount--
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureIO, Cause: errors.New("disk full")}
	}
	f.saved[entry.Key] = entry
	return nil
}

func (f *flakyStore) LoadEntry(key string) (Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.saved[key]
	if !ok {
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureNotFound}
	}
	return entry, nil
}

func (f *flakyStore) LoadAllValid() ([]Entry, error) { return nil, nil }
func (f *flakyStore) DeleteAll() error               { return nil }
func (f *flakyStore) DeleteWherePrefix(string) error { return nil }
func (f *flakyStore) DiskUsage() int64               { return 0 }
func (f *flakyStore) Close() error                   { return nil }

func (f *flakyStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *flakyStore) saveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func TestWriter_WritesThrough(t *testing.T) {
	store := newFlakyStore(0)
	w := NewWriter(store, nil)

	w.Enqueue(testEntry("key1", "v1", 0))
	w.Enqueue(testEntry("key2", "v2", 0))
	w.Flush()

	if store.savedCount() != 2 {
		t.Errorf("saved %d entries, want 2", store.savedCount())
	}
	w.Close()
}

func TestWriter_RetriesOnce(t *testing.T) {
	store := newFlakyStore(1)
	w := NewWriter(store, nil)

	w.Enqueue(testEntry("key1", "v1", 0))
	w.Flush()
	w.Close()

	if store.savedCount() != 1 {
		t.Errorf("entry should persist after retry, saved %d", store.savedCount())
	}
	if store.saveCalls() != 2 {
		t.Errorf("save called %d times, want 2 (fail + retry)", store.saveCalls())
	}
}

func TestWriter_PersistentFailureIsLoggedNotFatal(t *testing.T) {
	store := newFlakyStore(1000)
	w := NewWriter(store, nil)

	w.Enqueue(testEntry("key1", "v1", 0))
	w.Flush()
	w.Close()

	if store.savedCount() != 0 {
		t.Errorf("nothing should persist, saved %d", store.savedCount())
	}
	// Exactly the attempt and its single retry.
	if store.saveCalls() != 2 {
		t.Errorf("save called %d times, want 2", store.saveCalls())
	}
}

func TestWriter_CloseFlushesQueue(t *testing.T) {
	store := newFlakyStore(0)
	w := NewWriter(store, nil)

	for i := 0; i < 50; i++ {
		w.Enqueue(testEntry("key", "v", time.Duration(i)))
	}
	w.Close()

	if store.savedCount() != 1 { // same key, 50 overwrites
		t.Errorf("saved %d distinct keys, want 1", store.savedCount())
	}
	if store.saveCalls() != 50 {
		t.Errorf("save called %d times, want 50", store.saveCalls())
	}
}

func TestWriter_CloseIsIdempotent(t *testing.T) {
	w := NewWriter(newFlakyStore(0), nil)
	w.Close()
	w.Close()
}

func TestWriter_EnqueueAndFlushAfterClose(t *testing.T) {
	store := newFlakyStore(0)
	w := NewWriter(store, nil)
	w.Enqueue(testEntry("key1", "value1", 0))
	w.Close()

	// Late writes are dropped, not a panic on the closed queue.
	w.Enqueue(testEntry("key2", "value2", 0))
	w.Flush()

	if got := store.savedCount(); got != 1 {
		t.Errorf("saved = %d, want 1 (post-close write must be dropped)", got)
	}
}
