package cache

import (
	"sync"

	"go.uber.org/zap"
)

// defaultWriterQueue is the write-through queue depth. Enqueue blocks
// when the queue is full rather than dropping a write.
const defaultWriterQueue = 256

type writeOp struct {
	entry   Entry
	barrier chan struct{} // non-nil for flush markers, entry unused
}

// Writer drains cache inserts into a PersistentStore on a dedicated
// goroutine, so a slow disk write never blocks a memory-tier hit.
//
// Writes are fire-and-forget from the caller's perspective but never
// silently dropped: a failed write is retried once and then logged,
// and Close flushes the queue before returning so every accepted write
// is attempted before the next startup load.
type Writer struct {
	store  PersistentStore
	logger *zap.Logger
	ops    chan writeOp

	// mu orders Enqueue/Flush sends against Close: senders hold the
	// read side, Close flips closed under the write side before
	// closing the channel, so nothing can send on a closed channel.
	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewWriter starts a write-through writer in front of store.
func NewWriter(store PersistentStore, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{
		store:  store,
		logger: logger,
		ops:    make(chan writeOp, defaultWriterQueue),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules an entry for persistence. Blocks only when the
// queue is full. After Close the write is dropped with a log instead
// of panicking on the closed queue.
func (w *Writer) Enqueue(entry Entry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("write-through enqueue after close, dropping",
			zap.String("key", entry.Key))
		return
	}
	w.ops <- writeOp{entry: entry}
}

// Flush blocks until every write enqueued before the call has been
// attempted. After Close it returns immediately; Close already drained
// the queue.
func (w *Writer) Flush() {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return
	}
	barrier := make(chan struct{})
	w.ops <- writeOp{barrier: barrier}
	w.mu.RUnlock()
	<-barrier
}

// Close flushes the queue and stops the writer. The underlying store
// is not closed; its lifecycle belongs to the owner.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.ops)
		<-w.done
	})
}

func (w *Writer) run() {
	defer close(w.done)
	for op := range w.ops {
		if op.barrier != nil {
			close(op.barrier)
			continue
		}
		if err := w.store.SaveEntry(op.entry); err != nil {
			// One retry covers transient I/O hiccups; a persistent
			// failure is logged and the entry survives only in memory.
			if err := w.store.SaveEntry(op.entry); err != nil {
				w.logger.Error("write-through failed",
					zap.String("key", op.entry.Key), zap.Error(err))
			}
		}
	}
}
