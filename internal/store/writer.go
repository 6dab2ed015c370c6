// ABOUTME: Asynchronous, coalescing bucket writer used by the state services
// ABOUTME: Serializes background writes so the newest snapshot always wins

package store

import (
	"context"
	"log/slog"
	"sync"
)

// Writer performs fire-and-forget writes of one bucket on behalf of a state
// service. Snapshots are coalesced: if writes fall behind, intermediate
// snapshots are skipped and only the newest is persisted. Write failures are
// logged, not retried; the in-memory state remains authoritative.
type Writer struct {
	store  Store
	bucket string
	logger *slog.Logger

	mu      sync.Mutex
	pending []byte
	dirty   bool
	closed  bool
	kick    chan struct{}
	done    chan struct{}
}

// NewWriter creates a Writer for the given bucket and starts its background
// goroutine. Call Close to flush pending writes and stop it.
func NewWriter(st Store, bucket string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		store:  st,
		bucket: bucket,
		logger: logger.With("bucket", bucket),
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules blob to be written. The caller must not modify blob
// afterwards; services hand over a freshly marshaled snapshot.
func (w *Writer) Enqueue(blob []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending = blob
	w.dirty = true
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close flushes any pending write and stops the background goroutine.
// Safe to call more than once.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.kick)
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for range w.kick {
		w.flush()
	}
	// Final flush catches a snapshot enqueued after the last kick was consumed
	w.flush()
}

func (w *Writer) flush() {
	for {
		w.mu.Lock()
		if !w.dirty {
			w.mu.Unlock()
			return
		}
		blob := w.pending
		w.dirty = false
		w.mu.Unlock()

		if err := w.store.Put(context.Background(), w.bucket, blob); err != nil {
			w.logger.Error("bucket write failed", "error", err)
		}
	}
}
