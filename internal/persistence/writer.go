package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Writer saves snapshots on a single goroutine. Queued snapshots coalesce:
// only the latest one pending at any moment is written.
type Writer struct {
	gw     *Gateway
	logger *slog.Logger

	mu      sync.Mutex
	pending *Snapshot
	queued  uint64 // generation of the newest enqueued snapshot
	done    uint64 // generation covered by the last completed save
	last    Result
	changed chan struct{} // closed and replaced after every save
	closed  bool

	wake     chan struct{}
	stop     chan struct{}
	finished chan struct{}
}

// NewWriter starts the writer goroutine.
func NewWriter(gw *Gateway, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		gw:       gw,
		logger:   logger,
		last:     Result{Success: true},
		changed:  make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go w.run()
	return w
}

// Gateway returns the gateway the writer saves through.
func (w *Writer) Gateway() *Gateway { return w.gw }

// Enqueue replaces the pending snapshot with s. The caller must not modify s
// afterwards.
func (w *Writer) Enqueue(s *Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("save dropped: writer closed")
		return
	}
	w.pending = s
	w.queued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot enqueued before the call is written and
// returns the outcome of the latest save.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	for w.done < target {
		ch := w.changed
		w.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		w.mu.Lock()
	}
	res := w.last
	w.mu.Unlock()
	if !res.Success {
		return fmt.Errorf("persistence: %s", res.Error)
	}
	return nil
}

// Close writes whatever is pending and stops the goroutine.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	w.mu.Unlock()

	select {
	case <-w.finished:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	res := w.last
	w.mu.Unlock()
	return res.Err()
}

func (w *Writer) run() {
	defer close(w.finished)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.mu.Lock()
	s, gen := w.pending, w.queued
	w.pending = nil
	w.mu.Unlock()
	if s == nil {
		return
	}

	res := w.gw.Save(context.Background(), s)

	w.mu.Lock()
	w.done = gen
	w.last = res
	close(w.changed)
	w.changed = make(chan struct{})
	w.mu.Unlock()
}
