package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/navalcombat/internal/model"
	"github.com/mcoot/navalcombat/internal/storage"
)

// DefaultSaveTimeout bounds a single background save
const DefaultSaveTimeout = 10 * time.Second

// ErrClosed is returned when submitting to a closed writer
var ErrClosed = errors.New("autosave writer closed")

// ResultFunc is called on the writer goroutine after every save attempt
type ResultFunc func(snap *model.Snapshot, err error)

// Writer saves snapshots on its own goroutine so callers never block on I/O.
// Only the newest pending snapshot is written; older ones are superseded.
type Writer struct {
	store       storage.SnapshotStore
	logger      *slog.Logger
	saveTimeout time.Duration
	onResult    ResultFunc

	mu      sync.Mutex
	pending *model.Snapshot
	waiters []chan error
	closed  bool

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Option configures a Writer
type Option func(*Writer)

// WithResultFunc registers a callback for save results
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Writer) {
		w.onResult = fn
	}
}

// WithSaveTimeout overrides DefaultSaveTimeout
func WithSaveTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.saveTimeout = d
	}
}

// New creates a Writer and starts its goroutine. Call Close to stop it.
func New(store storage.SnapshotStore, logger *slog.Logger, opts ...Option) *Writer {
	w := &Writer{
		store:       store,
		logger:      logger.With(slog.String("component", "autosave")),
		saveTimeout: DefaultSaveTimeout,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Submit queues a snapshot for saving and returns immediately.
// The snapshot must not be modified afterwards.
func (w *Writer) Submit(snap *model.Snapshot) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.pending != nil {
		w.logger.Debug("pending save superseded")
	}
	w.pending = snap
	w.mu.Unlock()

	w.signal()
	return nil
}

// SaveNow queues a snapshot and waits for it to be written
func (w *Writer) SaveNow(ctx context.Context, snap *model.Snapshot) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.pending = snap
	ch := w.addWaiterLocked()
	w.mu.Unlock()

	w.signal()
	return wait(ctx, ch)
}

// Flush waits until every snapshot submitted before the call has been written.
// It returns the error of the last write it waited for.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	ch := w.addWaiterLocked()
	w.mu.Unlock()

	w.signal()
	return wait(ctx, ch)
}

// Close writes any pending snapshot and stops the goroutine
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
	})
	<-w.stopped
}

func (w *Writer) addWaiterLocked() chan error {
	ch := make(chan error, 1)
	w.waiters = append(w.waiters, ch)
	return ch
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func wait(ctx context.Context, ch chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.done:
			w.drain()
			return
		}
	}
}

// drain writes pending snapshots until none remain, answering waiters as it goes
func (w *Writer) drain() {
	for {
		w.mu.Lock()
		snap, waiters := w.pending, w.waiters
		w.pending, w.waiters = nil, nil
		w.mu.Unlock()

		if snap == nil && len(waiters) == 0 {
			return
		}

		var err error
		if snap != nil {
			err = w.save(snap)
		}
		for _, ch := range waiters {
			ch <- err
		}
	}
}

func (w *Writer) save(snap *model.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	err := w.store.Save(ctx, snap)
	if err != nil {
		w.logger.Error("autosave failed", slog.String("error", err.Error()))
	} else {
		w.logger.Debug("autosave written", slog.Int64("saved_at", snap.SavedAt))
	}
	if w.onResult != nil {
		w.onResult(snap, err)
	}
	return err
}
