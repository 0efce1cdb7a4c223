package calculation

import (
	"context"
	"errors"
	"sync"
	"time"

	"nebenkosten/pkg/logger"
)

var errWriterClosed = errors.New("snapshot writer closed")

// writer persists snapshots in the background. Only the newest pending
// snapshot is kept: a burst of mutations results in a single write.
// Failures are logged and reported to the recorder, never returned.
type writer struct {
	blobs    BlobStore
	key      string
	timeout  time.Duration
	log      *logger.Logger
	recorder Recorder
	async    bool

	mu       sync.Mutex
	pending  []byte
	enqueued uint64 // sequence of the newest enqueued snapshot
	written  uint64 // sequence of the newest attempted snapshot
	progress chan struct{}
	closed   bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWriter(blobs BlobStore, key string, timeout time.Duration, async bool, log *logger.Logger, rec Recorder) *writer {
	w := &writer{
		blobs:    blobs,
		key:      key,
		timeout:  timeout,
		async:    async,
		log:      log,
		recorder: rec,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if async {
		go w.run()
	} else {
		close(w.done)
	}
	return w
}

// persist hands a snapshot to storage. In async mode it replaces the pending
// snapshot and wakes the loop without blocking; otherwise it writes inline.
func (w *writer) persist(blob []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warnw("snapshot dropped", "key", w.key, "error", errWriterClosed)
		w.recorder.Persisted(errWriterClosed)
		return
	}
	if !w.async {
		w.mu.Unlock()
		w.write(blob)
		return
	}
	w.pending = blob
	w.enqueued++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if w.pending == nil {
			w.mu.Unlock()
			return
		}
		blob, seq := w.pending, w.enqueued
		w.pending = nil
		w.mu.Unlock()

		w.write(blob)

		w.mu.Lock()
		w.written = seq
		close(w.progress)
		w.progress = make(chan struct{})
		w.mu.Unlock()
	}
}

// write performs one storage call. It runs detached from any caller context.
func (w *writer) write(blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.blobs.Put(ctx, w.key, blob)
	w.recorder.Persisted(err)
	if err != nil {
		w.log.Warnw("persist snapshot failed", "key", w.key, "bytes", len(blob), "error", err)
		return
	}
	w.log.Debugw("snapshot persisted", "key", w.key, "bytes", len(blob))
}

// flush waits until every snapshot enqueued before the call has been attempted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.enqueued
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.written >= target {
			w.mu.Unlock()
			return nil
		}
		ch := w.progress
		w.mu.Unlock()

		select {
		case <-ch:
		case <-w.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close flushes pending snapshots and stops the loop.
func (w *writer) close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		if w.async {
			close(w.quit)
		}
	})

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
