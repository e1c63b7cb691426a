package activity

import (
	"context"
	"sync"
	"time"
)

// AsyncOptions configures batching and buffering for the async writer.
type AsyncOptions struct {
	BufferSize     int           // events queued in memory before writes fall back to synchronous
	BatchSize      int           // target events per storage batch
	BatchTimeout   time.Duration // max wait before a partial batch flushes
	StorageTimeout time.Duration // per-batch storage deadline
}

// AsyncWriter batches events in front of a BatchStorage for high-volume
// ingestion. When the buffer is full the write degrades to a synchronous
// batch of one rather than dropping the event: the activity log stays
// complete at the cost of latency.
type AsyncWriter struct {
	storage BatchStorage
	queue   chan queuedEvent
	done    chan struct{}
	wg      sync.WaitGroup
	opts    AsyncOptions
}

type queuedEvent struct {
	event  Event
	result chan error
}

// NewAsyncWriter creates an async writer and returns it together with a
// shutdown function that drains the queue. The shutdown context bounds the
// drain; events still queued past the deadline are lost.
func NewAsyncWriter(storage BatchStorage, opts AsyncOptions) (*AsyncWriter, func(context.Context) error) {
	if storage == nil {
		panic("activity: batch storage cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}

	w := &AsyncWriter{
		storage: storage,
		queue:   make(chan queuedEvent, opts.BufferSize),
		done:    make(chan struct{}),
		opts:    opts,
	}

	w.wg.Add(1)
	go w.worker()

	return w, w.Close
}

// Store queues one event and waits for its batch to land.
func (w *AsyncWriter) Store(ctx context.Context, e Event) error {
	select {
	case <-w.done:
		return ErrWriterClosed
	default:
	}

	result := make(chan error, 1)
	select {
	case w.queue <- queuedEvent{event: e, result: result}:
	default:
		// Buffer full: write synchronously instead of losing the event.
		return w.storage.InsertBatch(ctx, []Event{e})
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AsyncWriter) worker() {
	defer w.wg.Done()

	batch := make([]Event, 0, w.opts.BatchSize)
	pending := make([]chan error, 0, w.opts.BatchSize)
	ticker := time.NewTicker(w.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		// Detach from caller contexts so one canceled request cannot fail
		// the whole batch.
		ctx, cancel := context.WithTimeout(context.Background(), w.opts.StorageTimeout)
		err := w.storage.InsertBatch(ctx, batch)
		cancel()

		for _, result := range pending {
			select {
			case result <- err:
			default:
			}
		}
		batch = batch[:0]
		pending = pending[:0]
	}

	for {
		select {
		case q := <-w.queue:
			batch = append(batch, q.event)
			pending = append(pending, q.result)
			if len(batch) >= w.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case q := <-w.queue:
					batch = append(batch, q.event)
					pending = append(pending, q.result)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close shuts the writer down, draining queued events. The context bounds
// the wait.
func (w *AsyncWriter) Close(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}

	finished := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Sweep events that slipped into the queue after the worker's drain.
	for {
		select {
		case q := <-w.queue:
			q.result <- w.storage.InsertBatch(ctx, []Event{q.event})
		default:
			return nil
		}
	}
}
