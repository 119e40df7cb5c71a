package document

import (
	"context"
	"errors"
	"sync"

	"binary-metadata/core/metadata"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned when the async queue has no free slot.
	ErrQueueFull = errors.New("async queue is full")
	// ErrWorkerClosed is returned when enqueuing after Close.
	ErrWorkerClosed = errors.New("async worker is closed")
)

// Job is a deferred reconciliation of asynchronous mappings.
type Job struct {
	DocumentID string
	MappingIDs []string
	Changes    *metadata.Changes
}

// JobHandler processes one job.
type JobHandler func(ctx context.Context, job Job) error

// AsyncWorker runs jobs on a fixed pool of goroutines.
type AsyncWorker struct {
	queue   chan Job
	workers int
	handle  JobHandler
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewAsyncWorker creates a worker pool. Run must be called to start it.
func NewAsyncWorker(workers, queueSize int, handle JobHandler, logger *zap.Logger) *AsyncWorker {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &AsyncWorker{
		queue:   make(chan Job, queueSize),
		workers: workers,
		handle:  handle,
		logger:  logger,
	}
}

// Enqueue schedules job without blocking.
func (w *AsyncWorker) Enqueue(job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWorkerClosed
	}
	select {
	case w.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs. Queued jobs are still drained by Run.
func (w *AsyncWorker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		close(w.queue)
	}
}

// Run processes jobs until ctx is cancelled or the worker is closed and
// drained. Job failures are logged and do not stop the pool. The worker is
// closed when Run returns, so later Enqueue calls fail with ErrWorkerClosed.
func (w *AsyncWorker) Run(ctx context.Context) error {
	defer w.Close()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case job, ok := <-w.queue:
					if !ok {
						return nil
					}
					w.process(gctx, job)
				}
			}
		})
	}
	return g.Wait()
}

func (w *AsyncWorker) process(ctx context.Context, job Job) {
	l := w.logger.With(zap.String("document_id", job.DocumentID), zap.Strings("mapping_ids", job.MappingIDs))
	if err := w.handle(ctx, job); err != nil {
		l.Error("Async metadata job failed", zap.Error(err))
		return
	}
	l.Debug("Async metadata job done")
}
