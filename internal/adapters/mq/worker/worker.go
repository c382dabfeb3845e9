// Package worker runs queued analysis requests.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/internal/adapters/mq/queue"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// Request is what workers read off the queue.
type Request = queue.Request

// Processor handles one request.
type Processor interface {
	Process(ctx context.Context, r Request) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, r Request) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, r Request) error { return f(ctx, r) }

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue() <-chan Request
}

type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker reads requests until the queue is closed or its context
// is done.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string
	stats     *counters
	done      chan struct{}
	logger    logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		stats:     &counters{},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes requests until the queue drains after Close or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-requests:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "analysis request failed",
					logger.String("request_id", r.RequestID),
					logger.String("content", r.Ref.String()),
					logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, r Request) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("processor panic: %v", rec)
		}
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		if err != nil {
			w.stats.failed.Add(1)
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "process_error")
			return
		}
		w.stats.processed.Add(1)
	}()
	return w.processor.Process(ctx, r)
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *counters
	cancel  context.CancelFunc
	once    sync.Once
	logger  logger.Logger
}

// NewPool creates workerCount workers; a non-positive count uses the CPU count.
func NewPool(workerCount int, q Queue, p Processor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		stats:   &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(q, p, wopts...)
		w.stats = pool.stats
		pool.workers[i] = w
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many requests completed without error.
func (p *Pool) Processed() int64 { return p.stats.processed.Load() }

// Failed returns how many requests failed.
func (p *Pool) Failed() int64 { return p.stats.failed.Load() }

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx is done are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}
		if p.cancel == nil {
			return
		}
		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
			}
			if err != nil {
				break
			}
		}
		p.cancel()
		metrics.UpdateWorkerCount(0)
	})
	return err
}
