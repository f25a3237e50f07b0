package dispatch

import (
	"context"
	"errors"

	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/model"
)

var (
	// ErrQueueFull signals rejected backpressure: the publisher logs and
	// moves on, it never blocks a request on delivery capacity.
	ErrQueueFull = errors.New("dispatch queue full")

	ErrQueueClosed = errors.New("dispatch queue closed")
)

// Queue accepts delivery jobs from the publisher. Enqueue must not wait for
// HTTP delivery to complete.
type Queue interface {
	Enqueue(ctx context.Context, job model.DeliveryJob) error
}

// Ack marks a fetched job as consumed. Nil for sources without offsets.
type Ack func(ctx context.Context)

// Source hands jobs to the worker pool. Fetch blocks until a job is
// available, the source is closed, or ctx is cancelled.
type Source interface {
	Fetch(ctx context.Context) (model.DeliveryJob, Ack, error)
}

// MemoryQueue is the in-process bounded queue: channel-backed, reject-on-full.
type MemoryQueue struct {
	jobs chan model.DeliveryJob
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{jobs: make(chan model.DeliveryJob, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job model.DeliveryJob) error {
	select {
	case q.jobs <- job:
		metrics.QueueDepth.Inc()
		return nil
	default:
		metrics.QueueRejected.Inc()
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Fetch(ctx context.Context) (model.DeliveryJob, Ack, error) {
	select {
	case <-ctx.Done():
		return model.DeliveryJob{}, nil, ctx.Err()
	case job, ok := <-q.jobs:
		if !ok {
			return model.DeliveryJob{}, nil, ErrQueueClosed
		}
		metrics.QueueDepth.Dec()
		return job, nil, nil
	}
}

// Close stops the queue; pending jobs are still drained by the pool.
func (q *MemoryQueue) Close() {
	close(q.jobs)
}
