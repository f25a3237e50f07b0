package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradeyard/eventgate/internal/metrics"
	"github.com/tradeyard/eventgate/internal/repository"
	"go.uber.org/zap"
)

// Pool drains a job source with a fixed set of workers. Each job runs
// independently; the pool guarantees no ordering across jobs, including jobs
// for the same subscriber.
type Pool struct {
	source  Source
	sender  *Sender
	reports repository.DeliveryLog
	workers int
	log     *zap.Logger
}

func NewPool(source Source, sender *Sender, reports repository.DeliveryLog, workers int, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 16
	}
	return &Pool{
		source:  source,
		sender:  sender,
		reports: reports,
		workers: workers,
		log:     log,
	}
}

// Run blocks until ctx is cancelled or the source closes, then waits for
// in-flight deliveries to finish.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runWorker(ctx)
		}()
	}
	wg.Wait()
	return nil
}

func (p *Pool) runWorker(ctx context.Context) {
	for {
		job, ack, err := p.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return
			}
			p.log.Warn("fetching delivery job failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}

		rep, err := p.sender.Deliver(ctx, job)
		if err != nil {
			// ctx cancelled mid-delivery; leave the job unacked so a
			// durable source re-delivers it.
			return
		}

		metrics.Deliveries.WithLabelValues(rep.Result.String()).Inc()
		if p.reports != nil {
			if err := p.reports.Insert(ctx, rep); err != nil {
				p.log.Warn("recording delivery report failed", zap.Error(err))
			}
		}
		if ack != nil {
			ack(ctx)
		}
	}
}
