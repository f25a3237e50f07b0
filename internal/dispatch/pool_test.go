package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradeyard/eventgate/internal/model"
)

// memDeliveryLog collects reports in memory for assertions.
type memDeliveryLog struct {
	mu   sync.Mutex
	rows []model.DeliveryReport
	done chan struct{}
	want int
}

func newMemDeliveryLog(want int) *memDeliveryLog {
	return &memDeliveryLog{done: make(chan struct{}), want: want}
}

func (l *memDeliveryLog) Insert(ctx context.Context, rep model.DeliveryReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, rep)
	if len(l.rows) == l.want {
		close(l.done)
	}
	return nil
}

func (l *memDeliveryLog) ListRecent(ctx context.Context, eventType string, result model.DeliveryResult, limit, offset int) ([]model.DeliveryReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.DeliveryReport, len(l.rows))
	copy(out, l.rows)
	return out, nil
}

func TestPoolRun(t *testing.T) {
	t.Run("drains jobs and records terminal reports", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		q := NewMemoryQueue(8)
		reports := newMemDeliveryLog(3)
		pool := NewPool(q, testSender(3), reports, 2, zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for i := 0; i < 3; i++ {
			require.NoError(t, q.Enqueue(ctx, testJob(srv.URL)))
		}

		poolDone := make(chan struct{})
		go func() {
			_ = pool.Run(ctx)
			close(poolDone)
		}()

		select {
		case <-reports.done:
		case <-time.After(5 * time.Second):
			t.Fatal("pool did not finish the enqueued jobs")
		}

		cancel()
		select {
		case <-poolDone:
		case <-time.After(5 * time.Second):
			t.Fatal("pool did not stop after cancellation")
		}

		rows, err := reports.ListRecent(ctx, "", "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for _, rep := range rows {
			assert.Equal(t, model.DeliveryDelivered, rep.Result)
			assert.Equal(t, "sub1", rep.SubscriptionID)
		}
	})

	t.Run("stops when the source closes", func(t *testing.T) {
		q := NewMemoryQueue(1)
		pool := NewPool(q, testSender(1), nil, 2, zap.NewNop())
		q.Close()

		done := make(chan struct{})
		go func() {
			_ = pool.Run(context.Background())
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("pool did not stop on a closed source")
		}
	})
}
