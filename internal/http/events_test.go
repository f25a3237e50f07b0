package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/eventgate/internal/config"
)

func TestPublishEvent(t *testing.T) {
	t.Run("success - fans out to matching subscriber", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/subscriptions",
			`{"target_url":"https://example.com/hook","event_type":"order.completed"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(http.MethodPost, "/v1/events",
			`{"event_type":"order.completed","data":{"order_id":"o1"},"realtime":true}`, nil)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["published"])
		assert.Equal(t, "order.completed", body["event_type"])

		job, _, err := env.queue.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "order.completed", job.EventType)
		assert.JSONEq(t, `{"order_id":"o1"}`, string(job.Payload.Data))
	})

	t.Run("accepted with zero subscribers", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/events",
			`{"event_type":"order.completed","data":{"order_id":"o1"}}`, nil)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("error - invalid event type", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/events",
			`{"event_type":"not okay","data":{}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - missing data", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/events",
			`{"event_type":"order.completed"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
