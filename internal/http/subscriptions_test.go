package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/eventgate/internal/config"
)

func createTestSubscription(t *testing.T, env *testEnv) (id, secret string) {
	t.Helper()
	rec := env.do(http.MethodPost, "/v1/subscriptions",
		`{"target_url":"https://example.com/hook","event_type":"listing.created"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	sub, ok := body["subscription"].(map[string]any)
	require.True(t, ok)
	return sub["id"].(string), body["secret"].(string)
}

func TestSubscriptionCreate(t *testing.T) {
	t.Run("success - secret returned exactly once", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		id, secret := createTestSubscription(t, env)
		assert.NotEmpty(t, id)
		assert.Len(t, secret, 64)

		// no secret on subsequent reads
		rec := env.do(http.MethodGet, "/v1/subscriptions/"+id, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), secret)
		assert.NotContains(t, rec.Body.String(), `"secret"`)

		rec = env.do(http.MethodGet, "/v1/subscriptions", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), secret)
	})

	t.Run("defaults to active", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		id, _ := createTestSubscription(t, env)

		rec := env.do(http.MethodGet, "/v1/subscriptions/"+id, "", nil)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["is_active"])
	})

	t.Run("error - invalid event type", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/subscriptions",
			`{"target_url":"https://example.com/hook","event_type":"no spaces allowed"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - non-http target", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPost, "/v1/subscriptions",
			`{"target_url":"ftp://example.com/hook","event_type":"listing.created"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubscriptionGet(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	rec := env.do(http.MethodGet, "/v1/subscriptions/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptionList(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	for i := 0; i < 3; i++ {
		createTestSubscription(t, env)
	}

	rec := env.do(http.MethodGet, "/v1/subscriptions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["count"])
}

func TestSubscriptionUpdate(t *testing.T) {
	t.Run("success - secret survives and stays hidden", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		id, secret := createTestSubscription(t, env)

		rec := env.do(http.MethodPut, "/v1/subscriptions/"+id,
			`{"target_url":"https://example.com/v2","event_type":"listing.updated","is_active":false}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, "https://example.com/v2", body["target_url"])
		assert.Equal(t, false, body["is_active"])
		assert.NotContains(t, rec.Body.String(), secret)
	})

	t.Run("error - unknown id", func(t *testing.T) {
		env := newTestEnv(t, config.Config{})
		rec := env.do(http.MethodPut, "/v1/subscriptions/unknown",
			`{"target_url":"https://example.com/hook","event_type":"listing.created"}`, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubscriptionDelete(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id, _ := createTestSubscription(t, env)

	rec := env.do(http.MethodDelete, "/v1/subscriptions/"+id, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/subscriptions/%s", id), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
