package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	t.Run("success - stamps current UTC time", func(t *testing.T) {
		before := time.Now().UTC()
		env, err := NewEnvelope("listing.created", map[string]string{"id": "abc"})
		after := time.Now().UTC()

		require.NoError(t, err)
		assert.Equal(t, "listing.created", env.EventType)
		assert.False(t, env.Timestamp.Before(before))
		assert.False(t, env.Timestamp.After(after))
		assert.JSONEq(t, `{"id":"abc"}`, string(env.Data))
	})

	t.Run("error - unmarshalable data", func(t *testing.T) {
		_, err := NewEnvelope("listing.created", make(chan int))
		require.Error(t, err)
	})
}

func TestEnvelopeMarshalJSON(t *testing.T) {
	t.Run("timestamp serialized as UTC with Z suffix", func(t *testing.T) {
		loc := time.FixedZone("CET", 3600)
		env := Envelope{
			EventType: "listing.updated",
			Timestamp: time.Date(2025, 3, 14, 13, 2, 3, 0, loc),
			Data:      json.RawMessage(`{"price":100}`),
		}

		raw, err := json.Marshal(env)
		require.NoError(t, err)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(raw, &wire))
		ts, ok := wire["timestamp"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasSuffix(ts, "Z"), "timestamp %q must end in Z", ts)
		assert.Equal(t, "2025-03-14T12:02:03Z", ts)
	})

	t.Run("round trip preserves fields", func(t *testing.T) {
		orig, err := NewEnvelope("user.created", map[string]any{"name": "ada"})
		require.NoError(t, err)

		raw, err := json.Marshal(orig)
		require.NoError(t, err)

		var got Envelope
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, orig.EventType, got.EventType)
		assert.True(t, orig.Timestamp.Equal(got.Timestamp))
		assert.JSONEq(t, string(orig.Data), string(got.Data))
	})

	t.Run("accepts second-precision timestamps", func(t *testing.T) {
		var env Envelope
		err := json.Unmarshal([]byte(`{"event_type":"x","timestamp":"2025-01-02T03:04:05Z","data":{}}`), &env)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), env.Timestamp.UTC())
	})
}
