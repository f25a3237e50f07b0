package dispatch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/eventgate/internal/model"
)

func TestCanonicalJSON(t *testing.T) {
	t.Run("sorts keys at every depth", func(t *testing.T) {
		got, err := CanonicalJSON([]byte(`{"b":1,"a":{"z":true,"y":false}}`))
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"y":false,"z":true},"b":1}`, string(got))
	})

	t.Run("key order does not change the output", func(t *testing.T) {
		a, err := CanonicalJSON([]byte(`{"x":1,"y":[{"b":2,"a":1}]}`))
		require.NoError(t, err)
		b, err := CanonicalJSON([]byte(`{"y":[{"a":1,"b":2}],"x":1}`))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("error - invalid json", func(t *testing.T) {
		_, err := CanonicalJSON([]byte(`{broken`))
		require.Error(t, err)
	})
}

func TestSign(t *testing.T) {
	t.Run("known vector", func(t *testing.T) {
		// echo -n '{"a":1}' | openssl dgst -sha256 -hmac secret
		sig := Sign("secret", []byte(`{"a":1}`))
		assert.Equal(t, "aa9e2e3575f5d7098b6caccd790888c36d5fdb63342a73bada2d6a51747a8494", sig)
	})

	t.Run("different secret, different signature", func(t *testing.T) {
		body := []byte(`{"a":1}`)
		assert.NotEqual(t, Sign("one", body), Sign("two", body))
	})

	t.Run("tampered body changes the signature", func(t *testing.T) {
		assert.NotEqual(t, Sign("s", []byte(`{"a":1}`)), Sign("s", []byte(`{"a":2}`)))
	})
}

func TestSignEnvelope(t *testing.T) {
	env := model.Envelope{
		EventType: "listing.created",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Data:      json.RawMessage(`{"b":2,"a":1}`),
	}

	t.Run("signature matches the returned body", func(t *testing.T) {
		sig, body, err := SignEnvelope("secret", env)
		require.NoError(t, err)
		assert.Equal(t, Sign("secret", body), sig)
	})

	t.Run("body is canonical", func(t *testing.T) {
		_, body, err := SignEnvelope("secret", env)
		require.NoError(t, err)

		canonical, err := CanonicalJSON(body)
		require.NoError(t, err)
		assert.Equal(t, canonical, body)
	})

	t.Run("verifier with reordered keys agrees", func(t *testing.T) {
		sig, body, err := SignEnvelope("secret", env)
		require.NoError(t, err)

		// a receiver canonicalizing the body it got reproduces the signature
		recomputed, err := CanonicalJSON(body)
		require.NoError(t, err)
		assert.Equal(t, sig, Sign("secret", recomputed))
	})
}
