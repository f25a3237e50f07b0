package dispatch

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tradeyard/eventgate/internal/model"
)

// CanonicalJSON re-serializes raw JSON with object keys sorted at every
// depth, so that signer and verifier agree on bytes regardless of the
// original key order. encoding/json sorts map keys on marshal.
func CanonicalJSON(raw []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return json.Marshal(v)
}

// Sign computes the lowercase hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignEnvelope signs the canonical serialization of an envelope. The
// signature goes out as X-Webhook-Signature; receivers recompute it from
// the request body with their copy of the secret.
func SignEnvelope(secret string, env model.Envelope) (string, []byte, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return "", nil, fmt.Errorf("marshal envelope: %w", err)
	}
	canonical, err := CanonicalJSON(raw)
	if err != nil {
		return "", nil, err
	}
	return Sign(secret, canonical), canonical, nil
}
