package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire format shared by webhook deliveries and realtime
// broadcasts. Immutable once built; one envelope value per publish call.
type Envelope struct {
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope marshals data and stamps the envelope with the current UTC time.
func NewEnvelope(eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event data: %w", err)
	}
	return Envelope{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// MarshalJSON emits the timestamp as RFC 3339 UTC with a Z suffix.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type alias Envelope
	return json.Marshal(&struct {
		alias
		Timestamp string `json:"timestamp"`
	}{
		alias:     alias(e),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON accepts RFC 3339 timestamps with or without sub-second
// precision.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	type alias Envelope
	aux := &struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(b, aux); err != nil {
		return err
	}
	ts, err := time.Parse(time.RFC3339Nano, aux.Timestamp)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, aux.Timestamp)
		if err != nil {
			return fmt.Errorf("parse envelope timestamp: %w", err)
		}
	}
	e.Timestamp = ts
	return nil
}
