package model

import "time"

func init() {
	RegisterKind(KindSubscription, func() Record { return &Subscription{} })
}

// Subscription is a registered webhook endpoint. The secret signs outgoing
// payloads and must never appear in logs or read responses.
type Subscription struct {
	ID        string            `json:"id"`
	TargetURL string            `json:"target_url"`
	EventType string            `json:"event_type"`
	Secret    string            `json:"secret"`
	OwnerID   string            `json:"owner_id,omitempty"`
	IsActive  bool              `json:"is_active"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Subscription) Kind() string       { return KindSubscription }
func (s *Subscription) RecordID() string   { return s.ID }
func (s *Subscription) SetRecordID(id string) { s.ID = id }
