package model

import "time"

// DeliveryJob is one unit of webhook-dispatch work: a single envelope bound
// for a single subscriber. Jobs are created per matching subscription per
// publish call and are terminal on success, on a 4xx response, or once the
// attempt budget is spent.
type DeliveryJob struct {
	SubscriptionID string            `json:"subscription_id"`
	TargetURL      string            `json:"target_url"`
	EventType      string            `json:"event_type"`
	Payload        Envelope          `json:"payload"`
	Secret         string            `json:"secret"`
	Headers        map[string]string `json:"headers,omitempty"`

	// Retry state, owned by the dispatch worker.
	Attempts      int       `json:"attempts"`
	NextAttemptAt time.Time `json:"next_attempt_at,omitempty"`
}

// DeliveryResult is the terminal outcome of a job, recorded for reporting.
type DeliveryResult string

const (
	DeliveryDelivered DeliveryResult = "delivered"
	DeliveryRejected  DeliveryResult = "rejected"  // 4xx, not retried
	DeliveryExhausted DeliveryResult = "exhausted" // retry budget spent
)

func (r DeliveryResult) String() string { return string(r) }

func (r DeliveryResult) Valid() bool {
	return r == DeliveryDelivered || r == DeliveryRejected || r == DeliveryExhausted
}

// DeliveryReport is the row persisted to ClickHouse after a job reaches a
// terminal state. Reporting only; rows are never read back for redelivery.
type DeliveryReport struct {
	SubscriptionID string         `db:"subscription_id"`
	TargetURL      string         `db:"target_url"`
	EventType      string         `db:"event_type"`
	Result         DeliveryResult `db:"result"`
	Attempts       int            `db:"attempts"`
	StatusCode     int            `db:"status_code"`
	Error          string         `db:"error"`
	FinishedAt     time.Time      `db:"finished_at"`
}
