package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tradeyard/eventgate/internal/model"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
	defaultHTTPTimeout = 10 * time.Second
)

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeRejected          // 4xx: subscriber configuration problem, no retry
	outcomeRetryable         // 5xx or connection-level failure
)

// Sender delivers one signed payload to one subscriber endpoint, retrying
// transient failures up to the attempt cap.
type Sender struct {
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	log         *zap.Logger
}

func NewSender(maxAttempts int, baseDelay, httpTimeout time.Duration, log *zap.Logger) *Sender {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	if httpTimeout <= 0 {
		httpTimeout = defaultHTTPTimeout
	}
	return &Sender{
		client:      &http.Client{Timeout: httpTimeout},
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
	}
}

// Deliver runs a job to a terminal state and returns the report. The error
// is non-nil only when ctx was cancelled before the job finished; such jobs
// produce no report.
func (s *Sender) Deliver(ctx context.Context, job model.DeliveryJob) (model.DeliveryReport, error) {
	sig, body, err := SignEnvelope(job.Secret, job.Payload)
	if err != nil {
		// Nothing useful to retry; the envelope itself is broken.
		s.log.Error("signing delivery payload failed",
			zap.String("target_url", job.TargetURL),
			zap.String("event_type", job.EventType),
			zap.Error(err))
		return s.report(job, model.DeliveryRejected, 0, err), nil
	}

	var (
		lastStatus int
		lastErr    error
	)
	for job.Attempts < s.maxAttempts {
		job.Attempts++

		status, out, err := s.attempt(ctx, job, sig, body)
		lastStatus, lastErr = status, err

		switch out {
		case outcomeDelivered:
			return s.report(job, model.DeliveryDelivered, status, nil), nil
		case outcomeRejected:
			s.log.Warn("webhook rejected by subscriber",
				zap.String("target_url", job.TargetURL),
				zap.String("event_type", job.EventType),
				zap.Int("status", status))
			return s.report(job, model.DeliveryRejected, status, err), nil
		}

		if job.Attempts >= s.maxAttempts {
			break
		}

		job.NextAttemptAt = time.Now().Add(s.backoff(job.Attempts))
		select {
		case <-ctx.Done():
			return model.DeliveryReport{}, ctx.Err()
		case <-time.After(time.Until(job.NextAttemptAt)):
		}
	}

	// Retry budget spent: terminal, logged for operator follow-up, dropped.
	s.log.Error("webhook delivery exhausted",
		zap.String("target_url", job.TargetURL),
		zap.String("event_type", job.EventType),
		zap.Int("attempts", job.Attempts),
		zap.Int("last_status", lastStatus),
		zap.Error(lastErr))
	return s.report(job, model.DeliveryExhausted, lastStatus, lastErr), nil
}

// attempt issues a single signed POST with the bounded per-attempt timeout.
func (s *Sender) attempt(ctx context.Context, job model.DeliveryJob, sig string, body []byte) (int, outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.TargetURL, bytes.NewReader(body))
	if err != nil {
		return 0, outcomeRejected, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", sig)
	for k, v := range job.Headers {
		req.Header.Set(k, v)
	}

	res, err := s.client.Do(req)
	if err != nil {
		// Timeout, DNS, refused: retryable.
		return 0, outcomeRetryable, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode/100 == 2:
		return res.StatusCode, outcomeDelivered, nil
	case res.StatusCode/100 == 4:
		return res.StatusCode, outcomeRejected, fmt.Errorf("target=%s status=%d", job.TargetURL, res.StatusCode)
	default:
		return res.StatusCode, outcomeRetryable, fmt.Errorf("target=%s status=%d", job.TargetURL, res.StatusCode)
	}
}

// backoff doubles the base delay per completed attempt.
func (s *Sender) backoff(attempt int) time.Duration {
	d := s.baseDelay << (attempt - 1)
	if d <= 0 || d > time.Minute {
		d = time.Minute
	}
	return d
}

func (s *Sender) report(job model.DeliveryJob, result model.DeliveryResult, status int, err error) model.DeliveryReport {
	rep := model.DeliveryReport{
		SubscriptionID: job.SubscriptionID,
		TargetURL:      job.TargetURL,
		EventType:      job.EventType,
		Result:         result,
		Attempts:       job.Attempts,
		StatusCode:     status,
		FinishedAt:     time.Now().UTC(),
	}
	if err != nil {
		rep.Error = err.Error()
	}
	return rep
}
