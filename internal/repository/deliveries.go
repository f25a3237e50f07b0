package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/tradeyard/eventgate/internal/model"
)

// DeliveryLog records terminal webhook delivery outcomes for reporting.
// Rows are never read back for redelivery; exhausted jobs stay dropped.
type DeliveryLog interface {
	Insert(ctx context.Context, rep model.DeliveryReport) error
	ListRecent(ctx context.Context, eventType string, result model.DeliveryResult, limit, offset int) ([]model.DeliveryReport, error)
}

type chDeliveryLog struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHDeliveryLog(ch *sqlx.DB) DeliveryLog {
	return &chDeliveryLog{ch: ch}
}

func (r *chDeliveryLog) Insert(ctx context.Context, rep model.DeliveryReport) error {
	const q = `
		INSERT INTO eventgate.webhook_deliveries
		    (subscription_id, target_url, event_type, result, attempts, status_code, error, finished_at)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.ch.ExecContext(ctx, q,
		rep.SubscriptionID, rep.TargetURL, rep.EventType, rep.Result.String(),
		rep.Attempts, rep.StatusCode, rep.Error, rep.FinishedAt,
	)
	return err
}

func (r *chDeliveryLog) ListRecent(ctx context.Context, eventType string, result model.DeliveryResult, limit, offset int) ([]model.DeliveryReport, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT subscription_id, target_url, event_type, result, attempts, status_code, error, finished_at
		FROM eventgate.webhook_deliveries
		WHERE 1 = 1
	`
	args := []any{}

	if eventType != "" {
		q += " AND event_type = ?"
		args = append(args, eventType)
	}
	if result != "" {
		q += " AND result = ?"
		args = append(args, result.String())
	}

	q += " ORDER BY finished_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.DeliveryReport
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
