package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/util"
)

// MySQL is the relational backend. All kinds share one `records` table with
// the document in a JSON column, keyed by (kind, id).
type MySQL struct {
	db *sqlx.DB
}

func NewMySQL(db *sqlx.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	if rec.RecordID() == "" {
		rec.SetRecordID(util.New())
	}
	b, err := encode(rec)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO records (kind, id, data, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
	`
	if _, err := s.db.ExecContext(ctx, q, rec.Kind(), rec.RecordID(), b); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MySQL) Read(ctx context.Context, kind, id string) (model.Record, error) {
	const q = `SELECT data FROM records WHERE kind = ? AND id = ?`
	var raw []byte
	if err := s.db.GetContext(ctx, &raw, q, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decode(kind, raw)
}

func (s *MySQL) Update(ctx context.Context, rec model.Record) (model.Record, error) {
	b, err := encode(rec)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO records (kind, id, data, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, q, rec.Kind(), rec.RecordID(), b); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MySQL) Delete(ctx context.Context, kind, id string) error {
	const q = `DELETE FROM records WHERE kind = ? AND id = ?`
	_, err := s.db.ExecContext(ctx, q, kind, id)
	return err
}

func (s *MySQL) List(ctx context.Context, kind string) ([]model.Record, error) {
	const q = `SELECT data FROM records WHERE kind = ? ORDER BY created_at`
	var raws [][]byte
	if err := s.db.SelectContext(ctx, &raws, q, kind); err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := decode(kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
