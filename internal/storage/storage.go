package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradeyard/eventgate/internal/model"
)

// Backend is the storage port. Every backend implements all five operations
// with identical semantics: Read and Delete on a missing id are not errors
// (nil record / no-op); any other I/O failure surfaces to the caller.
type Backend interface {
	// Create persists a new record and returns it. A record with an empty
	// id gets one assigned by the backend.
	Create(ctx context.Context, rec model.Record) (model.Record, error)
	// Read returns (nil, nil) when no record exists for (kind, id).
	Read(ctx context.Context, kind, id string) (model.Record, error)
	Update(ctx context.Context, rec model.Record) (model.Record, error)
	Delete(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string) ([]model.Record, error)
}

func encode(rec model.Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", rec.Kind(), err)
	}
	return b, nil
}

func decode(kind string, raw []byte) (model.Record, error) {
	rec, ok := model.NewOfKind(kind)
	if !ok {
		return nil, fmt.Errorf("decode record: unknown kind %q", kind)
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", kind, err)
	}
	return rec, nil
}
