package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/util"
)

// Memory is an in-process backend used by tests and local development.
// Records are stored as encoded bytes so every read returns a fresh value.
type Memory struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{kinds: make(map[string]map[string][]byte)}
}

func (m *Memory) put(rec model.Record) (model.Record, error) {
	b, err := encode(rec)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.kinds[rec.Kind()]
	if !ok {
		byID = make(map[string][]byte)
		m.kinds[rec.Kind()] = byID
	}
	byID[rec.RecordID()] = b
	return rec, nil
}

func (m *Memory) Create(ctx context.Context, rec model.Record) (model.Record, error) {
	if rec.RecordID() == "" {
		rec.SetRecordID(util.New())
	}
	return m.put(rec)
}

func (m *Memory) Read(ctx context.Context, kind, id string) (model.Record, error) {
	m.mu.RLock()
	raw, ok := m.kinds[kind][id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(kind, raw)
}

func (m *Memory) Update(ctx context.Context, rec model.Record) (model.Record, error) {
	return m.put(rec)
}

func (m *Memory) Delete(ctx context.Context, kind, id string) error {
	m.mu.Lock()
	delete(m.kinds[kind], id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(ctx context.Context, kind string) ([]model.Record, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.kinds[kind]))
	for id := range m.kinds[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	raws := make([][]byte, 0, len(ids))
	for _, id := range ids {
		raws = append(raws, m.kinds[kind][id])
	}
	m.mu.RUnlock()

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
