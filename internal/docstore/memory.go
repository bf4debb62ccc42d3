package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyon-community/skyon-backend/internal/apperr"
)

// MemoryBackend keeps collections in process memory. Records are stored encoded so callers
// never share maps with the store. Used by tests and STORE_BACKEND=memory.
type MemoryBackend struct {
	mu     sync.Mutex
	colls  map[string]map[string][]byte
	clocks map[string]int64
	now    func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		colls:  make(map[string]map[string][]byte),
		clocks: make(map[string]int64),
		now:    time.Now,
	}
}

// SetClock replaces the store clock. Timestamps stay strictly increasing per collection
// even if the clock stands still or goes backwards.
func (m *MemoryBackend) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Push(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now().UnixMilli()
	if last := m.clocks[collection]; ts <= last {
		ts = last + 1
	}
	m.clocks[collection] = ts

	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldCreatedAt] = ts

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	coll, ok := m.colls[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.colls[collection] = coll
	}
	coll[key.String()] = b
	return key.String(), nil
}

func (m *MemoryBackend) Set(ctx context.Context, collection, key string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.colls[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.colls[collection] = coll
	}
	coll[key] = b
	return nil
}

func (m *MemoryBackend) GetAll(ctx context.Context, collection string) (map[string]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Record, len(m.colls[collection]))
	for key, b := range m.colls[collection] {
		rec, err := decodeRecord(b)
		if err != nil {
			return nil, err
		}
		out[key] = rec
	}
	return out, nil
}

func (m *MemoryBackend) Get(ctx context.Context, collection, key string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.colls[collection][key]
	if !ok {
		return nil, false, nil
	}
	rec, err := decodeRecord(b)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (m *MemoryBackend) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.modify(collection, key, func(rec Record) error {
		for k, v := range fields {
			rec[k] = v
		}
		return nil
	})
}

func (m *MemoryBackend) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.colls[collection][key]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.colls[collection], key)
	return nil
}

func (m *MemoryBackend) Increment(ctx context.Context, collection, key, field string, delta float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var next float64
	err := m.modify(collection, key, func(rec Record) error {
		cur, _ := rec.Number(field)
		next = cur + delta
		rec[field] = next
		return nil
	})
	return next, err
}

// modify must be called with mu held.
func (m *MemoryBackend) modify(collection, key string, fn func(Record) error) error {
	b, ok := m.colls[collection][key]
	if !ok {
		return apperr.ErrNotFound
	}
	rec, err := decodeRecord(b)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return err
	}
	nb, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	m.colls[collection][key] = nb
	return nil
}

func decodeRecord(b []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
