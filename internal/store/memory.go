package store

import (
	"context"
	"sync"
	"time"

	"timekeeper/internal/types"
)

// MemoryStore keeps the attendance table in RAM. Used as a test double and
// for the "memory" backend; contents are lost on Close.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []types.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) EnsureInitialized(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Find(ctx context.Context, date time.Time) (*types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findRow(s.rows, date), nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec types.Record, mode types.WriteMode) (types.Record, error) {
	if err := ctx.Err(); err != nil {
		return types.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, stored, err := applyUpsert(cloneRows(s.rows), rec, mode)
	if err != nil {
		return stored, err
	}
	s.rows = rows
	return stored, nil
}

func (s *MemoryStore) Clear(ctx context.Context, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := applyClear(cloneRows(s.rows), date)
	if err != nil {
		return err
	}
	s.rows = rows
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRows(s.rows), nil
}

func (s *MemoryStore) ListMonth(ctx context.Context, month string) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterMonth(s.rows, month), nil
}

func (s *MemoryStore) PrefillMonth(ctx context.Context, month time.Month, year int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fill, err := monthRows(month, year)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, added := applyPrefill(cloneRows(s.rows), fill)
	s.rows = rows
	return added, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.rows = nil
	s.mu.Unlock()
	return nil
}
