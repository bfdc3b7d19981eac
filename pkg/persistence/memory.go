package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, used by this package's tests and by
// callers that don't need a real database.
type MemoryStore struct {
	rows map[string]Record
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Record)}
}

func (m *MemoryStore) rowKey(runID uuid.UUID, k kind, key string) string {
	return fmt.Sprintf("%s/%s/%s", runID, k, key)
}

func (m *MemoryStore) save(runID uuid.UUID, k kind, key string, blob []byte, expectedVersion int64) (int64, error) {
	rk := m.rowKey(runID, k, key)
	existing, ok := m.rows[rk]
	if !ok {
		if expectedVersion > 0 {
			return 0, fmt.Errorf("%w: expected %d but key missing", ErrVersionMismatch, expectedVersion)
		}
		m.rows[rk] = Record{RunID: runID, Key: key, Blob: blob, Version: 1}
		return 1, nil
	}
	if expectedVersion > 0 && existing.Version != expectedVersion {
		return 0, fmt.Errorf("%w: expected %d got %d", ErrVersionMismatch, expectedVersion, existing.Version)
	}
	next := existing.Version + 1
	m.rows[rk] = Record{RunID: runID, Key: key, Blob: blob, Version: next}
	return next, nil
}

func (m *MemoryStore) load(runID uuid.UUID, k kind, key string) ([]byte, error) {
	rec, ok := m.rows[m.rowKey(runID, k, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Blob, nil
}

func (m *MemoryStore) SaveGraph(_ context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return m.save(runID, kindGraph, key, blob, expectedVersion)
}

func (m *MemoryStore) LoadGraph(_ context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return m.load(runID, kindGraph, key)
}

func (m *MemoryStore) SaveTriplets(_ context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return m.save(runID, kindTriplets, key, blob, expectedVersion)
}

func (m *MemoryStore) LoadTriplets(_ context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return m.load(runID, kindTriplets, key)
}

func (m *MemoryStore) SavePlan(_ context.Context, runID uuid.UUID, key string, blob []byte, expectedVersion int64) (int64, error) {
	return m.save(runID, kindPlan, key, blob, expectedVersion)
}

func (m *MemoryStore) LoadPlan(_ context.Context, runID uuid.UUID, key string) ([]byte, error) {
	return m.load(runID, kindPlan, key)
}

func (m *MemoryStore) Close() error { return nil }
