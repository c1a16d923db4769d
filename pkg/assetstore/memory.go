package assetstore

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps records in a map. Records are copied on the way in
// and out so callers cannot alias stored blobs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put stores a copy of rec.
func (s *MemoryStore) Put(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	cp := *rec
	cp.Blob = slices.Clone(rec.Blob)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = cp
	return nil
}

// Get returns a copy of the record for id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	rec.Blob = slices.Clone(rec.Blob)
	return &rec, nil
}

// GetAllKeys returns the stored ids in sorted order.
func (s *MemoryStore) GetAllKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.records)), nil
}

// Delete removes id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Count returns the number of records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
