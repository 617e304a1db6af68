package alert

import (
	"errors"
	"sync"
)

// ErrDuplicateKey is returned by Store.Insert when the key already exists.
// Callers treat it as "not novel", never as a fatal error: concurrent or
// repeated runs may race on the same key and the unique constraint is the
// safety net.
var ErrDuplicateKey = errors.New("alert key already exists")

// Store is the durable keyed record store behind the deduplicator.
type Store interface {
	Exists(key string) (bool, error)
	Insert(rec Record) error
}

// MemoryStore is a map-backed Store, used in tests and usable as a
// throwaway store for one-off dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Exists(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}

func (s *MemoryStore) Insert(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Key]; ok {
		return ErrDuplicateKey
	}
	s.records[rec.Key] = rec
	return nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
