package inmem

import (
	"context"
	"sync"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/query"
)

var _ query.Store = (*MemStore)(nil)

// MemStore is an in-memory key-value store
type MemStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return val, nil
}

func (s *MemStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
