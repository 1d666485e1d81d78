package history

import (
	"context"
	"sync"

	"github.com/jsphweid/evomelody/evolution"
	"github.com/pkg/errors"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	entries     []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.entries = nil
	return nil
}

func (s *MemoryStore) RecordGeneration(_ context.Context, generation int, ranked []evolution.Scored) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.entries = append(s.entries, toEntries(generation, ranked)...)
	return nil
}

func (s *MemoryStore) Entries(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]Entry, len(s.entries))
	copy(res, s.entries)
	return res, nil
}
