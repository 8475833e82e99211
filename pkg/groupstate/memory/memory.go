// Package memory provides in-memory group-state storage, the default for
// tests and single-process embedding.
package memory

import (
	"context"
	"sync"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

// Store implements groupstate.Store backed by a process-local map.
type Store struct {
	mu     sync.RWMutex
	states map[string]groupstate.State
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{states: make(map[string]groupstate.State)}
}

func (s *Store) Read(_ context.Context, instanceID string) (groupstate.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[instanceID]
	if !ok {
		return groupstate.State{}, nil
	}

	return state.Clone(), nil
}

func (s *Store) Write(_ context.Context, instanceID string, state groupstate.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[instanceID] = state.Clone()

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
