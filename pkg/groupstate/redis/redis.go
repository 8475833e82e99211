// Package redis provides Redis-backed group-state storage for deployments
// where inspector instances are served by more than one process.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

const keyPrefix = "propsheet:groupstate:"

// Store implements groupstate.Store on a Redis client.
type Store struct {
	client goredis.UniversalClient
}

// NewStore connects to the Redis instance named by the URL
// (redis://[:password@]host:port/db).
func NewStore(url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Store{client: goredis.NewClient(opts)}, nil
}

// NewStoreWithClient wraps an existing client, useful for tests with
// miniature servers.
func NewStoreWithClient(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Read(ctx context.Context, instanceID string) (groupstate.State, error) {
	data, err := s.client.Get(ctx, keyPrefix+instanceID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return groupstate.State{}, nil
		}

		return nil, fmt.Errorf("failed to read group state for %s: %w", instanceID, err)
	}

	var state groupstate.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse group state for %s: %w", instanceID, err)
	}

	return state, nil
}

func (s *Store) Write(ctx context.Context, instanceID string, state groupstate.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode group state for %s: %w", instanceID, err)
	}

	if err := s.client.Set(ctx, keyPrefix+instanceID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write group state for %s: %w", instanceID, err)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
