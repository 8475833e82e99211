// Package file provides file-based group-state storage, one JSON document
// per inspector instance.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/propsheet/propsheet/pkg/groupstate"
)

// Store implements groupstate.Store using the file system.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory, accepting a plain
// path or a file:// URL.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Store) Read(_ context.Context, instanceID string) (groupstate.State, error) {
	data, err := os.ReadFile(s.path(instanceID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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

func (s *Store) Write(_ context.Context, instanceID string, state groupstate.State) error {
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create group state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode group state for %s: %w", instanceID, err)
	}

	if err := os.WriteFile(s.path(instanceID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write group state for %s: %w", instanceID, err)
	}

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) dir() string {
	return filepath.Join(s.root, "groupstate")
}

func (s *Store) path(instanceID string) string {
	// Instance IDs are caller-chosen; keep them from escaping the root.
	safe := strings.ReplaceAll(instanceID, string(os.PathSeparator), "_")

	return filepath.Join(s.dir(), safe+".json")
}
