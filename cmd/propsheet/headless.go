// Package main provides the propsheet command-line tool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/propsheet/propsheet/pkg/editors"
	"github.com/propsheet/propsheet/pkg/groupstate/memory"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/log"
	"github.com/propsheet/propsheet/pkg/schema"
)

func loadDocument(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}

	doc, err := schema.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", path, err)
	}

	return doc, nil
}

func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values %s: %w", path, err)
	}

	var values map[string]any

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values %s: %w", path, err)
	}

	return values, nil
}

// buildSurface assembles a headless surface: no host rows, in-memory group
// state, built-in editor types only.
func buildSurface(ctx context.Context, doc *schema.Document, values map[string]any) (*inspector.Surface, error) {
	logger := log.WithModule("cli")

	registry := inspector.NewRegistry(logger)
	editors.Register(registry)

	return inspector.New(ctx, inspector.Config{
		InstanceID: "cli",
		Document:   doc,
		Values:     values,
		Registry:   registry,
		GroupState: memory.NewStore(),
		Logger:     logger,
	})
}
