// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/propsheet/propsheet/pkg/editors"
	"github.com/propsheet/propsheet/pkg/inspector"
)

// NewRegistry builds an editor registry with every built-in editor type
// installed, then loads any editor plugins found under pluginsPath.
func NewRegistry(logger *slog.Logger, pluginsPath string) *inspector.Registry {
	registry := inspector.NewRegistry(logger)

	editors.Register(registry)

	if pluginsPath != "" {
		if err := registry.LoadPlugins(pluginsPath); err != nil {
			panic(err)
		}
	}

	return registry
}
