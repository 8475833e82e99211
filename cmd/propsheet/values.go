package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/reference"
)

func NewValuesCommand() *cli.Command {
	return &cli.Command{
		Name:  "values",
		Usage: "Extract the effective values of a schema-driven editing session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "Path to the property schema JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "values",
				Usage: "Path to the values JSON file",
			},
			&cli.BoolFlag{
				Name:  "valid",
				Usage: "Drop properties whose current value fails validation",
			},
			&cli.StringFlag{
				Name:  "params",
				Usage: "Path to a parameters JSON file, external references are resolved against it",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			doc, err := loadDocument(command.String("schema"))
			if err != nil {
				return err
			}

			values, err := loadValues(command.String("values"))
			if err != nil {
				return err
			}

			surface, err := buildSurface(ctx, doc, values)
			if err != nil {
				return err
			}
			defer surface.Dispose(ctx)

			var out map[string]any
			if command.Bool("valid") {
				out = surface.ValidValues(ctx)
				for name, value := range out {
					if inspector.IsInvalid(value) {
						delete(out, name)
					}
				}
			} else {
				out = surface.Values()
			}

			if paramsPath := command.String("params"); paramsPath != "" {
				params, err := loadValues(paramsPath)
				if err != nil {
					return err
				}

				out, err = reference.Resolve(out, params)
				if err != nil {
					return err
				}
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(os.Stdout, string(encoded))

			return nil
		},
	}
}
