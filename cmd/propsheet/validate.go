package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/propsheet/propsheet/pkg/inspector"
)

var ErrValuesInvalid = errors.New("values failed validation")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a values document against a property schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "Path to the property schema JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "values",
				Usage:    "Path to the values JSON file",
				Required: true,
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

			_, _ = fmt.Fprintln(os.Stdout, "Validation Results:")
			_, _ = fmt.Fprintln(os.Stdout, "===================")

			valid := 0
			invalid := 0

			for _, editor := range surface.Editors() {
				name := editor.PropertyName()
				path := surface.PropertyPath(name)

				err := editor.Validate(ctx, true)
				if o := surface.OverrideFor(name); o != nil && o.Active() {
					err = o.Validate(true)
				}

				if err == nil {
					_, _ = fmt.Fprintf(os.Stdout, "  ✅ %s\n", path)
					valid++

					continue
				}

				// Failures inside nested surfaces carry their own path.
				var nested *inspector.ValidationError
				if errors.As(err, &nested) {
					_, _ = fmt.Fprintf(os.Stdout, "  ❌ %s: %v\n", nested.Path, nested.Err)
				} else {
					_, _ = fmt.Fprintf(os.Stdout, "  ❌ %s: %v\n", path, err)
				}

				invalid++
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nValid: %d, Invalid: %d\n", valid, invalid)

			if invalid > 0 {
				return ErrValuesInvalid
			}

			return nil
		},
	}
}
