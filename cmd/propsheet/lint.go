package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/propsheet/propsheet/pkg/editors"
	"github.com/propsheet/propsheet/pkg/inspector"
	"github.com/propsheet/propsheet/pkg/log"
	"github.com/propsheet/propsheet/pkg/schema"
)

var ErrSchemaInvalid = errors.New("schema is invalid")

func NewLintCommand() *cli.Command {
	return &cli.Command{
		Name:    "lint",
		Aliases: []string{"l"},
		Usage:   "Check a property schema for structural problems",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "Path to the property schema JSON file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			schemaPath := command.String("schema")

			_, _ = fmt.Fprintln(os.Stdout, "Schema Lint Results:")
			_, _ = fmt.Fprintln(os.Stdout, "====================")
			_, _ = fmt.Fprintf(os.Stdout, "\nSchema: %s\n", schemaPath)

			doc, err := loadDocument(schemaPath)
			if err != nil {
				_, _ = fmt.Fprintf(os.Stdout, "  ❌ INVALID: %v\n", err)

				return ErrSchemaInvalid
			}

			registry := inspector.NewRegistry(log.WithModule("cli"))
			editors.Register(registry)

			if err := registry.ValidateDocument(doc); err != nil {
				_, _ = fmt.Fprintf(os.Stdout, "  ❌ INVALID: %v\n", err)

				return ErrSchemaInvalid
			}

			properties := 0
			groups := 0

			for _, item := range doc.Layout() {
				switch item.Type {
				case schema.ItemTypeProperty:
					properties++
				case schema.ItemTypeGroup:
					groups++
				}
			}

			_, _ = fmt.Fprintf(os.Stdout, "  Properties: %d\n", properties)
			_, _ = fmt.Fprintf(os.Stdout, "  Groups: %d\n", groups)
			_, _ = fmt.Fprintln(os.Stdout, "  ✅ VALID")

			return nil
		},
	}
}
