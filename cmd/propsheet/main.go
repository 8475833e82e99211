package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "propsheet",
		Usage:                 "Lint property schemas and evaluate values against them",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewLintCommand(),
			NewValidateCommand(),
			NewValuesCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
