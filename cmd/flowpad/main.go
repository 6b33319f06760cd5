// Package main provides the flowpad command-line tool for working with
// workflow definitions against a Flowpad API server.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowpad/flowpad/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "flowpad",
		Usage:                 "Edit and save workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the Flowpad API server",
				Value:   "http://localhost:9094",
				Sources: cli.EnvVars("FLOWPAD_API_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			ValidateCommand(),
			SaveCommand(),
			ListCommand(),
			GetCommand(),
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		log.WithComponent("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
