package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowpad/flowpad/pkg/client"
	"github.com/flowpad/flowpad/pkg/codec"
	"github.com/flowpad/flowpad/pkg/editor"
	"github.com/flowpad/flowpad/pkg/log"
)

// ValidateCommand checks a definition document without contacting the API.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a definition document",
		ArgsUsage: "<file>",
		Action: func(_ context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			data, err := readDefinitionFile(command)
			if err != nil {
				return err
			}

			def, err := codec.Decode(string(data))
			if err != nil {
				var decodeErr *codec.DecodeError
				if errors.As(err, &decodeErr) {
					return fmt.Errorf("invalid definition (%s): %w", decodeErr.Kind, err)
				}

				return err
			}

			fmt.Fprintf(os.Stdout, "%s: %d nodes, %d connections\n",
				def.Name, len(def.Graph.Nodes), len(def.Graph.Connections))

			return nil
		},
	}
}

// SaveCommand pushes a definition document through the editor's save path:
// documents without a stored ID are created, the rest are updated with
// version conflict detection.
func SaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save a definition document to the API",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Existing definition ID to update instead of creating",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			data, err := readDefinitionFile(command)
			if err != nil {
				return err
			}

			api := client.NewClient(command.String("api-url"))
			coord := editor.NewCoordinator(api)
			defer coord.Close()

			if id := command.String("id"); id != "" {
				stored, err := api.Get(ctx, id)
				if err != nil {
					return err
				}

				coord.StoreChanged(stored)
			}

			coord.ToggleView()
			coord.EditText(string(data))

			bus := editor.NewSaveBus()
			defer func() { _ = bus.Close() }()

			err = bus.Start(ctx, coord)
			if err != nil {
				return err
			}

			saved, err := bus.RequestSave(ctx, editor.ReasonContent)
			if err != nil {
				return err
			}

			if !saved {
				fmt.Fprintln(os.Stdout, "Nothing to save")

				return nil
			}

			def := coord.Definition()
			fmt.Fprintf(os.Stdout, "Saved %s (version %d)\n", def.ID, def.Version)

			return nil
		},
	}
}

// ListCommand prints the stored definitions.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored definitions",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			api := client.NewClient(command.String("api-url"))

			definitions, err := api.List(ctx)
			if err != nil {
				return err
			}

			for _, def := range definitions {
				fmt.Fprintf(os.Stdout, "%s\t%d\t%s\n", def.ID, def.Version, def.Name)
			}

			return nil
		},
	}
}

// GetCommand prints one stored definition in its serialized text form.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a definition and print its text form",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			id := command.Args().First()
			if id == "" {
				return errors.New("definition ID is required")
			}

			api := client.NewClient(command.String("api-url"))

			def, err := api.Get(ctx, id)
			if err != nil {
				return err
			}

			text, err := codec.Encode(def)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, text)

			return nil
		},
	}
}

func readDefinitionFile(command *cli.Command) ([]byte, error) {
	path := command.Args().First()
	if path == "" {
		return nil, errors.New("definition file is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	return data, nil
}
