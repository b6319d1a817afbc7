// Package cmd contains CLI command definitions
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethpandaops/query-validator/internal/interactive"
	"github.com/spf13/cobra"
)

func runInteractive(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Query Validator - Interactive Mode")
	fmt.Fprintln(out, "==================================")
	fmt.Fprintln(out)

	for {
		options := []interactive.MenuOption{
			{
				Name:        "Run All Tests",
				Description: "Run every test definition",
				Action: func() error {
					reportInteractive(out, runTests(cmd.Context(), out, &runOptions{}))

					return nil
				},
			},
			{
				Name:        "Run Selected Tests",
				Description: "Choose which test definitions to run",
				Action: func() error {
					reportInteractive(out, runTests(cmd.Context(), out, &runOptions{interactive: true}))

					return nil
				},
			},
			{
				Name:        "Validate",
				Description: "Check test definition files without running them",
				Action: func() error {
					reportInteractive(out, validateDefinitions(out, ""))

					return nil
				},
			},
			{
				Name:        "Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					reportInteractive(out, showConfig(out))

					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Fprintln(out, "Goodbye!")

				return nil
			}

			return err
		}

		fmt.Fprintln(out)
	}
}

// reportInteractive prints a command result and waits before redrawing the menu.
func reportInteractive(out io.Writer, err error) {
	var exitErr *ExitError

	switch {
	case err == nil:
		fmt.Fprintln(out, "\n✅ Done")
	case errors.As(err, &exitErr) && exitErr.Err == nil:
		fmt.Fprintf(out, "\n❌ Finished with exit code %d\n", exitErr.Code)
	default:
		fmt.Fprintf(out, "\n❌ Error: %v\n", err)
	}

	interactive.PauseForEnter()
}
