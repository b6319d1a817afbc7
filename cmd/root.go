package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags shared by every command
	envFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "query-validator",
		Short: "Query Validator - declarative SQL result checks",
		Long: `Query Validator runs SQL queries from YAML test definitions against a
database and checks the returned rows against declarative assertions.

Run without arguments to launch interactive mode, or use subcommands for direct operations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd)
		},
	}
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, exitErr.Err)
		}

		return exitErr.Code
	}

	fmt.Fprintln(os.Stderr, err)

	return ExitConfig
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides LOG_LEVEL")
}
