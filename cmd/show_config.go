package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Display current environment configuration",
	Long:  `Shows the current configuration loaded from environment variables and .env file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}

func showConfig(out io.Writer) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return configError(fmt.Errorf("failed to show config: %w", err))
	}

	fmt.Fprintln(out, cfg.String())

	return nil
}
