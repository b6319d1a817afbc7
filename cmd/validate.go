package cmd

import (
	"fmt"
	"io"

	"github.com/ethpandaops/query-validator/internal/testing/table"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var validateTestsDir string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check test definition files without running them",
	Long: `Loads and validates every YAML test definition. Exits non-zero when any
file is invalid. Unknown assertion keys are reported but do not fail validation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return validateDefinitions(cmd.OutOrStdout(), validateTestsDir)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateTestsDir, "tests", "", "directory of test definitions, overrides TEST_FILES")
	rootCmd.AddCommand(validateCmd)
}

func validateDefinitions(out io.Writer, testsDir string) error {
	cfg, err := loadConfig(&runOptions{testsDir: testsDir})
	if err != nil {
		return configError(err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return configError(fmt.Errorf("creating logger: %w", err))
	}
	defer func() {
		_ = log.Close()
	}()

	defs, fileErrs, err := testdef.NewLoader(log, cfg.TestFiles).LoadAll()
	if err != nil {
		return configError(err)
	}

	reportValidation(out, log, defs, fileErrs)

	if len(fileErrs) > 0 {
		return &ExitError{Code: ExitFailures}
	}

	return nil
}

func reportValidation(out io.Writer, log logrus.FieldLogger, defs []*testdef.TestDefinition, fileErrs []*testdef.FileError) {
	colors := table.NewColorHelper()

	for _, def := range defs {
		line := fmt.Sprintf("%s %s (%d assertions)", colors.Success("✓"), def.Name, len(def.Assertions))

		if unknown := def.UnknownKinds(); len(unknown) > 0 {
			line += colors.Warning(fmt.Sprintf(" unknown assertions: %v", unknown))
		}

		fmt.Fprintln(out, line)
	}

	for _, fileErr := range fileErrs {
		fmt.Fprintf(out, "%s %s: %v\n", colors.Failure("✗"), fileErr.File, fileErr.Err)
	}

	log.WithFields(logrus.Fields{
		"valid":   len(defs),
		"invalid": len(fileErrs),
	}).Info("validated test definitions")
}
