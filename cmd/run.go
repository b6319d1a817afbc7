package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/ethpandaops/query-validator/internal/config"
	"github.com/ethpandaops/query-validator/internal/database"
	"github.com/ethpandaops/query-validator/internal/interactive"
	"github.com/ethpandaops/query-validator/internal/testing"
	"github.com/ethpandaops/query-validator/internal/testing/metrics"
	"github.com/ethpandaops/query-validator/internal/testing/output"
	"github.com/ethpandaops/query-validator/internal/testing/testdef"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errUnknownTests = errors.New("unknown test names")

// runOptions holds the run command flags. Zero values defer to configuration.
type runOptions struct {
	testsDir      string
	workers       int
	migrationsDir string
	filter        []string
	interactive   bool
	verbose       bool
	maxRows       int
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run test definitions against the database",
	Long: `Loads every YAML test definition, executes each query and checks the
returned rows against its assertions.

Exit codes:
  0  all tests passed
  1  at least one test failed
  2  at least one test could not be executed
  3  configuration or startup failure

Example:
  query-validator run
  query-validator run --tests checks --workers 8
  query-validator run --filter "users present,no null names"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTests(cmd.Context(), cmd.OutOrStdout(), &runOpts)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.testsDir, "tests", "", "directory of test definitions, overrides TEST_FILES")
	runCmd.Flags().IntVar(&runOpts.workers, "workers", 0, "tests to run concurrently, overrides WORKERS")
	runCmd.Flags().StringVar(&runOpts.migrationsDir, "migrations", "", "apply fixture migrations from this directory first")
	runCmd.Flags().StringSliceVar(&runOpts.filter, "filter", nil, "only run tests with these names")
	runCmd.Flags().BoolVarP(&runOpts.interactive, "interactive", "i", false, "choose tests to run interactively")
	runCmd.Flags().BoolVarP(&runOpts.verbose, "verbose", "v", false, "log queries and erroneous rows")
	runCmd.Flags().IntVar(&runOpts.maxRows, "max-rows", 0, "erroneous rows shown per failed test, overrides MAX_ERRONEOUS_ROWS")

	rootCmd.AddCommand(runCmd)
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig(opts *runOptions) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts == nil {
		return cfg, nil
	}

	if opts.testsDir != "" {
		cfg.TestFiles = opts.testsDir
	}

	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	if opts.maxRows > 0 {
		cfg.MaxErroneousRows = opts.maxRows
	}

	return cfg, nil
}

// runTests drives a full validation run and maps its outcome to an exit code.
func runTests(ctx context.Context, out io.Writer, opts *runOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return configError(err)
	}

	if err := cfg.RequireDatabase(); err != nil {
		return configError(err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return configError(fmt.Errorf("creating logger: %w", err))
	}
	defer func() {
		_ = log.Close()
	}()

	defs, err := selectDefinitions(log, cfg.TestFiles, opts)
	if err != nil {
		return configError(err)
	}

	if len(defs) == 0 {
		log.WithField("dir", cfg.TestFiles).Warn("no test definitions to run")

		return nil
	}

	if opts.migrationsDir != "" {
		if _, err := applyFixtures(log, cfg, opts.migrationsDir); err != nil {
			return configError(err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := database.Open(ctx, log, cfg.DatabaseURI, database.Options{MaxConns: cfg.Workers})
	if err != nil {
		return configError(fmt.Errorf("opening database: %w", err))
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("failed to close database engine")
		}
	}()

	orchestrator := testing.NewOrchestrator(&testing.OrchestratorConfig{
		Logger:    log,
		Engine:    engine,
		Collector: metrics.NewCollector(log),
		Formatter: output.NewFormatter(log, out, opts.verbose, cfg.MaxErroneousRows),
		Workers:   cfg.Workers,
	})

	if err := orchestrator.Start(ctx); err != nil {
		return configError(fmt.Errorf("starting orchestrator: %w", err))
	}

	summary := orchestrator.Run(ctx, defs)

	if err := orchestrator.Stop(); err != nil {
		log.WithError(err).Warn("failed to stop orchestrator")
	}

	if code := exitCodeFor(summary); code != ExitOK {
		return &ExitError{Code: code}
	}

	return nil
}

// selectDefinitions loads definitions and narrows them by filter or prompt.
func selectDefinitions(log logrus.FieldLogger, dir string, opts *runOptions) ([]*testdef.TestDefinition, error) {
	defs, err := testdef.NewLoader(log, dir).Load()
	if err != nil {
		return nil, fmt.Errorf("loading test definitions: %w", err)
	}

	if len(opts.filter) > 0 {
		if defs, err = filterDefinitions(defs, opts.filter); err != nil {
			return nil, err
		}
	}

	if opts.interactive && len(defs) > 0 {
		if defs, err = interactive.SelectTests(defs); err != nil {
			return nil, fmt.Errorf("selecting tests: %w", err)
		}
	}

	return defs, nil
}

// filterDefinitions keeps definitions whose name is listed. Every listed
// name must match at least one definition.
func filterDefinitions(defs []*testdef.TestDefinition, names []string) ([]*testdef.TestDefinition, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			wanted[trimmed] = false
		}
	}

	filtered := make([]*testdef.TestDefinition, 0, len(wanted))

	for _, def := range defs {
		if _, ok := wanted[def.Name]; ok {
			wanted[def.Name] = true
			filtered = append(filtered, def)
		}
	}

	var missing []string
	for name, found := range wanted {
		if !found {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, fmt.Errorf("%w: %s", errUnknownTests, strings.Join(missing, ", "))
	}

	return filtered, nil
}
