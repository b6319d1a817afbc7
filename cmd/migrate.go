package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethpandaops/query-validator/internal/config"
	"github.com/ethpandaops/query-validator/internal/migrations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	migrateDir string

	errNoMigrationsDir = errors.New("--migrations is required")
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply fixture migrations to the configured database",
	Long: `Runs every pending up migration from a golang-migrate style directory
(NNN_name.up.sql) against DB_URI. Having nothing to apply is not an error.
Only hosts listed in SAFE_HOSTNAMES are migrated; SQLite files always are.

Example:
  query-validator migrate --migrations fixtures/migrations`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return applyMigrations(cmd.OutOrStdout(), migrateDir)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "migrations", "", "directory of migration files")
	rootCmd.AddCommand(migrateCmd)
}

func applyMigrations(out io.Writer, dir string) error {
	if dir == "" {
		return configError(errNoMigrationsDir)
	}

	cfg, err := loadConfig(nil)
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

	res, err := applyFixtures(log, cfg, dir)
	if err != nil {
		return configError(err)
	}

	if res.Applied {
		fmt.Fprintf(out, "Migrations applied successfully (current version: %d)\n", res.Version)
	} else {
		fmt.Fprintf(out, "No new migrations to apply (current version: %d)\n", res.Version)
	}

	return nil
}

// applyFixtures applies migrations after checking the target host is
// whitelisted.
func applyFixtures(log logrus.FieldLogger, cfg *config.Config, dir string) (*migrations.Result, error) {
	if err := migrations.NewHostValidator(cfg.SafeHostnames, log).Validate(cfg.DatabaseURI); err != nil {
		return nil, err
	}

	res, err := migrations.Apply(log, cfg.DatabaseURI, dir)
	if err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return res, nil
}
