// Package migrations applies fixture migrations before a validation run.
package migrations

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethpandaops/query-validator/internal/database"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse" // clickhouse driver for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"   // postgres driver for migrations
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"    // sqlite3 driver for migrations
	_ "github.com/golang-migrate/migrate/v4/source/file"         // file source driver for migrations
	"github.com/sirupsen/logrus"
)

// ErrInMemoryDatabase is returned when migrating an in-memory SQLite database,
// which would vanish before the run opens its own connection.
var ErrInMemoryDatabase = errors.New("cannot migrate an in-memory database")

var errNotDirectory = errors.New("migrations path is not a directory")

// Result describes the schema state after Apply.
type Result struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Apply runs every pending up migration in dir against the database at dsn.
// Having nothing to apply is not an error.
func Apply(log logrus.FieldLogger, dsn, dir string) (*Result, error) {
	log = log.WithField("component", "migrations")

	srcURL, err := sourceURL(dir)
	if err != nil {
		return nil, err
	}

	dbURL, err := DatabaseURL(dsn)
	if err != nil {
		return nil, err
	}

	m, err := migrate.New(srcURL, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithError(errors.Join(srcErr, dbErr)).Warn("failed to close migration instance")
		}
	}()

	res := &Result{Applied: true}

	upErr := m.Up()

	switch {
	case errors.Is(upErr, migrate.ErrNoChange):
		res.Applied = false
	case upErr != nil:
		return nil, fmt.Errorf("failed to run migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	res.Version, res.Dirty = version, dirty

	entry := log.WithFields(logrus.Fields{
		"dir":     dir,
		"version": version,
		"dirty":   dirty,
	})

	if res.Applied {
		entry.Info("migrations applied")
	} else {
		entry.Info("no new migrations to apply")
	}

	return res, nil
}

func sourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving migrations directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("reading migrations directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", errNotDirectory, abs)
	}

	return "file://" + filepath.ToSlash(abs), nil
}

// DatabaseURL maps a connection string onto the URL form golang-migrate's
// drivers expect.
func DatabaseURL(dsn string) (string, error) {
	driver, source, err := database.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	switch driver {
	case database.DriverClickHouse:
		return clickhouseURL(source)
	case database.DriverPostgres:
		return source, nil
	case database.DriverSQLite:
		path := strings.TrimPrefix(source, "file:")
		if strings.HasPrefix(path, ":memory:") || strings.Contains(path, "mode=memory") {
			return "", ErrInMemoryDatabase
		}

		return "sqlite3://" + path, nil
	default:
		return "", fmt.Errorf("%w: %s", database.ErrUnsupportedScheme, driver)
	}
}

// clickhouseURL moves credentials and database into query parameters and
// enables multi-statement migration files.
func clickhouseURL(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing clickhouse dsn: %w", err)
	}

	q := u.Query()

	if u.User != nil {
		q.Set("username", u.User.Username())

		if password, ok := u.User.Password(); ok {
			q.Set("password", password)
		}

		u.User = nil
	}

	if db := strings.Trim(u.Path, "/"); db != "" && q.Get("database") == "" {
		q.Set("database", db)
	}

	u.Path = ""

	if q.Get("x-multi-statement") == "" {
		q.Set("x-multi-statement", "true")
	}

	if q.Get("x-migrations-table-engine") == "" {
		q.Set("x-migrations-table-engine", "MergeTree")
	}

	u.RawQuery = q.Encode()

	return u.String(), nil
}
