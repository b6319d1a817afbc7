package database

import (
	"errors"
	"fmt"
	"strings"
)

// Driver names a supported database/sql driver.
type Driver string

const (
	// DriverClickHouse is the clickhouse-go native protocol driver.
	DriverClickHouse Driver = "clickhouse"
	// DriverPostgres is the lib/pq driver.
	DriverPostgres Driver = "postgres"
	// DriverSQLite is the mattn/go-sqlite3 driver.
	DriverSQLite Driver = "sqlite3"

	sqliteMemory = ":memory:"
)

var (
	// ErrEmptyDSN is returned when no connection string is given.
	ErrEmptyDSN = errors.New("empty database uri")
	// ErrUnsupportedScheme is returned for connection strings no driver handles.
	ErrUnsupportedScheme = errors.New("unsupported database scheme")
)

// ParseDSN resolves a connection string to its driver and the data source
// name that driver expects. A "scheme+dialect://" prefix is accepted and the
// dialect suffix dropped.
func ParseDSN(dsn string) (Driver, string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", "", ErrEmptyDSN
	}

	if strings.HasPrefix(dsn, "file:") {
		return DriverSQLite, dsn, nil
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no scheme", ErrUnsupportedScheme, Redact(dsn))
	}

	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch scheme {
	case "clickhouse":
		return DriverClickHouse, "clickhouse://" + rest, nil
	case "postgres", "postgresql":
		return DriverPostgres, scheme + "://" + rest, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, sqlitePath(rest), nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// sqlitePath maps the part after "sqlite://" to a go-sqlite3 data source.
// "sqlite:///rel.db" is relative, "sqlite:////abs.db" absolute, and an
// empty path opens an in-memory database.
func sqlitePath(rest string) string {
	path := strings.TrimPrefix(rest, "/")
	if path == "" || strings.HasPrefix(path, "?") {
		return sqliteMemory + path
	}

	return path
}

// Redact returns the connection string with any password masked.
func Redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}

	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}

	if user, _, hasPassword := strings.Cut(userinfo, ":"); hasPassword {
		return scheme + "://" + user + ":***@" + host
	}

	return dsn
}
