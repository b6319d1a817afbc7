// Package database opens the query engine and hands out dedicated
// connections for test queries.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/row"
	_ "github.com/lib/pq"           // PostgreSQL driver registration
	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxConns    = 4
	defaultPingTimeout = 5 * time.Second
)

// ErrClosed is returned when using an engine after Close.
var ErrClosed = errors.New("database engine closed")

// Options tunes the connection pool.
type Options struct {
	// MaxConns caps open connections. It should match the worker count.
	MaxConns int
	// PingTimeout bounds the connectivity check made by Open.
	PingTimeout time.Duration
}

// Engine is a pooled database handle shared by all workers.
type Engine interface {
	// Conn reserves a dedicated connection. The caller must close it.
	Conn(ctx context.Context) (Conn, error)
	// Query runs a statement on any pooled connection.
	Query(ctx context.Context, query string, args ...interface{}) ([]*row.Row, error)
	Ping(ctx context.Context) error
	Driver() Driver
	// Close disposes the pool. Calls after the first are no-ops.
	Close() error
}

// Conn is a single connection reserved for one test.
type Conn interface {
	Query(ctx context.Context, query string, args ...interface{}) ([]*row.Row, error)
	Close() error
}

type engine struct {
	db     *sql.DB
	driver Driver
	log    logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
	mu        sync.RWMutex
	closed    bool
}

// Open creates an engine for the connection string and verifies it is
// reachable.
func Open(ctx context.Context, log logrus.FieldLogger, dsn string, opts Options) (Engine, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxConns <= 0 {
		opts.MaxConns = defaultMaxConns
	}

	if opts.PingTimeout <= 0 {
		opts.PingTimeout = defaultPingTimeout
	}

	var db *sql.DB

	switch driver {
	case DriverClickHouse:
		db, err = openClickHouse(source, opts.MaxConns)
	default:
		db, err = sql.Open(string(driver), source)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", driver, err)
	}

	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(opts.MaxConns)

	e := &engine{
		db:     db,
		driver: driver,
		log: log.WithFields(logrus.Fields{
			"component": "database",
			"driver":    driver,
		}),
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()

	if err := e.Ping(pingCtx); err != nil {
		_ = db.Close()

		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"uri":       Redact(dsn),
		"max_conns": opts.MaxConns,
	}).Debug("database engine ready")

	return e, nil
}

func (e *engine) Conn(ctx context.Context) (Conn, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}

	c, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting connection from pool: %w", err)
	}

	return &conn{conn: c}, nil
}

func (e *engine) Query(ctx context.Context, query string, args ...interface{}) ([]*row.Row, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	return collectRows(rows)
}

func (e *engine) Ping(ctx context.Context) error {
	if e.isClosed() {
		return ErrClosed
	}

	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s: %w", e.driver, err)
	}

	return nil
}

func (e *engine) Driver() Driver {
	return e.driver
}

func (e *engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		e.closeErr = e.db.Close()

		e.log.Debug("database engine closed")
	})

	return e.closeErr
}

func (e *engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.closed
}

type conn struct {
	conn *sql.Conn
}

func (c *conn) Query(ctx context.Context, query string, args ...interface{}) ([]*row.Row, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}

	return collectRows(rows)
}

func (c *conn) Close() error {
	return c.conn.Close()
}

// collectRows materialises every result record and closes rows.
func collectRows(rows *sql.Rows) ([]*row.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	var result []*row.Row

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		result = append(result, row.New(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return result, nil
}

// Compile-time interface compliance check
var (
	_ Engine = (*engine)(nil)
	_ Conn   = (*conn)(nil)
)
