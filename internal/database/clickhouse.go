package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const (
	clickhouseDialTimeout     = 30 * time.Second
	clickhouseConnMaxLifetime = 10 * time.Minute
	clickhouseMaxExecSeconds  = 60
)

// openClickHouse opens a native protocol pool. Options from the DSN win;
// unset ones get the defaults below.
func openClickHouse(dsn string, maxConns int) (*sql.DB, error) {
	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing clickhouse dsn: %w", err)
	}

	if options.DialTimeout == 0 {
		options.DialTimeout = clickhouseDialTimeout
	}

	if options.Compression == nil {
		options.Compression = &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		}
	}

	if options.Settings == nil {
		options.Settings = clickhouse.Settings{}
	}

	if _, ok := options.Settings["max_execution_time"]; !ok {
		options.Settings["max_execution_time"] = clickhouseMaxExecSeconds
	}

	options.MaxOpenConns = maxConns
	options.MaxIdleConns = maxConns
	options.ConnMaxLifetime = clickhouseConnMaxLifetime

	return clickhouse.OpenDB(options), nil
}
