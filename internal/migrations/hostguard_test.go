package migrations

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestHostValidator_Validate(t *testing.T) {
	t.Parallel()

	v := NewHostValidator([]string{"localhost", "127.0.0.1", "::1", "clickhouse-test"}, logrus.New())

	tests := []struct {
		name    string
		dsn     string
		wantErr error
	}{
		{name: "local postgres", dsn: "postgres://u:p@localhost:5432/app"},
		{name: "ipv6 loopback", dsn: "postgres://u:p@[::1]:5432/app"},
		{name: "whitelisted clickhouse", dsn: "clickhouse://default@clickhouse-test:9000/fixtures"},
		{name: "clickhouse host list", dsn: "clickhouse://127.0.0.1:9000,localhost:9001/fixtures"},
		{name: "sqlite file", dsn: "sqlite:////var/lib/prod.db"},
		{name: "remote postgres", dsn: "postgres://u:p@prod-db.internal:5432/app", wantErr: ErrNonWhitelistedHost},
		{name: "one remote clickhouse host", dsn: "clickhouse://localhost:9000,prod-ch:9000/db", wantErr: ErrNonWhitelistedHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tt.dsn)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}
