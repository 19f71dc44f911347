package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    string
		wantErr bool
	}{
		{
			name:   "postgres",
			config: Config{Driver: DriverPostgres, Host: "localhost", Port: 5432, User: "board", Password: "pw", Database: "jobboard", SSLMode: "disable"},
			want:   "host=localhost port=5432 user=board password=pw dbname=jobboard sslmode=disable",
		},
		{
			name:   "sqlite",
			config: Config{Driver: DriverSQLite, Path: "board.db"},
			want:   "file:board.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name:    "unknown",
			config:  Config{Driver: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := tt.config.DSN()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dsn)
		})
	}
}

func TestNewClient_SQLite(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := NewClient(&Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "board.db")}, logger)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, DriverSQLite, client.Driver())
	assert.NoError(t, client.HealthCheck(context.Background()))

	tx, err := client.BeginTx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
}
