package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samims/notifier/internal/config"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.DBConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.DBConfig{Driver: config.DriverMemory}},
		{name: "sqlite", cfg: config.DBConfig{
			Driver: config.DriverSQLite,
			URL:    "file:" + filepath.Join(t.TempDir(), "open.db"),
		}},
		{name: "redis", cfg: config.DBConfig{Driver: config.DriverRedis, RedisAddr: mr.Addr()}},
		{name: "unknown driver", cfg: config.DBConfig{Driver: "mongo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := Open(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closeFn()
			assert.NoError(t, s.Ping(context.Background()))
		})
	}
}
