package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("ADMIN_TOKEN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.AdminEnabled())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "DB_HOST=db.internal\nDB_PORT=6432\nREDIS_URL=localhost:6379\nCACHE_TTL=30s\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv does not override variables that are already set.
	for _, key := range []string{"DB_HOST", "DB_PORT", "REDIS_URL", "CACHE_TTL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "6432", cfg.Port)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "host=db.internal port=6432 user=star_burger password=postgres_password dbname=star_burger sslmode=disable", cfg.DatabaseDSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Host: "h", DBName: "d", Port: "5432"}},
		{name: "missing host", cfg: Config{DBName: "d", Port: "5432"}, wantErr: true},
		{name: "missing db name", cfg: Config{Host: "h", Port: "5432"}, wantErr: true},
		{name: "bad port", cfg: Config{Host: "h", DBName: "d", Port: "abc"}, wantErr: true},
		{name: "zero port", cfg: Config{Host: "h", DBName: "d", Port: "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
