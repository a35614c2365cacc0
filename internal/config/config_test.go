package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TRACKER_STORAGE", "TRACKER_DATA_FILE", "HTTP_ADDR", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "EXPORT_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.Equal(t, "students.json", cfg.DataFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "students_export.csv", cfg.ExportFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRACKER_STORAGE", "SQLite")
	t.Setenv("TRACKER_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	base := Config{Storage: StorageJSON, DataFile: "s.json", LogLevel: "info", LogFormat: "text"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"Unknown storage", func(c *Config) { c.Storage = "redis" }, "unknown TRACKER_STORAGE"},
		{"Postgres without user", func(c *Config) { c.Storage = StoragePostgres }, "DB_USER is required"},
		{"Empty data file", func(c *Config) { c.DataFile = "" }, "TRACKER_DATA_FILE is required"},
		{"Bad log level", func(c *Config) { c.LogLevel = "trace" }, "unknown LOG_LEVEL"},
		{"Bad log format", func(c *Config) { c.LogFormat = "xml" }, "unknown LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	c := Config{DBHost: "db", DBUser: "yoru", DBPassword: "pw", DBName: "studentdb", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=yoru password=pw dbname=studentdb port=5432 sslmode=disable", c.PostgresDSN())
}

func TestLoadShutdownTimeout(t *testing.T) {
	t.Setenv("TRACKER_STORAGE", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)

	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}
