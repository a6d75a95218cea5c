package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearAppEnv blanks every variable LoadAppConfig reads so the host
// environment cannot leak into a test.
func clearAppEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_CONFIG_FILE", "SERVER_ADDR", "SERVER_READ_HEADER_TIMEOUT", "SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"DATABASE_DRIVER", "DATABASE_URL", "SEARCH_TIMEOUT", "JWT_SECRET",
		"PAGINATION_DEFAULT_PAGE", "PAGINATION_DEFAULT_PAGE_SIZE", "PAGINATION_MAX_PAGE_SIZE",
		"SEARCH_DEFAULT_LIMIT", "SEARCH_MAX_LIMIT", "RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST", "RATE_LIMIT_TRUST_PROXY", "OTEL_SERVICE_NAME", "TRACE_SAMPLE_RATIO",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppConfig_EnvOnly(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/reviewhub")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	want := DefaultAppConfig()
	want.Database.URL = "postgres://localhost/reviewhub"
	want.Auth.JWTSecret = testSecret
	assert.Equal(t, want, cfg)
}

func TestLoadAppConfig_FileThenEnv(t *testing.T) {
	clearAppEnv(t)
	path := writeFile(t, `
server:
  addr: ":9090"
  request_timeout: 3s
database:
  driver: sqlite3
  url: "file:reviews.db"
auth:
  jwt_secret: "`+testSecret+`"
pagination:
  default_page_size: 10
  max_page_size: 40
rate_limit:
  enabled: false
tracing:
  sample_ratio: 1
`)
	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("PAGINATION_MAX_PAGE_SIZE", "60")
	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadHeaderTimeout, "unset keys keep defaults")
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:reviews.db", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 60, cfg.Pagination.MaxPageSize)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoadAppConfig_ExplicitPathBeatsEnvPath(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	path := writeFile(t, "database:\n  url: postgres://db/reviews\n")

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/reviews", cfg.Database.URL)
}

func TestLoadAppConfig_EmptyFile(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/reviews")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadAppConfig(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadAppConfig_FileErrors(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/reviews")
	t.Setenv("JWT_SECRET", testSecret)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.yaml"), wantErr: "open config file"},
		{name: "malformed yaml", path: writeFile(t, "server: [unclosed"), wantErr: "parse config file"},
		{name: "unknown field", path: writeFile(t, "server:\n  port: 80\n"), wantErr: "parse config file"},
		{name: "bad duration", path: writeFile(t, "server:\n  request_timeout: soon\n"), wantErr: "parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAppConfig(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAppConfig_Validate(t *testing.T) {
	valid := DefaultAppConfig()
	valid.Database.URL = "postgres://db/reviews"
	valid.Auth.JWTSecret = testSecret
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{name: "empty addr", mutate: func(c *AppConfig) { c.Server.Addr = "" }, field: "server.addr"},
		{name: "zero read timeout", mutate: func(c *AppConfig) { c.Server.ReadTimeout = 0 }, field: "server.read_timeout"},
		{name: "request timeout too long", mutate: func(c *AppConfig) { c.Server.RequestTimeout = time.Hour }, field: "server.request_timeout"},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.Database.Driver = "mysql" }, field: "database.driver"},
		{name: "missing url", mutate: func(c *AppConfig) { c.Database.URL = "" }, field: "database.url"},
		{name: "short secret", mutate: func(c *AppConfig) { c.Auth.JWTSecret = "secret" }, field: "auth.jwt_secret"},
		{name: "zero max page size", mutate: func(c *AppConfig) { c.Pagination.MaxPageSize = 0 }, field: "pagination.max_page_size"},
		{name: "default above max", mutate: func(c *AppConfig) { c.Pagination.DefaultLimit = 80 }, field: "pagination.default_search_limit"},
		{name: "zero rps", mutate: func(c *AppConfig) { c.RateLimit.RPS = 0 }, field: "rate_limit.rps"},
		{name: "ratio above one", mutate: func(c *AppConfig) { c.Tracing.SampleRatio = 1.5 }, field: "tracing.sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.field+":"), err.Error())
		})
	}

	t.Run("disabled rate limit skips its checks", func(t *testing.T) {
		cfg := valid
		cfg.RateLimit = RateLimitConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := valid
		cfg.Server.Addr = ""
		cfg.Database.URL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.addr")
		assert.Contains(t, err.Error(), "database.url")
	})
}
