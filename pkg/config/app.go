package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the full runtime configuration of the API server. Values come
// from DefaultAppConfig, then the optional YAML file, then the environment.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Pagination PaginationConfig `yaml:"pagination"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is "pgx" or "sqlite3".
	Driver        string        `yaml:"driver"`
	URL           string        `yaml:"url"`
	SearchTimeout time.Duration `yaml:"search_timeout"`
}

type AuthConfig struct {
	// JWTSecret is usually left to the JWT_SECRET variable rather than the file.
	JWTSecret string `yaml:"jwt_secret"`
}

type PaginationConfig struct {
	DefaultPage     int `yaml:"default_page"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	DefaultLimit    int `yaml:"default_search_limit"`
	MaxLimit        int `yaml:"max_search_limit"`
}

type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled"`
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	TrustProxy bool    `yaml:"trust_proxy"`
}

type TracingConfig struct {
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// MinJWTSecretLength is the shortest HS256 secret the server accepts.
const MinJWTSecretLength = 32

// DefaultAppConfig returns the settings used when neither file nor
// environment says otherwise.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        "pgx",
			SearchTimeout: 5 * time.Second,
		},
		Pagination: PaginationConfig{
			DefaultPage:     1,
			DefaultPageSize: 20,
			MaxPageSize:     100,
			DefaultLimit:    20,
			MaxLimit:        50,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
		},
		Tracing: TracingConfig{
			ServiceName: "reviewhub",
			SampleRatio: 0.1,
		},
	}
}

// LoadAppConfig builds the configuration. An empty path falls back to
// APP_CONFIG_FILE; when that is empty too only defaults and environment are
// used. Environment variables override file values.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()

	if path == "" {
		path = GetEnvString("APP_CONFIG_FILE", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return AppConfig{}, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	Metrics.RecordLoadTimestamp()
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	s := &c.Server
	s.Addr = GetEnvString("SERVER_ADDR", s.Addr)
	s.ReadHeaderTimeout = GetEnvDuration("SERVER_READ_HEADER_TIMEOUT", s.ReadHeaderTimeout)
	s.ReadTimeout = GetEnvDuration("SERVER_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = GetEnvDuration("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = GetEnvDuration("SERVER_IDLE_TIMEOUT", s.IdleTimeout)
	s.RequestTimeout = GetEnvDuration("REQUEST_TIMEOUT", s.RequestTimeout)
	s.ShutdownTimeout = GetEnvDuration("SHUTDOWN_TIMEOUT", s.ShutdownTimeout)

	d := &c.Database
	d.Driver = GetEnvString("DATABASE_DRIVER", d.Driver)
	d.URL = GetEnvString("DATABASE_URL", d.URL)
	d.SearchTimeout = GetEnvDuration("SEARCH_TIMEOUT", d.SearchTimeout)

	c.Auth.JWTSecret = GetEnvString("JWT_SECRET", c.Auth.JWTSecret)

	p := &c.Pagination
	p.DefaultPage = GetEnvInt("PAGINATION_DEFAULT_PAGE", p.DefaultPage)
	p.DefaultPageSize = GetEnvInt("PAGINATION_DEFAULT_PAGE_SIZE", p.DefaultPageSize)
	p.MaxPageSize = GetEnvInt("PAGINATION_MAX_PAGE_SIZE", p.MaxPageSize)
	p.DefaultLimit = GetEnvInt("SEARCH_DEFAULT_LIMIT", p.DefaultLimit)
	p.MaxLimit = GetEnvInt("SEARCH_MAX_LIMIT", p.MaxLimit)

	r := &c.RateLimit
	r.Enabled = GetEnvBool("RATE_LIMIT_ENABLED", r.Enabled)
	r.RPS = GetEnvFloat("RATE_LIMIT_RPS", r.RPS)
	r.Burst = GetEnvInt("RATE_LIMIT_BURST", r.Burst)
	r.TrustProxy = GetEnvBool("RATE_LIMIT_TRUST_PROXY", r.TrustProxy)

	t := &c.Tracing
	t.ServiceName = GetEnvString("OTEL_SERVICE_NAME", t.ServiceName)
	t.SampleRatio = GetEnvFloat("TRACE_SAMPLE_RATIO", t.SampleRatio)
}

// Validate reports every invalid field at once.
func (c AppConfig) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			Metrics.RecordValidationError(field)
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	positive := func(n int) error {
		if n <= 0 {
			return fmt.Errorf("must be positive, got %d", n)
		}
		return nil
	}

	if c.Server.Addr == "" {
		check("server.addr", errors.New("must not be empty"))
	}
	check("server.read_header_timeout", ValidatePositiveDuration(c.Server.ReadHeaderTimeout))
	check("server.read_timeout", ValidatePositiveDuration(c.Server.ReadTimeout))
	check("server.write_timeout", ValidatePositiveDuration(c.Server.WriteTimeout))
	check("server.idle_timeout", ValidatePositiveDuration(c.Server.IdleTimeout))
	check("server.request_timeout", ValidateDurationRange(c.Server.RequestTimeout, 100*time.Millisecond, 5*time.Minute))
	check("server.shutdown_timeout", ValidatePositiveDuration(c.Server.ShutdownTimeout))

	switch c.Database.Driver {
	case "pgx", "sqlite3":
	default:
		check("database.driver", fmt.Errorf("unsupported driver %q (want pgx or sqlite3)", c.Database.Driver))
	}
	if c.Database.URL == "" {
		check("database.url", errors.New("must not be empty"))
	}
	check("database.search_timeout", ValidatePositiveDuration(c.Database.SearchTimeout))

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		check("auth.jwt_secret", fmt.Errorf("must be at least %d characters", MinJWTSecretLength))
	}

	p := c.Pagination
	check("pagination.default_page", positive(p.DefaultPage))
	check("pagination.default_page_size", positive(p.DefaultPageSize))
	check("pagination.max_page_size", positive(p.MaxPageSize))
	check("pagination.default_search_limit", positive(p.DefaultLimit))
	check("pagination.max_search_limit", positive(p.MaxLimit))
	if p.DefaultPageSize > p.MaxPageSize {
		check("pagination.default_page_size", fmt.Errorf("exceeds max_page_size %d", p.MaxPageSize))
	}
	if p.DefaultLimit > p.MaxLimit {
		check("pagination.default_search_limit", fmt.Errorf("exceeds max_search_limit %d", p.MaxLimit))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			check("rate_limit.rps", fmt.Errorf("must be positive, got %v", c.RateLimit.RPS))
		}
		check("rate_limit.burst", positive(c.RateLimit.Burst))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		check("tracing.sample_ratio", fmt.Errorf("must be within [0, 1], got %v", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}
