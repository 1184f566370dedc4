// Package config loads server configuration from defaults, an optional
// YAML file, PORTFOLIO_* environment variables and command-line flags, in
// that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage and object store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverGCS      = "gcs"
)

// MinJWTSecretLen is the minimum HMAC secret length in bytes
const MinJWTSecretLen = 32

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Objects   ObjectsConfig   `yaml:"objects"`
	Auth      AuthConfig      `yaml:"auth"`
	Admin     AdminConfig     `yaml:"admin"`
	Content   ContentConfig   `yaml:"content"`
	Render    RenderConfig    `yaml:"render"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"` // public URL of this server, used for /files links
}

type StorageConfig struct {
	Driver      string `yaml:"driver"` // sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type ObjectsConfig struct {
	Driver             string `yaml:"driver"` // bolt, gcs
	BoltPath           string `yaml:"bolt_path"`
	GCSBucket          string `yaml:"gcs_bucket"`
	GCSPublicBaseURL   string `yaml:"gcs_public_base_url"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

// AdminConfig holds the bootstrap credentials of the single admin user.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type ContentConfig struct {
	CallTimeout time.Duration `yaml:"call_timeout"`
}

type RenderConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ChromePath string `yaml:"chrome_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type RateLimitConfig struct {
	LoginPerMinute int `yaml:"login_per_minute"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "portfolio.db",
		},
		Objects: ObjectsConfig{
			Driver:   DriverBolt,
			BoltPath: "portfolio-objects.db",
		},
		Auth: AuthConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 720 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies PORTFOLIO_* environment variables
func (c *Config) applyEnvOverrides(getenv func(string) string) error {
	env := func(key string) string {
		return strings.TrimSpace(getenv("PORTFOLIO_" + key))
	}
	str := func(key string, dst *string) {
		if v := env(key); v != "" {
			*dst = v
		}
	}

	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v := env(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("PORTFOLIO_%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_ADDR", &c.Server.Addr)
	str("SERVER_BASE_URL", &c.Server.BaseURL)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_SQLITE_PATH", &c.Storage.SQLitePath)
	str("STORAGE_POSTGRES_DSN", &c.Storage.PostgresDSN)
	str("OBJECTS_DRIVER", &c.Objects.Driver)
	str("OBJECTS_BOLT_PATH", &c.Objects.BoltPath)
	str("OBJECTS_GCS_BUCKET", &c.Objects.GCSBucket)
	str("OBJECTS_GCS_PUBLIC_BASE_URL", &c.Objects.GCSPublicBaseURL)
	str("OBJECTS_GCS_CREDENTIALS_FILE", &c.Objects.GCSCredentialsFile)
	str("AUTH_JWT_SECRET", &c.Auth.JWTSecret)
	dur("AUTH_ACCESS_TTL", &c.Auth.AccessTTL)
	dur("AUTH_REFRESH_TTL", &c.Auth.RefreshTTL)
	str("ADMIN_EMAIL", &c.Admin.Email)
	str("ADMIN_PASSWORD", &c.Admin.Password)
	dur("CONTENT_CALL_TIMEOUT", &c.Content.CallTimeout)
	str("RENDER_CHROME_PATH", &c.Render.ChromePath)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := env("RENDER_ENABLED"); v != "" {
		c.Render.Enabled = parseBool(v)
	}
	if v := env("RATELIMIT_LOGIN_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORTFOLIO_RATELIMIT_LOGIN_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.LoginPerMinute = n
		}
	}

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid storage.driver %q (valid: %s, %s)", c.Storage.Driver, DriverSQLite, DriverPostgres))
	}

	switch c.Objects.Driver {
	case DriverBolt:
		if c.Objects.BoltPath == "" {
			errs = append(errs, errors.New("objects.bolt_path is required for the bolt driver"))
		}
	case DriverGCS:
		if c.Objects.GCSBucket == "" {
			errs = append(errs, errors.New("objects.gcs_bucket is required for the gcs driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid objects.driver %q (valid: %s, %s)", c.Objects.Driver, DriverBolt, DriverGCS))
	}

	if len(c.Auth.JWTSecret) < MinJWTSecretLen {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinJWTSecretLen))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("auth.access_ttl must be positive"))
	}
	if c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		errs = append(errs, errors.New("auth.refresh_ttl must be longer than auth.access_ttl"))
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("admin.email and admin.password must be set together"))
	}
	if c.Content.CallTimeout < 0 {
		errs = append(errs, errors.New("content.call_timeout must not be negative"))
	}
	if c.RateLimit.LoginPerMinute <= 0 {
		errs = append(errs, errors.New("ratelimit.login_per_minute must be positive"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("invalid log.format %q (valid: json, text)", c.Log.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel parses the configured level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}

// NewLogger builds the process logger from the log settings
func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// Flags holds command-line overrides.
type Flags struct {
	ConfigPath    string
	Addr          string
	BaseURL       string
	StorageDriver string
	SQLitePath    string
	PostgresDSN   string
	ObjectsDriver string
	BoltPath      string
	LogLevel      string
	RenderEnabled bool
}

// RegisterFlags defines the override flags on fs
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.BaseURL, "base-url", "", "Public base URL of the server")
	fs.StringVar(&f.StorageDriver, "storage", "", "Document storage driver (sqlite, postgres)")
	fs.StringVar(&f.SQLitePath, "db", "", "SQLite database path")
	fs.StringVar(&f.PostgresDSN, "postgres-dsn", "", "PostgreSQL connection string")
	fs.StringVar(&f.ObjectsDriver, "objects", "", "Object storage driver (bolt, gcs)")
	fs.StringVar(&f.BoltPath, "objects-db", "", "bbolt object store path")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&f.RenderEnabled, "render", false, "Enable PDF rendering of the resume page")
	return f
}

// Apply copies the flags that were set on the command line into cfg
func (f *Flags) Apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "addr":
			cfg.Server.Addr = f.Addr
		case "base-url":
			cfg.Server.BaseURL = f.BaseURL
		case "storage":
			cfg.Storage.Driver = f.StorageDriver
		case "db":
			cfg.Storage.SQLitePath = f.SQLitePath
		case "postgres-dsn":
			cfg.Storage.PostgresDSN = f.PostgresDSN
		case "objects":
			cfg.Objects.Driver = f.ObjectsDriver
		case "objects-db":
			cfg.Objects.BoltPath = f.BoltPath
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "render":
			cfg.Render.Enabled = f.RenderEnabled
		}
	})
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
