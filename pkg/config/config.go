package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrReadFile = errors.New("config: failed to read file")
	ErrParse    = errors.New("config: failed to parse")
	ErrInvalid  = errors.New("config: invalid configuration")
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the application configuration.
//
// Fields carry no envDefault tags: unset variables leave the value loaded
// from Default and the YAML file untouched.
type Config struct {
	Name        string `yaml:"name" env:"APP_NAME"`
	Env         string `yaml:"env" env:"APP_ENV"`
	Address     string `yaml:"address" env:"APP_ADDRESS"`
	BasePath    string `yaml:"base_path" env:"APP_BASE_PATH"`
	Timezone    string `yaml:"timezone" env:"APP_TIMEZONE"`
	TestValue   string `yaml:"test_value" env:"APP_TEST_VALUE"`
	Debug       bool   `yaml:"debug" env:"APP_DEBUG"`
	Maintenance bool   `yaml:"maintenance" env:"APP_MAINTENANCE"`

	// CORSOrigins lists the origins allowed to call the app from a browser.
	CORSOrigins []string `yaml:"cors_origins" env:"APP_CORS_ORIGINS" envSeparator:","`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	URL             string `yaml:"url" env:"DATABASE_URL"`
	MigrationsTable string `yaml:"migrations_table" env:"DATABASE_MIGRATIONS_TABLE"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type SessionConfig struct {
	Store  string        `yaml:"store" env:"SESSION_STORE"`
	Cookie string        `yaml:"cookie" env:"SESSION_COOKIE"`
	Secret string        `yaml:"secret" env:"SESSION_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"SESSION_TTL"`
}

type LogConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL"`
	Format    string `yaml:"format" env:"LOG_FORMAT"`
	SentryDSN string `yaml:"sentry_dsn" env:"SENTRY_DSN"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name:      "craft",
		Env:       "production",
		Address:   ":8080",
		Timezone:  "UTC",
		TestValue: "1",
		Database: DatabaseConfig{
			URL:             "sqlite://craft.db",
			MigrationsTable: "schema_migrations",
		},
		Session: SessionConfig{
			Store:  StoreMemory,
			Cookie: "craft_session",
			TTL:    2 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	fsys     fs.FS
	yamlPath string
	dotenv   []string
	environ  map[string]string
}

// WithYAML reads path from the working directory. A missing file is skipped.
func WithYAML(path string) Option {
	return func(l *loader) {
		l.yamlPath = path
	}
}

// WithFS reads the YAML file from fsys instead of the working directory.
func WithFS(fsys fs.FS) Option {
	return func(l *loader) {
		l.fsys = fsys
	}
}

// WithDotenv loads .env files into the process environment. Variables that
// are already set win. Missing files are skipped.
func WithDotenv(paths ...string) Option {
	return func(l *loader) {
		l.dotenv = append(l.dotenv, paths...)
	}
}

// WithEnvironment replaces the process environment as the source of
// variables.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) {
		l.environ = vars
	}
}

// Load builds the configuration in layers: Default, the YAML file, .env
// files, then environment variables. The result is validated.
//
// Example:
//
//	cfg, err := config.Load(config.WithYAML("craft.yaml"), config.WithDotenv(".env"))
//	if err != nil {
//	    return err
//	}
func Load(opts ...Option) (Config, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	cfg := Default()

	if l.yamlPath != "" {
		if err := l.readYAML(&cfg); err != nil {
			return cfg, err
		}
	}

	for _, p := range l.dotenv {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s: %w", ErrReadFile, p, err)
		}
	}

	envOpts := env.Options{}
	if l.environ != nil {
		envOpts.Environment = l.environ
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return cfg, fmt.Errorf("%w: environment: %w", ErrParse, err)
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func (l *loader) readYAML(cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if l.fsys != nil {
		data, err = fs.ReadFile(l.fsys, l.yamlPath)
	} else {
		data, err = os.ReadFile(l.yamlPath)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFile, l.yamlPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParse, l.yamlPath, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis url is required for the redis session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.Session.Store))
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session secret must be at least 32 bytes"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone: %w", err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalid}, errs...)...)
}

// IsProduction reports whether Env is "production" or "prod".
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Location returns the configured time zone, or UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil && c.Timezone != "" {
		return loc
	}
	return time.UTC
}
