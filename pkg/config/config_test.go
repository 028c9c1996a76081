package config_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datahihi1/craft-mini/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Layers(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"craft.yaml": &fstest.MapFile{Data: []byte(`
name: demo
env: local
debug: true
address: ":9000"
database:
  url: sqlite://demo.db
session:
  ttl: 30m
log:
  format: text
`)},
	}

	cfg, err := config.Load(
		config.WithFS(fsys),
		config.WithYAML("craft.yaml"),
		config.WithEnvironment(map[string]string{
			"APP_ADDRESS":   ":7000",
			"SESSION_STORE": "Redis",
			"REDIS_URL":     "redis://localhost:6379/0",
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":7000", cfg.Address, "environment overrides yaml")
	assert.Equal(t, "sqlite://demo.db", cfg.Database.URL)
	assert.Equal(t, "schema_migrations", cfg.Database.MigrationsTable, "defaults survive partial yaml")
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, config.StoreRedis, cfg.Session.Store)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_MissingYAMLSkipped(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(
		config.WithFS(fstest.MapFS{}),
		config.WithYAML("absent.yaml"),
		config.WithEnvironment(map[string]string{}),
	)
	require.NoError(t, err)
	assert.Equal(t, "craft", cfg.Name)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"craft.yaml": &fstest.MapFile{Data: []byte("name: [unclosed")}}
	_, err := config.Load(config.WithFS(fsys), config.WithYAML("craft.yaml"), config.WithEnvironment(map[string]string{}))
	require.ErrorIs(t, err, config.ErrParse)
}

func TestLoad_BadEnvironment(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.WithEnvironment(map[string]string{"APP_DEBUG": "maybe"}))
	require.ErrorIs(t, err, config.ErrParse)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty address", func(c *config.Config) { c.Address = "" }},
		{"unknown store", func(c *config.Config) { c.Session.Store = "file" }},
		{"redis without url", func(c *config.Config) { c.Session.Store = config.StoreRedis }},
		{"short secret", func(c *config.Config) { c.Session.Secret = "short" }},
		{"zero ttl", func(c *config.Config) { c.Session.TTL = 0 }},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}

	require.NoError(t, config.Default().Validate())
}
