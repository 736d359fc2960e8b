package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 0.7, cfg.Handoff.Threshold)
	assert.Equal(t, 10*time.Minute, cfg.Handoff.LoopWindow)
	assert.Equal(t, 3, cfg.Handoff.LoopDepth)
	assert.Equal(t, 80.0, cfg.Scoring.Hot)
	assert.Equal(t, 40.0, cfg.Scoring.Warm)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: 9090
handoff:
  threshold: 0.85
  workflows:
    buyer: wf-buyer-intro
database:
  driver: sqlite
  name: /tmp/leadflow.db
`), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 0.85, cfg.Handoff.Threshold)
	assert.Equal(t, "wf-buyer-intro", cfg.Handoff.Workflows["buyer"])
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/leadflow.db", cfg.Database.DSN())
	assert.Equal(t, 3, cfg.Handoff.LoopDepth, "unset keys keep defaults")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9090\n"), 0o600))

	t.Setenv("LEADFLOW_SERVER_HTTP_PORT", "7070")
	t.Setenv("LEADFLOW_HANDOFF_LOOP_WINDOW", "5m")
	t.Setenv("LEADFLOW_REDIS_ENABLED", "true")
	t.Setenv("LEADFLOW_LOG_OUTPUT_PATHS", "stdout, /var/log/leadflow.log")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.Handoff.LoopWindow)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"stdout", "/var/log/leadflow.log"}, cfg.Log.OutputPaths)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/leadflow.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]func(*Config){
		"bad port":             func(c *Config) { c.Server.HTTPPort = -1 },
		"threshold above one":  func(c *Config) { c.Handoff.Threshold = 1.5 },
		"warm above hot":       func(c *Config) { c.Scoring.Warm = 90 },
		"unknown driver":       func(c *Config) { c.Database.Driver = "oracle" },
		"auth without secret":  func(c *Config) { c.Auth.Enabled = true },
		"durable cache no sql": func(c *Config) { c.Cache.DurableEnabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_CustomValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			if c.CRM.BaseURL == "" {
				return assert.AnError
			}
			return nil
		}).
		Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432,
		User: "leadflow", Password: "pw", Name: "leads", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=leadflow password=pw dbname=leads sslmode=disable",
		d.DSN())
}
