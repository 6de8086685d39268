package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "https://api-discador-production.up.railway.app", cfg.BaseURL)
	assert.Equal(t, "DASHBOARD_LOVABLE", cfg.ClientTag)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Second, cfg.StatusInterval)
	assert.Equal(t, 30*time.Second, cfg.CostsInterval)
	assert.Equal(t, ".csv", cfg.AcceptedExtension)
	assert.Equal(t, "debug.log", cfg.LogFile)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("MAILING_DASHBOARD_BASE_URL", "http://env.local:8000")
	t.Setenv("MAILING_DASHBOARD_CLIENT_TAG", "ENV_TAG")
	t.Setenv("MAILING_DASHBOARD_STATUS_INTERVAL", "5s")

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_tag: FILE_TAG\ncosts_interval: 1m\n"), 0644))

	cfg, err := Load(path, Overrides{LogFile: "custom.log"})
	require.NoError(t, err)

	assert.Equal(t, "http://env.local:8000", cfg.BaseURL, "env applies when the file is silent")
	assert.Equal(t, "FILE_TAG", cfg.ClientTag, "file beats env")
	assert.Equal(t, 5*time.Second, cfg.StatusInterval)
	assert.Equal(t, time.Minute, cfg.CostsInterval)
	assert.Equal(t, "custom.log", cfg.LogFile, "flags beat everything")

	cfg, err = Load(path, Overrides{ClientTag: "FLAG_TAG"})
	require.NoError(t, err)
	assert.Equal(t, "FLAG_TAG", cfg.ClientTag)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{})
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("status_interval: [1, 2"), 0644))
	_, err = Load(bad, Overrides{})
	require.Error(t, err)

	_, err = Load("", Overrides{BaseURL: "ftp://example.com"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		BaseURL:           "https://example.com",
		ClientTag:         "TAG",
		StatusInterval:    time.Second,
		CostsInterval:     time.Second,
		AcceptedExtension: ".csv",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.BaseURL = "example.com" }},
		{"empty tag", func(c *Config) { c.ClientTag = " " }},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }},
		{"zero status interval", func(c *Config) { c.StatusInterval = 0 }},
		{"zero costs interval", func(c *Config) { c.CostsInterval = 0 }},
		{"extension without dot", func(c *Config) { c.AcceptedExtension = "csv" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	lvl, err := Config{LogLevel: "DEBUG"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
