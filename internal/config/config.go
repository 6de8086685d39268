// Package config loads the dashboard settings from defaults, the
// environment, an optional YAML file and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the dashboard.
type Config struct {
	BaseURL           string        `env:"MAILING_DASHBOARD_BASE_URL"        envDefault:"https://api-discador-production.up.railway.app" yaml:"base_url"`
	ClientTag         string        `env:"MAILING_DASHBOARD_CLIENT_TAG"      envDefault:"DASHBOARD_LOVABLE"                             yaml:"client_tag"`
	HTTPTimeout       time.Duration `env:"MAILING_DASHBOARD_HTTP_TIMEOUT"    envDefault:"0s"                                            yaml:"http_timeout"`
	StatusInterval    time.Duration `env:"MAILING_DASHBOARD_STATUS_INTERVAL" envDefault:"15s"                                           yaml:"status_interval"`
	CostsInterval     time.Duration `env:"MAILING_DASHBOARD_COSTS_INTERVAL"  envDefault:"30s"                                           yaml:"costs_interval"`
	AcceptedExtension string        `env:"MAILING_DASHBOARD_EXTENSION"       envDefault:".csv"                                          yaml:"accepted_extension"`
	LogFile           string        `env:"MAILING_DASHBOARD_LOG_FILE"        envDefault:"debug.log"                                     yaml:"log_file"`
	LogLevel          string        `env:"MAILING_DASHBOARD_LOG_LEVEL"       envDefault:"info"                                          yaml:"log_level"`
	ToastTTL          time.Duration `env:"MAILING_DASHBOARD_TOAST_TTL"       envDefault:"8s"                                            yaml:"toast_ttl"`
}

// Overrides are values set explicitly on the command line. Empty fields are ignored.
type Overrides struct {
	BaseURL   string
	ClientTag string
	LogFile   string
}

// Load builds the configuration. path may be empty, in which case no file is read.
func Load(path string, overrides Overrides) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.apply(overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays the keys present in the YAML file onto cfg.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.ClientTag != "" {
		c.ClientTag = o.ClientTag
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
}

// Validate checks if the configuration values are valid
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) url, got %q", c.BaseURL)
	}
	if strings.TrimSpace(c.ClientTag) == "" {
		return errors.New("client_tag cannot be empty")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("http_timeout cannot be negative")
	}
	if c.StatusInterval <= 0 {
		return errors.New("status_interval must be positive")
	}
	if c.CostsInterval <= 0 {
		return errors.New("costs_interval must be positive")
	}
	if !strings.HasPrefix(c.AcceptedExtension, ".") || len(c.AcceptedExtension) < 2 {
		return fmt.Errorf("accepted_extension must look like .csv, got %q", c.AcceptedExtension)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}
