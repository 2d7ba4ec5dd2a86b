package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. BINANCE_TRADER_BASE_URL.
const EnvPrefix = "BINANCE_TRADER"

// Load reads a YAML configuration file on top of the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays BINANCE_TRADER_* environment variables onto cfg.
// Unset variables leave the current values untouched.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// Validate checks the configuration and fills zero values with defaults.
func Validate(cfg *Config) error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http or https URL, got %q", cfg.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url has no host: %q", cfg.BaseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return fmt.Errorf("base_url must not carry a query or fragment: %q", cfg.BaseURL)
	}

	if cfg.Requester == "" {
		cfg.Requester = protocol.BackendHTTP
	}
	known := false
	for _, b := range protocol.Backends() {
		if cfg.Requester == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("requester must be one of %v, got %q", protocol.Backends(), cfg.Requester)
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if cfg.Transport.MaxIdleConns < 0 {
		return fmt.Errorf("transport.max_idle_conns must not be negative")
	}
	if cfg.Transport.IdleConnTimeout < 0 {
		return fmt.Errorf("transport.idle_conn_timeout must not be negative")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}
