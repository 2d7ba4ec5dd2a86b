package config

import (
	"time"

	"github.com/danielcaballero88/binance-trader/pkg/binance"
	"github.com/danielcaballero88/binance-trader/pkg/protocol"
)

// Config is the root configuration structure.
type Config struct {
	BaseURL   string        `yaml:"base_url" split_words:"true"`
	Requester string        `yaml:"requester" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout" split_words:"true"`
	HTTP2     bool          `yaml:"http2" split_words:"true"`
	Async     bool          `yaml:"async" split_words:"true"`
	Transport Transport     `yaml:"transport" split_words:"true"`
	Log       Log           `yaml:"log" split_words:"true"`
	Metrics   Metrics       `yaml:"metrics" split_words:"true"`
}

// Transport configures the connection pool of the selected requester.
type Transport struct {
	MaxIdleConns    int           `yaml:"max_idle_conns" split_words:"true"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" split_words:"true"`
	TLSInsecure     bool          `yaml:"tls_insecure" split_words:"true"`
	UserAgent       string        `yaml:"user_agent" split_words:"true"`
}

// Log configures the stderr logger.
type Log struct {
	Level string `yaml:"level" split_words:"true"`
}

// Metrics configures the end-of-run metrics dump.
type Metrics struct {
	Enabled bool `yaml:"enabled" split_words:"true"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   binance.DefaultBaseURL,
		Requester: protocol.BackendHTTP,
		Transport: Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
			UserAgent:       "binance-trader",
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// ClientConfig converts the transport section into protocol settings.
func (c *Config) ClientConfig() protocol.ClientConfig {
	return protocol.ClientConfig{
		MaxIdleConns:    c.Transport.MaxIdleConns,
		IdleConnTimeout: c.Transport.IdleConnTimeout,
		TLSInsecure:     c.Transport.TLSInsecure,
		HTTP2:           c.HTTP2,
		UserAgent:       c.Transport.UserAgent,
	}
}
