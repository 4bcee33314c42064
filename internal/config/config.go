// Package config loads the service configuration from an optional
// config file and TRIPSCALE_-prefixed environment variables, with
// sensible defaults for local development.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session storage backends.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dify    DifyConfig    `mapstructure:"dify"`
	Session SessionConfig `mapstructure:"session"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DifyConfig holds the AI collaborator endpoint and its resilience
// settings.
type DifyConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryDelayMs   int    `mapstructure:"retry_delay_ms"`
}

// Timeout returns the per-attempt timeout as a duration.
func (c DifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base backoff unit as a duration.
func (c DifyConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// SessionConfig selects and tunes the session store backend.
type SessionConfig struct {
	Backend              string `mapstructure:"backend"`
	DataDir              string `mapstructure:"data_dir"`
	PostgresDSN          string `mapstructure:"postgres_dsn"`
	IdleTTLMinutes       int    `mapstructure:"idle_ttl_minutes"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"`
}

// IdleTTL returns how long a session may sit untouched before sweeping.
func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// SweepInterval returns how often background sweeps run.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("dify.base_url", "http://localhost:8090")
	v.SetDefault("dify.api_key", "")
	v.SetDefault("dify.timeout_seconds", 30)
	v.SetDefault("dify.max_retries", 3)
	v.SetDefault("dify.retry_delay_ms", 1000)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.data_dir", "data")
	v.SetDefault("session.postgres_dsn", "")
	v.SetDefault("session.idle_ttl_minutes", 30)
	v.SetDefault("session.sweep_interval_seconds", 60)
}

// Load reads the configuration. A non-empty path names a config file
// that must exist; with an empty path, a tripscale.yaml in the working
// directory is used when present. Environment variables override file
// values: server.port becomes TRIPSCALE_SERVER_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRIPSCALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("tripscale")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Session.Backend {
	case BackendMemory, BackendBolt, BackendPostgres:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.Backend == BackendPostgres && c.Session.PostgresDSN == "" {
		return fmt.Errorf("session backend %s requires a postgres DSN", BackendPostgres)
	}
	if c.Dify.MaxRetries <= 0 {
		return fmt.Errorf("dify max_retries must be positive, got %d", c.Dify.MaxRetries)
	}
	if c.Dify.RetryDelayMs <= 0 {
		return fmt.Errorf("dify retry_delay_ms must be positive, got %d", c.Dify.RetryDelayMs)
	}
	return nil
}
