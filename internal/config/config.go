// Package config loads the ambient §6.4 configuration: which venues to
// connect to, snapshot/backoff/timeout tuning, and logging. Grounded on
// the teacher's internal/config/config.go Load/Validate pattern, using
// the same spf13/viper layering (file + "MARKETPULSE_"-prefixed env
// overrides).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for a marketdata process.
type Config struct {
	Venues   []string       `mapstructure:"venues"`
	Log      LogConfig      `mapstructure:"log"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Stream   StreamConfig   `mapstructure:"stream"`
}

// LogConfig controls the ambient log/slog handler, matching the teacher's
// cmd/bot/main.go choice between a JSON and a text handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug|info|warn|error
	Format string `mapstructure:"format"` // json|text
}

// SnapshotConfig tunes the §6.2 HTTP bootstrap fetch.
type SnapshotConfig struct {
	Depth   int           `mapstructure:"depth"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StreamConfig tunes the §4.3/§4.7 validation and reconnect parameters.
type StreamConfig struct {
	SubscriptionTimeout    time.Duration `mapstructure:"subscription_timeout"`
	ReconnectInitialBackoff time.Duration `mapstructure:"reconnect_initial_backoff"`
}

// Load reads configuration from the TOML/YAML/JSON file at path (whichever
// extension it has), layering "MARKETPULSE_"-prefixed environment
// variables over it, and applies defaults matching §4/§6's stated
// defaults (10s subscription timeout, 125ms starting backoff, depth 1000).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("snapshot.depth", 1000)
	v.SetDefault("snapshot.timeout", 2500*time.Millisecond)
	v.SetDefault("stream.subscription_timeout", 10*time.Second)
	v.SetDefault("stream.reconnect_initial_backoff", 125*time.Millisecond)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration is usable before any socket is
// opened, matching the teacher's fail-fast Validate() convention.
func (c *Config) Validate() error {
	if len(c.Venues) == 0 {
		return fmt.Errorf("config: at least one venue must be configured")
	}
	if c.Snapshot.Depth <= 0 {
		return fmt.Errorf("config: snapshot.depth must be positive")
	}
	if c.Stream.SubscriptionTimeout <= 0 {
		return fmt.Errorf("config: stream.subscription_timeout must be positive")
	}
	if c.Stream.ReconnectInitialBackoff <= 0 {
		return fmt.Errorf("config: stream.reconnect_initial_backoff must be positive")
	}
	for _, name := range c.Venues {
		if !isKnownVenue(name) {
			return fmt.Errorf("config: unknown venue %q", name)
		}
	}
	return nil
}

func isKnownVenue(name string) bool {
	switch name {
	case "binance_spot", "binance_futures_usd", "okx":
		return true
	default:
		return false
	}
}
