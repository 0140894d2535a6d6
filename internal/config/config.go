// Package config loads figma-relay settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the home directory when no
// explicit path is given.
const DefaultFileName = ".figma-relay.yaml"

// DefaultRelayURL is the WebSocket endpoint the Figma plugin's relay listens
// on locally.
const DefaultRelayURL = "ws://localhost:3055"

// Duration decodes YAML strings like "45s" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Reconnect tunes the two-phase retry schedule.
type Reconnect struct {
	Auto            bool     `yaml:"auto"`
	MaxAttempts     int      `yaml:"max_attempts"`
	BaseDelay       Duration `yaml:"base_delay"`
	MaxDelay        Duration `yaml:"max_delay"`
	PersistentDelay Duration `yaml:"persistent_delay"`
}

// Config holds all figma-relay settings.
type Config struct {
	// RelayURL is the WebSocket relay endpoint.
	RelayURL string `yaml:"relay_url"`
	// Channel pins a channel name; empty generates one per connection.
	Channel string `yaml:"channel"`
	// CommandTimeout bounds each command round-trip.
	CommandTimeout Duration `yaml:"command_timeout"`
	// Reconnect tunes automatic reconnection.
	Reconnect Reconnect `yaml:"reconnect"`
	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		RelayURL:       DefaultRelayURL,
		CommandTimeout: Duration(30 * time.Second),
		Reconnect: Reconnect{
			Auto:            true,
			MaxAttempts:     5,
			BaseDelay:       Duration(time.Second),
			MaxDelay:        Duration(30 * time.Second),
			PersistentDelay: Duration(8 * time.Second),
		},
	}
}

// Load builds the configuration: defaults, then the YAML file (explicit path
// or ~/.figma-relay.yaml if present), then environment variables. A missing
// default file is fine; a missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, DefaultFileName)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is the common case.
		default:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Alternative
// names are accepted for the relay URL because different plugin guides
// document different ones.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FIGMA_RELAY_URL"); v != "" {
		cfg.RelayURL = v
	} else if v := os.Getenv("FIGMA_SOCKET_URL"); v != "" {
		cfg.RelayURL = v
	}
	if v := os.Getenv("FIGMA_RELAY_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if v := os.Getenv("FIGMA_RELAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CommandTimeout = Duration(d)
		}
	}
	if v := os.Getenv("FIGMA_RELAY_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
}
