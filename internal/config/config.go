// Package config provides configuration management for the mincut
// cluster: worker count, weight bounds, the random seed, and logging
// knobs, loadable from an optional YAML file, environment variables, and
// CLI flags, in that precedence order.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every tunable of a mincut run.
type Config struct {
	Search SearchConfig `mapstructure:"search"`
	Graph  GraphConfig  `mapstructure:"graph"`
	Log    LogConfig    `mapstructure:"log"`
}

// SearchConfig holds the distributed-search parameters.
type SearchConfig struct {
	Workers int   `mapstructure:"workers"`
	Seed    int64 `mapstructure:"seed"`
}

// GraphConfig holds the input-graph loading parameters.
type GraphConfig struct {
	MinWeight int `mapstructure:"min_weight"`
	MaxWeight int `mapstructure:"max_weight"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Load reads configuration from configPath if non-empty, else from the
// standard locations (./mincut.yaml, /etc/mincut/mincut.yaml), falling
// back to defaults when no file is found. Environment variables prefixed
// MINCUT_ override file values; flag binding (see cmd/mincut) overrides
// both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mincut")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mincut")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file: defaults + env + flags only.
		} else if os.IsNotExist(err) {
			// configPath was given but doesn't exist: defaults + env + flags.
		} else {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix("MINCUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from in-memory content, useful for
// tests that don't want to touch the filesystem.
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.workers", 1)
	v.SetDefault("search.seed", int64(1))

	v.SetDefault("graph.min_weight", 1)
	v.SetDefault("graph.max_weight", 255)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks invariants that downstream code relies on without
// re-checking.
func (c *Config) Validate() error {
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be at least 1")
	}
	if c.Graph.MinWeight < 1 {
		return fmt.Errorf("graph.min_weight must be at least 1")
	}
	if c.Graph.MaxWeight < c.Graph.MinWeight {
		return fmt.Errorf("graph.max_weight must be >= graph.min_weight")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log.format: %s", c.Log.Format)
	}
	return nil
}
