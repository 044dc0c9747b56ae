package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// config is the root configuration structure for granteectl, loaded from a
// YAML file (./granteectl.yaml or ~/.config/granteectl/granteectl.yaml) and
// overridable via GRANTEECTL_-prefixed environment variables.
type config struct {
	Store      storeConfig `mapstructure:"store"`
	Superusers []string    `mapstructure:"superusers"`
	Log        logConfig   `mapstructure:"log"`
}

type storeConfig struct {
	// Driver is "sqlite" or "fake". "fake" keeps the catalog entirely
	// in-memory for one process's lifetime; it exists for smoke-testing
	// this CLI without a database file.
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type logConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Verbosity  int    `mapstructure:"verbosity"`
}

func loadConfig() (*config, error) {
	viper.SetConfigName("granteectl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.config/granteectl")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GRANTEECTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.path", "grantee.db")
	viper.SetDefault("log.path", "granteectl.log")
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age_days", 7)
	viper.SetDefault("log.verbosity", 4)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
