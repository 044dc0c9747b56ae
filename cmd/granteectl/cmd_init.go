package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// defaultConfig mirrors config's mapstructure tags with yaml tags, so the
// scaffold this writes is exactly what loadConfig later reads back via
// viper. Kept separate from config's own struct tags since viper's
// mapstructure keys and yaml.v3's yaml keys happen to agree here but are
// not guaranteed to by either library.
type defaultConfig struct {
	Store struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Superusers []string `yaml:"superusers"`
	Log        struct {
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Verbosity  int    `yaml:"verbosity"`
	} `yaml:"log"`
}

func newInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default granteectl.yaml config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg defaultConfig
			cfg.Store.Driver = "sqlite"
			cfg.Store.Path = "grantee.db"
			cfg.Log.Path = "granteectl.log"
			cfg.Log.MaxSizeMB = 10
			cfg.Log.MaxBackups = 3
			cfg.Log.MaxAgeDays = 7
			cfg.Log.Verbosity = 4

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			return os.WriteFile(path, out, 0o644)
		},
	}

	cmd.Flags().StringVar(&path, "path", "granteectl.yaml", "where to write the config file")
	return cmd
}
