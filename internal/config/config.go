// Package config loads the journal's configuration from a config file
// and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the journal CLI.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Path to the SQLite journal database.
	Path string `mapstructure:"path"`
}

type SyncConfig struct {
	// Endpoint is the full URL of the sync endpoint.
	Endpoint string `mapstructure:"endpoint"`
	// Token is the static shared secret sent with every request.
	Token string `mapstructure:"token"`
}

type LogConfig struct {
	// Path to the rotating log file.
	Path string `mapstructure:"path"`
}

// Load reads configuration from <dir>/config.yaml and DOJO_* environment
// variables. A missing config file is fine; defaults and environment
// cover everything except the sync endpoint and token, which are only
// needed for `dojo sync`.
func Load(dir string) (Config, error) {
	v := viper.New()

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DOJO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	home, _ := os.UserHomeDir()
	v.SetDefault("database.path", filepath.Join(home, ".dojo", "dojo.db"))
	v.SetDefault("log.path", filepath.Join(home, ".dojo", "dojo.log"))
	v.SetDefault("sync.endpoint", "")
	v.SetDefault("sync.token", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// DefaultDir returns the directory Load consults by default.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = home
	}
	return filepath.Join(base, "dojo")
}
