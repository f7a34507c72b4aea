package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tool configuration.
type Config struct {
	DatabasePath string        `mapstructure:"database"`
	CommandDelay time.Duration `mapstructure:"command_delay"`
	Retries      int           `mapstructure:"retries"`
	MatchPolicy  string        `mapstructure:"match_policy"`
}

// Load reads configuration from file and environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("dispman")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dispman"))
		}
	}

	v.SetDefault("database", defaultDatabasePath())
	v.SetDefault("command_delay", "40ms")
	v.SetDefault("retries", 2)
	v.SetDefault("match_policy", "index")

	v.SetEnvPrefix("DISPMAN")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Positional matching is the only implemented policy; description
	// matching is a recognized future strategy.
	if cfg.MatchPolicy != "index" {
		return nil, fmt.Errorf("unknown match_policy %q (supported: index)", cfg.MatchPolicy)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.CommandDelay < 0 {
		return nil, fmt.Errorf("command_delay must be >= 0, got %s", cfg.CommandDelay)
	}

	return &cfg, nil
}

// defaultDatabasePath places the profile database in the user config
// directory, falling back to the working directory.
func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dispman.db"
	}
	return filepath.Join(dir, "dispman", "dispman.db")
}
