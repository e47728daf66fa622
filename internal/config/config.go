package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultAPIURL is the analyzer service address used when nothing is configured.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout bounds a single analyzer request. Analysis of a large
	// image can take a while on the server side, so this is generous.
	DefaultTimeout = 60 * time.Second
)

// Config holds the settings dockerlens needs to reach the analyzer service.
type Config struct {
	APIURL  string
	Timeout time.Duration
}

// Init wires defaults, the optional config file, and environment variables
// into viper. Flag bindings are done by the command layer before calling
// this. cfgFile overrides the default search path when non-empty.
func Init(cfgFile string) error {
	viper.SetDefault("api_url", DefaultAPIURL)
	viper.SetDefault("timeout", DefaultTimeout)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(filepath.Join(home, ".dockerlens"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DOCKERLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; everything has a default.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return nil
}

// Load materializes the current viper state into a Config.
func Load() Config {
	cfg := Config{
		APIURL:  viper.GetString("api_url"),
		Timeout: viper.GetDuration("timeout"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}
