package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	Servers      []string      `mapstructure:"servers" yaml:"servers"`
	Username     string        `mapstructure:"username" yaml:"username"`
	Password     string        `mapstructure:"password" yaml:"password"`
	ReaderMode   bool          `mapstructure:"reader_mode" yaml:"reader_mode"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Wildmat      string        `mapstructure:"wildmat" yaml:"wildmat"`
	Descriptions bool          `mapstructure:"descriptions" yaml:"descriptions"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	Metrics      bool          `mapstructure:"metrics" yaml:"metrics"`

	logLevel slog.Level // set by validate from LogLevel
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"server":       "servers",
	"username":     "username",
	"password":     "password",
	"reader-mode":  "reader_mode",
	"timeout":      "timeout",
	"wildmat":      "wildmat",
	"descriptions": "descriptions",
	"log-level":    "log_level",
	"metrics":      "metrics",
}

// loadConfig merges, from lowest to highest priority: defaults, the YAML
// file at path (optional), NNTP_* environment variables, flags and the
// positional server argument.
func loadConfig(cmd *cobra.Command, path string, args []string) (*Config, error) {
	v := viper.New()

	// Set Defaults
	v.SetDefault("timeout", "30s")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("NNTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		v.Set("servers", args)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Servers) == 0 {
		return errors.New("at least one server must be configured")
	}

	for i, s := range c.Servers {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("server[%d]: address is empty", i)
		}
	}

	if c.Password != "" && c.Username == "" {
		return errors.New("password is set but username is empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if c.Wildmat != "" && strings.ContainsAny(c.Wildmat, " \t\r\n") {
		return fmt.Errorf("wildmat %q must be a single token", c.Wildmat)
	}

	if err := c.logLevel.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

func (c *Config) level() slog.Level {
	return c.logLevel
}
