// Package config resolves the application configuration from CLI flags,
// ASSETPIPE_-prefixed environment variables, and a .assetpipe.yaml file, in
// that precedence order. It also persists the selected product back to the
// config file (see persist.go).
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/assetpipe/internal/product"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the resolved application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat is one of text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Product is the persisted run-time target used for filter
	// compatibility warnings. Empty means none selected.
	Product string `mapstructure:"product" json:"product"`

	// HistoryFile is the run history database location. Empty disables
	// history recording.
	HistoryFile string `mapstructure:"history-file" json:"historyFile"`

	// ConfigFile is the path of the config file actually used, filled in
	// by Load. It is never read from the file itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    LogLevelInfo,
		LogFormat:   LogFormatText,
		HistoryFile: DefaultHistoryFile(),
	}
}

// DefaultHistoryFile returns the default run history database location.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "assetpipe", "history.db")
}

// Validate rejects values outside the supported sets.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if _, err := product.Parse(c.Product); err != nil {
		return err
	}

	return nil
}

// SelectedProduct parses the configured product, treating anything
// unparseable as no selection. Validate has already rejected bad values on
// the Load path.
func (c *Config) SelectedProduct() product.Product {
	p, err := product.Parse(c.Product)
	if err != nil {
		return product.None
	}

	return p
}

// EffectiveLogLevel is the log level after the quiet override.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load resolves the configuration for cmd. Every call builds a fresh viper
// instance, so concurrent tests never share state. An explicit configFile
// must exist; without one, discovery looks for .assetpipe.yaml in the
// working directory and ~/.config/assetpipe, and finding nothing is fine.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("ASSETPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log-level":    LogLevelInfo,
		"log-format":   LogFormatText,
		"no-color":     false,
		"quiet":        false,
		"product":      "",
		"history-file": DefaultHistoryFile(),
	}
}

func readFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".assetpipe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "assetpipe"))
	}

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
		return nil
	}

	return fmt.Errorf("parsing config file: %w", err)
}

// bindFlags binds the command's own flags plus the persistent flags of
// every command up to the root, so subcommand flags override file and
// environment values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts the Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
