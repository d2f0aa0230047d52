// Package config loads patternhunter settings from a YAML file, environment
// variables (PATTERNHUNTER_*) and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "PATTERNHUNTER"

// Config holds all runtime settings
type Config struct {
	LogLevel      string            `mapstructure:"log_level"`
	Format        string            `mapstructure:"format"`
	Quiet         bool              `mapstructure:"quiet"`
	Workers       int               `mapstructure:"workers"`
	Interval      time.Duration     `mapstructure:"interval"`
	RenderTimeout time.Duration     `mapstructure:"render_timeout"`
	RenderSleep   time.Duration     `mapstructure:"render_sleep"`
	Headers       map[string]string `mapstructure:"headers"`
	Insecure      bool              `mapstructure:"insecure"`
	Messages      string            `mapstructure:"messages"`
	FeedbackFile  string            `mapstructure:"feedback_file"`
	Listen        string            `mapstructure:"listen"`
	ProxyAddr     string            `mapstructure:"proxy_addr"`
	ProxyHistory  int               `mapstructure:"proxy_history"`
	Annotate      bool              `mapstructure:"annotate"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Format:        "json",
		Workers:       4,
		Interval:      5 * time.Second,
		RenderTimeout: 15 * time.Second,
		RenderSleep:   8 * time.Second,
		FeedbackFile:  "patternhunter-feedback.json",
		Listen:        "127.0.0.1:8181",
		ProxyAddr:     "127.0.0.1:8080",
		ProxyHistory:  1024,
	}
}

// SetDefaults registers the values of Default with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("format", d.Format)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("render_timeout", d.RenderTimeout)
	v.SetDefault("render_sleep", d.RenderSleep)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("insecure", d.Insecure)
	v.SetDefault("messages", d.Messages)
	v.SetDefault("feedback_file", d.FeedbackFile)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("proxy_addr", d.ProxyAddr)
	v.SetDefault("proxy_history", d.ProxyHistory)
	v.SetDefault("annotate", d.Annotate)
}

// Load reads configuration into v and decodes it. When file is empty,
// patternhunter.yaml is searched in the working and home directories and a
// missing file is not an error.
func Load(v *viper.Viper, file string, home string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("patternhunter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "pretty" {
		return fmt.Errorf("invalid format %q: must be json or pretty", c.Format)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", c.Interval)
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render_timeout must be positive, got %s", c.RenderTimeout)
	}
	if c.ProxyHistory <= 0 {
		return fmt.Errorf("proxy_history must be positive, got %d", c.ProxyHistory)
	}
	if c.FeedbackFile == "" {
		return errors.New("feedback_file must not be empty")
	}
	return nil
}
