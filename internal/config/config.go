// Package config loads the sweep configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/ftp-reaper/internal/remote"
	"github.com/raoulx24/ftp-reaper/internal/retention"
)

type Config struct {
	Targets      []TargetConfig  `yaml:"targets" toml:"targets"`
	Retention    RetentionConfig `yaml:"retention" toml:"retention"`
	Schedule     ScheduleConfig  `yaml:"schedule" toml:"schedule"`
	Logging      LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics      MetricsConfig   `yaml:"metrics" toml:"metrics"`
	ConfigReload ReloadConfig    `yaml:"configReload" toml:"configReload"`
}

type TargetConfig struct {
	Scheme   string        `yaml:"scheme" toml:"scheme"` // "ftp" (default) or "file"
	Host     string        `yaml:"host" toml:"host"`
	Port     int           `yaml:"port" toml:"port"`
	User     string        `yaml:"user" toml:"user"`
	Password string        `yaml:"password" toml:"password"`
	Path     string        `yaml:"path" toml:"path"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
	MaxAge   string        `yaml:"maxAge" toml:"maxAge"` // overrides retention.maxAge
}

type RetentionConfig struct {
	MaxAge string `yaml:"maxAge" toml:"maxAge"` // e.g. "30 days"; empty never deletes
}

type ScheduleConfig struct {
	Cron       string `yaml:"cron" toml:"cron"` // e.g. "0 3 * * *"
	RunOnStart bool   `yaml:"runOnStart" toml:"runOnStart"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // "info", "debug", etc.
	Format string `yaml:"format" toml:"format"` // "json", "text"
}

type MetricsConfig struct {
	Listen string `yaml:"listen" toml:"listen"` // e.g. ":9102"; empty disables
	Path   string `yaml:"path" toml:"path"`
}

type ReloadConfig struct {
	Enabled      bool          `yaml:"enabled" toml:"enabled"`
	Method       string        `yaml:"method" toml:"method"` // "auto", "fsnotify", "poll"
	PollInterval time.Duration `yaml:"pollInterval" toml:"pollInterval"`
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.ConfigReload.Method == "" {
		c.ConfigReload.Method = "auto"
	}
	if c.ConfigReload.PollInterval <= 0 {
		c.ConfigReload.PollInterval = 5 * time.Second
	}
}

// Descriptor converts a target into a remote descriptor.
func (t TargetConfig) Descriptor() remote.Descriptor {
	return remote.Descriptor{
		Scheme:   strings.ToLower(t.Scheme),
		Host:     t.Host,
		Port:     t.Port,
		User:     t.User,
		Password: t.Password,
		Path:     t.Path,
		Timeout:  t.Timeout,
	}
}

// Descriptors returns one descriptor per target, in file order.
func (c *Config) Descriptors() []remote.Descriptor {
	out := make([]remote.Descriptor, 0, len(c.Targets))
	for _, t := range c.Targets {
		out = append(out, t.Descriptor())
	}
	return out
}

// Policy parses the default retention policy.
func (c *Config) Policy() (retention.Policy, error) {
	return retention.ParseMaxAge(c.Retention.MaxAge)
}

// Validate returns every problem found, not just the first.
func (c *Config) Validate() []error {
	var errs []error

	if len(c.Targets) == 0 {
		errs = append(errs, fmt.Errorf("targets: at least one target is required"))
	}
	for i, t := range c.Targets {
		if err := t.Descriptor().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("targets[%d]: %w", i, err))
		}
		if _, err := retention.ParseMaxAge(t.MaxAge); err != nil {
			errs = append(errs, fmt.Errorf("targets[%d].maxAge: %w", i, err))
		}
	}

	if _, err := c.Policy(); err != nil {
		errs = append(errs, fmt.Errorf("retention.maxAge: %w", err))
	}

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
	}

	switch c.ConfigReload.Method {
	case "", "auto", "fsnotify", "poll":
	default:
		errs = append(errs, fmt.Errorf("configReload.method: unknown method %q", c.ConfigReload.Method))
	}

	return errs
}
