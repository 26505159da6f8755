// Package config provides configuration management for the repofetch client.
// It handles loading, validating, and saving application settings and
// repository definitions. Configuration lives in YAML files with sensible
// defaults for everything not specified.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	goversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	// Repository configuration
	Repositories []*RepositoryConfig `yaml:"repositories"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// RepositoryConfig represents a single repository definition.
type RepositoryConfig struct {
	Name       string   `yaml:"name"`
	BaseURLs   []string `yaml:"baseurls,omitempty"`
	Mirrorlist string   `yaml:"mirrorlist,omitempty"`
	Enabled    bool     `yaml:"enabled"`
	Priority   uint     `yaml:"priority"`
}

// Settings represents general application settings.
type Settings struct {
	// DestDir is the default destination directory for downloads; empty
	// means the current working directory.
	DestDir string `yaml:"destdir,omitempty"`

	// Network settings
	HTTPTimeout          time.Duration `yaml:"http_timeout"`
	MaxParallelDownloads int           `yaml:"max_parallel_downloads"`
	UserAgent            string        `yaml:"user_agent,omitempty"`

	// Output settings
	LogLevel string `yaml:"log_level"` // panic, fatal, error, warn, info, debug, trace

	// RequiredVersion pins the minimum client version this configuration
	// expects, e.g. ">= 1.2.0".
	RequiredVersion string `yaml:"required_version,omitempty"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxParallelDownloads is the default worker count for the
	// transfer engine.
	DefaultMaxParallelDownloads = 5

	// DefaultUserAgent identifies the client to mirrors.
	DefaultUserAgent = "repofetch/1.0"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Repositories: []*RepositoryConfig{},
		Settings: Settings{
			HTTPTimeout:          DefaultHTTPTimeout,
			MaxParallelDownloads: DefaultMaxParallelDownloads,
			UserAgent:            DefaultUserAgent,
			LogLevel:             "info",
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Repositories))
	for _, repo := range c.Repositories {
		if repo.Name == "" {
			return errors.Wrap(errors.ErrConfigValidation, "repository name cannot be empty")
		}
		if seen[repo.Name] {
			return errors.Wrapf(errors.ErrConfigValidation, "duplicate repository %q", repo.Name)
		}
		seen[repo.Name] = true
		if len(repo.BaseURLs) == 0 && repo.Mirrorlist == "" {
			return errors.Wrapf(errors.ErrConfigValidation, "repository %q has neither baseurls nor mirrorlist", repo.Name)
		}
	}
	if c.Settings.RequiredVersion != "" {
		if _, err := goversion.NewConstraint(c.Settings.RequiredVersion); err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "bad required_version %q", c.Settings.RequiredVersion)
		}
	}
	return nil
}

// CheckRequiredVersion verifies that the running client satisfies the
// configuration's required_version constraint, when one is set.
func (c *Config) CheckRequiredVersion(clientVersion string) error {
	if c.Settings.RequiredVersion == "" {
		return nil
	}
	constraint, err := goversion.NewConstraint(c.Settings.RequiredVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigValidation, "bad required_version %q", c.Settings.RequiredVersion)
	}
	current, err := goversion.NewVersion(clientVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigValidation, "bad client version %q", clientVersion)
	}
	if !constraint.Check(current) {
		return fmt.Errorf("version %s does not satisfy %q: %w",
			clientVersion, c.Settings.RequiredVersion, errors.ErrVersionTooOld)
	}
	return nil
}

// GetRepository returns the repository with the given name, or nil.
func (c *Config) GetRepository(name string) *RepositoryConfig {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo
		}
	}
	return nil
}

// EnabledRepositories returns the enabled repositories ordered by priority
// (highest first), ties broken by name.
func (c *Config) EnabledRepositories() []*RepositoryConfig {
	var enabled []*RepositoryConfig
	for _, repo := range c.Repositories {
		if repo.Enabled {
			enabled = append(enabled, repo)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		if enabled[i].Priority != enabled[j].Priority {
			return enabled[i].Priority > enabled[j].Priority
		}
		return enabled[i].Name < enabled[j].Name
	})
	return enabled
}

func (c *Config) applyDefaults() {
	if c.Settings.HTTPTimeout <= 0 {
		c.Settings.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Settings.MaxParallelDownloads <= 0 {
		c.Settings.MaxParallelDownloads = DefaultMaxParallelDownloads
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = DefaultUserAgent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "info"
	}
}
