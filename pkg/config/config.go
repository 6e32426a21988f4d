// Package config handles configuration for wdakit.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/wdakit/pkg/core"
	"github.com/devicelab-dev/wdakit/pkg/locator"
)

// DefaultWDAURL is the WebDriverAgent address used when none is configured.
const DefaultWDAURL = "http://localhost:8100"

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Connection settings
	WDAURL   string `yaml:"wdaUrl"`   // WebDriverAgent base URL
	BundleID string `yaml:"bundleId"` // Application under test

	// Execution settings
	Timeout         time.Duration     `yaml:"timeout"`         // Default wait keyword timeout
	PollInterval    time.Duration     `yaml:"pollInterval"`    // Wait keyword poll interval
	ReadyTimeout    time.Duration     `yaml:"readyTimeout"`    // How long to wait for /status
	DefaultStrategy string            `yaml:"defaultStrategy"` // Strategy for locators without a prefix
	Variables       map[string]string `yaml:"variables"`       // Global suite variables

	// Output settings
	LogFile string `yaml:"logFile"` // Rotated log file, empty for <home>/logs/wdakit.log
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		WDAURL:          DefaultWDAURL,
		Timeout:         10 * time.Second,
		PollInterval:    200 * time.Millisecond,
		ReadyTimeout:    10 * time.Second,
		DefaultStrategy: locator.StrategyID.String(),
	}
}

// Load loads configuration from a file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return defaults
	return Defaults(), nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.WDAURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.ErrInvalidConfig.WithMessagef("wdaUrl must be an http(s) URL, got %q", c.WDAURL)
	}
	if c.Timeout < 0 {
		return core.ErrInvalidConfig.WithMessagef("timeout must not be negative, got %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return core.ErrInvalidConfig.WithMessagef("pollInterval must be positive, got %v", c.PollInterval)
	}
	if c.ReadyTimeout < 0 {
		return core.ErrInvalidConfig.WithMessagef("readyTimeout must not be negative, got %v", c.ReadyTimeout)
	}
	if _, err := c.Strategy(); err != nil {
		return core.ErrInvalidConfig.WithMessagef("defaultStrategy: %v", err)
	}
	return nil
}

// Strategy returns the parsed default strategy.
func (c *Config) Strategy() (locator.Strategy, error) {
	if c.DefaultStrategy == "" {
		return locator.StrategyID, nil
	}
	return locator.ParseStrategy(c.DefaultStrategy)
}

// LogPath returns LogFile, or the default log file under the home directory.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(GetLogsDir(), "wdakit.log")
}
