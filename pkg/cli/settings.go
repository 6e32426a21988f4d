package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/wdakit/pkg/config"
	"github.com/devicelab-dev/wdakit/pkg/driver/wda"
	"github.com/devicelab-dev/wdakit/pkg/keyword"
)

// loadSettings reads the config file and applies flag and environment
// overrides on top of it.
func loadSettings(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("wda-url") {
		cfg.WDAURL = c.String("wda-url")
	}
	if c.IsSet("bundle-id") {
		cfg.BundleID = c.String("bundle-id")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func settings(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[settingsKey].(*config.Config); ok {
		return cfg
	}
	return config.Defaults()
}

// newLibrary connects a keyword library to the configured WDA server.
func newLibrary(cfg *config.Config) (*keyword.Library, *wda.Client, error) {
	strategy, err := cfg.Strategy()
	if err != nil {
		return nil, nil, err
	}
	client := wda.NewClient(cfg.WDAURL)
	lib := keyword.New(client, keyword.Options{
		BundleID:        cfg.BundleID,
		Timeout:         cfg.Timeout,
		PollInterval:    cfg.PollInterval,
		ReadyTimeout:    cfg.ReadyTimeout,
		DefaultStrategy: strategy,
	})
	return lib, client, nil
}

// parseVars parses KEY=VALUE pairs. Entries without "=" are ignored.
func parseVars(vars []string) map[string]string {
	result := make(map[string]string)
	for _, v := range vars {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}

// mergeVars returns base overridden by overrides.
func mergeVars(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
