// Package cli provides the command-line interface for wdakit.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/wdakit/pkg/config"
	"github.com/devicelab-dev/wdakit/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

const settingsKey = "settings"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "wda-url",
		Aliases: []string{"u"},
		Usage:   "WebDriverAgent URL (default " + config.DefaultWDAURL + ")",
		EnvVars: []string{"WDAKIT_WDA_URL"},
	},
	&cli.StringFlag{
		Name:    "bundle-id",
		Aliases: []string{"b"},
		Usage:   "Bundle id of the application under test",
		EnvVars: []string{"WDAKIT_BUNDLE_ID"},
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"WDAKIT_CONFIG"},
	},
	&cli.DurationFlag{
		Name:    "timeout",
		Usage:   "Default timeout of wait keywords",
		EnvVars: []string{"WDAKIT_TIMEOUT"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"WDAKIT_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Log file (default <home>/logs/wdakit.log)",
		EnvVars: []string{"WDAKIT_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "no-color",
		Usage:   "Disable ANSI colors",
		EnvVars: []string{"WDAKIT_NO_COLOR"},
	},
}

// NewApp builds the wdakit application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "wdakit",
		Usage:   "Keyword-driven iOS UI automation over WebDriverAgent",
		Version: Version,
		Description: `wdakit runs YAML keyword suites against an iOS device or simulator
through a running WebDriverAgent server.

Examples:
  wdakit run suites/login.yaml
  wdakit run suites/ -e USER=test
  wdakit --bundle-id com.example.maps call "Narrow By Coordinate" 80 150 300 600
  wdakit keywords wait
  wdakit --wda-url http://192.168.1.20:8100 status`,
		Flags:  GlobalFlags,
		Before: setup,
		After: func(*cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			callCommand,
			keywordsCommand,
			statusCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	if c.Bool("no-color") {
		color.NoColor = true
	}

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	c.App.Metadata = map[string]interface{}{settingsKey: cfg}

	if err := logger.Init(cfg.LogPath()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetVerbose(c.Bool("verbose"))
	logger.Info("wdakit %s, WDA at %s", Version, cfg.WDAURL)
	return nil
}
