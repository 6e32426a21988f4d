package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/wdakit/pkg/keyword"
	"github.com/devicelab-dev/wdakit/pkg/logger"
	"github.com/devicelab-dev/wdakit/pkg/report"
	"github.com/devicelab-dev/wdakit/pkg/suite"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run keyword suites against the WDA server",
	ArgsUsage: "<suite-file-or-folder>...",
	Description: `Run one or more YAML keyword suites. Folders are expanded to the
*.yaml and *.yml files they contain, in name order.

Examples:
  wdakit run suites/login.yaml
  wdakit run suites/ -e USER=test -e PASS=secret
  wdakit run suites/ --report results.json --allure allure-results`,
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "var",
			Aliases: []string{"e"},
			Usage:   "Suite variables (KEY=VALUE)",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write the run result as JSON to this file",
		},
		&cli.StringFlag{
			Name:  "allure",
			Usage: "Write Allure results into this directory",
		},
	},
	Action: runSuites,
}

func runSuites(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one suite file or folder is required")
	}
	cfg := settings(c)

	files, err := collectSuiteFiles(c.Args().Slice())
	if err != nil {
		return err
	}

	lib, _, err := newLibrary(cfg)
	if err != nil {
		return err
	}
	table := lib.Keywords()
	known := func(name string) bool {
		_, ok := table.Lookup(name)
		return ok
	}

	suites := make([]*suite.Suite, 0, len(files))
	for _, f := range files {
		s, err := suite.ParseFile(f)
		if err != nil {
			return err
		}
		if err := s.Validate(known); err != nil {
			return err
		}
		suites = append(suites, s)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPrinter(c.App.Writer)
	runner := suite.NewRunner(table, suite.RunnerConfig{
		Variables:      mergeVars(cfg.Variables, parseVars(c.StringSlice("var"))),
		OnSuiteStart:   p.suiteStart,
		OnStepComplete: p.stepComplete,
		OnSuiteEnd:     p.suiteEnd,
	})
	result := runner.Run(ctx, suites)
	p.summary(result)

	if path := c.String("report"); path != "" {
		if err := report.WriteJSON(path, result); err != nil {
			return err
		}
		logger.Info("report written to %s", path)
	}
	if dir := c.String("allure"); dir != "" {
		env := report.Environment{Version: Version, WDAURL: cfg.WDAURL, BundleID: cfg.BundleID}
		if err := report.WriteAllure(dir, result, env); err != nil {
			return err
		}
	}

	if !result.Success() {
		return fmt.Errorf("%d of %d suite(s) failed", result.FailedSuites, result.TotalSuites)
	}
	return nil
}

// collectSuiteFiles expands folders to the suite files they contain.
func collectSuiteFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("suite path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(p, pattern))
			if err != nil {
				return nil, err
			}
			found = append(found, matches...)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no suite files in %s", p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

var callCommand = &cli.Command{
	Name:      "call",
	Usage:     "Call a single keyword",
	ArgsUsage: "<keyword> [args...]",
	Description: `Call one keyword with Robot-style arguments. Unless the keyword is
Open Application, a session for --bundle-id is opened first and closed afterwards.

Examples:
  wdakit -b com.example.maps call "Get Text" id=title
  wdakit -b com.example.maps call swipe 100 600 100 200 duration=500`,
	Action: callKeyword,
}

func callKeyword(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("a keyword name is required")
	}
	name := c.Args().First()
	args := c.Args().Tail()

	lib, client, err := newLibrary(settings(c))
	if err != nil {
		return err
	}
	table := lib.Keywords()
	if _, ok := table.Lookup(name); !ok {
		return fmt.Errorf("unknown keyword %q (see 'wdakit keywords')", name)
	}

	ctx := c.Context
	if keyword.Normalize(name) != keyword.Normalize("Open Application") {
		if err := lib.OpenApplication(ctx, ""); err != nil {
			return err
		}
		defer func() {
			if err := lib.CloseApplication(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to close session: %v", err)
			}
		}()
	}

	out, err := table.Call(ctx, name, args)
	if err != nil {
		return err
	}
	if out != nil {
		fmt.Fprintln(c.App.Writer, formatOutput(out))
	}
	logger.Debug("call %s on session %s done", name, client.SessionID())
	return nil
}
