package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/wdakit/pkg/keyword"
)

var keywordsCommand = &cli.Command{
	Name:      "keywords",
	Usage:     "List available keywords",
	ArgsUsage: "[filter]",
	Action: func(c *cli.Context) error {
		lib, _, err := newLibrary(settings(c))
		if err != nil {
			return err
		}
		filter := keyword.Normalize(c.Args().First())

		for _, k := range lib.Keywords().List() {
			if filter != "" && !strings.Contains(keyword.Normalize(k.Name), filter) {
				continue
			}
			usage := strings.TrimPrefix(k.Usage(), k.Name)
			fmt.Fprintf(c.App.Writer, "%s%s\n", bold(k.Name), usage)
			if k.Doc != "" {
				fmt.Fprintf(c.App.Writer, "    %s\n", gray(k.Doc))
			}
		}
		return nil
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Show the WDA server status",
	Action: func(c *cli.Context) error {
		_, client, err := newLibrary(settings(c))
		if err != nil {
			return err
		}
		status, err := client.Status(c.Context)
		if err != nil {
			return fmt.Errorf("WDA at %s: %w", client.BaseURL(), err)
		}

		data, err := json.MarshalIndent(status["value"], "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", green("✓"), client.BaseURL())
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	},
}
