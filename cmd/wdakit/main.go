// Command wdakit runs keyword suites against a WebDriverAgent server.
package main

import "github.com/devicelab-dev/wdakit/pkg/cli"

func main() {
	cli.Execute()
}
