// promexport CLI - application server with a Prometheus metrics exporter
package main

import (
	"os"

	"github.com/getmockd/promexport/pkg/cli"
)

func main() {
	os.Exit(cli.Run())
}
