// Command concierge serves restaurant recommendations for a concierge desk
// over HTTP, MCP and the command line.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
