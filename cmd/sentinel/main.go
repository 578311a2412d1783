// Command sentinel is the entry point for the sovereign debt dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/sentinelmon/sentinel/internal/cli"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
