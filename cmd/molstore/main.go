// CLI entry point for molstore.
package main

import (
	"os"

	"github.com/qaioz/molstore/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(cli.DefaultDependencies()); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
