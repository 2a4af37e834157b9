// Package main is the entry point for the fluxcast-backup CLI.
//
// Running the binary with no arguments mirrors the source tree onto the
// backup directory once. All functionality lives in internal/cli.
package main

import (
	"github.com/fluxcast/fluxcast-backup/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
