// Deskshell - desktop icon shell and settings engine.
//
// Entry point for both the CLI and the graphical desktop; mode is
// selected by subcommand ('run' for headless, 'gui' for the Fyne
// surface).
package main

import (
	"github.com/opendesk/deskshell/internal/cli"
	"github.com/opendesk/deskshell/internal/version"
)

// Fallback version for non-Makefile builds; releases inject the real
// value via LDFLAGS.
var (
	buildVersion = "v0.3.0-dev"
	buildTime    = "unknown"
)

func main() {
	if buildVersion != "" {
		version.Version = buildVersion
	}
	if buildTime != "" {
		version.BuildTime = buildTime
	}
	cli.Execute()
}
