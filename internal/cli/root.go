// Package cli provides the command-line interface for deskshell.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opendesk/deskshell/internal/config"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Global logger
	logger *logging.Logger
)

// GetLogger returns the CLI logger, initializing it if needed.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// loadConfig loads the shell configuration honoring the --config flag.
func loadConfig() (*config.ShellConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deskshell",
		Short: "Deskshell - desktop icon shell and settings engine",
		Long: `Deskshell ` + version.Version + ` - Built: ` + version.BuildTime + `
Desktop environment shell: application registry, settings store,
and icon grid with click-intent disambiguation.

Run headless with 'deskshell run', or with the graphical desktop
via 'deskshell gui'. Settings and the app catalog can be managed
from the command line while the shell is stopped or running (a
running shell picks up settings changes from disk).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: platform config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGuiCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newAppsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newVersionCmd creates the 'version' command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("deskshell %s (built %s)\n", version.Version, version.BuildTime)
		},
	}
}
