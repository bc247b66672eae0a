// Program configuration commands (the deskshell.conf file, not the
// desktop settings record).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opendesk/deskshell/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage deskshell program configuration",
		Long: `Program configuration management.

Commands:
  show  - Display current configuration
  init  - Write a default configuration file
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println("Deskshell Configuration")
			fmt.Printf("  log_level:      %s\n", cfg.LogLevel)
			fmt.Printf("  state_dir:      %s\n", cfg.StateDir)
			fmt.Printf("  cache_dir:      %s\n", cfg.CacheDir)
			fmt.Printf("  notifications:  %t\n", cfg.Notifications)
			fmt.Printf("  watch_settings: %t\n", cfg.WatchSettings)
			fmt.Printf("  debounce_ms:    %d\n", cfg.DebounceMS)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", path)
					fmt.Println("Use --force to overwrite.")
					return nil
				}
			}

			if err := config.Save(config.NewShellConfig(), path); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}
			fmt.Println(path)
			return nil
		},
	}
}
