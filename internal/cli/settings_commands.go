package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opendesk/deskshell/internal/app"
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/settings"
)

// settingsKeys lists the valid keys for 'settings set'.
var settingsKeys = []string{
	"iconSize", "iconSpacing", "showLabels",
	"doubleClickToOpen", "layoutMode", "columnsPerRow",
}

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage desktop settings",
		Long: `Desktop settings management.

Commands:
  show   - Display the current settings record
  set    - Change one or more settings fields
  reset  - Restore default settings
  path   - Show the settings file path`,
	}

	settingsCmd.AddCommand(newSettingsShowCmd())
	settingsCmd.AddCommand(newSettingsSetCmd())
	settingsCmd.AddCommand(newSettingsResetCmd())
	settingsCmd.AddCommand(newSettingsPathCmd())

	return settingsCmd
}

// withApp builds the app, runs fn, and tears down. Commands that only
// touch settings do not start the shell.
func withApp(fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, "cli")
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newSettingsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the current settings record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				rec := a.Settings.Load()
				if asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
					data, err := json.MarshalIndent(rec, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				}

				fmt.Println("Desktop Settings")
				fmt.Printf("  iconSize:          %s\n", rec.IconSize)
				fmt.Printf("  iconSpacing:       %s\n", rec.IconSpacing)
				fmt.Printf("  showLabels:        %t\n", rec.ShowLabels)
				fmt.Printf("  doubleClickToOpen: %t\n", rec.DoubleClickToOpen)
				fmt.Printf("  layoutMode:        %s\n", rec.LayoutMode)
				fmt.Printf("  columnsPerRow:     %d\n", rec.ColumnsPerRow)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set key=value [key=value ...]",
		Short: "Change settings fields",
		Long: `Change one or more settings fields and broadcast the update.

Valid keys:
  iconSize           small | medium | large
  iconSpacing        tight | normal | loose
  showLabels         true | false
  doubleClickToOpen  true | false
  layoutMode         auto | grid | adaptive
  columnsPerRow      2-6 (grid mode only)

Example:
  deskshell settings set iconSize=large doubleClickToOpen=true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]any, len(args))
			for _, arg := range args {
				key, value, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("invalid argument %q, expected key=value", arg)
				}
				if !validSettingsKey(key) {
					return fmt.Errorf("unknown settings key %q (valid: %s)", key, strings.Join(settingsKeys, ", "))
				}
				overrides[key] = value
			}

			return withApp(func(a *app.App) error {
				// The store takes the full desired record: current
				// values with the requested fields replaced.
				desired := recordToMap(a.Settings.Load())
				for k, v := range overrides {
					desired[k] = v
				}

				rec, err := a.ApplySettings(desired)
				if err != nil {
					return err
				}
				fmt.Printf("Settings saved: iconSize=%s iconSpacing=%s showLabels=%t doubleClickToOpen=%t layoutMode=%s columnsPerRow=%d\n",
					rec.IconSize, rec.IconSpacing, rec.ShowLabels, rec.DoubleClickToOpen, rec.LayoutMode, rec.ColumnsPerRow)
				return nil
			})
		},
	}
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if _, err := a.ResetSettings(); err != nil {
					return err
				}
				fmt.Println("Settings reset to defaults.")
				return nil
			})
		},
	}
}

func newSettingsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				fmt.Println(a.Storage.PathForKey(settings.StorageKey))
				return nil
			})
		},
	}
}

func validSettingsKey(key string) bool {
	for _, k := range settingsKeys {
		if k == key {
			return true
		}
	}
	return false
}

// recordToMap flattens a settings record into the untyped form the
// store's coercion path accepts.
func recordToMap(rec models.Settings) map[string]any {
	return map[string]any{
		"iconSize":          string(rec.IconSize),
		"iconSpacing":       string(rec.IconSpacing),
		"showLabels":        rec.ShowLabels,
		"doubleClickToOpen": rec.DoubleClickToOpen,
		"layoutMode":        string(rec.LayoutMode),
		"columnsPerRow":     rec.ColumnsPerRow,
	}
}
