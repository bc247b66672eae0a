package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opendesk/deskshell/internal/app"
)

func cmdContext() context.Context { return context.Background() }

// newAppsCmd creates the 'apps' command group.
func newAppsCmd() *cobra.Command {
	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "Manage desktop applications",
		Long: `Application catalog management.

Commands:
  list  - List registered applications
  hide  - Hide an app from the desktop
  show  - Restore a hidden app to the desktop
  open  - Open an application by ID`,
	}

	appsCmd.AddCommand(newAppsListCmd())
	appsCmd.AddCommand(newAppsHideCmd())
	appsCmd.AddCommand(newAppsShowCmd())
	appsCmd.AddCommand(newAppsOpenCmd())

	return appsCmd
}

func newAppsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(a *app.App) error {
				hidden := make(map[string]bool)
				for _, id := range a.Shell.HiddenApps() {
					hidden[id] = true
				}

				for _, desc := range a.Registry.GetAllApps() {
					if desc.Hidden && !all {
						continue
					}
					status := ""
					switch {
					case desc.Hidden:
						status = " [system]"
					case desc.NoDesktop:
						status = " [no-desktop]"
					case hidden[desc.ID]:
						status = " [hidden]"
					}
					fmt.Printf("%-22s %s%s\n", desc.ID, desc.Name, status)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include system apps")
	return cmd
}

func newAppsHideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <app-id>",
		Short: "Hide an app from the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(a *app.App) error {
				if _, err := a.Registry.Get(args[0]); err != nil {
					return err
				}
				a.Shell.HideApp(args[0])
				fmt.Printf("App %q hidden from desktop.\n", args[0])
				return nil
			})
		},
	}
}

func newAppsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <app-id>",
		Short: "Restore a hidden app to the desktop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(a *app.App) error {
				a.Shell.ShowApp(args[0])
				fmt.Printf("App %q restored to desktop.\n", args[0])
				return nil
			})
		},
	}
}

func newAppsOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <app-id>",
		Short: "Open an application by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withShell(func(a *app.App) error {
				inst, err := a.Registry.OpenApp(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Opened %s (instance %s)\n", inst.AppID, inst.InstanceID)
				return nil
			})
		},
	}
}

// withShell builds the app and runs the shell init so hidden-state and
// icon operations see the persisted state.
func withShell(fn func(a *app.App) error) error {
	return withApp(func(a *app.App) error {
		if err := a.Start(cmdContext()); err != nil {
			return err
		}
		return fn(a)
	})
}
