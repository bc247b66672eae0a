package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/opendesk/deskshell/internal/app"
	"github.com/opendesk/deskshell/internal/gui"
)

// newGuiCmd creates the 'gui' command: the Fyne desktop surface.
func newGuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Run the graphical desktop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg, "gui")
			if err != nil {
				return err
			}
			defer a.Close()

			desktop := gui.NewDesktop(a)
			if err := a.Start(context.Background()); err != nil {
				return err
			}

			// Blocks until the window closes.
			desktop.Run()
			return nil
		},
	}
}
