package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opendesk/deskshell/internal/app"
)

// newRunCmd creates the 'run' command: the headless shell engine.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the shell engine headless",
		Long: `Run the desktop shell engine without a graphical surface.

The engine loads settings, renders the icon set into a null surface,
and reacts to settings changes (including external edits of the
settings file when watch_settings is enabled). Useful for driving the
shell from tests, scripts, or a remote renderer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg, "cli")
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.Start(ctx); err != nil {
				return err
			}

			a.Logger.Info().Msg("Shell engine running, Ctrl+C to stop")
			<-ctx.Done()
			a.Logger.Info().Msg("Shutting down")
			return nil
		},
	}
}
