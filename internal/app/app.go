// Package app wires the desktop shell together: storage, settings
// store, registry, display manager, icon shell, notifier and the
// optional settings-file watcher.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opendesk/deskshell/internal/config"
	"github.com/opendesk/deskshell/internal/display"
	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/icons"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/notify"
	"github.com/opendesk/deskshell/internal/registry"
	"github.com/opendesk/deskshell/internal/settings"
	"github.com/opendesk/deskshell/internal/shell"
	"github.com/opendesk/deskshell/internal/storage"
)

// App is the assembled desktop shell.
type App struct {
	Config   *config.ShellConfig
	Logger   *logging.Logger
	Bus      *events.Bus
	Storage  *storage.FileStore
	Settings *settings.Store
	Registry *registry.Registry
	Display  *display.Manager
	Shell    *shell.Shell
	Notifier *notify.Notifier
	Icons    *icons.Fetcher

	watcher *storage.Watcher
}

// New assembles an App from configuration. mode is "cli" or "gui" and
// only affects log output routing.
func New(cfg *config.ShellConfig, mode string) (*App, error) {
	logger := logging.NewLogger(mode)
	applyLogLevel(cfg.LogLevel)

	bus := events.NewBus(0)

	fileStore, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state storage: %w", err)
	}

	store := settings.NewStore(fileStore, bus, logger)
	reg := registry.New(bus, logger)
	disp := display.New(bus, logger)

	fetcher, err := icons.NewFetcher(cfg.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon cache: %w", err)
	}

	notifier := notify.NewNotifier(&notify.Config{
		Enabled: cfg.Notifications,
		AppName: "Desktop Shell",
	}, bus, logger)

	sh := shell.New(shell.Options{
		Registry:      reg,
		Display:       disp,
		Store:         store,
		Bus:           bus,
		Storage:       fileStore,
		Logger:        logger,
		DebounceDelay: time.Duration(cfg.DebounceMS) * time.Millisecond,
	})

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Bus:      bus,
		Storage:  fileStore,
		Settings: store,
		Registry: reg,
		Display:  disp,
		Shell:    sh,
		Notifier: notifier,
		Icons:    fetcher,
	}

	if err := RegisterBuiltins(reg); err != nil {
		return nil, err
	}

	return a, nil
}

// Start marks the collaborators ready, initializes the shell and, when
// configured, starts the settings-file watcher.
func (a *App) Start(ctx context.Context) error {
	a.Registry.MarkReady()
	a.Display.MarkReady()
	a.Settings.MarkReady()

	if err := a.Shell.Init(ctx); err != nil {
		return err
	}

	if a.Config.WatchSettings {
		w, err := storage.NewWatcher(a.Storage, settings.StorageKey, func() {
			// External edit: re-broadcast so the running shell (and any
			// other listener) picks up the record from disk.
			a.Bus.PublishSettingsUpdated(a.Settings.Load())
		}, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Settings file watcher unavailable")
		} else {
			a.watcher = w
		}
	}

	a.Bus.Publish(&events.BaseEvent{EventType: events.EventSystemReady, Time: time.Now()})
	return nil
}

// ApplySettings saves, verifies and broadcasts a settings record built
// from untyped input, reporting the outcome through the notifier.
func (a *App) ApplySettings(in map[string]any) (models.Settings, error) {
	rec, err := a.Settings.Apply(in)
	if err != nil {
		a.Notifier.SettingsSaveFailed(err.Error())
		return rec, err
	}
	a.Notifier.SettingsSaved()
	return rec, nil
}

// ResetSettings restores defaults through the same save/verify path.
func (a *App) ResetSettings() (models.Settings, error) {
	rec, err := a.Settings.Reset()
	if err != nil {
		a.Notifier.SettingsSaveFailed(err.Error())
		return rec, err
	}
	a.Notifier.SettingsReset()
	return rec, nil
}

// Close shuts the shell down.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.Shell.Close()
	a.Bus.Close()
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		logging.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		logging.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		logging.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		logging.SetGlobalLevel(zerolog.InfoLevel)
	}
}
