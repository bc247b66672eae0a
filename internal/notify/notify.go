// Package notify surfaces user-visible status for settings save/reset
// outcomes: transient banners on the event bus with auto-dismiss, and
// optional cross-platform desktop notifications via
// github.com/gen2brain/beeep.
package notify

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
)

// BannerTTL is how long a status banner stays up before auto-dismiss.
const BannerTTL = 3 * time.Second

// Config holds notification configuration.
type Config struct {
	// Enabled determines whether desktop notifications are sent.
	// Banners on the event bus are always published.
	Enabled bool

	// AppName is the notification title.
	AppName string
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: false, // banners suffice; desktop popups are opt-in
		AppName: "Desktop Shell",
	}
}

// Notifier publishes status banners and desktop notifications.
type Notifier struct {
	bus     *events.Bus
	logger  *logging.Logger
	appName string

	mu      sync.RWMutex
	enabled bool
}

// NewNotifier creates a notifier with the given configuration.
func NewNotifier(cfg *Config, bus *events.Bus, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Notifier{
		bus:     bus,
		logger:  logger,
		appName: cfg.AppName,
		enabled: cfg.Enabled,
	}
}

// SetEnabled enables or disables desktop notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled reports whether desktop notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Info publishes an informational status banner.
func (n *Notifier) Info(message string) {
	n.banner("info", message)
}

// Error publishes an error status banner and, when enabled, a desktop
// notification so failures are not missed while the window is in the
// background.
func (n *Notifier) Error(message string) {
	n.banner("error", message)

	if n.IsEnabled() {
		if err := beeep.Alert(n.appName, message, ""); err != nil {
			n.logger.Warn().Err(err).Msg("Failed to send desktop alert")
		}
	}
}

// SettingsSaved reports a successful settings save.
func (n *Notifier) SettingsSaved() {
	n.Info("Settings saved")
}

// SettingsReset reports a successful settings reset.
func (n *Notifier) SettingsReset() {
	n.Info("Settings reset to defaults")
}

// SettingsSaveFailed reports a failed or unverified settings save.
func (n *Notifier) SettingsSaveFailed(reason string) {
	n.Error("Failed to save settings: " + reason)
}

func (n *Notifier) banner(level, message string) {
	n.bus.Publish(&events.BannerEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventStatusBanner, Time: time.Now()},
		Level:     level,
		Message:   message,
		TTL:       BannerTTL,
	})
}

// Notify sends a plain desktop notification when enabled.
func (n *Notifier) Notify(message string) {
	if !n.IsEnabled() {
		return
	}
	if err := beeep.Notify(n.appName, message, ""); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send desktop notification")
	}
}
