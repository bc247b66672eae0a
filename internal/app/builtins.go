package app

import (
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/registry"
)

// RegisterBuiltins populates the registry with the stock application
// catalog. Descriptors only; application bodies live elsewhere.
func RegisterBuiltins(reg *registry.Registry) error {
	builtins := []models.AppDescriptor{
		{ID: "clock", Name: "Clock", Icon: "clock"},
		{ID: "notepad", Name: "Notepad", Icon: "accessories-text-editor"},
		{ID: "files", Name: "Files", Icon: "system-file-manager"},
		{ID: "photos", Name: "Photos", Icon: "multimedia-photo-viewer"},
		{ID: "music", Name: "Music", Icon: "multimedia-audio-player"},
		{ID: "terminal", Name: "Terminal", Icon: "utilities-terminal"},
		{ID: "calculator", Name: "Calculator", Icon: "accessories-calculator"},
		{ID: "settings", Name: "Settings", Icon: "preferences-system"},

		// Openable by ID but kept off the desktop grid.
		{ID: "task-switcher", Name: "Task Switcher", Icon: "preferences-system-windows", NoDesktop: true},
		{ID: "notification-center", Name: "Notifications", Icon: "preferences-desktop-notification", NoDesktop: true},

		// System apps, never user-facing.
		{ID: "system-monitor", Name: "System Monitor", Icon: "utilities-system-monitor", Hidden: true},
	}

	for _, desc := range builtins {
		if err := reg.Register(desc); err != nil {
			return err
		}
	}
	return nil
}
