package notify

import (
	"testing"
	"time"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
)

func TestNotifier_PublishesBanners(t *testing.T) {
	bus := events.NewBus(10)
	defer bus.Close()

	ch := bus.Subscribe(events.EventStatusBanner)
	n := NewNotifier(nil, bus, logging.NewTestLogger())

	n.SettingsSaved()

	select {
	case ev := <-ch:
		banner, ok := ev.(*events.BannerEvent)
		if !ok {
			t.Fatal("Expected BannerEvent")
		}
		if banner.Level != "info" {
			t.Errorf("Expected info banner, got %s", banner.Level)
		}
		if banner.Message != "Settings saved" {
			t.Errorf("Unexpected banner message: %s", banner.Message)
		}
		if banner.TTL != BannerTTL {
			t.Errorf("Expected TTL %v, got %v", BannerTTL, banner.TTL)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for banner")
	}
}

func TestNotifier_ErrorBanner(t *testing.T) {
	bus := events.NewBus(10)
	defer bus.Close()

	ch := bus.Subscribe(events.EventStatusBanner)
	n := NewNotifier(nil, bus, logging.NewTestLogger())

	n.SettingsSaveFailed("disk full")

	select {
	case ev := <-ch:
		banner, ok := ev.(*events.BannerEvent)
		if !ok {
			t.Fatal("Expected BannerEvent")
		}
		if banner.Level != "error" {
			t.Errorf("Expected error banner, got %s", banner.Level)
		}
		if banner.Message != "Failed to save settings: disk full" {
			t.Errorf("Unexpected banner message: %s", banner.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for banner")
	}
}

func TestNotifier_EnableToggle(t *testing.T) {
	bus := events.NewBus(10)
	defer bus.Close()

	n := NewNotifier(nil, bus, logging.NewTestLogger())
	if n.IsEnabled() {
		t.Error("Expected desktop notifications off by default")
	}

	n.SetEnabled(true)
	if !n.IsEnabled() {
		t.Error("Expected desktop notifications enabled")
	}

	n.SetEnabled(false)
	if n.IsEnabled() {
		t.Error("Expected desktop notifications disabled")
	}
}
