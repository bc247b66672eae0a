package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
)

func newTestRegistry() (*Registry, *events.Bus) {
	bus := events.NewBus(10)
	return New(bus, logging.NewTestLogger()), bus
}

func TestRegister(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	ch := bus.Subscribe(events.EventAppRegistered)

	if err := r.Register(models.AppDescriptor{ID: "clock", Name: "Clock"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	desc, err := r.Get("clock")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if desc.Name != "Clock" {
		t.Errorf("Expected name Clock, got %s", desc.Name)
	}

	select {
	case ev := <-ch:
		appEv, ok := ev.(*events.AppEvent)
		if !ok || appEv.AppID != "clock" {
			t.Errorf("Unexpected app-registered payload: %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for app-registered event")
	}
}

func TestRegister_MissingID(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	if err := r.Register(models.AppDescriptor{Name: "Nameless"}); !errors.Is(err, ErrMissingID) {
		t.Errorf("Expected ErrMissingID, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	if err := r.Register(models.AppDescriptor{ID: "clock", Name: "Clock"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(models.AppDescriptor{ID: "clock", Name: "Clock 2"}); !errors.Is(err, ErrDuplicateApp) {
		t.Errorf("Expected ErrDuplicateApp, got %v", err)
	}
}

func TestGetAllApps_RegistrationOrder(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	for _, id := range []string{"zebra", "alpha", "mango"} {
		if err := r.Register(models.AppDescriptor{ID: id, Name: id}); err != nil {
			t.Fatalf("Register %s failed: %v", id, err)
		}
	}

	all := r.GetAllApps()
	if len(all) != 3 {
		t.Fatalf("Expected 3 apps, got %d", len(all))
	}
	for i, want := range []string{"zebra", "alpha", "mango"} {
		if all[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}
}

func TestDesktopApps_FiltersAndSorts(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	descs := []models.AppDescriptor{
		{ID: "notepad", Name: "Notepad"},
		{ID: "system-monitor", Name: "System Monitor", Hidden: true},
		{ID: "task-switcher", Name: "Task Switcher", NoDesktop: true},
		{ID: "clock", Name: "Clock"},
	}
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			t.Fatalf("Register %s failed: %v", d.ID, err)
		}
	}

	desktop := r.DesktopApps()
	if len(desktop) != 2 {
		t.Fatalf("Expected 2 desktop apps, got %d", len(desktop))
	}
	if desktop[0].ID != "clock" || desktop[1].ID != "notepad" {
		t.Errorf("Expected name-sorted [clock notepad], got [%s %s]", desktop[0].ID, desktop[1].ID)
	}
}

func TestOpenApp(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	launched := false
	err := r.Register(models.AppDescriptor{
		ID:      "notepad",
		Name:    "Notepad",
		Handler: func() error { launched = true; return nil },
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	inst, err := r.OpenApp("notepad")
	if err != nil {
		t.Fatalf("OpenApp failed: %v", err)
	}
	if !launched {
		t.Error("Expected launch handler to run")
	}
	if inst.AppID != "notepad" {
		t.Errorf("Expected instance appID notepad, got %s", inst.AppID)
	}
	if inst.InstanceID == "" {
		t.Error("Expected non-empty instance ID")
	}

	second, err := r.OpenApp("notepad")
	if err != nil {
		t.Fatalf("Second OpenApp failed: %v", err)
	}
	if second.InstanceID == inst.InstanceID {
		t.Error("Expected distinct instance IDs per launch")
	}
}

func TestOpenApp_Unknown(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	if _, err := r.OpenApp("ghost"); !errors.Is(err, ErrAppNotFound) {
		t.Errorf("Expected ErrAppNotFound, got %v", err)
	}
}

func TestOpenApp_HandlerFailure(t *testing.T) {
	r, bus := newTestRegistry()
	defer bus.Close()

	handlerErr := errors.New("backend unavailable")
	if err := r.Register(models.AppDescriptor{
		ID:      "files",
		Name:    "Files",
		Handler: func() error { return handlerErr },
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	inst, err := r.OpenApp("files")
	if !errors.Is(err, handlerErr) {
		t.Errorf("Expected wrapped handler error, got %v", err)
	}
	if inst != nil {
		t.Error("Expected nil instance on handler failure")
	}
}
