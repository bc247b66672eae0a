package shell

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opendesk/deskshell/internal/display"
	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/registry"
	"github.com/opendesk/deskshell/internal/settings"
	"github.com/opendesk/deskshell/internal/storage"
)

type shellEnv struct {
	bus      *events.Bus
	mem      *storage.MemStore
	store    *settings.Store
	registry *registry.Registry
	display  *display.Manager
	clock    *FakeClock
	renderer *RecordingRenderer
	shell    *Shell

	launches atomic.Int32
}

// newShellEnv wires a full headless shell with three desktop apps and
// a fake clock, ready for Init.
func newShellEnv(t *testing.T) *shellEnv {
	t.Helper()

	env := &shellEnv{
		bus:      events.NewBus(32),
		mem:      storage.NewMemStore(),
		clock:    NewFakeClock(),
		renderer: NewRecordingRenderer(),
	}
	logger := logging.NewTestLogger()

	env.store = settings.NewStore(env.mem, env.bus, logger)
	env.registry = registry.New(env.bus, logger)
	env.display = display.New(env.bus, logger)

	for _, id := range []string{"clock", "files", "notepad"} {
		err := env.registry.Register(models.AppDescriptor{
			ID:   id,
			Name: id,
			Handler: func() error {
				env.launches.Add(1)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("Register %s failed: %v", id, err)
		}
	}

	env.store.MarkReady()
	env.registry.MarkReady()
	env.display.MarkReady()

	env.shell = New(Options{
		Registry: env.registry,
		Display:  env.display,
		Store:    env.store,
		Bus:      env.bus,
		Storage:  env.mem,
		Logger:   logger,
		Clock:    env.clock,
		Renderer: env.renderer,
	})

	t.Cleanup(func() {
		env.shell.Close()
		env.bus.Close()
	})
	return env
}

func (e *shellEnv) mustInit(t *testing.T) {
	t.Helper()
	if err := e.shell.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	e.settle()
}

// settle flushes any refresh pending in the debouncer so a later clock
// advance in the test body only fires the timers the test armed. The
// event loop runs on its own goroutine, so give it a moment to drain
// first.
func (e *shellEnv) settle() {
	time.Sleep(20 * time.Millisecond)
	e.clock.Advance(DefaultDebounce)
	time.Sleep(5 * time.Millisecond)
}

// waitForViews polls the renderer until cond holds or the deadline
// passes. Needed where the shell reacts to bus events asynchronously.
func (e *shellEnv) waitForViews(t *testing.T, cond func([]IconView) bool) []IconView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		views := e.renderer.Views()
		if cond(views) {
			return views
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for renderer state, have %+v", e.renderer.Views())
	return nil
}

func TestInit_RendersAllDesktopIcons(t *testing.T) {
	env := newShellEnv(t)

	readyCh := env.bus.Subscribe(events.EventIconsReady)

	env.mustInit(t)

	views := env.renderer.Views()
	if len(views) != 3 {
		t.Fatalf("Expected 3 icons, got %d", len(views))
	}
	// Registry sorts desktop apps by name.
	for i, want := range []string{"clock", "files", "notepad"} {
		if views[i].AppID != want {
			t.Errorf("Icon %d: expected %s, got %s", i, want, views[i].AppID)
		}
	}
	for _, v := range views {
		if !v.ShowLabel {
			t.Errorf("Expected labels shown by default for %s", v.AppID)
		}
		if v.IconPx != 48 {
			t.Errorf("Expected medium 48px icons, got %d for %s", v.IconPx, v.AppID)
		}
	}

	select {
	case ev := <-readyCh:
		ready, ok := ev.(*events.IconsReadyEvent)
		if !ok || ready.IconCount != 3 {
			t.Errorf("Unexpected icons-ready payload: %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for icons-ready event")
	}

	if !env.shell.Initialized() {
		t.Error("Expected shell to report initialized")
	}
}

func TestInit_NotReadyTimesOut(t *testing.T) {
	env := newShellEnv(t)

	logger := logging.NewTestLogger()
	stalled := registry.New(env.bus, logger) // MarkReady never called

	s := New(Options{
		Registry:     stalled,
		Display:      env.display,
		Store:        env.store,
		Bus:          env.bus,
		Storage:      env.mem,
		Logger:       logger,
		Clock:        env.clock,
		ReadyTimeout: 20 * time.Millisecond,
	})
	defer s.Close()

	if err := s.Init(context.Background()); err != ErrNotReady {
		t.Errorf("Expected ErrNotReady, got %v", err)
	}
	if s.Initialized() {
		t.Error("Expected shell to stay uninitialized after timeout")
	}
}

func TestInit_NoSettingsAppliedEcho(t *testing.T) {
	env := newShellEnv(t)

	env.mem.SetRaw(settings.StorageKey, []byte(`{"iconSize":"large","showLabels":false}`))
	appliedCh := env.bus.Subscribe(events.EventSettingsApplied)

	env.mustInit(t)

	// The initial load must render the stored settings without
	// announcing them as a user change.
	select {
	case ev := <-appliedCh:
		t.Fatalf("Unexpected settings-applied during initial load: %v", ev.Type())
	case <-time.After(50 * time.Millisecond):
	}

	views := env.renderer.Views()
	if len(views) == 0 {
		t.Fatal("Expected icons rendered")
	}
	for _, v := range views {
		if v.ShowLabel {
			t.Errorf("Expected stored showLabels=false honored for %s", v.AppID)
		}
		if v.IconPx != 64 {
			t.Errorf("Expected stored large 64px icons, got %d", v.IconPx)
		}
	}
}

func TestUpdateSettings_PublishesApplied(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	appliedCh := env.bus.Subscribe(events.EventSettingsApplied)

	rec := models.DefaultSettings()
	rec.DoubleClickToOpen = true
	env.shell.UpdateSettings(rec, false)

	select {
	case ev := <-appliedCh:
		applied, ok := ev.(*events.SettingsAppliedEvent)
		if !ok {
			t.Fatal("Expected SettingsAppliedEvent")
		}
		if !applied.Behavior.DoubleClickToOpen {
			t.Error("Expected applied behavior to carry doubleClickToOpen=true")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for settings-applied event")
	}

	if !env.shell.Behavior().DoubleClickToOpen {
		t.Error("Expected behavior cache updated")
	}
}

func TestUpdateSettings_LayoutForwardedVerbatim(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	rec := models.Settings{
		IconSize:          models.IconSizeSmall,
		IconSpacing:       models.SpacingLoose,
		ShowLabels:        false,
		DoubleClickToOpen: true,
		LayoutMode:        models.LayoutGrid,
		ColumnsPerRow:     5,
	}
	env.shell.UpdateSettings(rec, false)

	if got := env.display.GetSettings(); got != rec.Layout() {
		t.Errorf("Expected layout fields forwarded verbatim, display holds %+v", got)
	}

	// The refresh rebuilt icons under the new settings.
	for _, v := range env.renderer.Views() {
		if v.ShowLabel {
			t.Errorf("Expected labels off after update for %s", v.AppID)
		}
		if v.IconPx != 32 {
			t.Errorf("Expected small 32px icons, got %d", v.IconPx)
		}
	}
}

func TestSettingsUpdatedEventDrivesRefresh(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	// The settings store publishes after a verified save; the shell's
	// event loop must pick it up without being called directly.
	if _, err := env.store.Apply(map[string]any{"showLabels": false}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	env.waitForViews(t, func(views []IconView) bool {
		if len(views) != 3 {
			return false
		}
		for _, v := range views {
			if v.ShowLabel {
				return false
			}
		}
		return true
	})
}

func TestClick_SingleClickModeLaunches(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	env.shell.Click("notepad")

	if got := env.launches.Load(); got != 1 {
		t.Errorf("Expected 1 launch, got %d", got)
	}
}

func TestClick_FreshSettingReadWithoutRefresh(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	// Flip to double-click mode behind the shell's back: SaveSettings
	// persists without publishing, so no refresh happens.
	rec := models.DefaultSettings()
	rec.DoubleClickToOpen = true
	if !env.store.SaveSettings(rec) {
		t.Fatal("SaveSettings failed")
	}

	env.shell.Click("notepad")
	if got := env.launches.Load(); got != 0 {
		t.Fatalf("Expected no immediate launch in double-click mode, got %d", got)
	}

	env.clock.Advance(DoubleClickWindow)
	if got := env.launches.Load(); got != 0 {
		t.Errorf("Expected single click to select, got %d launches", got)
	}
	if env.shell.Selected() != "notepad" {
		t.Errorf("Expected notepad selected, got %q", env.shell.Selected())
	}
}

func TestClick_UnknownAppIgnored(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	env.shell.Click("ghost")
	env.shell.Tap("ghost", 10*time.Millisecond)

	if got := env.launches.Load(); got != 0 {
		t.Errorf("Expected no launches for unknown app, got %d", got)
	}
}

func TestSelection_MovesBetweenIcons(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	rec := models.DefaultSettings()
	rec.DoubleClickToOpen = true
	if !env.store.SaveSettings(rec) {
		t.Fatal("SaveSettings failed")
	}

	env.shell.Click("clock")
	env.clock.Advance(DoubleClickWindow)
	if !env.renderer.IsSelected("clock") {
		t.Fatal("Expected clock selected")
	}

	env.shell.Click("files")
	env.clock.Advance(DoubleClickWindow)
	if env.renderer.IsSelected("clock") {
		t.Error("Expected clock deselected after selecting files")
	}
	if !env.renderer.IsSelected("files") {
		t.Error("Expected files selected")
	}

	// Launching clears the selection.
	env.shell.Click("files")
	env.shell.Click("files")
	env.clock.Advance(DoubleClickWindow)
	if got := env.launches.Load(); got != 1 {
		t.Errorf("Expected 1 launch from double click, got %d", got)
	}
	if env.shell.Selected() != "" {
		t.Errorf("Expected selection cleared after launch, got %q", env.shell.Selected())
	}
}

func TestHideApp(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	hiddenCh := env.bus.Subscribe(events.EventAppHidden)

	env.shell.HideApp("files")

	views := env.renderer.Views()
	if len(views) != 2 {
		t.Fatalf("Expected 2 icons after hide, got %d", len(views))
	}
	for _, v := range views {
		if v.AppID == "files" {
			t.Error("Expected files removed from desktop")
		}
	}

	select {
	case ev := <-hiddenCh:
		appEv, ok := ev.(*events.AppEvent)
		if !ok || appEv.AppID != "files" {
			t.Errorf("Unexpected app-hidden payload: %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for app-hidden event")
	}

	// The choice is persisted.
	if data, ok, _ := env.mem.Get(HiddenAppsKey); !ok || string(data) != `["files"]` {
		t.Errorf("Expected persisted hidden set, got %s (present=%v)", data, ok)
	}

	if got := env.shell.HiddenApps(); len(got) != 1 || got[0] != "files" {
		t.Errorf("Unexpected hidden list: %v", got)
	}

	// Hiding again is a no-op.
	env.shell.HideApp("files")
	select {
	case <-hiddenCh:
		t.Error("Unexpected second app-hidden event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShowApp(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	env.shell.HideApp("files")
	shownCh := env.bus.Subscribe(events.EventAppShown)

	env.shell.ShowApp("files")

	if len(env.renderer.Views()) != 3 {
		t.Errorf("Expected all 3 icons restored, got %d", len(env.renderer.Views()))
	}

	select {
	case <-shownCh:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for app-shown event")
	}

	if data, ok, _ := env.mem.Get(HiddenAppsKey); !ok || string(data) != `[]` {
		t.Errorf("Expected persisted empty hidden set, got %s", data)
	}

	// Showing a visible app is a no-op.
	env.shell.ShowApp("files")
	select {
	case <-shownCh:
		t.Error("Unexpected second app-shown event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHiddenApps_SurviveRestart(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)
	env.shell.HideApp("files")
	env.shell.Close()

	// Second shell over the same storage.
	logger := logging.NewTestLogger()
	second := New(Options{
		Registry: env.registry,
		Display:  env.display,
		Store:    env.store,
		Bus:      env.bus,
		Storage:  env.mem,
		Logger:   logger,
		Clock:    env.clock,
		Renderer: NewRecordingRenderer(),
	})
	defer second.Close()

	if err := second.Init(context.Background()); err != nil {
		t.Fatalf("Second init failed: %v", err)
	}
	if got := second.HiddenApps(); len(got) != 1 || got[0] != "files" {
		t.Errorf("Expected hidden set reloaded from storage, got %v", got)
	}
}

func TestDebounce_CoalescesBursts(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	before := env.renderer.Clears()

	env.shell.debounce.Trigger()
	env.shell.debounce.Trigger()
	env.shell.debounce.Trigger()

	if got := env.renderer.Clears(); got != before {
		t.Fatalf("Expected no refresh before delay, clears went %d -> %d", before, got)
	}

	env.clock.Advance(DefaultDebounce)

	if got := env.renderer.Clears(); got != before+1 {
		t.Errorf("Expected exactly one coalesced refresh, clears went %d -> %d", before, got)
	}
}

func TestContextMenu(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	items := env.shell.ContextMenu("notepad")
	if len(items) != 2 {
		t.Fatalf("Expected 2 menu items, got %d", len(items))
	}
	if items[0].Label != "Open" || items[1].Label != "Hide from Desktop" {
		t.Errorf("Unexpected menu labels: %s, %s", items[0].Label, items[1].Label)
	}

	if err := items[0].Action(); err != nil {
		t.Errorf("Open action failed: %v", err)
	}
	if got := env.launches.Load(); got != 1 {
		t.Errorf("Expected open action to launch, got %d", got)
	}

	if err := items[1].Action(); err != nil {
		t.Errorf("Hide action failed: %v", err)
	}
	if got := env.shell.HiddenApps(); len(got) != 1 || got[0] != "notepad" {
		t.Errorf("Expected notepad hidden, got %v", got)
	}
}

func TestSetRenderer_ReRenders(t *testing.T) {
	env := newShellEnv(t)
	env.mustInit(t)

	replacement := NewRecordingRenderer()
	env.shell.SetRenderer(replacement)

	if len(replacement.Views()) != 3 {
		t.Errorf("Expected new renderer populated, got %d views", len(replacement.Views()))
	}
}
