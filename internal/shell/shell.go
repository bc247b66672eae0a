// Package shell implements the desktop icon shell: it renders the
// current set of visible applications as interactive icons and keeps
// their rendering and click behavior consistent with the latest
// settings. A refresh is always a full rebuild, never an attribute
// patch, so no icon ever carries a click handler captured under stale
// settings.
package shell

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/opendesk/deskshell/internal/display"
	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
	"github.com/opendesk/deskshell/internal/registry"
	"github.com/opendesk/deskshell/internal/settings"
	"github.com/opendesk/deskshell/internal/storage"
)

// ErrNotReady is returned by Init when a collaborator did not signal
// readiness within the timeout. The shell stays no-op; Init may be
// retried.
var ErrNotReady = errors.New("shell: collaborators not ready")

// DefaultReadyTimeout bounds how long Init waits for the registry,
// display manager and settings store.
const DefaultReadyTimeout = 5 * time.Second

// MenuItem is one context-menu entry for a desktop icon.
type MenuItem struct {
	Label  string
	Action func() error
}

// Options wires a Shell to its collaborators. Registry, Display,
// Store and Bus are required; the rest default.
type Options struct {
	Registry *registry.Registry
	Display  *display.Manager
	Store    *settings.Store
	Bus      *events.Bus
	Storage  storage.Store
	Logger   *logging.Logger
	Clock    Clock
	Renderer Renderer

	DebounceDelay time.Duration
	ReadyTimeout  time.Duration
}

// Shell owns the rendered icon collection, the hidden-apps set and the
// per-icon click machines.
type Shell struct {
	registry *registry.Registry
	display  *display.Manager
	store    *settings.Store
	bus      *events.Bus
	storage  storage.Store
	logger   *logging.Logger
	clock    Clock

	readyTimeout time.Duration

	mu          sync.Mutex
	renderer    Renderer
	behavior    models.BehaviorSettings
	machines    map[string]*clickMachine
	selected    string
	initialized bool

	hidden   *hiddenSet
	debounce *debouncer

	readyOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// New creates an icon shell. Call Init to perform the first render.
func New(opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultCLILogger()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Renderer == nil {
		opts.Renderer = NullRenderer{}
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}

	s := &Shell{
		registry:     opts.Registry,
		display:      opts.Display,
		store:        opts.Store,
		bus:          opts.Bus,
		storage:      opts.Storage,
		logger:       opts.Logger,
		clock:        opts.Clock,
		renderer:     opts.Renderer,
		readyTimeout: opts.ReadyTimeout,
		behavior:     models.DefaultSettings().Behavior(),
		machines:     make(map[string]*clickMachine),
		hidden:       newHiddenSet(),
		stopCh:       make(chan struct{}),
	}
	s.debounce = newDebouncer(s.clock, opts.DebounceDelay, s.RefreshIcons)
	return s
}

// SetRenderer swaps the rendering surface and re-renders into it.
func (s *Shell) SetRenderer(r Renderer) {
	if r == nil {
		r = NullRenderer{}
	}
	s.mu.Lock()
	s.renderer = r
	initialized := s.initialized
	s.mu.Unlock()

	if initialized {
		s.RefreshIcons()
	}
}

// currentRenderer returns the active rendering surface under the lock.
func (s *Shell) currentRenderer() Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer
}

// Init waits for the registry, display manager and settings store to
// become ready, then performs container setup, listener registration,
// the initial settings load and the first icon refresh, in that order.
// Rendering before settings load would flash default click/label
// behavior, so the ordering is load-bearing.
func (s *Shell) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.readyTimeout)
	defer cancel()

	if err := s.awaitReady(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Icon shell dependencies not ready, skipping init")
		return err
	}

	s.display.ApplyStylesToContainer(s.currentRenderer())

	go s.eventLoop()

	s.hidden.load(s.storage, s.logger)

	initial := s.store.Load()
	s.UpdateSettings(initial, true)

	s.mu.Lock()
	s.initialized = true
	count := len(s.machines)
	s.mu.Unlock()

	s.readyOnce.Do(func() {
		s.bus.Publish(&events.IconsReadyEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventIconsReady, Time: s.clock.Now()},
			IconCount: count,
		})
	})

	s.logger.Info().Int("icons", count).Msg("Icon shell initialized")
	return nil
}

func (s *Shell) awaitReady(ctx context.Context) error {
	waits := []<-chan struct{}{
		s.registry.Ready(),
		s.display.Ready(),
		s.store.Ready(),
	}
	for _, ch := range waits {
		select {
		case <-ch:
		case <-ctx.Done():
			return ErrNotReady
		}
	}
	return nil
}

// eventLoop consumes bus subscriptions until Close. Settings updates
// apply immediately; geometry bursts coalesce through the debouncer.
func (s *Shell) eventLoop() {
	settingsCh := s.bus.Subscribe(events.EventSettingsUpdated)
	registeredCh := s.bus.Subscribe(events.EventAppRegistered)
	systemCh := s.bus.Subscribe(events.EventSystemReady)
	orientationCh := s.bus.Subscribe(events.EventOrientationChanged)
	resizedCh := s.bus.Subscribe(events.EventDisplayResized)
	layoutCh := s.bus.Subscribe(events.EventLayoutChanged)
	forceCh := s.bus.Subscribe(events.EventDisplayForceRefresh)

	for {
		select {
		case ev, ok := <-settingsCh:
			if !ok {
				return
			}
			if upd, isUpd := ev.(*events.SettingsUpdatedEvent); isUpd {
				s.UpdateSettings(upd.Settings, false)
			}
		case _, ok := <-registeredCh:
			if !ok {
				return
			}
			s.RefreshIcons()
		case _, ok := <-systemCh:
			if !ok {
				return
			}
			s.RefreshIcons()
		case _, ok := <-orientationCh:
			if !ok {
				return
			}
			s.debounce.Trigger()
		case _, ok := <-resizedCh:
			if !ok {
				return
			}
			s.debounce.Trigger()
		case _, ok := <-layoutCh:
			if !ok {
				return
			}
			s.debounce.Trigger()
		case _, ok := <-forceCh:
			if !ok {
				return
			}
			s.debounce.Trigger()
		case <-s.stopCh:
			return
		}
	}
}

// RefreshIcons clears all rendered icons and rebuilds the full set
// from the registry's current app list, excluding hidden apps and apps
// classified as not-on-desktop. After this call every visible icon's
// click machine reads the current settings; old machines are cancelled
// so no pending launch outlives a rebuild.
func (s *Shell) RefreshIcons() {
	if s.registry == nil || s.display == nil {
		return
	}

	apps := s.registry.DesktopApps()
	iconPx := s.display.GetIconSize()

	s.mu.Lock()
	renderer := s.renderer
	showLabels := s.behavior.ShowLabels
	selected := s.selected

	for _, m := range s.machines {
		m.cancel()
	}
	s.machines = make(map[string]*clickMachine, len(apps))

	renderer.Clear()
	count := 0
	for _, app := range apps {
		if s.hidden.contains(app.ID) {
			continue
		}
		renderer.AddIcon(IconView{
			AppID:     app.ID,
			Label:     app.Name,
			IconRef:   app.Icon,
			IconPx:    iconPx,
			ShowLabel: showLabels,
			Selected:  app.ID == selected,
		})
		s.machines[app.ID] = newClickMachine(app.ID, s.clock, s.freshDoubleClick, s.resolveClick)
		count++
	}
	s.mu.Unlock()

	s.display.ApplyStylesToContainer(renderer)

	s.logger.Debug().Int("icons", count).Msg("Desktop icons refreshed")
}

// freshDoubleClick reads the double-click setting at interaction time
// rather than trusting the shell's cached behavior, so a settings
// change takes effect on the very next click even before a refresh
// lands.
func (s *Shell) freshDoubleClick() bool {
	if s.store != nil {
		return s.store.Load().DoubleClickToOpen
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.behavior.DoubleClickToOpen
}

// Click feeds a pointer click on an icon into its state machine.
// Clicks on unknown or hidden apps no-op.
func (s *Shell) Click(appID string) {
	s.mu.Lock()
	m := s.machines[appID]
	s.mu.Unlock()

	if m == nil {
		s.logger.Debug().Str("app_id", appID).Msg("Click on unrendered icon ignored")
		return
	}
	m.Click()
}

// Tap feeds a touch tap with its press duration.
func (s *Shell) Tap(appID string, duration time.Duration) {
	s.mu.Lock()
	m := s.machines[appID]
	s.mu.Unlock()

	if m == nil {
		return
	}
	m.Tap(duration)
}

func (s *Shell) resolveClick(appID string, outcome clickOutcome) {
	switch outcome {
	case outcomeLaunch:
		s.setSelected("")
		if _, err := s.registry.OpenApp(appID); err != nil {
			s.logger.Error().Err(err).Str("app_id", appID).Msg("Failed to open app")
		}
	case outcomeSelect:
		s.setSelected(appID)
	}
}

func (s *Shell) setSelected(appID string) {
	s.mu.Lock()
	previous := s.selected
	s.selected = appID
	renderer := s.renderer
	s.mu.Unlock()

	if previous != "" && previous != appID {
		renderer.SetSelected(previous, false)
	}
	if appID != "" {
		renderer.SetSelected(appID, true)
	}
}

// Selected returns the currently highlighted app ID, if any.
func (s *Shell) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// UpdateSettings splits the incoming record into behavior fields,
// merged into local state, and layout fields, forwarded verbatim to
// the display manager. It then refreshes unconditionally so behavior
// changes are visible immediately, and publishes
// desktop-settings-applied unless this is the initial load (which
// would otherwise echo the shell's own startup as a user change).
func (s *Shell) UpdateSettings(rec models.Settings, isInitialLoad bool) {
	s.mu.Lock()
	s.behavior = rec.Behavior()
	behavior := s.behavior
	s.mu.Unlock()

	if s.display != nil {
		s.display.UpdateSettings(rec.Layout())
	}

	s.RefreshIcons()

	if !isInitialLoad {
		s.bus.Publish(&events.SettingsAppliedEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventSettingsApplied, Time: s.clock.Now()},
			Behavior:  behavior,
		})
	}
}

// HideApp removes an app from the desktop, persists the choice and
// re-renders. Hiding an already-hidden or unknown app is a no-op.
func (s *Shell) HideApp(appID string) {
	if !s.hidden.add(appID) {
		return
	}
	s.hidden.save(s.storage, s.logger)
	s.bus.PublishApp(events.EventAppHidden, appID)
	s.RefreshIcons()
	s.logger.Info().Str("app_id", appID).Msg("App hidden from desktop")
}

// ShowApp restores a previously hidden app.
func (s *Shell) ShowApp(appID string) {
	if !s.hidden.remove(appID) {
		return
	}
	s.hidden.save(s.storage, s.logger)
	s.bus.PublishApp(events.EventAppShown, appID)
	s.RefreshIcons()
	s.logger.Info().Str("app_id", appID).Msg("App restored to desktop")
}

// HiddenApps returns the hidden app IDs, sorted.
func (s *Shell) HiddenApps() []string {
	return s.hidden.list()
}

// ContextMenu returns the menu entries for an icon: Open and Hide
// from Desktop.
func (s *Shell) ContextMenu(appID string) []MenuItem {
	return []MenuItem{
		{
			Label: "Open",
			Action: func() error {
				_, err := s.registry.OpenApp(appID)
				return err
			},
		},
		{
			Label: "Hide from Desktop",
			Action: func() error {
				s.HideApp(appID)
				return nil
			},
		},
	}
}

// Behavior returns the shell's current behavior settings cache.
func (s *Shell) Behavior() models.BehaviorSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.behavior
}

// Initialized reports whether Init has completed.
func (s *Shell) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Close stops the event loop and cancels pending timers.
func (s *Shell) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.debounce.Stop()

	s.mu.Lock()
	for _, m := range s.machines {
		m.cancel()
	}
	s.mu.Unlock()
}
