// Package display owns the layout side of the desktop: icon pixel
// sizes, spacing, grid columns, and viewport geometry. The icon shell
// forwards layout settings here verbatim and never interprets them.
package display

import (
	"sync"

	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/logging"
	"github.com/opendesk/deskshell/internal/models"
)

// Fallbacks used when a caller asks for geometry before any viewport
// or settings have been applied.
const (
	DefaultIconPx      = 48
	MobileBreakpointPx = 768

	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
)

// Container is the minimal surface the manager styles. Renderers
// implement it.
type Container interface {
	SetGrid(columns, iconPx, gapPx int)
}

// Manager tracks layout settings and viewport geometry.
type Manager struct {
	mu     sync.RWMutex
	layout models.LayoutSettings
	width  int
	height int

	bus    *events.Bus
	logger *logging.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a display manager with default layout settings and a
// desktop-sized viewport.
func New(bus *events.Bus, logger *logging.Logger) *Manager {
	return &Manager{
		layout: models.DefaultSettings().Layout(),
		width:  defaultViewportWidth,
		height: defaultViewportHeight,
		bus:    bus,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// MarkReady signals that the manager is wired up. Safe to call more
// than once.
func (m *Manager) MarkReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

// Ready is closed once MarkReady has been called.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// GetIconSize returns the icon edge length in pixels for the current
// size class.
func (m *Manager) GetIconSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.layout.IconSize {
	case models.IconSizeSmall:
		return 32
	case models.IconSizeMedium:
		return 48
	case models.IconSizeLarge:
		return 64
	default:
		return DefaultIconPx
	}
}

// GetSpacing returns the gap between icons in pixels.
func (m *Manager) GetSpacing() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch m.layout.IconSpacing {
	case models.SpacingTight:
		return 8
	case models.SpacingNormal:
		return 16
	case models.SpacingLoose:
		return 24
	default:
		return 16
	}
}

// GetIconContainerWidth returns the current viewport width in pixels.
func (m *Manager) GetIconContainerWidth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width
}

// IsMobileDevice reports whether the viewport is below the mobile
// breakpoint.
func (m *Manager) IsMobileDevice() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width < MobileBreakpointPx
}

// GetSettings returns the layout settings the manager currently holds.
func (m *Manager) GetSettings() models.LayoutSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout
}

// UpdateSettings replaces the layout settings and publishes
// layout-changed. The fields arrive verbatim from the settings record.
func (m *Manager) UpdateSettings(layout models.LayoutSettings) {
	m.mu.Lock()
	m.layout = layout
	m.mu.Unlock()

	m.logger.Debug().
		Str("icon_size", string(layout.IconSize)).
		Str("icon_spacing", string(layout.IconSpacing)).
		Str("layout_mode", string(layout.LayoutMode)).
		Int("columns", layout.ColumnsPerRow).
		Msg("Display layout settings updated")

	m.bus.PublishDisplay(events.EventLayoutChanged, m.GetIconContainerWidth(), m.height)
}

// SetViewport records new viewport geometry and publishes
// display-resized, plus orientation-changed when the aspect flips.
func (m *Manager) SetViewport(width, height int) {
	m.mu.Lock()
	oldLandscape := m.width > m.height
	m.width = width
	m.height = height
	newLandscape := width > height
	m.mu.Unlock()

	m.bus.PublishDisplay(events.EventDisplayResized, width, height)
	if oldLandscape != newLandscape {
		m.bus.PublishDisplay(events.EventOrientationChanged, width, height)
	}
}

// ForceRefresh asks listeners to re-render regardless of state.
func (m *Manager) ForceRefresh() {
	m.bus.PublishDisplay(events.EventDisplayForceRefresh, m.GetIconContainerWidth(), m.height)
}

// Columns computes how many icon columns the grid should use. Grid
// mode honors the configured column count; auto and adaptive modes
// derive it from the viewport width.
func (m *Manager) Columns() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.layout.LayoutMode == models.LayoutGrid {
		cols := m.layout.ColumnsPerRow
		if cols < models.MinColumnsPerRow {
			cols = models.MinColumnsPerRow
		}
		if cols > models.MaxColumnsPerRow {
			cols = models.MaxColumnsPerRow
		}
		return cols
	}

	iconPx := DefaultIconPx
	switch m.layout.IconSize {
	case models.IconSizeSmall:
		iconPx = 32
	case models.IconSizeLarge:
		iconPx = 64
	}
	gap := 16
	switch m.layout.IconSpacing {
	case models.SpacingTight:
		gap = 8
	case models.SpacingLoose:
		gap = 24
	}

	// Each cell is roughly twice the icon width to leave room for a
	// label.
	cell := iconPx*2 + gap
	cols := m.width / cell
	if cols < 1 {
		cols = 1
	}
	if m.layout.LayoutMode == models.LayoutAdaptive && m.width < MobileBreakpointPx && cols > 3 {
		cols = 3
	}
	return cols
}

// ApplyStylesToContainer pushes the current grid geometry into a
// renderer container. A nil container is a no-op.
func (m *Manager) ApplyStylesToContainer(c Container) {
	if c == nil {
		return
	}
	c.SetGrid(m.Columns(), m.GetIconSize(), m.GetSpacing())
}
