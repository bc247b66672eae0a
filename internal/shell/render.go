package shell

import (
	"sync"

	"github.com/opendesk/deskshell/internal/display"
)

// IconView is the ephemeral rendering state of one desktop icon. Views
// have no identity beyond AppID: every refresh discards and recreates
// them, so no stale click closures survive a settings change.
type IconView struct {
	AppID     string
	Label     string
	IconRef   string
	IconPx    int
	ShowLabel bool
	Selected  bool
}

// Renderer is the surface the shell draws into. Implementations must
// tolerate Clear and AddIcon arriving from a non-UI goroutine.
type Renderer interface {
	display.Container

	// Clear removes all rendered icons.
	Clear()

	// AddIcon renders a freshly-built icon view.
	AddIcon(view IconView)

	// SetSelected toggles the selection highlight on an icon.
	SetSelected(appID string, selected bool)
}

// NullRenderer discards all rendering. It keeps a headless shell fully
// operational for tests and for the CLI run mode.
type NullRenderer struct{}

func (NullRenderer) SetGrid(columns, iconPx, gapPx int) {}
func (NullRenderer) Clear()                             {}
func (NullRenderer) AddIcon(view IconView)              {}
func (NullRenderer) SetSelected(appID string, sel bool) {}

// RecordingRenderer captures rendered views for inspection. Used by
// tests and the CLI's icon listing.
type RecordingRenderer struct {
	mu       sync.Mutex
	views    []IconView
	columns  int
	iconPx   int
	gapPx    int
	clears   int
	selected map[string]bool
}

// NewRecordingRenderer creates an empty recording renderer.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{selected: make(map[string]bool)}
}

func (r *RecordingRenderer) SetGrid(columns, iconPx, gapPx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.columns = columns
	r.iconPx = iconPx
	r.gapPx = gapPx
}

func (r *RecordingRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = nil
	r.clears++
}

func (r *RecordingRenderer) AddIcon(view IconView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *RecordingRenderer) SetSelected(appID string, selected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected[appID] = selected
	for i := range r.views {
		if r.views[i].AppID == appID {
			r.views[i].Selected = selected
		}
	}
}

// Views returns a copy of the currently rendered icon views.
func (r *RecordingRenderer) Views() []IconView {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IconView, len(r.views))
	copy(out, r.views)
	return out
}

// Grid returns the last grid geometry applied to the container.
func (r *RecordingRenderer) Grid() (columns, iconPx, gapPx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.columns, r.iconPx, r.gapPx
}

// Clears returns how many times the container was cleared.
func (r *RecordingRenderer) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// IsSelected reports the selection state last applied for an app.
func (r *RecordingRenderer) IsSelected(appID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected[appID]
}
