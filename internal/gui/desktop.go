// Package gui renders the desktop icon grid with Fyne. It implements
// the shell's Renderer contract; all click-intent disambiguation stays
// in the shell, the GUI only reports raw clicks.
package gui

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/opendesk/deskshell/internal/app"
	"github.com/opendesk/deskshell/internal/events"
	"github.com/opendesk/deskshell/internal/icons"
	"github.com/opendesk/deskshell/internal/shell"
)

// Desktop is the Fyne rendering surface for the icon shell.
type Desktop struct {
	fyneApp fyne.App
	win     fyne.Window
	a       *app.App

	grid   *fyne.Container
	banner *widget.Label

	running atomic.Bool

	mu      sync.Mutex
	buttons map[string]*iconButton
}

// NewDesktop builds the window and attaches itself as the shell's
// renderer. Call Run after app.Start to enter the UI loop.
func NewDesktop(a *app.App) *Desktop {
	fa := fyneapp.NewWithID("io.opendesk.deskshell")
	win := fa.NewWindow("Desktop")

	d := &Desktop{
		fyneApp: fa,
		win:     win,
		a:       a,
		grid:    container.NewGridWithColumns(4),
		banner:  widget.NewLabel(""),
		buttons: make(map[string]*iconButton),
	}
	d.banner.Hide()

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.SettingsIcon(), func() {
			d.showSettingsDialog()
		}),
		widget.NewToolbarSpacer(),
	)

	top := container.NewVBox(toolbar, d.banner)
	win.SetContent(container.NewBorder(top, nil, nil, nil, container.NewVScroll(d.grid)))
	win.Resize(fyne.NewSize(1024, 768))

	a.Display.SetViewport(1024, 768)
	a.Shell.SetRenderer(d)

	go d.bannerLoop()

	return d
}

// Run shows the window and blocks until it closes.
func (d *Desktop) Run() {
	d.running.Store(true)
	d.win.ShowAndRun()
}

// ui runs f on the UI thread once the event loop is live; before that
// (initial render during startup) it runs inline.
func (d *Desktop) ui(f func()) {
	if d.running.Load() {
		fyne.Do(f)
		return
	}
	f()
}

// SetGrid applies the column count computed by the display manager.
// Icon and gap pixel sizes are approximated by the Fyne theme; the
// column count is the part that matters for layout parity.
func (d *Desktop) SetGrid(columns, iconPx, gapPx int) {
	if columns < 1 {
		columns = 1
	}
	d.ui(func() {
		d.grid.Layout = layout.NewGridLayoutWithColumns(columns)
		d.grid.Refresh()
	})
}

// Clear removes all rendered icons.
func (d *Desktop) Clear() {
	d.mu.Lock()
	d.buttons = make(map[string]*iconButton)
	d.mu.Unlock()

	d.ui(func() {
		d.grid.Objects = nil
		d.grid.Refresh()
	})
}

// AddIcon renders one icon view.
func (d *Desktop) AddIcon(view shell.IconView) {
	btn := newIconButton(view, d)

	d.mu.Lock()
	d.buttons[view.AppID] = btn
	d.mu.Unlock()

	d.ui(func() {
		d.grid.Add(btn)
		d.grid.Refresh()
	})
}

// SetSelected toggles the selection highlight.
func (d *Desktop) SetSelected(appID string, selected bool) {
	d.mu.Lock()
	btn := d.buttons[appID]
	d.mu.Unlock()
	if btn == nil {
		return
	}

	d.ui(func() {
		if selected {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	})
}

// bannerLoop shows status banners with auto-dismiss.
func (d *Desktop) bannerLoop() {
	ch := d.a.Bus.Subscribe(events.EventStatusBanner)
	for ev := range ch {
		banner, ok := ev.(*events.BannerEvent)
		if !ok {
			continue
		}
		d.ui(func() {
			d.banner.SetText(banner.Message)
			d.banner.Show()
		})
		ttl := banner.TTL
		if ttl <= 0 {
			ttl = 3 * time.Second
		}
		time.AfterFunc(ttl, func() {
			d.ui(func() { d.banner.Hide() })
		})
	}
}

// iconResource resolves an icon reference to a Fyne resource, going
// through the icon fetcher for remote references.
func (d *Desktop) iconResource(ref string) fyne.Resource {
	resolved := d.a.Icons.Resolve(ref)
	if !icons.IsRemote(resolved) {
		if _, err := os.Stat(resolved); err == nil {
			if res, err := fyne.LoadResourceFromPath(resolved); err == nil {
				return res
			}
		}
	}
	return theme.ComputerIcon()
}

// showContextMenu pops the shell's context menu for an icon.
func (d *Desktop) showContextMenu(appID string, e *fyne.PointEvent) {
	items := d.a.Shell.ContextMenu(appID)
	menuItems := make([]*fyne.MenuItem, 0, len(items))
	for _, item := range items {
		action := item.Action
		menuItems = append(menuItems, fyne.NewMenuItem(item.Label, func() {
			go func() {
				if err := action(); err != nil {
					d.a.Logger.Error().Err(err).Str("app_id", appID).Msg("Context menu action failed")
				}
			}()
		}))
	}
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", menuItems...), d.win.Canvas(), e.AbsolutePosition)
}

// iconButton is a Button that reports raw clicks to the shell and
// opens the context menu on secondary click.
type iconButton struct {
	widget.Button
	desktop *Desktop
	appID   string
}

func newIconButton(view shell.IconView, d *Desktop) *iconButton {
	b := &iconButton{desktop: d, appID: view.AppID}
	b.ExtendBaseWidget(b)

	if view.ShowLabel {
		b.Text = view.Label
	}
	b.Icon = d.iconResource(view.IconRef)
	if view.Selected {
		b.Importance = widget.HighImportance
	}
	b.OnTapped = func() {
		go d.a.Shell.Click(view.AppID)
	}
	return b
}

// DoubleTapped feeds the second click of a double tap into the shell's
// state machine.
func (b *iconButton) DoubleTapped(*fyne.PointEvent) {
	go func() {
		b.desktop.a.Shell.Click(b.appID)
		b.desktop.a.Shell.Click(b.appID)
	}()
}

func (b *iconButton) TappedSecondary(e *fyne.PointEvent) {
	b.desktop.showContextMenu(b.appID, e)
}
