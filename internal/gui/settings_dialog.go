package gui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// showSettingsDialog opens the desktop settings form pre-filled from
// the store. Apply goes through the save/verify/publish path; the
// outcome surfaces as a status banner.
func (d *Desktop) showSettingsDialog() {
	current := d.a.Settings.Load()

	iconSize := widget.NewSelect([]string{"small", "medium", "large"}, nil)
	iconSize.SetSelected(string(current.IconSize))

	iconSpacing := widget.NewSelect([]string{"tight", "normal", "loose"}, nil)
	iconSpacing.SetSelected(string(current.IconSpacing))

	showLabels := widget.NewCheck("Show labels under icons", nil)
	showLabels.SetChecked(current.ShowLabels)

	doubleClick := widget.NewCheck("Double-click to open", nil)
	doubleClick.SetChecked(current.DoubleClickToOpen)

	layoutMode := widget.NewSelect([]string{"auto", "grid", "adaptive"}, nil)
	layoutMode.SetSelected(string(current.LayoutMode))

	columns := widget.NewSelect([]string{"2", "3", "4", "5", "6"}, nil)
	columns.SetSelected(strconv.Itoa(current.ColumnsPerRow))

	var dlg dialog.Dialog
	reset := widget.NewButton("Reset to defaults", func() {
		go func() {
			if _, err := d.a.ResetSettings(); err != nil {
				d.a.Logger.Error().Err(err).Msg("Settings reset failed")
			}
		}()
		dlg.Hide()
	})

	form := []*widget.FormItem{
		widget.NewFormItem("Icon size", iconSize),
		widget.NewFormItem("Icon spacing", iconSpacing),
		widget.NewFormItem("", showLabels),
		widget.NewFormItem("", doubleClick),
		widget.NewFormItem("Layout mode", layoutMode),
		widget.NewFormItem("Columns per row", columns),
		widget.NewFormItem("", reset),
	}

	dlg = dialog.NewForm("Desktop Settings", "Apply", "Cancel", form, func(apply bool) {
		if !apply {
			return
		}
		// Form values are strings; the store's coercion path owns
		// turning them back into a typed, total record.
		desired := map[string]any{
			"iconSize":          iconSize.Selected,
			"iconSpacing":       iconSpacing.Selected,
			"showLabels":        showLabels.Checked,
			"doubleClickToOpen": doubleClick.Checked,
			"layoutMode":        layoutMode.Selected,
			"columnsPerRow":     columns.Selected,
		}
		go func() {
			if _, err := d.a.ApplySettings(desired); err != nil {
				d.a.Logger.Error().Err(err).Msg("Settings apply failed")
			}
		}()
	}, d.win)

	dlg.Resize(fyne.NewSize(420, 360))
	dlg.Show()
}
