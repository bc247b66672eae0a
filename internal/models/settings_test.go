package models

import "testing"

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.IconSize != IconSizeMedium {
		t.Errorf("Expected iconSize medium, got %s", s.IconSize)
	}
	if s.IconSpacing != SpacingNormal {
		t.Errorf("Expected iconSpacing normal, got %s", s.IconSpacing)
	}
	if !s.ShowLabels {
		t.Error("Expected showLabels=true by default")
	}
	if s.DoubleClickToOpen {
		t.Error("Expected doubleClickToOpen=false by default")
	}
	if s.LayoutMode != LayoutAuto {
		t.Errorf("Expected layoutMode auto, got %s", s.LayoutMode)
	}
	if s.ColumnsPerRow != 4 {
		t.Errorf("Expected columnsPerRow=4, got %d", s.ColumnsPerRow)
	}
}

func TestSanitize(t *testing.T) {
	s := Settings{
		IconSize:      "enormous",
		IconSpacing:   "cozy",
		LayoutMode:    "spiral",
		ColumnsPerRow: 99,
	}
	got := s.Sanitize()

	if got.IconSize != IconSizeMedium {
		t.Errorf("Expected invalid iconSize replaced with medium, got %s", got.IconSize)
	}
	if got.IconSpacing != SpacingNormal {
		t.Errorf("Expected invalid iconSpacing replaced with normal, got %s", got.IconSpacing)
	}
	if got.LayoutMode != LayoutAuto {
		t.Errorf("Expected invalid layoutMode replaced with auto, got %s", got.LayoutMode)
	}
	if got.ColumnsPerRow != MaxColumnsPerRow {
		t.Errorf("Expected columnsPerRow clamped to %d, got %d", MaxColumnsPerRow, got.ColumnsPerRow)
	}

	if got := (Settings{ColumnsPerRow: 0}).Sanitize(); got.ColumnsPerRow != MinColumnsPerRow {
		t.Errorf("Expected columnsPerRow clamped to %d, got %d", MinColumnsPerRow, got.ColumnsPerRow)
	}
}

func TestSettingsFromMap_Empty(t *testing.T) {
	for _, m := range []map[string]any{nil, {}} {
		got := SettingsFromMap(m)
		if got != DefaultSettings() {
			t.Errorf("Expected defaults for %v, got %+v", m, got)
		}
	}
}

func TestSettingsFromMap_Partial(t *testing.T) {
	got := SettingsFromMap(map[string]any{
		"iconSize": "large",
	})

	if got.IconSize != IconSizeLarge {
		t.Errorf("Expected iconSize large, got %s", got.IconSize)
	}
	// All other fields must be the defaults: the record is total.
	if got.IconSpacing != SpacingNormal || !got.ShowLabels || got.DoubleClickToOpen ||
		got.LayoutMode != LayoutAuto || got.ColumnsPerRow != 4 {
		t.Errorf("Expected defaults merged under partial record, got %+v", got)
	}
}

func TestSettingsFromMap_StringlyBooleans(t *testing.T) {
	got := SettingsFromMap(map[string]any{
		"showLabels":        "false",
		"doubleClickToOpen": "true",
	})

	if got.ShowLabels {
		t.Error(`Expected showLabels coerced from "false" to false`)
	}
	if !got.DoubleClickToOpen {
		t.Error(`Expected doubleClickToOpen coerced from "true" to true`)
	}
}

func TestSettingsFromMap_JSONNumbers(t *testing.T) {
	// encoding/json decodes numbers as float64.
	got := SettingsFromMap(map[string]any{
		"columnsPerRow": float64(3),
		"layoutMode":    "grid",
	})

	if got.ColumnsPerRow != 3 {
		t.Errorf("Expected columnsPerRow=3, got %d", got.ColumnsPerRow)
	}
	if got.LayoutMode != LayoutGrid {
		t.Errorf("Expected layoutMode grid, got %s", got.LayoutMode)
	}
}

func TestCoerceBool(t *testing.T) {
	cases := []struct {
		in     any
		want   bool
		wantOK bool
	}{
		{true, true, true},
		{false, false, true},
		{"true", true, true},
		{"TRUE", true, true},
		{" 1 ", true, true},
		{"on", true, true},
		{"false", false, true},
		{"0", false, true},
		{"off", false, true},
		{"", false, true},
		{"maybe", false, false},
		{float64(1), true, true},
		{float64(0), false, true},
		{0, false, true},
		{2, true, true},
		{nil, false, false},
	}

	for _, tc := range cases {
		got, ok := CoerceBool(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("CoerceBool(%#v) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestLayoutBehaviorSplit(t *testing.T) {
	s := Settings{
		IconSize:          IconSizeLarge,
		IconSpacing:       SpacingTight,
		ShowLabels:        false,
		DoubleClickToOpen: true,
		LayoutMode:        LayoutGrid,
		ColumnsPerRow:     3,
	}

	layout := s.Layout()
	if layout.IconSize != IconSizeLarge || layout.IconSpacing != SpacingTight ||
		layout.LayoutMode != LayoutGrid || layout.ColumnsPerRow != 3 {
		t.Errorf("Layout subset mismatch: %+v", layout)
	}

	behavior := s.Behavior()
	if behavior.ShowLabels || !behavior.DoubleClickToOpen {
		t.Errorf("Behavior subset mismatch: %+v", behavior)
	}
}
