// Package models defines the shared data types for the desktop shell:
// the persisted settings record and application descriptors.
package models

import (
	"strconv"
	"strings"
)

// IconSize is the desktop icon size class.
type IconSize string

const (
	IconSizeSmall  IconSize = "small"
	IconSizeMedium IconSize = "medium"
	IconSizeLarge  IconSize = "large"
)

// IconSpacing is the gap class between desktop icons.
type IconSpacing string

const (
	SpacingTight  IconSpacing = "tight"
	SpacingNormal IconSpacing = "normal"
	SpacingLoose  IconSpacing = "loose"
)

// LayoutMode selects how the icon grid is laid out.
type LayoutMode string

const (
	LayoutAuto     LayoutMode = "auto"
	LayoutGrid     LayoutMode = "grid"
	LayoutAdaptive LayoutMode = "adaptive"
)

// ColumnsPerRow bounds. ColumnsPerRow is only meaningful when
// LayoutMode is LayoutGrid.
const (
	MinColumnsPerRow = 2
	MaxColumnsPerRow = 6
)

// Settings is the persisted desktop appearance/interaction record.
//
// The record is always total: loading a partial or corrupt stored value
// merges it over DefaultSettings, and saving coerces the boolean fields
// so stringly-typed form values never reach storage.
type Settings struct {
	IconSize          IconSize    `json:"iconSize"`
	IconSpacing       IconSpacing `json:"iconSpacing"`
	ShowLabels        bool        `json:"showLabels"`
	DoubleClickToOpen bool        `json:"doubleClickToOpen"`
	LayoutMode        LayoutMode  `json:"layoutMode"`
	ColumnsPerRow     int         `json:"columnsPerRow"`
}

// LayoutSettings is the subset of Settings owned by the display
// manager. The icon shell forwards these fields verbatim and never
// interprets them itself.
type LayoutSettings struct {
	IconSize      IconSize    `json:"iconSize"`
	IconSpacing   IconSpacing `json:"iconSpacing"`
	LayoutMode    LayoutMode  `json:"layoutMode"`
	ColumnsPerRow int         `json:"columnsPerRow"`
}

// BehaviorSettings is the subset of Settings the icon shell interprets
// itself.
type BehaviorSettings struct {
	ShowLabels        bool `json:"showLabels"`
	DoubleClickToOpen bool `json:"doubleClickToOpen"`
}

// DefaultSettings returns the default desktop settings record.
func DefaultSettings() Settings {
	return Settings{
		IconSize:          IconSizeMedium,
		IconSpacing:       SpacingNormal,
		ShowLabels:        true,
		DoubleClickToOpen: false,
		LayoutMode:        LayoutAuto,
		ColumnsPerRow:     4,
	}
}

// Layout returns the layout-field subset of s.
func (s Settings) Layout() LayoutSettings {
	return LayoutSettings{
		IconSize:      s.IconSize,
		IconSpacing:   s.IconSpacing,
		LayoutMode:    s.LayoutMode,
		ColumnsPerRow: s.ColumnsPerRow,
	}
}

// Behavior returns the behavior-field subset of s.
func (s Settings) Behavior() BehaviorSettings {
	return BehaviorSettings{
		ShowLabels:        s.ShowLabels,
		DoubleClickToOpen: s.DoubleClickToOpen,
	}
}

// Sanitize clamps every field of s to a valid value, substituting the
// default for unknown enum values and clamping ColumnsPerRow into
// [MinColumnsPerRow, MaxColumnsPerRow].
func (s Settings) Sanitize() Settings {
	def := DefaultSettings()

	switch s.IconSize {
	case IconSizeSmall, IconSizeMedium, IconSizeLarge:
	default:
		s.IconSize = def.IconSize
	}

	switch s.IconSpacing {
	case SpacingTight, SpacingNormal, SpacingLoose:
	default:
		s.IconSpacing = def.IconSpacing
	}

	switch s.LayoutMode {
	case LayoutAuto, LayoutGrid, LayoutAdaptive:
	default:
		s.LayoutMode = def.LayoutMode
	}

	if s.ColumnsPerRow < MinColumnsPerRow {
		s.ColumnsPerRow = MinColumnsPerRow
	}
	if s.ColumnsPerRow > MaxColumnsPerRow {
		s.ColumnsPerRow = MaxColumnsPerRow
	}

	return s
}

// SettingsFromMap builds a total Settings record from an untyped,
// possibly partial map, merging the parsed fields over defaults.
// Boolean fields accept actual booleans as well as the stringly forms
// untyped form state produces ("true", "1", "on"). Unknown keys are
// ignored.
func SettingsFromMap(m map[string]any) Settings {
	s := DefaultSettings()
	if m == nil {
		return s
	}

	if v, ok := m["iconSize"]; ok {
		if str, ok := coerceString(v); ok {
			s.IconSize = IconSize(str)
		}
	}
	if v, ok := m["iconSpacing"]; ok {
		if str, ok := coerceString(v); ok {
			s.IconSpacing = IconSpacing(str)
		}
	}
	if v, ok := m["showLabels"]; ok {
		if b, ok := CoerceBool(v); ok {
			s.ShowLabels = b
		}
	}
	if v, ok := m["doubleClickToOpen"]; ok {
		if b, ok := CoerceBool(v); ok {
			s.DoubleClickToOpen = b
		}
	}
	if v, ok := m["layoutMode"]; ok {
		if str, ok := coerceString(v); ok {
			s.LayoutMode = LayoutMode(str)
		}
	}
	if v, ok := m["columnsPerRow"]; ok {
		if n, ok := coerceInt(v); ok {
			s.ColumnsPerRow = n
		}
	}

	return s.Sanitize()
}

// CoerceBool converts loosely-typed truth values to a real boolean.
// Returns false, false when the value has no boolean interpretation.
func CoerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no", "":
			return false, true
		}
		return false, false
	case float64:
		return t != 0, true
	case int:
		return t != 0, true
	default:
		return false, false
	}
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(s)), true
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
