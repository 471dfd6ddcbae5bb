// Package ui provides the feeds and speeds calculator window.
package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CalculatorTheme wraps the default Fyne theme with compact sizing so the
// inputs, results and guidelines fit side by side.
type CalculatorTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	fixed   bool // ignore the system light/dark preference
}

// NewCalculatorTheme follows the system light/dark preference.
func NewCalculatorTheme() *CalculatorTheme {
	return &CalculatorTheme{base: theme.DefaultTheme()}
}

// NewCalculatorThemeWithVariant creates a CalculatorTheme locked to a light or dark variant.
func NewCalculatorThemeWithVariant(variant fyne.ThemeVariant) *CalculatorTheme {
	return &CalculatorTheme{
		base:    theme.DefaultTheme(),
		variant: variant,
		fixed:   true,
	}
}

// SetVariant locks the theme to a light or dark variant.
func (t *CalculatorTheme) SetVariant(variant fyne.ThemeVariant) {
	t.variant = variant
	t.fixed = true
}

// Color delegates to the base theme.
func (t *CalculatorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.fixed {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

// Font delegates to the base theme.
func (t *CalculatorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

// Icon delegates to the base theme.
func (t *CalculatorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *CalculatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 13
	case theme.SizeNameCaptionText:
		return 10
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
