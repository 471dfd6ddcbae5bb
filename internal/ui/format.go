package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// FormatFeedrate renders a feedrate rounded to whole mm/min.
func FormatFeedrate(v float64) string {
	return fmt.Sprintf("%.0f mm/min", v)
}

// FormatRange renders a range with the given number of decimals. A
// single-valued range is shown as one number.
func FormatRange(r model.Range, decimals int, unit string) string {
	lower := strconv.FormatFloat(r.Lower, 'f', decimals, 64)
	upper := strconv.FormatFloat(r.Upper, 'f', decimals, 64)
	s := lower
	if lower != upper {
		s = lower + " - " + upper
	}
	if unit != "" {
		s += " " + unit
	}
	return s
}

// FormatChipload renders a per-flute chipload.
func FormatChipload(v float64) string {
	return fmt.Sprintf("%.4f mm", v)
}

// FormatGuidelines renders the three guideline ranges on separate lines.
func FormatGuidelines(g model.Guidelines) string {
	return strings.Join([]string{
		"WOC: " + FormatRange(g.WOC, 2, "mm"),
		"DOC: " + FormatRange(g.DOC, 2, "mm"),
		"Plunge: " + FormatRange(g.PlungeRate, 0, "mm/min"),
	}, "\n")
}

// ParseMeasurement reads a positive number from an entry, accepting a
// decimal comma.
func ParseMeasurement(field, text string) (float64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, text)
	}
	if _, err := model.NewDistance(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseFlutes reads a whole, positive flute count.
func ParseFlutes(text string) (int, error) {
	v, err := ParseMeasurement("flutes", text)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, &model.ValidationError{Field: "flutes", Value: v, Err: model.ErrNotWholeNumber}
	}
	return int(v), nil
}
