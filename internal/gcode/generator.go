package gcode

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// ErrPocketTooSmall is returned when the test pocket cannot fit the cutter.
var ErrPocketTooSmall = errors.New("test pocket is smaller than the tool")

// Generator produces a test-cut program for a computed setup.
type Generator struct {
	Setup    model.Setup
	Settings model.TestCutSettings
	profile  model.GCodeProfile
}

// New returns a generator using the built-in profile named in settings.
func New(setup model.Setup, settings model.TestCutSettings) *Generator {
	return NewWithProfile(setup, settings, model.GetProfile(settings.GCodeProfile))
}

// NewWithProfile returns a generator using an explicit post-processor profile.
func NewWithProfile(setup model.Setup, settings model.TestCutSettings, profile model.GCodeProfile) *Generator {
	return &Generator{
		Setup:    setup,
		Settings: settings,
		profile:  profile,
	}
}

// Profile returns the post-processor profile in use.
func (g *Generator) Profile() model.GCodeProfile {
	return g.profile
}

// Plan is the resolved toolpath geometry of a test cut. Rows and StartX/EndX
// are tool centre coordinates.
type Plan struct {
	StartX   float64
	EndX     float64
	Rows     []float64 // Y of each pass
	Levels   []float64 // Z of each depth level, negative
	Stepover float64
	StepDown float64
	Feed     float64 // mm/min
	Plunge   float64 // mm/min
	RPM      int
}

// Plan resolves the pocket into passes. The stepover and step-down come from
// the setup's WOC and DOC since those are what the feedrate was computed for.
func (g *Generator) Plan() (Plan, error) {
	s := g.Settings
	snap := g.Setup.Snapshot

	if _, err := model.NewDistance("length", s.Length); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("depth", s.Depth); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("safe_z", s.SafeZ); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("tool_diameter", snap.ToolDiameter); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("woc", snap.WOC); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("doc", snap.DOC); err != nil {
		return Plan{}, err
	}
	if _, err := model.NewDistance("feedrate", g.Setup.Feedrate); err != nil {
		return Plan{}, err
	}
	if s.Width < 0 {
		return Plan{}, &model.ValidationError{Field: "width", Value: s.Width, Err: model.ErrNonPositive}
	}

	d := snap.ToolDiameter
	r := d / 2
	width := s.Width
	if width == 0 {
		width = d
	}
	if width < d || s.Length <= d {
		return Plan{}, fmt.Errorf("%.3f x %.3f mm with a %.3f mm tool: %w", s.Length, width, d, ErrPocketTooSmall)
	}

	plunge := g.Setup.Guidelines.PlungeRate.Lower
	if plunge <= 0 {
		plunge = g.Setup.Feedrate
	}

	plan := Plan{
		StartX:   s.OriginX + r,
		EndX:     s.OriginX + s.Length - r,
		Stepover: math.Min(snap.WOC, d),
		StepDown: math.Min(snap.DOC, s.Depth),
		Feed:     g.Setup.Feedrate,
		Plunge:   plunge,
		RPM:      int(math.Round(snap.RPM)),
	}

	first := s.OriginY + r
	last := s.OriginY + width - r
	for y := first; y < last-1e-9; y += plan.Stepover {
		plan.Rows = append(plan.Rows, y)
	}
	plan.Rows = append(plan.Rows, last)

	levels := int(math.Ceil(s.Depth/plan.StepDown - 1e-9))
	for i := 1; i <= levels; i++ {
		plan.Levels = append(plan.Levels, -math.Min(float64(i)*plan.StepDown, s.Depth))
	}

	return plan, nil
}

// Generate produces the complete test-cut program.
func (g *Generator) Generate() (string, error) {
	plan, err := g.Plan()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	g.writeHeader(&b, plan)
	for i, z := range plan.Levels {
		g.writeLevel(&b, plan, i+1, z)
	}
	g.writeFooter(&b)
	return b.String(), nil
}

// WriteFile generates the program and writes it to path.
func (g *Generator) WriteFile(path string) error {
	code, err := g.Generate()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("write GCode: %w", err)
	}
	return nil
}

func (g *Generator) writeHeader(b *strings.Builder, plan Plan) {
	p := g.profile
	snap := g.Setup.Snapshot
	guides := g.Setup.Guidelines

	b.WriteString(g.comment(fmt.Sprintf("CNC Calculator test cut: %s [%s]", g.Setup.Label, g.Setup.ID)))
	b.WriteString(g.comment(fmt.Sprintf("Material: %s, Style: %s", snap.Material, snap.CuttingStyle)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.3fmm, %d flute(s), Chipload: %.4f mm",
		snap.ToolDiameter, snap.Flutes, snap.Chipload)))
	b.WriteString(g.comment(fmt.Sprintf("Spindle: %d rpm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		plan.RPM, plan.Feed, plan.Plunge)))
	b.WriteString(g.comment(fmt.Sprintf("Pocket: %d pass(es) at %.3fmm stepover, %d level(s) at %.3fmm",
		len(plan.Rows), plan.Stepover, len(plan.Levels), plan.StepDown)))
	if guides.WOC.Upper > 0 && !guides.WOC.Contains(snap.WOC) {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: WOC %.3fmm outside guideline %.3f - %.3fmm",
			snap.WOC, guides.WOC.Lower, guides.WOC.Upper)))
	}
	if guides.DOC.Upper > 0 && !guides.DOC.Contains(snap.DOC) {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: DOC %.3fmm outside guideline %.3f - %.3fmm",
			snap.DOC, guides.DOC.Lower, guides.DOC.Upper)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		if strings.Contains(p.SpindleStart, "%d") {
			b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", plan.RPM))
		} else {
			b.WriteString(p.SpindleStart + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

// writeLevel clears the pocket at one depth with a zig-zag along X.
func (g *Generator) writeLevel(b *strings.Builder, plan Plan, level int, z float64) {
	p := g.profile

	b.WriteString(g.comment(fmt.Sprintf("Level %d/%d, depth=%.3fmm", level, len(plan.Levels), -z)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(plan.StartX), g.format(plan.Rows[0])))
	b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(z), g.format(plan.Plunge)))

	x := plan.StartX
	for i, y := range plan.Rows {
		if i > 0 {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove, g.format(x), g.format(y), g.format(plan.Feed)))
		}
		if x == plan.StartX {
			x = plan.EndX
		} else {
			x = plan.StartX
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove, g.format(x), g.format(y), g.format(plan.Feed)))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString(g.comment("=== Test cut complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// comment wraps text in the profile's comment syntax. Characters that would
// close a parenthetical comment early are swapped for brackets.
func (g *Generator) comment(text string) string {
	if g.profile.CommentSuffix != "" {
		text = strings.NewReplacer("(", "[", ")", "]").Replace(text)
	}
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}
