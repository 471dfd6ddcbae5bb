package gcode

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// newTestSetup returns the default session (1 flute, 6.35mm, 18250 rpm,
// full-width 0.254mm deep cut in soft plastics) at 0.0254mm chipload.
func newTestSetup(t *testing.T) model.Setup {
	t.Helper()
	p, err := model.DefaultAppConfig().ApplyToParameters(model.DefaultCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetChipload(0.0254); err != nil {
		t.Fatal(err)
	}
	s, err := model.NewSetup("Quarter inch upcut", p)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestSettings() model.TestCutSettings {
	s := model.DefaultTestCutSettings()
	s.GCodeProfile = "Generic"
	return s
}

func TestPlan_SingleSlot(t *testing.T) {
	plan, err := New(newTestSetup(t), newTestSettings()).Plan()
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.Rows) != 1 || math.Abs(plan.Rows[0]-3.175) > 1e-9 {
		t.Errorf("expected a single pass at Y=3.175, got %v", plan.Rows)
	}
	if math.Abs(plan.StartX-3.175) > 1e-9 || math.Abs(plan.EndX-96.825) > 1e-9 {
		t.Errorf("unexpected X span %.3f - %.3f", plan.StartX, plan.EndX)
	}
	want := []float64{-0.254, -0.508, -0.762, -1.0}
	if len(plan.Levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), plan.Levels)
	}
	for i, z := range want {
		if math.Abs(plan.Levels[i]-z) > 1e-9 {
			t.Errorf("level %d: expected %.3f, got %.3f", i, z, plan.Levels[i])
		}
	}
	if plan.RPM != 18250 {
		t.Errorf("expected 18250 rpm, got %d", plan.RPM)
	}
	if math.Abs(plan.Feed-463.55) > 1e-9 {
		t.Errorf("expected feed 463.55, got %f", plan.Feed)
	}
	if math.Abs(plan.Plunge-0.4*463.55) > 1e-9 {
		t.Errorf("expected plunge at the lower plunge guideline, got %f", plan.Plunge)
	}
}

func TestPlan_WidePocketStepsOverByWOC(t *testing.T) {
	setup := newTestSetup(t)
	p := setup.Parameters
	if err := p.SetWOC(3); err != nil {
		t.Fatal(err)
	}
	setup, err := model.NewSetup("narrow stepover", p)
	if err != nil {
		t.Fatal(err)
	}

	settings := newTestSettings()
	settings.Width = 20
	plan, err := New(setup, settings).Plan()
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.Rows) != 6 {
		t.Fatalf("expected 6 passes, got %v", plan.Rows)
	}
	if math.Abs(plan.Rows[len(plan.Rows)-1]-16.825) > 1e-9 {
		t.Errorf("last pass should touch the far wall, got %.3f", plan.Rows[len(plan.Rows)-1])
	}
	for i := 1; i < len(plan.Rows); i++ {
		gap := plan.Rows[i] - plan.Rows[i-1]
		if gap <= 0 || gap > 3+1e-9 {
			t.Errorf("pass %d: stepover %.3f exceeds the WOC", i, gap)
		}
	}
}

func TestPlan_RejectsBadSettings(t *testing.T) {
	setup := newTestSetup(t)

	tooNarrow := newTestSettings()
	tooNarrow.Width = 3
	if _, err := New(setup, tooNarrow).Plan(); !errors.Is(err, ErrPocketTooSmall) {
		t.Errorf("expected ErrPocketTooSmall for narrow pocket, got %v", err)
	}

	tooShort := newTestSettings()
	tooShort.Length = 5
	if _, err := New(setup, tooShort).Plan(); !errors.Is(err, ErrPocketTooSmall) {
		t.Errorf("expected ErrPocketTooSmall for short pocket, got %v", err)
	}

	noDepth := newTestSettings()
	noDepth.Depth = 0
	if _, err := New(setup, noDepth).Plan(); !errors.Is(err, model.ErrNonPositive) {
		t.Errorf("expected ErrNonPositive for zero depth, got %v", err)
	}

	if _, err := New(model.Setup{}, newTestSettings()).Generate(); !errors.Is(err, model.ErrNonPositive) {
		t.Errorf("expected ErrNonPositive for empty setup, got %v", err)
	}
}

func TestGenerate_Header(t *testing.T) {
	code, err := New(newTestSetup(t), newTestSettings()).Generate()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"; CNC Calculator test cut: Quarter inch upcut",
		"; Material: Soft plastics, Style: Wide and Shallow",
		"Spindle: 18250 rpm, Feed: 464 mm/min, Plunge: 185 mm/min",
		"; WARNING: DOC 0.254mm outside guideline",
		"; Profile: Generic",
		"G90\nG21\n",
		"M3 S18250\n",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(code, "WARNING: WOC") {
		t.Error("full-width WOC is inside the guideline and should not warn")
	}
}

func TestGenerate_FeedsAndLevels(t *testing.T) {
	code, err := New(newTestSetup(t), newTestSettings()).Generate()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(code, "G1 Z-0.254 F185.420\n") {
		t.Error("expected first plunge at the lower plunge rate")
	}
	if !strings.Contains(code, "G1 X96.825 Y3.175 F463.550\n") {
		t.Error("expected cutting pass at the computed feedrate")
	}
	if strings.Count(code, "Level ") != 4 {
		t.Errorf("expected 4 depth levels, got %d", strings.Count(code, "Level "))
	}
	if !strings.HasSuffix(code, "M2\nM5\n") {
		t.Error("expected program to end with the profile end code and spindle stop")
	}

	counts := map[MoveType]int{}
	minZ := 0.0
	for _, m := range ParseGCode(code) {
		counts[m.Type]++
		minZ = math.Min(minZ, m.ToZ)
		if !m.Rapid && m.Type == MoveFeed && math.Abs(m.FeedRate-463.55) > 1e-9 {
			t.Errorf("feed move at %.3f, expected 463.55", m.FeedRate)
		}
	}
	if counts[MovePlunge] != 4 {
		t.Errorf("expected 4 plunges, got %d", counts[MovePlunge])
	}
	if counts[MoveFeed] != 4 {
		t.Errorf("expected 4 cutting passes, got %d", counts[MoveFeed])
	}
	if minZ != -1 {
		t.Errorf("expected final depth -1, got %.3f", minZ)
	}
}

func TestGenerate_ZigZagAlternatesDirection(t *testing.T) {
	setup := newTestSetup(t)
	p := setup.Parameters
	_ = p.SetWOC(3)
	setup, err := model.NewSetup("zig-zag", p)
	if err != nil {
		t.Fatal(err)
	}
	settings := newTestSettings()
	settings.Width = 12
	settings.Depth = 0.254

	code, err := New(setup, settings).Generate()
	if err != nil {
		t.Fatal(err)
	}

	var passes []GCodeMove
	for _, m := range ParseGCode(code) {
		if m.Type == MoveFeed && m.FromY == m.ToY {
			passes = append(passes, m)
		}
	}
	if len(passes) < 3 {
		t.Fatalf("expected at least 3 passes, got %d", len(passes))
	}
	for i := 1; i < len(passes); i++ {
		if (passes[i].ToX > passes[i].FromX) == (passes[i-1].ToX > passes[i-1].FromX) {
			t.Errorf("pass %d runs the same direction as pass %d", i, i-1)
		}
	}
}

func TestGenerate_Mach3Comments(t *testing.T) {
	settings := newTestSettings()
	settings.GCodeProfile = "Mach3"
	gen := New(newTestSetup(t), settings)
	if gen.Profile().Name != "Mach3" {
		t.Fatalf("expected Mach3 profile, got %s", gen.Profile().Name)
	}

	code, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(code, ";") {
		t.Error("Mach3 output should not contain semicolon comments")
	}
	if !strings.Contains(code, "( Tool: 6.350mm, 1 flute[s], Chipload: 0.0254 mm)") {
		t.Error("expected parenthetical tool comment with brackets in place of nested parentheses")
	}
	if !strings.Contains(code, "F463.5500") {
		t.Error("expected 4 decimal places for Mach3")
	}
	if !strings.Contains(code, "M30\nM5\n") {
		t.Error("expected Mach3 end code")
	}

	generic, _ := New(newTestSetup(t), newTestSettings()).Generate()
	if cuttingMoves(code) != cuttingMoves(generic) {
		t.Error("profiles should produce the same toolpath")
	}
}

func TestGenerate_CustomProfileWithoutSpeedPlaceholder(t *testing.T) {
	profile := model.GetProfile("Grbl")
	profile.Name = "Router"
	profile.SpindleStart = "M3"

	code, err := NewWithProfile(newTestSetup(t), newTestSettings(), profile).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(code, "\nM3\n") {
		t.Error("expected bare spindle start")
	}
	if strings.Contains(code, "%!") {
		t.Error("format verbs leaked into output")
	}
}

func TestGenerate_DefaultsToGenericProfile(t *testing.T) {
	settings := newTestSettings()
	settings.GCodeProfile = "NoSuchController"
	if got := New(newTestSetup(t), settings).Profile().Name; got != "Generic" {
		t.Errorf("expected Generic fallback, got %s", got)
	}
}

func cuttingMoves(code string) int {
	n := 0
	for _, m := range ParseGCode(code) {
		if !m.Rapid {
			n++
		}
	}
	return n
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testcut.nc")
	gen := New(newTestSetup(t), newTestSettings())
	if err := gen.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := gen.Generate()
	if string(data) != want {
		t.Error("file contents differ from the generated program")
	}
}
