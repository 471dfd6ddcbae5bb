package model

import (
	"errors"
	"math"
	"testing"
)

func defaultParams(t *testing.T) CuttingParameters {
	t.Helper()
	p, err := DefaultAppConfig().ApplyToParameters(DefaultCatalog())
	if err != nil {
		t.Fatalf("ApplyToParameters: %v", err)
	}
	return p
}

func TestFeedrateFullEngagement(t *testing.T) {
	// 1 flute, 18250 rpm, 6.35mm tool, full-width cut, 0.0254mm chipload
	got := Feedrate(1, 18250, 0.0254, 6.35, 6.35)
	if math.Abs(got-463.55) > 1e-9 {
		t.Errorf("expected 463.55, got %.6f", got)
	}
}

func TestFeedratePartialEngagementIsCorrected(t *testing.T) {
	base := Feedrate(1, 18250, 0.0254, 6.35, 6.35)
	got := Feedrate(1, 18250, 0.0254, 3.0, 6.35)
	if got <= base {
		t.Errorf("expected corrected feedrate above %.2f, got %.2f", base, got)
	}

	k := 1 - 2*3.0/6.35
	want := 463.55 / math.Sqrt(1-k*k)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestFeedrateAtExactlyHalfDiameter(t *testing.T) {
	// woc == d/2 takes the correction branch, but the factor is exactly 1 there.
	got := Feedrate(2, 10000, 0.05, 3, 6)
	if got != 1000 {
		t.Errorf("expected 1000, got %f", got)
	}
}

func TestChipThinningFactorGrowsAsWOCShrinks(t *testing.T) {
	prev := ChipThinningFactor(3, 6)
	for _, woc := range []float64{2.5, 2, 1.5, 1, 0.5, 0.1, 0.01} {
		f := ChipThinningFactor(woc, 6)
		if f <= prev {
			t.Errorf("factor at woc=%.2f (%.4f) should exceed %.4f", woc, f, prev)
		}
		prev = f
	}
	if ChipThinningFactor(6, 6) != 1 {
		t.Error("full slot should not be corrected")
	}
}

func TestFeedrateMonotonicInChipload(t *testing.T) {
	for _, woc := range []float64{0.5, 3, 6.35} {
		prev := 0.0
		for c := 0.005; c <= 0.3; c += 0.005 {
			f := Feedrate(3, 18250, c, woc, 6.35)
			if f < prev {
				t.Fatalf("feedrate decreased at chipload %.3f (woc %.2f): %.3f < %.3f", c, woc, f, prev)
			}
			prev = f
		}
	}
}

func TestParametersFeedrateRequiresChipload(t *testing.T) {
	p := defaultParams(t)
	if _, err := p.Feedrate(); !errors.Is(err, ErrChiploadUnset) {
		t.Fatalf("expected ErrChiploadUnset, got %v", err)
	}

	if err := p.SetChipload(0.0254); err != nil {
		t.Fatal(err)
	}
	f, err := p.Feedrate()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-463.55) > 1e-9 {
		t.Errorf("expected 463.55, got %f", f)
	}
}

func TestParametersFeedrateTracksEdits(t *testing.T) {
	p := defaultParams(t)
	_ = p.SetChipload(0.0254)
	f1, _ := p.Feedrate()

	if err := p.SetFlutes(2); err != nil {
		t.Fatal(err)
	}
	f2, _ := p.Feedrate()
	if math.Abs(f2-2*f1) > 1e-9 {
		t.Errorf("doubling flutes should double feedrate: %f -> %f", f1, f2)
	}
}

func TestCalculateGuidelines(t *testing.T) {
	p := defaultParams(t)
	_ = p.SetChipload(0.0254)

	g, err := CalculateGuidelines(p)
	if err != nil {
		t.Fatal(err)
	}

	// Wide and Shallow: WOC 0.4-1.0 x D, DOC 0.05-0.1 x D
	if math.Abs(g.WOC.Lower-0.4*6.35) > 1e-12 || math.Abs(g.WOC.Upper-6.35) > 1e-12 {
		t.Errorf("unexpected WOC range %+v", g.WOC)
	}
	if math.Abs(g.DOC.Lower-0.05*6.35) > 1e-12 || math.Abs(g.DOC.Upper-0.1*6.35) > 1e-12 {
		t.Errorf("unexpected DOC range %+v", g.DOC)
	}
	// Soft plastics plunge at 0.4-0.5 x feedrate
	if math.Abs(g.PlungeRate.Lower-0.4*463.55) > 1e-9 || math.Abs(g.PlungeRate.Upper-0.5*463.55) > 1e-9 {
		t.Errorf("unexpected plunge range %+v", g.PlungeRate)
	}
}

func TestCalculateGuidelinesIsIdempotent(t *testing.T) {
	p := defaultParams(t)
	_ = p.SetChipload(0.04)

	first, err := CalculateGuidelines(p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CalculateGuidelines(p)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("guidelines drifted: %+v vs %+v", first, second)
	}
}

func TestCalculateGuidelinesWithoutChipload(t *testing.T) {
	if _, err := CalculateGuidelines(defaultParams(t)); !errors.Is(err, ErrChiploadUnset) {
		t.Errorf("expected ErrChiploadUnset, got %v", err)
	}
}

func TestChiploadConversions(t *testing.T) {
	if got := TotalChipload(0.05, 3); math.Abs(got-0.15) > 1e-12 {
		t.Errorf("expected 0.15, got %f", got)
	}
	if got := PerFluteChipload(0.15, 3); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("expected 0.05, got %f", got)
	}
	if got := PerFluteChipload(0.15, 0); got != 0 {
		t.Errorf("expected 0 for zero flutes, got %f", got)
	}
}
