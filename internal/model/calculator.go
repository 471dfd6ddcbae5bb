package model

import "math"

// Feedrate returns the table feed in mm/min for a cutter with the given
// number of flutes turning at rpm and taking chiploadPerFlute mm per edge.
//
// When the width of cut is at most the tool radius the chip is thinner than
// the programmed chipload, so the feed is raised by ChipThinningFactor.
// Callers must pass woc > 0 and toolDiameter > 0.
func Feedrate(flutes int, rpm, chiploadPerFlute, woc, toolDiameter float64) float64 {
	base := rpm * chiploadPerFlute * float64(flutes)
	return base * ChipThinningFactor(woc, toolDiameter)
}

// ChipThinningFactor returns the radial chip thinning correction:
// 1 for engagement above the tool radius, otherwise
// 1/sqrt(1 - (1 - 2*woc/d)^2), which grows without bound as woc approaches 0.
func ChipThinningFactor(woc, toolDiameter float64) float64 {
	if woc > toolDiameter/2 {
		return 1
	}
	k := 1 - 2*woc/toolDiameter
	return 1 / math.Sqrt(1-k*k)
}

// TotalChipload converts a per-flute chipload into the chipload per revolution.
func TotalChipload(perFlute float64, flutes int) float64 {
	return perFlute * float64(flutes)
}

// PerFluteChipload converts a per-revolution chipload into a per-flute one.
func PerFluteChipload(total float64, flutes int) float64 {
	if flutes <= 0 {
		return 0
	}
	return total / float64(flutes)
}

// Guidelines holds the recommended engagement and plunge ranges for a setup.
type Guidelines struct {
	WOC        Range `json:"woc"`         // Width of cut (mm)
	DOC        Range `json:"doc"`         // Depth of cut (mm)
	PlungeRate Range `json:"plunge_rate"` // Plunge feed (mm/min)
}

// CalculateGuidelines scales the tool diameter by the cutting style
// multipliers and the feedrate by the material's plunge rate fractions.
// The parameters must have a chipload set.
func CalculateGuidelines(p CuttingParameters) (Guidelines, error) {
	feedrate, err := p.Feedrate()
	if err != nil {
		return Guidelines{}, err
	}
	d := p.ToolDiameter()
	return Guidelines{
		WOC:        p.style.WOCMultiplier.Scale(d),
		DOC:        p.style.DOCMultiplier.Scale(d),
		PlungeRate: p.material.PlungeRate.Scale(feedrate),
	}, nil
}
