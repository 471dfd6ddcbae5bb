package model

import "github.com/google/uuid"

// ParameterSnapshot is the exported, serializable form of CuttingParameters.
type ParameterSnapshot struct {
	Flutes       int     `json:"flutes"`
	ToolDiameter float64 `json:"tool_diameter"` // mm
	RPM          float64 `json:"rpm"`
	WOC          float64 `json:"woc"`      // mm
	DOC          float64 `json:"doc"`      // mm
	Chipload     float64 `json:"chipload"` // mm per flute, 0 when unset
	Material     string  `json:"material"`
	CuttingStyle string  `json:"cutting_style"`
}

// Snapshot captures the current field values.
func (p CuttingParameters) Snapshot() ParameterSnapshot {
	return ParameterSnapshot{
		Flutes:       p.flutes,
		ToolDiameter: p.ToolDiameter(),
		RPM:          p.RPM(),
		WOC:          p.WOC(),
		DOC:          p.DOC(),
		Chipload:     p.chipload,
		Material:     p.material.Name,
		CuttingStyle: p.style.Name,
	}
}

// Restore rebuilds CuttingParameters from a snapshot, resolving the material
// and cutting style names against the catalog.
func (s ParameterSnapshot) Restore(catalog *Catalog) (CuttingParameters, error) {
	material, err := catalog.Material(s.Material)
	if err != nil {
		return CuttingParameters{}, err
	}
	style, err := catalog.CuttingStyle(s.CuttingStyle)
	if err != nil {
		return CuttingParameters{}, err
	}
	p, err := NewCuttingParameters(s.Flutes, s.ToolDiameter, s.RPM, s.WOC, s.DOC, material, style)
	if err != nil {
		return CuttingParameters{}, err
	}
	if s.Chipload > 0 {
		if err := p.SetChipload(s.Chipload); err != nil {
			return CuttingParameters{}, err
		}
	}
	return p, nil
}

// Setup is a labeled, frozen calculation result used for reports,
// setup cards and test-cut generation.
type Setup struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Parameters CuttingParameters `json:"-"`
	Snapshot   ParameterSnapshot `json:"parameters"`
	Feedrate   float64           `json:"feedrate"` // mm/min
	Guidelines Guidelines        `json:"guidelines"`
}

// NewSetup computes the feedrate and guidelines for p and freezes them.
// The parameters must have a chipload set.
func NewSetup(label string, p CuttingParameters) (Setup, error) {
	feedrate, err := p.Feedrate()
	if err != nil {
		return Setup{}, err
	}
	guidelines, err := CalculateGuidelines(p)
	if err != nil {
		return Setup{}, err
	}
	return Setup{
		ID:         uuid.New().String()[:8],
		Label:      label,
		Parameters: p,
		Snapshot:   p.Snapshot(),
		Feedrate:   feedrate,
		Guidelines: guidelines,
	}, nil
}
