package model

import "sort"

// ChiploadPoint is one row of a material's chipload table: the recommended
// per-flute chipload range for a given tool diameter.
type ChiploadPoint struct {
	Diameter float64 `json:"diameter"` // Tool diameter in mm
	Chipload Range   `json:"chipload"` // mm per flute
}

// Material describes how a stock material should be cut.
// Chiploads is sorted by strictly increasing Diameter.
type Material struct {
	Name       string          `json:"name"`
	Chiploads  []ChiploadPoint `json:"chiploads"`
	PlungeRate Range           `json:"plunge_rate"` // Fraction of the horizontal feedrate
}

// NewMaterial validates a chipload table keyed by tool diameter and returns
// a Material with its points sorted by diameter.
func NewMaterial(name string, chiploads map[float64]Range, plungeRate Range) (Material, error) {
	points := make([]ChiploadPoint, 0, len(chiploads))
	for d, r := range chiploads {
		points = append(points, ChiploadPoint{Diameter: d, Chipload: r})
	}
	return NewMaterialFromPoints(name, points, plungeRate)
}

// NewMaterialFromPoints is like NewMaterial but accepts the table as a slice,
// which may be unsorted. Duplicate diameters are rejected.
func NewMaterialFromPoints(name string, points []ChiploadPoint, plungeRate Range) (Material, error) {
	if len(points) == 0 {
		return Material{}, newValidationError(name+".chiploads", nil, ErrEmptyChiploadTable)
	}

	sorted := make([]ChiploadPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Diameter < sorted[j].Diameter
	})

	for i, p := range sorted {
		if err := validatePositive(name+".diameter", p.Diameter); err != nil {
			return Material{}, err
		}
		if err := p.Chipload.validate(name + ".chipload"); err != nil {
			return Material{}, err
		}
		if i > 0 && sorted[i-1].Diameter == p.Diameter {
			return Material{}, newValidationError(name+".diameter", p.Diameter, ErrDuplicateDiameter)
		}
	}
	if err := plungeRate.validate(name + ".plunge_rate"); err != nil {
		return Material{}, err
	}

	return Material{
		Name:       name,
		Chiploads:  sorted,
		PlungeRate: plungeRate,
	}, nil
}

// Validate re-checks a Material that was built without NewMaterial,
// for example one decoded from JSON.
func (m Material) Validate() error {
	_, err := NewMaterialFromPoints(m.Name, m.Chiploads, m.PlungeRate)
	return err
}

// Diameters returns the tabulated tool diameters in ascending order.
func (m Material) Diameters() []float64 {
	ds := make([]float64, len(m.Chiploads))
	for i, p := range m.Chiploads {
		ds[i] = p.Diameter
	}
	return ds
}

// MinLowerChipload returns the smallest tabulated lower chipload bound.
func (m Material) MinLowerChipload() float64 {
	if len(m.Chiploads) == 0 {
		return 0
	}
	lowest := m.Chiploads[0].Chipload.Lower
	for _, p := range m.Chiploads[1:] {
		if p.Chipload.Lower < lowest {
			lowest = p.Chipload.Lower
		}
	}
	return lowest
}

// CuttingStyle scales the tool diameter into width and depth of cut guidelines.
type CuttingStyle struct {
	Name          string `json:"name"`
	WOCMultiplier Range  `json:"woc_multiplier"`
	DOCMultiplier Range  `json:"doc_multiplier"`
}

// NewCuttingStyle validates both multiplier ranges.
func NewCuttingStyle(name string, woc, doc Range) (CuttingStyle, error) {
	s := CuttingStyle{Name: name, WOCMultiplier: woc, DOCMultiplier: doc}
	if err := s.Validate(); err != nil {
		return CuttingStyle{}, err
	}
	return s, nil
}

// Validate checks both multiplier ranges.
func (s CuttingStyle) Validate() error {
	if err := s.WOCMultiplier.validate(s.Name + ".woc_multiplier"); err != nil {
		return err
	}
	return s.DOCMultiplier.validate(s.Name + ".doc_multiplier")
}
