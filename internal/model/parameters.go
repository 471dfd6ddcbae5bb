package model

import "fmt"

// Field identifies a numeric CuttingParameters field for Update.
type Field int

const (
	FieldFlutes Field = iota
	FieldToolDiameter
	FieldRPM
	FieldWOC
	FieldDOC
	FieldChipload
)

func (f Field) String() string {
	switch f {
	case FieldFlutes:
		return "flutes"
	case FieldToolDiameter:
		return "tool_diameter"
	case FieldRPM:
		return "rpm"
	case FieldWOC:
		return "woc"
	case FieldDOC:
		return "doc"
	case FieldChipload:
		return "chipload"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// CuttingParameters is the state of one calculation session.
//
// It is a value type: copying it yields an independent session, and all
// setters validate their input so a CuttingParameters built through
// NewCuttingParameters never holds a non-positive measurement.
type CuttingParameters struct {
	flutes       int
	toolDiameter Distance
	rpm          RPM
	woc          Distance
	doc          Distance
	chipload     float64 // mm per flute
	chiploadSet  bool
	material     Material
	style        CuttingStyle
}

// NewCuttingParameters validates every field. Chipload starts unset.
func NewCuttingParameters(flutes int, toolDiameter, rpm, woc, doc float64, material Material, style CuttingStyle) (CuttingParameters, error) {
	var p CuttingParameters
	if err := p.SetFlutes(flutes); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetToolDiameter(toolDiameter); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetRPM(rpm); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetWOC(woc); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetDOC(doc); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetMaterial(material); err != nil {
		return CuttingParameters{}, err
	}
	if err := p.SetCuttingStyle(style); err != nil {
		return CuttingParameters{}, err
	}
	return p, nil
}

func (p CuttingParameters) Flutes() int { return p.flutes }
func (p CuttingParameters) ToolDiameter() float64 { return float64(p.toolDiameter) }
func (p CuttingParameters) RPM() float64 { return float64(p.rpm) }
func (p CuttingParameters) WOC() float64 { return float64(p.woc) }
func (p CuttingParameters) DOC() float64 { return float64(p.doc) }
func (p CuttingParameters) Material() Material { return copyMaterial(p.material) }
func (p CuttingParameters) CuttingStyle() CuttingStyle { return p.style }
func (p CuttingParameters) HasChipload() bool { return p.chiploadSet }
func (p CuttingParameters) Chipload() (float64, bool) { return p.chipload, p.chiploadSet }

func (p *CuttingParameters) SetFlutes(n int) error {
	if err := ValidateFlutes(n); err != nil {
		return err
	}
	p.flutes = n
	return nil
}

func (p *CuttingParameters) SetToolDiameter(v float64) error {
	d, err := NewDistance("tool_diameter", v)
	if err != nil {
		return err
	}
	p.toolDiameter = d
	return nil
}

func (p *CuttingParameters) SetRPM(v float64) error {
	r, err := NewRPM(v)
	if err != nil {
		return err
	}
	p.rpm = r
	return nil
}

func (p *CuttingParameters) SetWOC(v float64) error {
	d, err := NewDistance("woc", v)
	if err != nil {
		return err
	}
	p.woc = d
	return nil
}

func (p *CuttingParameters) SetDOC(v float64) error {
	d, err := NewDistance("doc", v)
	if err != nil {
		return err
	}
	p.doc = d
	return nil
}

// SetChipload sets the per-flute chipload in mm.
func (p *CuttingParameters) SetChipload(v float64) error {
	if err := validatePositive("chipload", v); err != nil {
		return err
	}
	p.chipload = v
	p.chiploadSet = true
	return nil
}

// ClearChipload marks the chipload as unset.
func (p *CuttingParameters) ClearChipload() {
	p.chipload = 0
	p.chiploadSet = false
}

func (p *CuttingParameters) SetMaterial(m Material) error {
	if err := m.Validate(); err != nil {
		return err
	}
	p.material = copyMaterial(m)
	return nil
}

func (p *CuttingParameters) SetCuttingStyle(s CuttingStyle) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.style = s
	return nil
}

// Update sets a numeric field. Flutes must be a whole number.
func (p *CuttingParameters) Update(field Field, value float64) error {
	switch field {
	case FieldFlutes:
		n := int(value)
		if float64(n) != value {
			return newValidationError(field.String(), value, ErrNotWholeNumber)
		}
		return p.SetFlutes(n)
	case FieldToolDiameter:
		return p.SetToolDiameter(value)
	case FieldRPM:
		return p.SetRPM(value)
	case FieldWOC:
		return p.SetWOC(value)
	case FieldDOC:
		return p.SetDOC(value)
	case FieldChipload:
		return p.SetChipload(value)
	default:
		return fmt.Errorf("unknown field %v", field)
	}
}

// WithChipload returns a copy of p with the chipload set to v.
// The receiver is not modified.
func (p CuttingParameters) WithChipload(v float64) (CuttingParameters, error) {
	if err := p.SetChipload(v); err != nil {
		return CuttingParameters{}, err
	}
	return p, nil
}

// WithRPM returns a copy of p with the spindle speed set to v.
func (p CuttingParameters) WithRPM(v float64) (CuttingParameters, error) {
	if err := p.SetRPM(v); err != nil {
		return CuttingParameters{}, err
	}
	return p, nil
}

// Feedrate computes the feedrate in mm/min from the current field values.
// It returns ErrChiploadUnset if no chipload has been set.
func (p CuttingParameters) Feedrate() (float64, error) {
	if !p.chiploadSet {
		return 0, newValidationError("chipload", nil, ErrChiploadUnset)
	}
	return Feedrate(p.flutes, p.RPM(), p.chipload, p.WOC(), p.ToolDiameter()), nil
}
