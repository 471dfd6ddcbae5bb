package model

import "github.com/google/uuid"

// ToolProfile is a cutter from the user's tool rack.
type ToolProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Flutes       int     `json:"flutes"`
	ToolDiameter float64 `json:"tool_diameter"`      // mm
	Material     string  `json:"material,omitempty"` // Preferred material, optional
}

// NewToolProfile creates a new ToolProfile with a generated ID.
func NewToolProfile(name string, flutes int, diameter float64) ToolProfile {
	return ToolProfile{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Flutes:       flutes,
		ToolDiameter: diameter,
	}
}

// Validate checks the flute count and diameter.
func (tp ToolProfile) Validate() error {
	if err := ValidateFlutes(tp.Flutes); err != nil {
		return err
	}
	_, err := NewDistance(tp.Name+".tool_diameter", tp.ToolDiameter)
	return err
}

// ApplyTo copies the tool's geometry into p. If the tool names a preferred
// material it is looked up in catalog and applied too. The chipload is
// cleared since the old value was chosen for a different cutter.
func (tp ToolProfile) ApplyTo(p *CuttingParameters, catalog *Catalog) error {
	if err := tp.Validate(); err != nil {
		return err
	}
	next := *p
	if err := next.SetFlutes(tp.Flutes); err != nil {
		return err
	}
	if err := next.SetToolDiameter(tp.ToolDiameter); err != nil {
		return err
	}
	if tp.Material != "" {
		m, err := catalog.Material(tp.Material)
		if err != nil {
			return err
		}
		if err := next.SetMaterial(m); err != nil {
			return err
		}
	}
	next.ClearChipload()
	*p = next
	return nil
}

// Inventory holds the user's tool rack.
type Inventory struct {
	Tools []ToolProfile `json:"tools"`
}

// DefaultInventory returns an inventory populated with common router bits.
func DefaultInventory() Inventory {
	return Inventory{
		Tools: []ToolProfile{
			NewToolProfile("1/4\" Single Flute Upcut (6.35mm)", 1, 6.35),
			NewToolProfile("1/4\" Two Flute Downcut (6.35mm)", 2, 6.35),
			NewToolProfile("1/8\" Single Flute (3.175mm)", 1, 3.175),
			NewToolProfile("6mm Three Flute End Mill", 3, 6.0),
			NewToolProfile("1.5mm Two Flute Engraver", 2, 1.5),
		},
	}
}

// FindToolByID returns a pointer to the tool with the given ID, or nil.
func (inv *Inventory) FindToolByID(id string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].ID == id {
			return &inv.Tools[i]
		}
	}
	return nil
}

// ToolNames returns a list of tool names for UI dropdowns.
func (inv *Inventory) ToolNames() []string {
	names := make([]string, len(inv.Tools))
	for i, t := range inv.Tools {
		names[i] = t.Name
	}
	return names
}

// FindToolByName returns a pointer to the first tool with the given name, or nil.
func (inv *Inventory) FindToolByName(name string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].Name == name {
			return &inv.Tools[i]
		}
	}
	return nil
}
