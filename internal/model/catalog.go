package model

// Built-in material and cutting style names.
const (
	MaterialSoftPlastics = "Soft plastics"
	MaterialSoftWood     = "Soft wood & hard plastics"
	MaterialHardWood     = "Hard wood & aluminium"

	StyleWideShallow = "Wide and Shallow"
	StyleNarrowDeep  = "Narrow and Deep"
)

// Catalog is a read-only set of materials and cutting styles.
// Build it once at startup and pass it to whatever needs lookups.
type Catalog struct {
	materials     map[string]Material
	materialOrder []string
	styles        map[string]CuttingStyle
	styleOrder    []string
}

// NewCatalog validates every entry and returns a catalog that preserves the
// given order for name listings. Later entries with a duplicate name replace
// earlier ones but keep the original position.
func NewCatalog(materials []Material, styles []CuttingStyle) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]Material, len(materials)),
		styles:    make(map[string]CuttingStyle, len(styles)),
	}
	for _, m := range materials {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.materials[m.Name]; !exists {
			c.materialOrder = append(c.materialOrder, m.Name)
		}
		c.materials[m.Name] = copyMaterial(m)
	}
	for _, s := range styles {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.styles[s.Name]; !exists {
			c.styleOrder = append(c.styleOrder, s.Name)
		}
		c.styles[s.Name] = s
	}
	return c, nil
}

// Material returns a material by name.
func (c *Catalog) Material(name string) (Material, error) {
	m, ok := c.materials[name]
	if !ok {
		return Material{}, newValidationError("material", name, ErrUnknownMaterial)
	}
	return copyMaterial(m), nil
}

// CuttingStyle returns a cutting style by name.
func (c *Catalog) CuttingStyle(name string) (CuttingStyle, error) {
	s, ok := c.styles[name]
	if !ok {
		return CuttingStyle{}, newValidationError("cutting_style", name, ErrUnknownCuttingStyle)
	}
	return s, nil
}

// MaterialNames returns material names in catalog order.
func (c *Catalog) MaterialNames() []string {
	return append([]string(nil), c.materialOrder...)
}

// CuttingStyleNames returns cutting style names in catalog order.
func (c *Catalog) CuttingStyleNames() []string {
	return append([]string(nil), c.styleOrder...)
}

// Materials returns every material in catalog order.
func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.materialOrder))
	for _, name := range c.materialOrder {
		out = append(out, copyMaterial(c.materials[name]))
	}
	return out
}

// CuttingStyles returns every cutting style in catalog order.
func (c *Catalog) CuttingStyles() []CuttingStyle {
	out := make([]CuttingStyle, 0, len(c.styleOrder))
	for _, name := range c.styleOrder {
		out = append(out, c.styles[name])
	}
	return out
}

// Merge returns a new catalog with extra materials added to (or replacing
// entries of) c. The receiver is not modified.
func (c *Catalog) Merge(extra []Material) (*Catalog, error) {
	return NewCatalog(append(c.Materials(), extra...), c.CuttingStyles())
}

func copyMaterial(m Material) Material {
	m.Chiploads = append([]ChiploadPoint(nil), m.Chiploads...)
	return m
}

// DefaultMaterials returns the built-in chipload tables.
func DefaultMaterials() []Material {
	return []Material{
		{
			Name: MaterialSoftPlastics,
			Chiploads: []ChiploadPoint{
				{Diameter: 1.5, Chipload: Range{Lower: 0.05, Upper: 0.075}},
				{Diameter: 3.175, Chipload: Range{Lower: 0.05, Upper: 0.13}},
				{Diameter: 6, Chipload: Range{Lower: 0.05, Upper: 0.254}},
			},
			PlungeRate: Range{Lower: 0.4, Upper: 0.5},
		},
		{
			Name: MaterialSoftWood,
			Chiploads: []ChiploadPoint{
				{Diameter: 1.5, Chipload: Range{Lower: 0.025, Upper: 0.04}},
				{Diameter: 3.175, Chipload: Range{Lower: 0.025, Upper: 0.063}},
				{Diameter: 6, Chipload: Range{Lower: 0.025, Upper: 0.127}},
			},
			PlungeRate: Range{Lower: 0.3, Upper: 0.3},
		},
		{
			Name: MaterialHardWood,
			Chiploads: []ChiploadPoint{
				{Diameter: 1.5, Chipload: Range{Lower: 0.013, Upper: 0.013}},
				{Diameter: 3.175, Chipload: Range{Lower: 0.013, Upper: 0.025}},
				{Diameter: 6, Chipload: Range{Lower: 0.025, Upper: 0.05}},
			},
			PlungeRate: Range{Lower: 0.1, Upper: 0.3},
		},
	}
}

// DefaultCuttingStyles returns the built-in cutting styles.
func DefaultCuttingStyles() []CuttingStyle {
	return []CuttingStyle{
		{
			Name:          StyleWideShallow,
			WOCMultiplier: Range{Lower: 0.4, Upper: 1.0},
			DOCMultiplier: Range{Lower: 0.05, Upper: 0.1},
		},
		{
			Name:          StyleNarrowDeep,
			WOCMultiplier: Range{Lower: 0.1, Upper: 0.25},
			DOCMultiplier: Range{Lower: 1.0, Upper: 3.0},
		},
	}
}

// DefaultCatalog returns the built-in catalog. The built-in tables are
// known to be valid, so this never fails.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultMaterials(), DefaultCuttingStyles())
	if err != nil {
		panic("model: invalid built-in catalog: " + err.Error())
	}
	return c
}
