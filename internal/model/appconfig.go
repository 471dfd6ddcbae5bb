package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default parameters applied to new calculation sessions
	DefaultFlutes       int     `json:"default_flutes"`
	DefaultToolDiameter float64 `json:"default_tool_diameter"`
	DefaultRPM          float64 `json:"default_rpm"`
	DefaultWOC          float64 `json:"default_woc"`
	DefaultDOC          float64 `json:"default_doc"`
	DefaultMaterial     string  `json:"default_material"`
	DefaultCuttingStyle string  `json:"default_cutting_style"`

	// Maximizer settings
	MaxFeedrate            float64   `json:"max_feedrate"`             // Machine feed ceiling mm/min
	ChiploadTolerance      float64   `json:"chipload_tolerance"`       // Search stops when the bracket is this narrow (mm)
	SpindleSteps           []float64 `json:"spindle_steps"`            // Available spindle speeds, ascending
	ClampExtrapolatedLower bool      `json:"clamp_extrapolated_lower"` // Keep extrapolated lower chipload >= smallest tabulated lower

	// Output settings
	GCodeProfile string `json:"gcode_profile"` // Post-processor for test cuts
	CatalogPath  string `json:"catalog_path"`  // Optional JSON catalog replacing the built-in tables
	LogLevel     string `json:"log_level"`     // "debug", "info", "warn", "error"
}

// DefaultSpindleSteps are the speed dial settings of a typical trim router spindle.
var DefaultSpindleSteps = []float64{11000, 13500, 18250, 24500, 29250, 31000}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultFlutes:          1,
		DefaultToolDiameter:    6.35,
		DefaultRPM:             18250,
		DefaultWOC:             6.35,
		DefaultDOC:             0.254,
		DefaultMaterial:        MaterialSoftPlastics,
		DefaultCuttingStyle:    StyleWideShallow,
		MaxFeedrate:            6000,
		ChiploadTolerance:      0.0001,
		SpindleSteps:           append([]float64(nil), DefaultSpindleSteps...),
		ClampExtrapolatedLower: false,
		GCodeProfile:           "Generic",
		CatalogPath:            "",
		LogLevel:               "info",
	}
}

// ApplyToParameters builds the session parameters described by the config's
// defaults, resolving material and style names against the catalog.
func (c AppConfig) ApplyToParameters(catalog *Catalog) (CuttingParameters, error) {
	material, err := catalog.Material(c.DefaultMaterial)
	if err != nil {
		return CuttingParameters{}, err
	}
	style, err := catalog.CuttingStyle(c.DefaultCuttingStyle)
	if err != nil {
		return CuttingParameters{}, err
	}
	return NewCuttingParameters(c.DefaultFlutes, c.DefaultToolDiameter, c.DefaultRPM,
		c.DefaultWOC, c.DefaultDOC, material, style)
}

// Normalize fills zero values left by a partial config file with defaults.
func (c *AppConfig) Normalize() {
	d := DefaultAppConfig()
	if c.DefaultFlutes <= 0 {
		c.DefaultFlutes = d.DefaultFlutes
	}
	if c.DefaultToolDiameter <= 0 {
		c.DefaultToolDiameter = d.DefaultToolDiameter
	}
	if c.DefaultRPM <= 0 {
		c.DefaultRPM = d.DefaultRPM
	}
	if c.DefaultWOC <= 0 {
		c.DefaultWOC = d.DefaultWOC
	}
	if c.DefaultDOC <= 0 {
		c.DefaultDOC = d.DefaultDOC
	}
	if c.DefaultMaterial == "" {
		c.DefaultMaterial = d.DefaultMaterial
	}
	if c.DefaultCuttingStyle == "" {
		c.DefaultCuttingStyle = d.DefaultCuttingStyle
	}
	if c.MaxFeedrate <= 0 {
		c.MaxFeedrate = d.MaxFeedrate
	}
	if c.ChiploadTolerance <= 0 {
		c.ChiploadTolerance = d.ChiploadTolerance
	}
	if len(c.SpindleSteps) == 0 {
		c.SpindleSteps = d.SpindleSteps
	}
	if c.GCodeProfile == "" {
		c.GCodeProfile = d.GCodeProfile
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
