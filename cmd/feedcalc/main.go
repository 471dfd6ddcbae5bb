// feedcalc: command line feeds and speeds
//
// Computes the chipload suggestion, feedrate and guidelines for one cut and
// optionally maximizes the feedrate, writes a PDF report or setup card, and
// emits a test-cut program as GCode or DXF.
//
// Examples:
//   feedcalc -chipload 0.0254
//   feedcalc -flutes 2 -diameter 3.175 -material "Hard wood & aluminium" -maximize -steps
//   feedcalc -tool "6mm Three Flute End Mill" -maximize -gcode testcut.nc -profile Grbl

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/export"
	"github.com/piwi3910/cnc-calculator/internal/gcode"
	"github.com/piwi3910/cnc-calculator/internal/importer"
	"github.com/piwi3910/cnc-calculator/internal/logging"
	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/piwi3910/cnc-calculator/internal/project"
)

type options struct {
	configPath string
	logLevel   string

	flutes   int
	diameter float64
	rpm      float64
	woc      float64
	doc      float64
	chipload float64
	material string
	style    string
	tool     string
	maxFeed  float64

	maximize bool
	steps    bool
	compare  bool

	importPath string
	label      string
	reportPath string
	cardsPath  string
	gcodePath  string
	dxfPath    string
	profile    string
}

func parseFlags() (options, map[string]bool) {
	var o options
	flag.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "Path to config.json")
	flag.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	flag.IntVar(&o.flutes, "flutes", 0, "Number of flutes")
	flag.Float64Var(&o.diameter, "diameter", 0, "Tool diameter (mm)")
	flag.Float64Var(&o.rpm, "rpm", 0, "Spindle speed (RPM)")
	flag.Float64Var(&o.woc, "woc", 0, "Width of cut (mm)")
	flag.Float64Var(&o.doc, "doc", 0, "Depth of cut (mm)")
	flag.Float64Var(&o.chipload, "chipload", 0, "Chipload per flute (mm)")
	flag.StringVar(&o.material, "material", "", "Material name")
	flag.StringVar(&o.style, "style", "", "Cutting style name")
	flag.StringVar(&o.tool, "tool", "", "Take flutes and diameter from a tool in the rack")
	flag.Float64Var(&o.maxFeed, "max-feed", 0, "Machine feed ceiling (mm/min); overrides the config")

	flag.BoolVar(&o.maximize, "maximize", false, "Find the largest chipload whose feedrate stays under the ceiling")
	flag.BoolVar(&o.steps, "steps", false, "With -maximize, step the spindle up while the chipload is at its maximum")
	flag.BoolVar(&o.compare, "compare", false, "Print the maximized feedrate at every spindle step")

	flag.StringVar(&o.importPath, "import", "", "Merge materials from a CSV or Excel file")
	flag.StringVar(&o.label, "label", "Setup 1", "Label for the setup in exports")
	flag.StringVar(&o.reportPath, "report", "", "Write a PDF report to this path")
	flag.StringVar(&o.cardsPath, "cards", "", "Write a PDF setup card to this path")
	flag.StringVar(&o.gcodePath, "gcode", "", "Write a test-cut GCode program to this path")
	flag.StringVar(&o.dxfPath, "dxf", "", "Write the test-cut toolpath as DXF to this path")
	flag.StringVar(&o.profile, "profile", "", "GCode profile for the test cut; overrides the config")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set
}

func main() {
	o, set := parseFlags()
	if err := run(o, set); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(o options, set map[string]bool) error {
	log := logging.GetSubsystemLogger("feedcalc")

	cfg, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logging.SetLevel(cfg.LogLevel)
	if set["max-feed"] {
		cfg.MaxFeedrate = o.maxFeed
	}
	if o.profile != "" {
		cfg.GCodeProfile = o.profile
	}

	catalog, err := project.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if o.importPath != "" {
		catalog, err = importMaterials(log, catalog, o.importPath)
		if err != nil {
			return err
		}
	}
	eng := engine.New(catalog, engine.OptionsFromConfig(cfg))

	p, err := buildParameters(cfg, catalog, o, set)
	if err != nil {
		return err
	}

	suggested, err := eng.SuggestChipload(p.ToolDiameter(), p.Material())
	if err != nil {
		return err
	}
	fmt.Printf("Tool:       %d flute(s), %.3f mm at %.0f RPM\n", p.Flutes(), p.ToolDiameter(), p.RPM())
	fmt.Printf("Material:   %s\n", p.Material().Name)
	fmt.Printf("Style:      %s (WOC %.3f mm, DOC %.3f mm)\n", p.CuttingStyle().Name, p.WOC(), p.DOC())
	fmt.Printf("Suggested:  %.4f - %.4f mm/flute\n", suggested.Lower, suggested.Upper)

	if o.compare {
		if err := printComparison(eng, p); err != nil {
			return err
		}
	}

	if o.maximize {
		p, err = maximize(eng, p, o.steps)
		if err != nil {
			return err
		}
	}

	if !p.HasChipload() {
		fmt.Println("\nNo chipload set; pass -chipload or -maximize to compute a feedrate.")
		return nil
	}

	setup, err := model.NewSetup(o.label, p)
	if err != nil {
		return err
	}
	printSetup(eng, setup)

	return writeOutputs(log, o, cfg, setup)
}

func buildParameters(cfg model.AppConfig, catalog *model.Catalog, o options, set map[string]bool) (model.CuttingParameters, error) {
	if o.material != "" {
		cfg.DefaultMaterial = o.material
	}
	if o.style != "" {
		cfg.DefaultCuttingStyle = o.style
	}
	p, err := cfg.ApplyToParameters(catalog)
	if err != nil {
		return model.CuttingParameters{}, err
	}

	if o.tool != "" {
		inv, err := project.LoadInventory(project.DefaultInventoryPath())
		if err != nil && len(inv.Tools) == 0 {
			return model.CuttingParameters{}, err
		}
		t := inv.FindToolByName(o.tool)
		if t == nil {
			return model.CuttingParameters{}, fmt.Errorf("no tool named %q in the rack", o.tool)
		}
		if err := t.ApplyTo(&p, catalog); err != nil {
			return model.CuttingParameters{}, err
		}
	}

	updates := []struct {
		flag  string
		field model.Field
		value float64
	}{
		{"flutes", model.FieldFlutes, float64(o.flutes)},
		{"diameter", model.FieldToolDiameter, o.diameter},
		{"rpm", model.FieldRPM, o.rpm},
		{"woc", model.FieldWOC, o.woc},
		{"doc", model.FieldDOC, o.doc},
		{"chipload", model.FieldChipload, o.chipload},
	}
	for _, u := range updates {
		if !set[u.flag] {
			continue
		}
		if err := p.Update(u.field, u.value); err != nil {
			return model.CuttingParameters{}, err
		}
	}
	return p, nil
}

func importMaterials(log *zerolog.Logger, catalog *model.Catalog, path string) (*model.Catalog, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		result = importer.ImportMaterialsExcel(path)
	default:
		result = importer.ImportMaterialsCSV(path)
	}
	for _, w := range result.Warnings {
		log.Warn().Str("path", path).Msg(w)
	}
	for _, e := range result.Errors {
		log.Error().Str("path", path).Msg(e)
	}
	if len(result.Materials) == 0 {
		return nil, fmt.Errorf("no materials imported from %s", path)
	}
	log.Info().Int("materials", len(result.Materials)).Str("path", path).Msg("imported materials")
	return catalog.Merge(result.Materials)
}

func printComparison(eng *engine.Engine, p model.CuttingParameters) error {
	results, err := eng.CompareSpindleSteps(p)
	if err != nil {
		return err
	}
	fmt.Println("\nSpindle speed comparison:")
	for _, r := range results {
		if !r.Found {
			fmt.Printf("  %6.0f RPM  over limit\n", r.RPM)
			continue
		}
		note := ""
		if r.AtUpperBound {
			note = "  (max chipload)"
		}
		fmt.Printf("  %6.0f RPM  %.4f mm  %6.0f mm/min%s\n", r.RPM, r.Chipload, r.Feedrate, note)
	}
	return nil
}

// maximize applies the best chipload and, with steps, the spindle step it
// was found at.
func maximize(eng *engine.Engine, p model.CuttingParameters, steps bool) (model.CuttingParameters, error) {
	var res engine.MaximizeResult
	if steps {
		search, err := eng.MaximizeAcrossSpindleSteps(p)
		if err != nil {
			return p, err
		}
		res = search.Best
		if search.AtTopStep {
			fmt.Println("\nChipload at maximum on the fastest spindle step.")
		}
	} else {
		var err error
		res, err = eng.Maximize(p)
		if err != nil {
			return p, err
		}
	}

	if !res.Found {
		fmt.Printf("\nEven %.4f mm/flute exceeds the %.0f mm/min ceiling at %.0f RPM.\n",
			res.Chipload, eng.Options().MaxFeedrate, res.RPM)
		return p, nil
	}
	if res.AtUpperBound && !steps {
		if next, ok := engine.NextSpindleStep(eng.Options().SpindleSteps, res.RPM); ok {
			fmt.Printf("\nChipload at maximum; consider raising the spindle to %.0f RPM (-steps).\n", next)
		}
	}
	return res.Apply(p)
}

func printSetup(eng *engine.Engine, setup model.Setup) {
	g := setup.Guidelines
	fmt.Printf("\nChipload:   %.4f mm/flute at %.0f RPM\n", setup.Snapshot.Chipload, setup.Snapshot.RPM)
	fmt.Printf("Feedrate:   %.0f mm/min\n", setup.Feedrate)
	fmt.Printf("WOC:        %.2f - %.2f mm\n", g.WOC.Lower, g.WOC.Upper)
	fmt.Printf("DOC:        %.2f - %.2f mm\n", g.DOC.Lower, g.DOC.Upper)
	fmt.Printf("Plunge:     %.0f - %.0f mm/min\n", g.PlungeRate.Lower, g.PlungeRate.Upper)
	if eng.ExceedsCeiling(setup.Feedrate) {
		fmt.Printf("WARNING:    feedrate exceeds the machine maximum of %.0f mm/min\n", eng.Options().MaxFeedrate)
	}
}

func writeOutputs(log *zerolog.Logger, o options, cfg model.AppConfig, setup model.Setup) error {
	setups := []model.Setup{setup}
	if o.reportPath != "" {
		if err := export.ExportReport(o.reportPath, setups, cfg); err != nil {
			return err
		}
		log.Info().Str("path", o.reportPath).Msg("wrote report")
	}
	if o.cardsPath != "" {
		if err := export.ExportSetupCards(o.cardsPath, setups); err != nil {
			return err
		}
		log.Info().Str("path", o.cardsPath).Msg("wrote setup card")
	}
	if o.gcodePath == "" && o.dxfPath == "" {
		return nil
	}

	profiles, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	if err != nil {
		log.Warn().Err(err).Msg("ignoring custom GCode profiles")
	}
	settings := model.DefaultTestCutSettings()
	settings.GCodeProfile = cfg.GCodeProfile
	gen := gcode.NewWithProfile(setup, settings, project.ResolveProfile(cfg.GCodeProfile, profiles))

	if o.gcodePath != "" {
		if err := gen.WriteFile(o.gcodePath); err != nil {
			return err
		}
		code, err := gen.Generate()
		if err != nil {
			return err
		}
		sum := gcode.Summarize(gcode.ParseGCode(code), gcode.DefaultRapidRate)
		fmt.Printf("\nTest cut:   %s (%s), %d moves, about %s\n",
			o.gcodePath, gen.Profile().Name, sum.Moves, sum.Duration.Round(time.Second))
	}
	if o.dxfPath != "" {
		if err := gen.ExportDXF(o.dxfPath); err != nil {
			return err
		}
		log.Info().Str("path", o.dxfPath).Msg("wrote DXF")
	}
	return nil
}
