package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/export"
	"github.com/piwi3910/cnc-calculator/internal/gcode"
	"github.com/piwi3910/cnc-calculator/internal/importer"
	"github.com/piwi3910/cnc-calculator/internal/logging"
	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/piwi3910/cnc-calculator/internal/project"
	"github.com/piwi3910/cnc-calculator/internal/ui/widgets"
)

// App holds the window and the widgets that mirror the session.
type App struct {
	window   fyne.Window
	session  *Session
	cfg      model.AppConfig
	profiles []model.GCodeProfile
	testCut  model.TestCutSettings
	log      *zerolog.Logger
	tabs     *container.AppTabs

	entries         map[model.Field]*widget.Entry
	materialSelect  *widget.Select
	styleSelect     *widget.Select
	toolSelect      *widget.Select
	suggestLabel    *widget.Label
	feedrateLabel   *widget.Label
	guidelineLabel  *widget.Label
	warningLabel    *widget.Label
	setupsContainer *fyne.Container
	previewHolder   *fyne.Container
	refreshing      bool
}

// NewApp wires a window to a session. profiles are the user's custom
// post-processors, searched before the built-in ones.
func NewApp(window fyne.Window, session *Session, cfg model.AppConfig, profiles []model.GCodeProfile) *App {
	testCut := model.DefaultTestCutSettings()
	testCut.GCodeProfile = cfg.GCodeProfile
	return &App{
		window:   window,
		session:  session,
		cfg:      cfg,
		profiles: profiles,
		testCut:  testCut,
		log:      logging.GetSubsystemLogger("ui"),
		entries:  make(map[model.Field]*widget.Entry),
	}
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Import Materials from CSV...", func() { a.importMaterials(".csv") }),
		fyne.NewMenuItem("Import Materials from Excel...", func() { a.importMaterials(".xlsx") }),
		fyne.NewMenuItem("Import Tool Rack...", func() { a.importToolRack(nil) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Report (PDF)...", func() { a.exportReport() }),
		fyne.NewMenuItem("Export Setup Cards (PDF)...", func() { a.exportCards() }),
		fyne.NewMenuItem("Export Test Cut GCode...", func() { a.exportTestCut(".nc") }),
		fyne.NewMenuItem("Export Test Cut DXF...", func() { a.exportTestCut(".dxf") }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() {
			label := a.session.History().UndoLabel()
			if a.session.Undo() {
				a.log.Debug().Str("edit", label).Msg("undo")
				a.refreshInputs()
			}
		}),
		fyne.NewMenuItem("Redo", func() {
			label := a.session.History().RedoLabel()
			if a.session.Redo() {
				a.log.Debug().Str("edit", label).Msg("redo")
				a.refreshInputs()
			}
		}),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Calculate", func() { a.calculate() }),
		fyne.NewMenuItem("Maximize Feedrate", func() { a.maximize() }),
		fyne.NewMenuItem("Compare Spindle Speeds", func() { a.showSpindleComparison() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Setup", func() { a.saveSetup() }),
		fyne.NewMenuItem("Tool Rack...", func() { a.showToolRackDialog() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() { a.showAboutDialog() }),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About CNC Calculator",
		"CNC Calculator: milling feeds and speeds\n\n"+
			"Suggests chiploads from per-material tables, corrects the\n"+
			"feedrate for radial chip thinning and finds the fastest feed\n"+
			"that stays under your machine's limit.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.tabs = container.NewAppTabs(
		container.NewTabItem("Calculator", a.buildCalculatorPanel()),
		container.NewTabItem("Setups", a.buildSetupsPanel()),
		container.NewTabItem("Test Cut", a.buildTestCutPanel()),
	)
	a.tabs.SetTabLocation(container.TabLocationTop)
	a.refreshInputs()
	return a.tabs
}

// ─── Calculator Panel ──────────────────────────────────────

func (a *App) buildCalculatorPanel() fyne.CanvasObject {
	catalog := a.session.Engine().Catalog()
	inv := a.session.Inventory()

	a.toolSelect = widget.NewSelect(inv.ToolNames(), func(name string) {
		if a.refreshing || name == "" {
			return
		}
		a.apply(a.session.UseTool(name))
	})
	a.toolSelect.PlaceHolder = "Pick from tool rack..."

	a.materialSelect = widget.NewSelect(catalog.MaterialNames(), func(name string) {
		if a.refreshing {
			return
		}
		a.apply(a.session.SelectMaterial(name))
	})
	a.styleSelect = widget.NewSelect(catalog.CuttingStyleNames(), func(name string) {
		if a.refreshing {
			return
		}
		a.apply(a.session.SelectCuttingStyle(name))
	})

	fields := []struct {
		field model.Field
		label string
	}{
		{model.FieldFlutes, "Flutes"},
		{model.FieldToolDiameter, "Tool Diameter (mm)"},
		{model.FieldRPM, "Spindle Speed (RPM)"},
		{model.FieldWOC, "Width of Cut (mm)"},
		{model.FieldDOC, "Depth of Cut (mm)"},
		{model.FieldChipload, "Chipload (mm/flute)"},
	}
	form := widget.NewForm(
		widget.NewFormItem("Tool", a.toolSelect),
		widget.NewFormItem("Material", a.materialSelect),
		widget.NewFormItem("Cutting Style", a.styleSelect),
	)
	for _, f := range fields {
		field := f.field
		e := widget.NewEntry()
		e.OnSubmitted = func(text string) { a.commitEntry(field, text) }
		a.entries[field] = e
		form.Append(f.label, e)
	}

	a.suggestLabel = widget.NewLabel("")
	a.feedrateLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	a.guidelineLabel = widget.NewLabel("")
	a.warningLabel = widget.NewLabel("")
	a.warningLabel.Importance = widget.DangerImportance
	a.warningLabel.Hide()

	buttons := container.NewHBox(
		widget.NewButtonWithIcon("Calculate", theme.ConfirmIcon(), func() { a.calculate() }),
		widget.NewButtonWithIcon("Maximize Feedrate", theme.MoveUpIcon(), func() { a.maximize() }),
		widget.NewButtonWithIcon("Save Setup", theme.DocumentSaveIcon(), func() { a.saveSetup() }),
		layout.NewSpacer(),
	)

	results := widget.NewCard("Results", "", container.NewVBox(
		a.suggestLabel,
		a.feedrateLabel,
		a.warningLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Guidelines", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.guidelineLabel,
	))

	return container.NewVScroll(container.NewVBox(
		widget.NewCard("Inputs", "Press Enter to apply a value", form),
		buttons,
		results,
	))
}

// commitEntry applies typed text when the user presses Enter in a field.
func (a *App) commitEntry(field model.Field, text string) {
	if err := a.session.SetField(field, text); err != nil {
		dialog.ShowError(err, a.window)
		a.refreshInputs()
		return
	}
	a.refreshInputs()
	if a.session.Parameters().HasChipload() {
		a.calculate()
	}
}

func (a *App) apply(err error) {
	if err != nil {
		dialog.ShowError(err, a.window)
	}
	a.refreshInputs()
}

// refreshInputs copies the session parameters into the widgets.
func (a *App) refreshInputs() {
	if a.materialSelect == nil {
		return
	}
	a.refreshing = true
	defer func() { a.refreshing = false }()

	p := a.session.Parameters()
	a.entries[model.FieldFlutes].SetText(strconv.Itoa(p.Flutes()))
	a.entries[model.FieldToolDiameter].SetText(trimFloat(p.ToolDiameter()))
	a.entries[model.FieldRPM].SetText(trimFloat(p.RPM()))
	a.entries[model.FieldWOC].SetText(trimFloat(p.WOC()))
	a.entries[model.FieldDOC].SetText(trimFloat(p.DOC()))
	if c, ok := p.Chipload(); ok {
		a.entries[model.FieldChipload].SetText(trimFloat(c))
	} else {
		a.entries[model.FieldChipload].SetText("")
	}

	a.materialSelect.Options = a.session.Engine().Catalog().MaterialNames()
	a.materialSelect.SetSelected(p.Material().Name)
	a.styleSelect.SetSelected(p.CuttingStyle().Name)

	if r, err := a.session.Suggest(); err == nil {
		a.suggestLabel.SetText("Suggested chipload: " + FormatRange(r, 4, "mm"))
		if !p.HasChipload() {
			a.entries[model.FieldChipload].SetPlaceHolder(FormatRange(r, 4, ""))
		}
	}
	if !p.HasChipload() {
		a.feedrateLabel.SetText("Feedrate: enter a chipload or maximize")
		a.guidelineLabel.SetText("")
		a.warningLabel.Hide()
	}
	a.refreshPreview()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ─── Actions ───────────────────────────────────────────────

func (a *App) calculate() {
	calc, err := a.session.Calculate()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.showCalculation(calc)
}

func (a *App) showCalculation(calc Calculation) {
	a.feedrateLabel.SetText(fmt.Sprintf("Feedrate: %s at %s", FormatFeedrate(calc.Feedrate), FormatChipload(calc.Chipload)))
	a.guidelineLabel.SetText(FormatGuidelines(calc.Guidelines))
	if calc.OverCeiling {
		a.warningLabel.SetText(fmt.Sprintf("Warning: feedrate exceeds the machine maximum of %s",
			FormatFeedrate(a.session.Engine().Options().MaxFeedrate)))
		a.warningLabel.Show()
	} else {
		a.warningLabel.Hide()
	}
}

func (a *App) maximize() {
	res, err := a.session.Maximize()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.afterMaximize(res)
}

// afterMaximize reports the result and, when the chipload is pinned at the
// top of its range, offers to move to a faster spindle step.
func (a *App) afterMaximize(res engine.MaximizeResult) {
	a.refreshInputs()
	if !res.Found {
		dialog.ShowInformation("No feasible chipload",
			fmt.Sprintf("Even the smallest suggested chipload (%.4f mm) exceeds %s at %.0f RPM.\n"+
				"Lower the spindle speed or use fewer flutes.",
				res.Chipload, FormatFeedrate(a.session.Engine().Options().MaxFeedrate), res.RPM),
			a.window)
		return
	}
	a.calculate()
	if !res.AtUpperBound {
		return
	}
	next, ok := engine.NextSpindleStep(a.session.Engine().Options().SpindleSteps, res.RPM)
	if !ok {
		return
	}
	dialog.ShowConfirm("Chipload at maximum",
		fmt.Sprintf("The chipload is at the top of the suggested range.\nIncrease spindle speed to %.0f RPM?", next),
		func(yes bool) {
			if !yes {
				return
			}
			stepped, moved, err := a.session.StepUpSpindle()
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			if !moved {
				return
			}
			a.afterMaximize(stepped)
		}, a.window)
}

func (a *App) showSpindleComparison() {
	results, err := a.session.Engine().CompareSpindleSteps(a.session.Parameters())
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	grid := container.NewGridWithColumns(3,
		widget.NewLabelWithStyle("RPM", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Chipload", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Feedrate", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, r := range results {
		chip, feed := "-", "over limit"
		if r.Found {
			chip = FormatChipload(r.Chipload)
			feed = FormatFeedrate(r.Feedrate)
			if r.AtUpperBound {
				feed += " (max chipload)"
			}
		}
		grid.Add(widget.NewLabel(fmt.Sprintf("%.0f", r.RPM)))
		grid.Add(widget.NewLabel(chip))
		grid.Add(widget.NewLabel(feed))
	}
	dialog.ShowCustom("Spindle Speed Comparison", "Close", grid, a.window)
}

func (a *App) saveSetup() {
	label := widget.NewEntry()
	label.SetText(fmt.Sprintf("Setup %d", len(a.session.Setups())+1))
	dialog.ShowForm("Save Setup", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Label", label)},
		func(ok bool) {
			if !ok {
				return
			}
			if _, err := a.session.SaveSetup(strings.TrimSpace(label.Text)); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.refreshSetups()
		}, a.window)
}

// ─── Setups Panel ──────────────────────────────────────────

func (a *App) buildSetupsPanel() fyne.CanvasObject {
	a.setupsContainer = container.NewVBox()
	a.refreshSetups()
	return container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Saved Setups", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			widget.NewButtonWithIcon("Export Report", theme.DocumentPrintIcon(), func() { a.exportReport() }),
			widget.NewButtonWithIcon("Export Cards", theme.DocumentIcon(), func() { a.exportCards() }),
		),
		nil, nil, nil,
		container.NewVScroll(a.setupsContainer),
	)
}

func (a *App) refreshSetups() {
	a.setupsContainer.RemoveAll()

	setups := a.session.Setups()
	if len(setups) == 0 {
		a.setupsContainer.Add(widget.NewLabel("No setups saved yet. Calculate a feedrate, then click 'Save Setup'."))
		return
	}

	header := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("Label", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Material", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Tool", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("RPM", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Feedrate", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(""),
	)
	a.setupsContainer.Add(header)
	a.setupsContainer.Add(widget.NewSeparator())

	for _, s := range setups {
		id := s.ID
		feed := widget.NewLabel(FormatFeedrate(s.Feedrate))
		if a.session.Engine().ExceedsCeiling(s.Feedrate) {
			feed.Importance = widget.DangerImportance
		}
		a.setupsContainer.Add(container.NewGridWithColumns(6,
			widget.NewLabel(s.Label),
			widget.NewLabel(s.Snapshot.Material),
			widget.NewLabel(fmt.Sprintf("%d fl, %.2f mm", s.Snapshot.Flutes, s.Snapshot.ToolDiameter)),
			widget.NewLabel(fmt.Sprintf("%.0f", s.Snapshot.RPM)),
			feed,
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.session.RemoveSetup(id)
				a.refreshSetups()
			}),
		))
	}
}

// ─── Test Cut Panel ────────────────────────────────────────

func (a *App) buildTestCutPanel() fyne.CanvasObject {
	s := &a.testCut

	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(trimFloat(*val))
		e.OnSubmitted = func(text string) {
			text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
				a.refreshPreview()
			}
		}
		return e
	}

	profileNames := a.profileNames()
	profileSelect := widget.NewSelect(profileNames, func(selected string) {
		s.GCodeProfile = selected
		a.refreshPreview()
	})
	profileSelect.SetSelected(s.GCodeProfile)

	settings := widget.NewCard("Test Pocket", "Width 0 cuts a single slot", container.NewGridWithColumns(2,
		widget.NewLabel("GCode Profile"), profileSelect,
		widget.NewLabel("Length (mm)"), floatEntry(&s.Length),
		widget.NewLabel("Width (mm)"), floatEntry(&s.Width),
		widget.NewLabel("Depth (mm)"), floatEntry(&s.Depth),
		widget.NewLabel("Safe Z (mm)"), floatEntry(&s.SafeZ),
	))

	a.previewHolder = container.NewStack()
	return container.NewVScroll(container.NewVBox(
		settings,
		container.NewHBox(
			widget.NewButtonWithIcon("Export GCode", theme.DocumentSaveIcon(), func() { a.exportTestCut(".nc") }),
			widget.NewButtonWithIcon("Export DXF", theme.DocumentSaveIcon(), func() { a.exportTestCut(".dxf") }),
		),
		a.previewHolder,
	))
}

func (a *App) profileNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range a.profiles {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	for _, n := range model.GetProfileNames() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// testCutGenerator builds a generator for the current parameters.
func (a *App) testCutGenerator(label string) (*gcode.Generator, error) {
	setup, err := model.NewSetup(label, a.session.Parameters())
	if err != nil {
		return nil, err
	}
	profile := project.ResolveProfile(a.testCut.GCodeProfile, a.profiles)
	return gcode.NewWithProfile(setup, a.testCut, profile), nil
}

func (a *App) refreshPreview() {
	if a.previewHolder == nil {
		return
	}
	a.previewHolder.RemoveAll()
	gen, err := a.testCutGenerator("Preview")
	if err != nil {
		a.previewHolder.Add(widget.NewLabel("Set a chipload to preview the test cut."))
	} else {
		a.previewHolder.Add(container.NewVBox(
			widgets.RenderToolpathPreview(gen),
			widget.NewLabel(cycleEstimate(gen)),
		))
	}
	a.previewHolder.Refresh()
}

func cycleEstimate(gen *gcode.Generator) string {
	code, err := gen.Generate()
	if err != nil {
		return ""
	}
	sum := gcode.Summarize(gcode.ParseGCode(code), gcode.DefaultRapidRate)
	return fmt.Sprintf("%d moves, %.0f mm cutting, %.0f mm rapid, about %s",
		sum.Moves, sum.CutLength, sum.RapidLength, sum.Duration.Round(time.Second))
}

// ─── Import / Export ───────────────────────────────────────

func (a *App) importMaterials(ext string) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		var result importer.ImportResult
		if ext == ".csv" {
			result = importer.ImportMaterialsCSV(path)
		} else {
			result = importer.ImportMaterialsExcel(path)
		}
		a.handleImportResult(path, result)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}

func (a *App) handleImportResult(path string, result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}
	if len(result.Warnings) > 0 {
		a.log.Warn().Str("path", path).Strs("warnings", result.Warnings).Msg("material import warnings")
	}
	if len(result.Materials) == 0 {
		return
	}

	if err := a.session.MergeMaterials(result.Materials); err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.refreshInputs()

	msg := fmt.Sprintf("Imported %d materials.", len(result.Materials))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf("\n\nHowever, %d problems were reported and those materials were skipped.", len(result.Errors))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// saveAs shows a save dialog and runs write with the chosen path.
func (a *App) saveAs(defaultName string, write func(path string) error) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			a.log.Error().Err(err).Str("path", path).Msg("export failed")
			dialog.ShowError(err, a.window)
			return
		}
		a.log.Info().Str("path", path).Msg("exported")
		dialog.ShowInformation("Export Complete", fmt.Sprintf("Saved to %s", path), a.window)
	}, a.window)
	d.SetFileName(defaultName)
	d.Show()
}

func (a *App) exportReport() {
	setups := a.session.Setups()
	if len(setups) == 0 {
		dialog.ShowInformation("No setups", "Save at least one setup before exporting a report.", a.window)
		return
	}
	cfg := a.cfg
	opts := a.session.Engine().Options()
	cfg.MaxFeedrate = opts.MaxFeedrate
	a.saveAs("feeds-and-speeds.pdf", func(path string) error {
		return export.ExportReport(path, setups, cfg)
	})
}

func (a *App) exportCards() {
	setups := a.session.Setups()
	if len(setups) == 0 {
		dialog.ShowInformation("No setups", "Save at least one setup before printing cards.", a.window)
		return
	}
	a.saveAs("setup-cards.pdf", func(path string) error {
		return export.ExportSetupCards(path, setups)
	})
}

func (a *App) exportTestCut(ext string) {
	gen, err := a.testCutGenerator("Test cut")
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if ext == ".dxf" {
		a.saveAs("testcut.dxf", gen.ExportDXF)
		return
	}
	a.saveAs("testcut.nc", gen.WriteFile)
}
