// CNCCalculator: milling feeds and speeds
//
// A cross-platform desktop application that suggests chiploads, corrects
// feedrates for radial chip thinning and finds the fastest feed a machine
// can run for a given tool, material and cut.
//
// Build:
//   go build -o cnc-calculator ./cmd/cnc-calculator
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o cnc-calculator.exe ./cmd/cnc-calculator
//   GOOS=darwin  GOARCH=amd64 go build -o cnc-calculator-darwin ./cmd/cnc-calculator
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/logging"
	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/piwi3910/cnc-calculator/internal/project"
	"github.com/piwi3910/cnc-calculator/internal/ui"
)

func main() {
	log := logging.GetSubsystemLogger("main")

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Warn().Err(err).Msg("using default config")
		cfg = model.DefaultAppConfig()
	}
	logging.SetLevel(cfg.LogLevel)

	catalog, err := project.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CatalogPath).Msg("using built-in catalog")
		catalog = model.DefaultCatalog()
	}

	inventory, err := project.LoadInventory(project.DefaultInventoryPath())
	if err != nil {
		log.Warn().Err(err).Msg("some tools in the rack were skipped")
	}

	profiles, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	if err != nil {
		log.Warn().Err(err).Msg("ignoring custom GCode profiles")
		profiles = nil
	}

	var startupErr error
	params, err := cfg.ApplyToParameters(catalog)
	if err != nil {
		// The config names a material or style the catalog lacks; fall back
		// to the built-in defaults so the window still opens.
		startupErr = err
		params, err = model.DefaultAppConfig().ApplyToParameters(model.DefaultCatalog())
		if err != nil {
			log.Fatal().Err(err).Msg("built-in defaults are invalid")
		}
		catalog = model.DefaultCatalog()
	}

	eng := engine.New(catalog, engine.OptionsFromConfig(cfg))
	session := ui.NewSession(eng, params, inventory)

	application := app.NewWithID("com.piwi3910.cnc-calculator")
	application.Settings().SetTheme(ui.NewCalculatorTheme())
	window := application.NewWindow("CNCCalculator: Feeds and Speeds")

	appUI := ui.NewApp(window, session, cfg, profiles)
	appUI.SetupMenus() // Setup the native menu bar
	window.SetContent(appUI.Build())
	window.Resize(fyne.NewSize(900, 760))
	window.CenterOnScreen()

	if startupErr != nil {
		dialog.ShowError(startupErr, window)
	}
	log.Info().Int("materials", len(catalog.MaterialNames())).Int("tools", len(inventory.Tools)).Msg("started")
	window.ShowAndRun()
}
