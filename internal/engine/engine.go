// Package engine implements the chipload suggestion and feedrate
// maximization algorithms on top of the model calculators.
package engine

import (
	"sort"

	"github.com/piwi3910/cnc-calculator/internal/model"
)

// Options tunes the engine. The zero value is usable once MaxFeedrate and
// ChiploadTolerance are set; OptionsFromConfig fills everything.
type Options struct {
	ClampExtrapolatedLower bool      // Raise extrapolated lower chiploads to the smallest tabulated lower bound
	MaxFeedrate            float64   // Feed ceiling used by Maximize and ExceedsCeiling (mm/min)
	ChiploadTolerance      float64   // Maximizer bracket width at which the search stops (mm)
	SpindleSteps           []float64 // Available spindle speeds
}

// OptionsFromConfig extracts engine options from the application config.
func OptionsFromConfig(cfg model.AppConfig) Options {
	return Options{
		ClampExtrapolatedLower: cfg.ClampExtrapolatedLower,
		MaxFeedrate:            cfg.MaxFeedrate,
		ChiploadTolerance:      cfg.ChiploadTolerance,
		SpindleSteps:           cfg.SpindleSteps,
	}
}

// Engine answers chipload and feedrate questions against one catalog.
// It holds no per-session state and is safe to share.
type Engine struct {
	catalog *model.Catalog
	opts    Options
}

// New creates an Engine. A nil catalog means the built-in one.
func New(catalog *model.Catalog, opts Options) *Engine {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	steps := append([]float64(nil), opts.SpindleSteps...)
	sort.Float64s(steps)
	opts.SpindleSteps = steps
	return &Engine{catalog: catalog, opts: opts}
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *model.Catalog {
	return e.catalog
}

// Options returns a copy of the engine options.
func (e *Engine) Options() Options {
	o := e.opts
	o.SpindleSteps = append([]float64(nil), e.opts.SpindleSteps...)
	return o
}

// ExceedsCeiling reports whether feedrate is above the configured machine ceiling.
func (e *Engine) ExceedsCeiling(feedrate float64) bool {
	return feedrate > e.opts.MaxFeedrate
}
