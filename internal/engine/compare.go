package engine

import (
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// SpindleSearch is the outcome of stepping the spindle speed up while the
// maximizer keeps hitting the top of the suggested chipload range.
type SpindleSearch struct {
	Steps      []MaximizeResult // One result per spindle speed tried, in order
	Best       MaximizeResult   // Highest feasible feedrate among Steps
	AtTopStep  bool             // Stopped because no faster spindle step exists
	HitCeiling bool             // Stopped because the next step could not stay under the ceiling
}

// NextSpindleStep returns the smallest of the ascending steps strictly above rpm, or false
// when rpm is already at or above the fastest step.
func NextSpindleStep(steps []float64, rpm float64) (float64, bool) {
	for _, s := range steps {
		if s > rpm {
			return s, true
		}
	}
	return 0, false
}

// MaximizeAcrossSpindleSteps maximizes the feedrate at the parameters' own
// spindle speed, then keeps moving to the next faster configured step for as
// long as the best chipload sits at the top of the suggested range. Running
// out of chipload headroom means a faster spindle is the only way to feed faster.
func (e *Engine) MaximizeAcrossSpindleSteps(p model.CuttingParameters) (SpindleSearch, error) {
	var search SpindleSearch

	current, err := e.Maximize(p)
	if err != nil {
		return SpindleSearch{}, err
	}
	search.Steps = append(search.Steps, current)
	search.Best = current

	for current.AtUpperBound {
		next, ok := NextSpindleStep(e.opts.SpindleSteps, current.RPM)
		if !ok {
			search.AtTopStep = true
			break
		}
		stepped, err := p.WithRPM(next)
		if err != nil {
			return SpindleSearch{}, err
		}
		current, err = e.Maximize(stepped)
		if err != nil {
			return SpindleSearch{}, err
		}
		search.Steps = append(search.Steps, current)
		if !current.Found {
			search.HitCeiling = true
			break
		}
		if current.Feedrate > search.Best.Feedrate {
			search.Best = current
		}
	}

	return search, nil
}

// CompareSpindleSteps maximizes the feedrate at every configured spindle
// step, giving a side-by-side view of what each speed allows.
func (e *Engine) CompareSpindleSteps(p model.CuttingParameters) ([]MaximizeResult, error) {
	results := make([]MaximizeResult, 0, len(e.opts.SpindleSteps))
	for _, rpm := range e.opts.SpindleSteps {
		stepped, err := p.WithRPM(rpm)
		if err != nil {
			return nil, err
		}
		res, err := e.Maximize(stepped)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
