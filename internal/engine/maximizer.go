package engine

import (
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// MaximizeResult is the outcome of a feedrate maximization.
type MaximizeResult struct {
	Feedrate     float64     `json:"feedrate"`       // Best feedrate found (mm/min), 0 when none is feasible
	Chipload     float64     `json:"chipload"`       // Chipload per flute giving Feedrate (mm)
	Found        bool        `json:"found"`          // Whether any chipload in the suggested range stays under the ceiling
	AtUpperBound bool        `json:"at_upper_bound"` // Best chipload is within tolerance of the suggested maximum
	Suggested    model.Range `json:"suggested"`      // Suggested chipload range that was searched
	RPM          float64     `json:"rpm"`            // Spindle speed the search ran at
	Iterations   int         `json:"iterations"`
}

// Maximize runs MaximizeFeedrate with the engine's configured ceiling and tolerance.
func (e *Engine) Maximize(p model.CuttingParameters) (MaximizeResult, error) {
	return e.MaximizeFeedrate(p, e.opts.MaxFeedrate, e.opts.ChiploadTolerance)
}

// MaximizeFeedrate finds the largest chipload in the material's suggested
// range whose feedrate does not exceed ceiling.
//
// Feedrate rises monotonically with chipload for fixed geometry, so the
// range is bisected until it is no wider than tolerance. p is taken by value
// and never modified; apply the returned Chipload to commit it.
//
// When even the smallest suggested chipload exceeds the ceiling, or no
// positive chipload lies in the range, the result has Found == false,
// Feedrate == 0 and Chipload set to the range's lower bound.
func (e *Engine) MaximizeFeedrate(p model.CuttingParameters, ceiling, tolerance float64) (MaximizeResult, error) {
	if err := positive("ceiling", ceiling); err != nil {
		return MaximizeResult{}, err
	}
	if err := positive("tolerance", tolerance); err != nil {
		return MaximizeResult{}, err
	}

	suggested, err := e.SuggestChipload(p.ToolDiameter(), p.Material())
	if err != nil {
		return MaximizeResult{}, err
	}

	feedrateAt := func(chipload float64) float64 {
		return model.Feedrate(p.Flutes(), p.RPM(), chipload, p.WOC(), p.ToolDiameter())
	}

	result := MaximizeResult{
		Chipload:  suggested.Lower,
		Suggested: suggested,
		RPM:       p.RPM(),
	}

	// Extrapolating a falling table can take the lower bound to zero or
	// below; only positive chiploads are candidates.
	lower, upper := suggested.Lower, suggested.Upper
	if lower < 0 {
		lower = 0
	}
	for upper-lower > tolerance {
		mid := (lower + upper) / 2
		f := feedrateAt(mid)
		result.Iterations++
		if f <= ceiling {
			result.Feedrate = f
			result.Chipload = mid
			result.Found = true
			lower = mid
		} else {
			upper = mid
		}
	}

	// Bisection never tests the lower bound itself. A feasible region
	// narrower than half the bracket would otherwise be reported as empty.
	if !result.Found && suggested.Lower > 0 {
		if f := feedrateAt(suggested.Lower); f <= ceiling {
			result.Feedrate = f
			result.Chipload = suggested.Lower
			result.Found = true
		}
	}

	result.AtUpperBound = result.Found && suggested.Upper-result.Chipload <= tolerance
	return result, nil
}

// Apply returns a copy of p with the result's chipload committed.
// An infeasible result leaves the chipload untouched.
func (r MaximizeResult) Apply(p model.CuttingParameters) (model.CuttingParameters, error) {
	if !r.Found {
		return p, nil
	}
	if r.RPM > 0 && r.RPM != p.RPM() {
		var err error
		if p, err = p.WithRPM(r.RPM); err != nil {
			return p, err
		}
	}
	return p.WithChipload(r.Chipload)
}

func positive(field string, v float64) error {
	if v <= 0 {
		return &model.ValidationError{Field: field, Value: v, Err: model.ErrNonPositive}
	}
	return nil
}
