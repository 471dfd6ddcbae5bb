package engine

import (
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// SuggestChipload returns the recommended per-flute chipload range for a tool
// diameter, linearly interpolated between the material's tabulated diameters.
//
// Below the smallest tabulated diameter the smallest entry is returned as is.
// Above the largest, both bounds are extrapolated along the line through the
// last two entries.
func SuggestChipload(toolDiameter float64, material model.Material) (model.Range, error) {
	return suggestChipload(toolDiameter, material, false)
}

// SuggestChipload is like the package-level SuggestChipload but honors the
// engine's ClampExtrapolatedLower option.
func (e *Engine) SuggestChipload(toolDiameter float64, material model.Material) (model.Range, error) {
	return suggestChipload(toolDiameter, material, e.opts.ClampExtrapolatedLower)
}

// SuggestChiploadFor looks the material up by name in the engine's catalog.
func (e *Engine) SuggestChiploadFor(toolDiameter float64, materialName string) (model.Range, error) {
	material, err := e.catalog.Material(materialName)
	if err != nil {
		return model.Range{}, err
	}
	return e.SuggestChipload(toolDiameter, material)
}

func suggestChipload(d float64, material model.Material, clampLower bool) (model.Range, error) {
	if _, err := model.NewDistance("tool_diameter", d); err != nil {
		return model.Range{}, err
	}
	table := material.Chiploads
	if len(table) == 0 {
		return model.Range{}, &model.ValidationError{Field: material.Name + ".chiploads", Err: model.ErrEmptyChiploadTable}
	}

	first, last := table[0], table[len(table)-1]
	if d <= first.Diameter || len(table) == 1 {
		return first.Chipload, nil
	}

	if d == last.Diameter {
		return last.Chipload, nil
	}
	if d > last.Diameter {
		prev := table[len(table)-2]
		r := interpolateRange(d, prev, last)
		if clampLower {
			if floor := material.MinLowerChipload(); r.Lower < floor {
				r.Lower = floor
			}
		}
		return r, nil
	}

	// d lies strictly inside the table; find the first knot at or above it.
	i := 1
	for table[i].Diameter < d {
		i++
	}
	if table[i].Diameter == d {
		return table[i].Chipload, nil
	}
	return interpolateRange(d, table[i-1], table[i]), nil
}

// interpolateRange evaluates the line through a and b at x for both bounds.
func interpolateRange(x float64, a, b model.ChiploadPoint) model.Range {
	return model.Range{
		Lower: interpolate(x, a.Diameter, a.Chipload.Lower, b.Diameter, b.Chipload.Lower),
		Upper: interpolate(x, a.Diameter, a.Chipload.Upper, b.Diameter, b.Chipload.Upper),
	}
}

func interpolate(x, x1, y1, x2, y2 float64) float64 {
	return y1 + (x-x1)*(y2-y1)/(x2-x1)
}
