package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCeiling   = 6000.0
	testTolerance = 0.0001
)

func defaultTestEngine() *Engine {
	return New(model.DefaultCatalog(), OptionsFromConfig(model.DefaultAppConfig()))
}

// fullSlotParams returns parameters for a full-width cut with a 6mm tool,
// so no chip thinning correction applies.
func fullSlotParams(t *testing.T, flutes int, rpm float64, material model.Material) model.CuttingParameters {
	t.Helper()
	style, err := model.DefaultCatalog().CuttingStyle(model.StyleWideShallow)
	require.NoError(t, err)
	p, err := model.NewCuttingParameters(flutes, 6, rpm, 6, 0.5, material, style)
	require.NoError(t, err)
	return p
}

func TestMaximizeFeedrate_FindsLargestChiploadUnderCeiling(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 2, 18250, softPlastics(t))

	// Sanity: the suggested range straddles the ceiling.
	low := model.Feedrate(2, 18250, 0.05, 6, 6)
	high := model.Feedrate(2, 18250, 0.254, 6, 6)
	require.Less(t, low, testCeiling)
	require.Greater(t, high, testCeiling)

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)

	trueMax := testCeiling / (18250 * 2)
	assert.True(t, res.Found)
	assert.False(t, res.AtUpperBound)
	assert.LessOrEqual(t, res.Feedrate, testCeiling)
	assert.Greater(t, res.Chipload, 0.05)
	assert.Less(t, res.Chipload, 0.254)
	assert.LessOrEqual(t, res.Chipload, trueMax)
	assert.InDelta(t, trueMax, res.Chipload, testTolerance)
	assert.InDelta(t, testCeiling, res.Feedrate, 18250*2*testTolerance)
	assert.Equal(t, model.Range{Lower: 0.05, Upper: 0.254}, res.Suggested)
	assert.Greater(t, res.Iterations, 0)
}

func TestMaximizeFeedrate_NeverExceedsCeiling(t *testing.T) {
	eng := defaultTestEngine()
	for _, material := range model.DefaultCatalog().Materials() {
		for _, rpm := range model.DefaultSpindleSteps {
			for _, flutes := range []int{1, 2, 3, 4} {
				p := fullSlotParams(t, flutes, rpm, material)
				res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
				require.NoError(t, err)
				assert.LessOrEqual(t, res.Feedrate, testCeiling)
				if res.Found {
					assert.True(t, res.Suggested.Contains(res.Chipload))
				}
			}
		}
	}
}

func TestMaximizeFeedrate_InfeasibleReturnsZeroAndLowerBound(t *testing.T) {
	eng := defaultTestEngine()
	// 31000 rpm * 0.05mm * 4 flutes = 6200 mm/min, already above the ceiling.
	p := fullSlotParams(t, 4, 31000, softPlastics(t))

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0.0, res.Feedrate)
	assert.Equal(t, 0.05, res.Chipload)
	assert.False(t, res.AtUpperBound)
}

func TestMaximizeFeedrate_ReportsUpperBound(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 1, 11000, softPlastics(t))

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.AtUpperBound)
	assert.InDelta(t, 0.254, res.Chipload, testTolerance)
}

func TestMaximizeFeedrate_DegenerateRangeStillEvaluated(t *testing.T) {
	eng := defaultTestEngine()
	hard, err := model.DefaultCatalog().Material(model.MaterialHardWood)
	require.NoError(t, err)
	style, err := model.DefaultCatalog().CuttingStyle(model.StyleNarrowDeep)
	require.NoError(t, err)
	// 1.5mm tools in hard wood have a single-valued range (0.013, 0.013).
	p, err := model.NewCuttingParameters(2, 1.5, 18250, 1.5, 1.5, hard, style)
	require.NoError(t, err)

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 0.013, res.Chipload)
	assert.InDelta(t, 18250*0.013*2, res.Feedrate, 1e-9)
	assert.Equal(t, 0, res.Iterations)
}

func TestMaximizeFeedrate_DoesNotMutateParameters(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 2, 18250, softPlastics(t))
	before := p.Snapshot()

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)
	assert.Equal(t, before, p.Snapshot())
	assert.False(t, p.HasChipload())

	committed, err := res.Apply(p)
	require.NoError(t, err)
	c, ok := committed.Chipload()
	assert.True(t, ok)
	assert.Equal(t, res.Chipload, c)

	f, err := committed.Feedrate()
	require.NoError(t, err)
	assert.Equal(t, res.Feedrate, f)
}

func TestMaximizeFeedrate_RejectsNonPositiveSettings(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 2, 18250, softPlastics(t))

	_, err := eng.MaximizeFeedrate(p, 0, testTolerance)
	assert.True(t, errors.Is(err, model.ErrNonPositive))

	_, err = eng.MaximizeFeedrate(p, testCeiling, 0)
	assert.True(t, errors.Is(err, model.ErrNonPositive))
}

func TestMaximizeFeedrate_TighterToleranceConvergesCloser(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 2, 18250, softPlastics(t))
	trueMax := testCeiling / (18250 * 2)

	coarse, err := eng.MaximizeFeedrate(p, testCeiling, 0.01)
	require.NoError(t, err)
	fine, err := eng.MaximizeFeedrate(p, testCeiling, 0.000001)
	require.NoError(t, err)

	assert.InDelta(t, trueMax, coarse.Chipload, 0.01)
	assert.InDelta(t, trueMax, fine.Chipload, 0.000001)
	assert.Greater(t, fine.Iterations, coarse.Iterations)
}

func TestApply_InfeasibleLeavesParametersAlone(t *testing.T) {
	p := fullSlotParams(t, 2, 18250, softPlastics(t))
	got, err := MaximizeResult{Found: false, Chipload: 0.05}.Apply(p)
	require.NoError(t, err)
	assert.False(t, got.HasChipload())
}

// fallingMaterial has a lower chipload bound that shrinks with diameter, so
// extrapolating past 6mm drives it below zero.
func fallingMaterial(t *testing.T) model.Material {
	t.Helper()
	m, err := model.NewMaterial("Falling", map[float64]model.Range{
		2: {Lower: 0.04, Upper: 0.06},
		4: {Lower: 0.03, Upper: 0.08},
		6: {Lower: 0.02, Upper: 0.10},
	}, model.Range{Lower: 0.3, Upper: 0.3})
	require.NoError(t, err)
	return m
}

func fallingSlotParams(t *testing.T, material model.Material, diameter float64) model.CuttingParameters {
	t.Helper()
	style, err := model.DefaultCatalog().CuttingStyle(model.StyleWideShallow)
	require.NoError(t, err)
	p, err := model.NewCuttingParameters(4, diameter, 31000, diameter, 0.5, material, style)
	require.NoError(t, err)
	return p
}

func TestMaximizeFeedrate_NegativeExtrapolatedLowerBound(t *testing.T) {
	eng := defaultTestEngine()
	p := fallingSlotParams(t, fallingMaterial(t), 12)

	suggested, err := eng.SuggestChipload(12, p.Material())
	require.NoError(t, err)
	require.Less(t, suggested.Lower, 0.0, "extrapolated lower bound should be negative")

	const ceiling = 1000.0
	res, err := eng.MaximizeFeedrate(p, ceiling, testTolerance)
	require.NoError(t, err)

	trueMax := ceiling / (31000 * 4)
	assert.True(t, res.Found)
	assert.Greater(t, res.Chipload, 0.0)
	assert.Greater(t, res.Feedrate, 0.0)
	assert.LessOrEqual(t, res.Feedrate, ceiling)
	assert.InDelta(t, trueMax, res.Chipload, testTolerance)

	applied, err := res.Apply(p)
	require.NoError(t, err)
	c, ok := applied.Chipload()
	require.True(t, ok)
	assert.Equal(t, res.Chipload, c)
}

func TestMaximizeFeedrate_NoPositiveCandidateIsInfeasible(t *testing.T) {
	eng := defaultTestEngine()
	p := fallingSlotParams(t, fallingMaterial(t), 12)

	// 1 mm/min is below anything a chipload wider than the tolerance can give.
	res, err := eng.MaximizeFeedrate(p, 1, testTolerance)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0.0, res.Feedrate)

	applied, err := res.Apply(p)
	require.NoError(t, err, "an infeasible result must not fail to apply")
	assert.False(t, applied.HasChipload())
}

func TestMaximizeFeedrate_EntirelyNegativeRange(t *testing.T) {
	eng := defaultTestEngine()
	m, err := model.NewMaterial("Collapsing", map[float64]model.Range{
		2: {Lower: 0.04, Upper: 0.06},
		4: {Lower: 0.02, Upper: 0.03},
	}, model.Range{Lower: 0.3, Upper: 0.3})
	require.NoError(t, err)
	p := fallingSlotParams(t, m, 20)

	res, err := eng.MaximizeFeedrate(p, testCeiling, testTolerance)
	require.NoError(t, err)
	assert.Less(t, res.Suggested.Upper, 0.0)
	assert.False(t, res.Found)
	assert.Equal(t, 0.0, res.Feedrate)
	assert.Equal(t, 0, res.Iterations)
}
