package engine

import (
	"testing"

	"github.com/piwi3910/cnc-calculator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSpindleStep(t *testing.T) {
	steps := model.DefaultSpindleSteps

	next, ok := NextSpindleStep(steps, 11000)
	assert.True(t, ok)
	assert.Equal(t, 13500.0, next)

	next, ok = NextSpindleStep(steps, 12000)
	assert.True(t, ok)
	assert.Equal(t, 13500.0, next, "off-ladder speed moves to the next step above")

	_, ok = NextSpindleStep(steps, 31000)
	assert.False(t, ok, "already at maximum RPM")

	_, ok = NextSpindleStep(nil, 1000)
	assert.False(t, ok)
}

func TestNew_SortsSpindleSteps(t *testing.T) {
	eng := New(nil, Options{SpindleSteps: []float64{24500, 11000, 18250}})
	assert.Equal(t, []float64{11000, 18250, 24500}, eng.Options().SpindleSteps)
}

func TestMaximizeAcrossSpindleSteps_StepsUpUntilChiploadHasHeadroom(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 1, 11000, softPlastics(t))

	search, err := eng.MaximizeAcrossSpindleSteps(p)
	require.NoError(t, err)

	// 11000, 13500 and 18250 all top out at the max chipload; 24500 does not.
	require.Len(t, search.Steps, 4)
	assert.Equal(t, 24500.0, search.Best.RPM)
	assert.False(t, search.Best.AtUpperBound)
	assert.LessOrEqual(t, search.Best.Feedrate, testCeiling)
	assert.InDelta(t, testCeiling, search.Best.Feedrate, 24500*testTolerance)
	assert.False(t, search.AtTopStep)
	assert.False(t, search.HitCeiling)

	for i := 1; i < len(search.Steps); i++ {
		assert.Greater(t, search.Steps[i].RPM, search.Steps[i-1].RPM)
	}
}

func TestMaximizeAcrossSpindleSteps_StopsAtTopStep(t *testing.T) {
	opts := OptionsFromConfig(model.DefaultAppConfig())
	opts.MaxFeedrate = 100000
	eng := New(nil, opts)
	p := fullSlotParams(t, 1, 31000, softPlastics(t))

	search, err := eng.MaximizeAcrossSpindleSteps(p)
	require.NoError(t, err)
	assert.Len(t, search.Steps, 1)
	assert.True(t, search.AtTopStep)
	assert.True(t, search.Best.AtUpperBound)
}

func TestMaximizeAcrossSpindleSteps_StopsWhenNextStepOverruns(t *testing.T) {
	narrow, err := model.NewMaterial("Narrow", map[float64]model.Range{
		6: {Lower: 0.05, Upper: 0.051},
	}, model.Range{Lower: 0.3, Upper: 0.3})
	require.NoError(t, err)

	eng := defaultTestEngine()
	// 29250 rpm * 0.051 * 4 = 5967 (fits), 31000 * 0.05 * 4 = 6200 (does not).
	p := fullSlotParams(t, 4, 29250, narrow)

	search, err := eng.MaximizeAcrossSpindleSteps(p)
	require.NoError(t, err)
	require.Len(t, search.Steps, 2)
	assert.True(t, search.HitCeiling)
	assert.False(t, search.Steps[1].Found)
	assert.Equal(t, 29250.0, search.Best.RPM)
	assert.True(t, search.Best.Found)
}

func TestCompareSpindleSteps(t *testing.T) {
	eng := defaultTestEngine()
	p := fullSlotParams(t, 2, 18250, softPlastics(t))

	results, err := eng.CompareSpindleSteps(p)
	require.NoError(t, err)
	require.Len(t, results, len(model.DefaultSpindleSteps))
	for i, res := range results {
		assert.Equal(t, model.DefaultSpindleSteps[i], res.RPM)
		assert.LessOrEqual(t, res.Feedrate, testCeiling)
	}
	assert.Equal(t, 18250.0, p.RPM(), "comparison must not change the session spindle speed")
}

func TestExceedsCeiling(t *testing.T) {
	eng := defaultTestEngine()
	assert.False(t, eng.ExceedsCeiling(6000))
	assert.True(t, eng.ExceedsCeiling(6000.5))

	opts := OptionsFromConfig(model.DefaultAppConfig())
	opts.MaxFeedrate = 10000
	assert.False(t, New(nil, opts).ExceedsCeiling(8000))
}
