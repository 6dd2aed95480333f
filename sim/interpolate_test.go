package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedInterp(t *testing.T, xs, ys []float64) *NumericInterpolate {
	t.Helper()
	ni := &NumericInterpolate{}
	for i := range xs {
		ni.Push(xs[i], ys[i])
	}
	require.NoError(t, ni.Prepare())
	return ni
}

func TestNumericInterpolate_ApproxOnKnots(t *testing.T) {
	ni := preparedInterp(t, []float64{0, 1, 2, 4}, []float64{0, 3, 5, 6})
	for i, x := range []float64{0, 1, 2, 4} {
		assert.InDelta(t, []float64{0, 3, 5, 6}[i], ni.Approx(x), 1e-12)
	}
	assert.InDelta(t, 4.0, ni.Approx(1.5), 1e-12)
}

func TestNumericInterpolate_RoundTrip(t *testing.T) {
	// Invert(Approx(x)) == x within table precision for strictly
	// increasing curves.
	ni := preparedInterp(t, []float64{0, 2, 5, 10, 20}, []float64{0, 0.4, 1.3, 3.1, 8.0})
	for _, x := range []float64{0, 0.5, 2, 3.7, 5, 9.99, 15, 20} {
		assert.InDelta(t, x, ni.Invert(ni.Approx(x)), 1e-9)
	}
}

func TestNumericInterpolate_ClampsOutOfRange(t *testing.T) {
	ni := preparedInterp(t, []float64{1, 2, 3}, []float64{10, 20, 30})
	assert.InDelta(t, 10.0, ni.Approx(0), 1e-12)
	assert.InDelta(t, 30.0, ni.Approx(99), 1e-12)
	assert.InDelta(t, 1.0, ni.Invert(-5), 1e-12)
	assert.InDelta(t, 3.0, ni.Invert(99), 1e-12)
}

func TestNumericInterpolate_UnorderedKnots(t *testing.T) {
	a := preparedInterp(t, []float64{3, 1, 2}, []float64{30, 10, 20})
	b := preparedInterp(t, []float64{1, 2, 3}, []float64{10, 20, 30})
	assert.InDelta(t, b.Approx(1.5), a.Approx(1.5), 1e-12)
}

func TestNumericInterpolate_FlatSegmentsInvertToFirstTime(t *testing.T) {
	ni := preparedInterp(t, []float64{0, 1, 2, 3}, []float64{0, 1, 1, 2})
	assert.InDelta(t, 1.0, ni.Invert(1.0), 1e-12)
}

func TestNumericInterpolate_TooFewKnots(t *testing.T) {
	ni := &NumericInterpolate{}
	ni.Push(1, 1)
	assert.Error(t, ni.Prepare())
}

func TestRpexp_ConstantHazardIsExponential(t *testing.T) {
	r, err := NewRpexp([]float64{0.5}, []float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r.Rand(1.0, 0), 1e-12)
	assert.InDelta(t, 6.0, r.Rand(3.0, 0), 1e-12)
}

func TestRpexp_ConditionalOnFrom(t *testing.T) {
	// With a constant hazard, conditioning shifts the origin.
	r, err := NewRpexp([]float64{0.5}, []float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 42.0, r.Rand(1.0, 40), 1e-12)
}

func TestRpexp_PiecewiseCrossesIntervals(t *testing.T) {
	// Hazard 0.1 on [0, 10), 1.0 after: cumulative hazard 1 at t=10, so
	// a draw of 1.5 lands at 10 + 0.5/1.0.
	r, err := NewRpexp([]float64{0.1, 1.0}, []float64{0, 10})
	require.NoError(t, err)
	assert.InDelta(t, 10.5, r.Rand(1.5, 0), 1e-12)
	// A draw within the first interval stays there.
	assert.InDelta(t, 5.0, r.Rand(0.5, 0), 1e-12)
}

func TestRpexp_Validation(t *testing.T) {
	_, err := NewRpexp([]float64{0.1}, []float64{0, 1})
	assert.Error(t, err)
	_, err = NewRpexp([]float64{-0.1}, []float64{0})
	assert.Error(t, err)
	_, err = NewRpexp([]float64{0.1, 0.2}, []float64{1, 1})
	assert.Error(t, err)
}
