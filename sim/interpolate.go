package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// NumericInterpolate is a prepared piecewise-linear interpolation over
// (x, y) knots with a monotone inverse, used for cumulative-hazard tables:
// Approx evaluates H(t) and Invert recovers t from a target hazard.
// Inputs are clamped to the knot range before evaluation; clamping is part
// of the lookup contract.
type NumericInterpolate struct {
	xs, ys []float64

	fwd    interp.PiecewiseLinear
	inv    interp.PiecewiseLinear
	invMin float64
	invMax float64
}

// Push adds one knot. Knots may arrive unordered; Prepare sorts them.
func (n *NumericInterpolate) Push(x, y float64) {
	n.xs = append(n.xs, x)
	n.ys = append(n.ys, y)
}

// Prepare sorts the knots, drops duplicate x values and fits the forward
// and inverse interpolants. The inverse uses the strictly increasing
// subsequence of y, so flat hazard segments resolve to their first time.
func (n *NumericInterpolate) Prepare() error {
	if len(n.xs) < 2 {
		return fmt.Errorf("interpolate: need at least 2 knots, have %d", len(n.xs))
	}
	idx := make([]int, len(n.xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return n.xs[idx[a]] < n.xs[idx[b]] })

	xs := make([]float64, 0, len(idx))
	ys := make([]float64, 0, len(idx))
	for _, i := range idx {
		if len(xs) > 0 && n.xs[i] == xs[len(xs)-1] {
			continue
		}
		xs = append(xs, n.xs[i])
		ys = append(ys, n.ys[i])
	}
	n.xs, n.ys = xs, ys
	if err := n.fwd.Fit(xs, ys); err != nil {
		return fmt.Errorf("interpolate: forward fit: %w", err)
	}

	invX := make([]float64, 0, len(ys))
	invY := make([]float64, 0, len(ys))
	for i := range ys {
		if len(invX) > 0 && ys[i] <= invX[len(invX)-1] {
			continue
		}
		invX = append(invX, ys[i])
		invY = append(invY, xs[i])
	}
	if len(invX) < 2 {
		return fmt.Errorf("interpolate: y values not increasing, cannot invert")
	}
	if err := n.inv.Fit(invX, invY); err != nil {
		return fmt.Errorf("interpolate: inverse fit: %w", err)
	}
	n.invMin = invX[0]
	n.invMax = invX[len(invX)-1]
	return nil
}

// Approx evaluates the interpolant at x, clamped to the knot range.
func (n *NumericInterpolate) Approx(x float64) float64 {
	if x < n.xs[0] {
		x = n.xs[0]
	}
	if x > n.xs[len(n.xs)-1] {
		x = n.xs[len(n.xs)-1]
	}
	return n.fwd.Predict(x)
}

// Invert returns the x whose interpolated value is y, clamped to the
// increasing range of y.
func (n *NumericInterpolate) Invert(y float64) float64 {
	if y < n.invMin {
		y = n.invMin
	}
	if y > n.invMax {
		y = n.invMax
	}
	return n.inv.Predict(y)
}
