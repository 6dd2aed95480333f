package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Axis is a sorted set of numeric lookup keys for one table dimension.
// Lookups clamp to the axis range and then resolve to the greatest key at
// or below the query (Floor) or the smallest key at or above it (Ceil);
// clamping is part of the table contract rather than incidental
// defensiveness in callers.
type Axis []float64

// NewAxis builds an axis from values, sorting and deduplicating.
func NewAxis(values []float64) Axis {
	a := append([]float64(nil), values...)
	sort.Float64s(a)
	out := a[:0]
	for i, v := range a {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return Axis(out)
}

// Clamp bounds x to the axis range.
func (a Axis) Clamp(x float64) float64 {
	if x < a[0] {
		return a[0]
	}
	if x > a[len(a)-1] {
		return a[len(a)-1]
	}
	return x
}

// Floor returns the greatest key at or below x, after clamping.
func (a Axis) Floor(x float64) float64 {
	x = a.Clamp(x)
	i := sort.SearchFloat64s(a, x)
	if i == len(a) || a[i] > x {
		i--
	}
	return a[i]
}

// Ceil returns the smallest key at or above x, after clamping.
func (a Axis) Ceil(x float64) float64 {
	x = a.Clamp(x)
	i := sort.SearchFloat64s(a, x)
	return a[i]
}

// Lookup2D maps a pair of numeric keys to a value, resolving queries by
// clamping and flooring each coordinate to its axis.
type Lookup2D struct {
	x, y  Axis
	vals  map[[2]float64]float64
	ready bool
}

// NewLookup2D returns an empty table.
func NewLookup2D() *Lookup2D {
	return &Lookup2D{vals: make(map[[2]float64]float64)}
}

// Set records the value at an exact key pair.
func (t *Lookup2D) Set(x, y, v float64) {
	t.vals[[2]float64{x, y}] = v
	t.ready = false
}

// Prepare builds the axes from the recorded keys. Called automatically by
// the first At after a Set.
func (t *Lookup2D) Prepare() {
	xs := make([]float64, 0, len(t.vals))
	ys := make([]float64, 0, len(t.vals))
	for k := range t.vals {
		xs = append(xs, k[0])
		ys = append(ys, k[1])
	}
	t.x = NewAxis(xs)
	t.y = NewAxis(ys)
	t.ready = true
}

// At resolves the value at (x, y). A missing grid cell after clamping is a
// domain anomaly: it warns and returns zero rather than aborting.
func (t *Lookup2D) At(x, y float64) float64 {
	if !t.ready {
		t.Prepare()
	}
	key := [2]float64{t.x.Floor(x), t.y.Floor(y)}
	v, ok := t.vals[key]
	if !ok {
		logrus.Warnf("table: no value at (%g, %g), defaulting to 0", key[0], key[1])
	}
	return v
}

// Len returns the number of recorded cells.
func (t *Lookup2D) Len() int { return len(t.vals) }

// Bounds clamps x to [lo, hi]; the explicit pre-lookup clamp used wherever
// a model feeds continuous state into a table domain.
func Bounds(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
