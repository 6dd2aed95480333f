package sim

import (
	"fmt"
	"sort"
)

// Rpexp samples from a piecewise-exponential distribution: constant
// hazards h[i] on intervals starting at times t[i]. The cumulative hazard
// H is precomputed so sampling is a single inversion.
type Rpexp struct {
	h, t, ch []float64
}

// NewRpexp builds the sampler from parallel hazard and start-time slices.
// Times must be strictly increasing, starting at zero-or-later, with
// non-negative hazards.
func NewRpexp(h, t []float64) (*Rpexp, error) {
	if len(h) == 0 || len(h) != len(t) {
		return nil, fmt.Errorf("rpexp: need equal-length non-empty hazard and time slices")
	}
	for i := range h {
		if h[i] < 0 {
			return nil, fmt.Errorf("rpexp: negative hazard at index %d", i)
		}
		if i > 0 && t[i] <= t[i-1] {
			return nil, fmt.Errorf("rpexp: times not strictly increasing at index %d", i)
		}
	}
	r := &Rpexp{
		h:  append([]float64(nil), h...),
		t:  append([]float64(nil), t...),
		ch: make([]float64, len(h)),
	}
	for i := 1; i < len(h); i++ {
		r.ch[i] = r.ch[i-1] + (t[i]-t[i-1])*h[i-1]
	}
	return r, nil
}

// Rand converts a standard exponential draw into an event time,
// conditional on survival to the age from. The caller supplies the draw so
// that all randomness flows through the stream manager.
func (r *Rpexp) Rand(exp1, from float64) float64 {
	n := len(r.t)
	var h0 float64
	if from > 0 {
		i0 := n - 1
		if from < r.t[n-1] {
			i0 = sort.SearchFloat64s(r.t, from) - 1
			if i0 < 0 {
				i0 = 0
			}
		}
		h0 = r.ch[i0] + (from-r.t[i0])*r.h[i0]
	}
	v := exp1 + h0
	i := n - 1
	if v < r.ch[n-1] {
		i = sort.SearchFloat64s(r.ch, v) - 1
		if i < 0 {
			i = 0
		}
	}
	return r.t[i] + (v-r.ch[i])/r.h[i]
}
