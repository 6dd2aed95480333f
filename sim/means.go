package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Means incrementally collects values and reports their count, sum, mean,
// variance and standard deviation.
type Means struct {
	values []float64
	sum    float64
}

// Push adds one value.
func (m *Means) Push(value float64) {
	m.values = append(m.values, value)
	m.sum += value
}

// N returns the number of values collected.
func (m *Means) N() int { return len(m.values) }

// Sum returns the running sum.
func (m *Means) Sum() float64 { return m.sum }

// Mean returns the sample mean (NaN when empty).
func (m *Means) Mean() float64 {
	if len(m.values) == 0 {
		return math.NaN()
	}
	return stat.Mean(m.values, nil)
}

// Var returns the unbiased sample variance (NaN below two values).
func (m *Means) Var() float64 {
	if len(m.values) < 2 {
		return math.NaN()
	}
	return stat.Variance(m.values, nil)
}

// SD returns the sample standard deviation.
func (m *Means) SD() float64 {
	return math.Sqrt(m.Var())
}
