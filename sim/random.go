package sim

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Draw helpers reading uniforms from the manager's current stream.
// Distribution shapes are evaluated by inverse CDF (gonum distuv for
// Normal and Weibull), so every draw consumes exactly one uniform and
// reproducibility is owned entirely by the stream states — except for the
// positive-truncated normal, which resamples.

// RandU01 draws one uniform in (0, 1) from the current stream.
func (m *RngManager) RandU01() float64 {
	return m.Current().RandU01()
}

// Unif draws uniformly from [a, b).
func (m *RngManager) Unif(a, b float64) float64 {
	return a + (b-a)*m.RandU01()
}

// Exp draws an exponential with the given mean (scale parameterisation).
func (m *RngManager) Exp(mean float64) float64 {
	return -mean * math.Log(m.RandU01())
}

// Normal draws from N(mu, sd^2).
func (m *RngManager) Normal(mu, sd float64) float64 {
	return mu + sd*distuv.UnitNormal.Quantile(m.RandU01())
}

// NormalPos draws from N(mu, sd^2) conditioned on being positive, by
// brute-force resampling rather than conditioning on the distribution
// function. Terminates for any finite positive sd.
func (m *RngManager) NormalPos(mu, sd float64) float64 {
	for {
		if x := m.Normal(mu, sd); x > 0 {
			return x
		}
	}
}

// Weibull draws a Weibull variate with the given shape and scale.
func (m *RngManager) Weibull(shape, scale float64) float64 {
	return distuv.Weibull{K: shape, Lambda: scale}.Quantile(m.RandU01())
}

// WeibullHR draws a Weibull variate under a proportional-hazards ratio hr
// applied to the baseline (shape, scale) distribution.
func (m *RngManager) WeibullHR(shape, scale, hr float64) float64 {
	return m.Weibull(shape, scale*math.Pow(hr, -1.0/shape))
}

// LogLogistic draws a log-logistic variate with the given shape and scale.
func (m *RngManager) LogLogistic(shape, scale float64) float64 {
	u := m.RandU01()
	return scale * math.Pow(u/(1.0-u), 1.0/shape)
}

// LogLogisticTrunc draws a log-logistic variate left-truncated at left.
func (m *RngManager) LogLogisticTrunc(shape, scale, left float64) float64 {
	atLeft := llogisCDF(shape, scale, left)
	u := atLeft + m.RandU01()*(1.0-atLeft)
	return scale * math.Pow(u/(1.0-u), 1.0/shape)
}

func llogisCDF(shape, scale, x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1.0 / (1.0 + math.Pow(x/scale, -shape))
}
