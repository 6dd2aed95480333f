// Package calib implements the hypothetical four-stage calibration model:
// DiseaseFree -> Precursor -> PreClinical -> Clinical with Gumbel
// mortality, censused by decade of age. Its entry point takes the
// six-word package seed explicitly, which makes it the reference client
// for seed reproducibility.
package calib

import (
	"math"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// Stage of disease progression.
type Stage int

const (
	DiseaseFree Stage = iota
	Precursor
	PreClinical
	Clinical
	Death
)

func (s Stage) String() string {
	switch s {
	case DiseaseFree:
		return "DiseaseFree"
	case Precursor:
		return "Precursor"
	case PreClinical:
		return "PreClinical"
	case Clinical:
		return "Clinical"
	case Death:
		return "Death"
	}
	return "UnknownStage"
}

// Event kinds.
const (
	ToPrecursor sim.MessageKind = iota
	ToPreClinical
	ToClinical
	ToDeath
	Count
)

// censusAges are the decade cutpoints for the stage census.
const (
	censusFirst = 10.0
	censusLast  = 100.0
	censusStep  = 10.0
)

// riskAges are the horizons for the TimeAtRisk accumulator.
var riskAges = [4]float64{20, 40, 60, 80}

// RunPar is the six-parameter vector of the model: the log-normal
// precursor rate (Lam1, Sigm1), the susceptible fraction P2, the
// preclinical dwell rate Lam2, and the log-normal clinical dwell (Mu3,
// Tau3).
type RunPar struct {
	Lam1  float64
	Sigm1 float64
	P2    float64
	Lam2  float64
	Mu3   float64
	Tau3  float64
}

// Results of a calibration run: per-stage census counts by decade of age
// and the accumulated time at risk below each horizon.
type Results struct {
	Counts     map[string][]float64
	TimeAtRisk []float64
}

type person struct {
	model *Model
	id    int

	stage      Stage
	diseasepot bool
	clinTime   float64
}

func (p *person) Init(env *sim.Simulation) {
	m := p.model
	m.stream.Set()
	p.diseasepot = m.rng.RandU01() < m.par.P2
	p.clinTime = 1000
	p.stage = DiseaseFree
	lam1 := math.Exp(m.rng.Normal(m.par.Lam1, m.par.Sigm1))
	env.ScheduleKindAt(m.rng.Exp(lam1), ToPrecursor)
	x := m.rng.RandU01()
	env.ScheduleKindAt(65-15*math.Log(-math.Log(x)), ToDeath)
	for a := censusFirst; a <= censusLast; a += censusStep {
		env.ScheduleKindAt(a, Count)
	}
}

func (p *person) HandleMessage(env *sim.Simulation, msg *sim.Message) {
	m := p.model
	now := env.Now()

	switch msg.Kind {
	case ToDeath:
		p.stage = Death
		p.clinTime = math.Min(p.clinTime, now)
		for i := 0; i < len(riskAges); i++ {
			if i < len(m.results.TimeAtRisk) {
				m.results.TimeAtRisk[i] += math.Min(riskAges[i], p.clinTime)
			} else {
				m.results.TimeAtRisk = append(m.results.TimeAtRisk, math.Min(riskAges[i], p.clinTime))
			}
			if p.clinTime < riskAges[i] {
				break
			}
		}
		env.Stop()

	case ToPrecursor:
		p.stage = Precursor
		if p.diseasepot {
			env.ScheduleKindAt(now+m.rng.Exp(m.par.Lam2), ToPreClinical)
		}

	case ToPreClinical:
		p.stage = PreClinical
		env.ScheduleKindAt(now+math.Exp(m.rng.Normal(m.par.Mu3, m.par.Tau3*m.par.Mu3)), ToClinical)

	case ToClinical:
		p.stage = Clinical
		p.clinTime = now

	case Count:
		bin := int(now/10) - 1
		if bin > 9 {
			bin = 9
		}
		name := p.stage.String()
		if _, ok := m.results.Counts[name]; !ok {
			m.results.Counts[name] = make([]float64, 10)
		}
		m.results.Counts[name][bin]++
	}
}

// Model holds the calibration run state.
type Model struct {
	par     RunPar
	n       int
	rng     *sim.RngManager
	stream  *sim.Stream
	results *Results
}

// Run simulates n individuals under the given package seed and
// parameters. The NH stream advances to its next substream before each
// individual, so a run of individual i alone reproduces its trace from a
// longer run after i advances.
func Run(seed [6]uint64, par RunPar, n int) (*Results, error) {
	rng := sim.NewRngManager()
	if err := rng.SetPackageSeed(seed); err != nil {
		return nil, err
	}
	m := &Model{
		par: par,
		n:   n,
		rng: rng,
		results: &Results{
			Counts:     make(map[string][]float64),
			TimeAtRisk: make([]float64, 0, len(riskAges)),
		},
	}
	m.stream = rng.New("NH")
	m.stream.Set()

	env := sim.NewSimulation()
	for i := 0; i < n; i++ {
		m.stream.NextSubstream()
		env.CreateProcess(&person{model: m, id: i})
		env.Run()
		env.Clear()
	}
	return m.results, nil
}
