// Package illness is the minimal conformance client of the simulation
// kernel: a two-state illness-death model with Weibull event times and a
// cure fraction. It exercises scheduling, competing-event removal and the
// age-partitioned reporter without any of the cancer model's machinery.
package illness

import (
	"math"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// State is the illness-death disease state.
type State int

const (
	Healthy State = iota
	Cancer
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "Healthy"
	case Cancer:
		return "Cancer"
	}
	return "UnknownState"
}

// Event kinds.
const (
	ToOtherDeath sim.MessageKind = iota
	ToCancer
	ToCancerDeath
)

// EventName returns the printable name of an event kind.
func EventName(kind sim.MessageKind) string {
	switch kind {
	case ToOtherDeath:
		return "toOtherDeath"
	case ToCancer:
		return "toCancer"
	case ToCancerDeath:
		return "toCancerDeath"
	}
	return "unknown"
}

// Parameters of the illness-death model.
type Parameters struct {
	N int `yaml:"n"`

	// CancerIncidence is the probability of entering the cancer branch.
	CancerIncidence float64 `yaml:"cancer_incidence"`
	// CureFraction is the probability that cancer never causes death.
	CureFraction float64 `yaml:"cure_fraction"`

	OtherDeathShape float64 `yaml:"other_death_shape"`
	OtherDeathMean  float64 `yaml:"other_death_mean"`
	CancerShape     float64 `yaml:"cancer_shape"`

	CancerDeathShape float64 `yaml:"cancer_death_shape"`
	CancerDeathScale float64 `yaml:"cancer_death_scale"`
}

// DefaultParameters returns the published toy parameterisation.
func DefaultParameters() *Parameters {
	return &Parameters{
		N:                100,
		CancerIncidence:  0.1,
		CureFraction:     0.5,
		OtherDeathShape:  4,
		OtherDeathMean:   80,
		CancerShape:      3,
		CancerDeathShape: 1,
		CancerDeathScale: 10,
	}
}

// weibullScale converts a mean and shape to the Weibull scale parameter,
// optionally under a proportional-hazards ratio rr.
func weibullScale(mean, shape, rr float64) float64 {
	return mean / math.Gamma(1+1/shape) * math.Pow(rr, -1/shape)
}

type person struct {
	model *Model
	id    int
	state State
	z     float64
}

func (p *person) Init(env *sim.Simulation) {
	m := p.model
	p.state = Healthy
	p.z = 1.0
	env.ScheduleKindAt(m.rng.Weibull(m.params.OtherDeathShape,
		weibullScale(m.params.OtherDeathMean, m.params.OtherDeathShape, 1)), ToOtherDeath)
	if m.rng.RandU01() < m.params.CancerIncidence {
		env.ScheduleKindAt(m.rng.Weibull(m.params.CancerShape,
			weibullScale(m.params.OtherDeathMean, m.params.OtherDeathShape, p.z)), ToCancer)
	}
}

func (p *person) HandleMessage(env *sim.Simulation, msg *sim.Message) {
	m := p.model
	m.report.Add(p.state, msg.Kind, env.PreviousEventTime(), env.Now())

	switch msg.Kind {
	case ToOtherDeath, ToCancerDeath:
		env.Stop()

	case ToCancer:
		p.state = Cancer
		env.RemoveKind(ToOtherDeath)
		// The cured fraction schedules nothing and the queue drains.
		if m.rng.RandU01() >= m.params.CureFraction {
			env.ScheduleKindAt(env.Now()+m.rng.Weibull(m.params.CancerDeathShape, m.params.CancerDeathScale), ToCancerDeath)
		}
	}
}

// Model runs the illness-death simulation over an event report.
type Model struct {
	params *Parameters
	rng    *sim.RngManager
	stream *sim.Stream
	report *sim.EventReport[State, sim.MessageKind]
}

// NewModel builds a model with the default package seed.
func NewModel(p *Parameters) *Model {
	m := &Model{
		params: p,
		rng:    sim.NewRngManager(),
		report: sim.NewEventReport[State, sim.MessageKind](),
	}
	m.stream = m.rng.New("nh")
	m.stream.Set()
	return m
}

// NewModelWithSeed builds a model with an explicit package seed.
func NewModelWithSeed(p *Parameters, seed [6]uint64) (*Model, error) {
	m := NewModel(p)
	mgr := sim.NewRngManager()
	if err := mgr.SetPackageSeed(seed); err != nil {
		return nil, err
	}
	m.rng = mgr
	m.stream = mgr.New("nh")
	m.stream.Set()
	return m, nil
}

// Run simulates n individuals and returns the event-report bundle over a
// one-year partition to age 100 with a guard cutpoint.
func (m *Model) Run() sim.Frames[State, sim.MessageKind] {
	partition := make([]float64, 0, 102)
	for a := 0.0; a <= 100.0; a++ {
		partition = append(partition, a)
	}
	partition = append(partition, 1e6)

	m.report.Clear()
	m.report.SetPartition(partition)

	env := sim.NewSimulation()
	for i := 0; i < m.params.N; i++ {
		env.CreateProcess(&person{model: m, id: i})
		env.Run()
		env.Clear()
		m.stream.NextSubstream()
	}
	return m.report.Frames()
}
