package prostate

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// Results is the output bundle of a cancer-model run.
type Results struct {
	Costs         []sim.CostRow[CostKey]
	Summary       sim.Frames[FullState, sim.MessageKind]
	LifeHistories []LifeHistory
	Parameters    *sim.SimpleReport
	PSARecords    *sim.SimpleReport
}

// Model binds parameters, compiled tables, the stream manager and the
// reporting state for a sequence of individual runs. One Model drives one
// run at a time; parallelism across individuals requires one Model (and
// kernel) per worker with reports merged afterwards.
type Model struct {
	params *Parameters
	policy ScreeningPolicy
	tables *tables

	rng          *sim.RngManager
	rngNh        *sim.Stream
	rngOther     *sim.Stream
	rngScreen    *sim.Stream
	rngTreatment *sim.Stream

	rmu0 *sim.Rpexp

	report        *sim.EventReport[FullState, sim.MessageKind]
	costs         *sim.CostReport[CostKey]
	lifeHistories []LifeHistory
	outParameters *sim.SimpleReport
	psaRecords    *sim.SimpleReport
}

// NewModel builds a model from parameters with the default package seed.
func NewModel(p *Parameters) (*Model, error) {
	return newModel(p, nil)
}

// NewModelWithSeed builds a model with an explicit six-word package seed.
func NewModelWithSeed(p *Parameters, seed [6]uint64) (*Model, error) {
	return newModel(p, &seed)
}

func newModel(p *Parameters, seed *[6]uint64) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	policy, ok := ParseScreeningPolicy(p.Screen)
	if !ok {
		logrus.Warnf("prostate: unknown screening policy %q, falling back to noScreening", p.Screen)
	}
	tables, err := compileTables(p)
	if err != nil {
		return nil, fmt.Errorf("compile tables: %w", err)
	}

	ages := make([]float64, len(p.Mu0))
	for i := range ages {
		ages[i] = float64(i)
	}
	rmu0, err := sim.NewRpexp(p.Mu0, ages)
	if err != nil {
		return nil, fmt.Errorf("mu0: %w", err)
	}

	rng := sim.NewRngManager()
	if seed != nil {
		if err := rng.SetPackageSeed(*seed); err != nil {
			return nil, err
		}
	}
	m := &Model{
		params:        p,
		policy:        policy,
		tables:        tables,
		rng:           rng,
		rmu0:          rmu0,
		report:        sim.NewEventReport[FullState, sim.MessageKind](),
		costs:         sim.NewCostReport[CostKey](),
		outParameters: sim.NewSimpleReport(),
		psaRecords:    sim.NewSimpleReport(),
	}
	m.rngNh = rng.New("nh")
	m.rngOther = rng.New("other")
	m.rngScreen = rng.New("screen")
	m.rngTreatment = rng.New("treatment")
	m.rngNh.Set()
	return m, nil
}

// Policy returns the resolved screening policy.
func (m *Model) Policy() ScreeningPolicy {
	return m.policy
}

// NextSubstreams advances all four model streams by k substreams, the
// per-individual protocol that keeps sensitivity analyses aligned: hold
// one stream's draws fixed while another's parameters vary.
func (m *Model) NextSubstreams(k int) {
	for i := 0; i < k; i++ {
		m.rngNh.NextSubstream()
		m.rngOther.NextSubstream()
		m.rngScreen.NextSubstream()
		m.rngTreatment.NextSubstream()
	}
}

// reportPartition is the one-year age grid with a far guard cutpoint so
// late-life events are not silently truncated.
func reportPartition() []float64 {
	ages := make([]float64, 0, 102)
	for a := 0.0; a <= 100.0; a++ {
		ages = append(ages, a)
	}
	return append(ages, 1e6)
}

// Run simulates n individuals and returns the aggregated bundle. The
// reporting state is cleared first, so a failed or abandoned previous run
// cannot taint the output.
func (m *Model) Run() (*Results, error) {
	p := m.params

	partition := reportPartition()
	m.report.Clear()
	m.report.SetPartition(partition)
	m.report.SetDiscountRate(p.DiscountRate)
	m.costs.Clear()
	m.costs.SetPartition(partition)
	m.costs.SetDiscountRate(p.DiscountRate)
	m.lifeHistories = nil
	m.outParameters.Clear()
	m.psaRecords.Clear()

	m.rngNh.Set()
	env := sim.NewSimulation()
	for i := 0; i < p.N; i++ {
		person := &Person{ID: p.FirstID + i, Cohort: p.CohortOf(i), model: m}
		env.CreateProcess(person)
		env.Run()
		env.Clear()
		m.NextSubstreams(1)
	}

	return &Results{
		Costs:         m.costs.Frame(),
		Summary:       m.report.Frames(),
		LifeHistories: m.lifeHistories,
		Parameters:    m.outParameters,
		PSARecords:    m.psaRecords,
	}, nil
}
