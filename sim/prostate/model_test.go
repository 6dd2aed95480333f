package prostate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// newTestModel builds a model from defaults with reporting partitions
// installed, so handlers can be exercised outside a full Run.
func newTestModel(t *testing.T, mutate func(*Parameters)) *Model {
	t.Helper()
	p := DefaultParameters()
	p.N = 1
	p.NLifeHistories = 0
	if mutate != nil {
		mutate(p)
	}
	m, err := NewModel(p)
	require.NoError(t, err)
	partition := reportPartition()
	m.report.SetPartition(partition)
	m.costs.SetPartition(partition)
	return m
}

func pendingAges(env *sim.Simulation, kind sim.MessageKind) []float64 {
	msgs := env.Pending(func(m *sim.Message) bool { return m.Kind == kind })
	ages := make([]float64, len(msgs))
	for i, m := range msgs {
		ages[i] = m.Timestamp
	}
	return ages
}

func TestInit_FourYearlyScheduleExactAges(t *testing.T) {
	m := newTestModel(t, func(p *Parameters) {
		p.Screen = "fourYearlyScreen50to70"
		p.ScreeningCompliance = 1.0
	})
	env := sim.NewSimulation()
	env.CreateProcess(&Person{ID: 0, Cohort: 1960, model: m})

	assert.Equal(t, []float64{50, 54, 58, 62, 66, 70}, pendingAges(env, ToScreen))
}

func TestInit_TwoYearlyScheduleWithinBounds(t *testing.T) {
	m := newTestModel(t, func(p *Parameters) {
		p.Screen = "twoYearlyScreen50to70"
		p.ScreeningCompliance = 1.0
	})
	env := sim.NewSimulation()
	env.CreateProcess(&Person{ID: 0, Cohort: 1960, model: m})

	ages := pendingAges(env, ToScreen)
	require.Len(t, ages, 11)
	for _, age := range ages {
		assert.GreaterOrEqual(t, age, 50.0)
		assert.LessOrEqual(t, age, 70.0)
	}
}

func TestInit_NoScreeningSchedulesNoScreens(t *testing.T) {
	m := newTestModel(t, func(p *Parameters) {
		p.Screen = "noScreening"
		p.ScreeningCompliance = 1.0
	})
	env := sim.NewSimulation()
	env.CreateProcess(&Person{ID: 0, Cohort: 1960, model: m})

	assert.Empty(t, pendingAges(env, ToScreen))
}

func TestInit_SchedulesNaturalHistoryAndUtilities(t *testing.T) {
	m := newTestModel(t, nil)
	env := sim.NewSimulation()
	person := &Person{ID: 0, Cohort: 1960, model: m}
	env.CreateProcess(person)

	onset := pendingAges(env, ToLocalised)
	require.Len(t, onset, 1)
	assert.InDelta(t, person.t0+35, onset[0], 1e-12)
	assert.Greater(t, onset[0], 35.0)

	require.Len(t, pendingAges(env, ToOtherDeath), 1)
	assert.Equal(t, []float64{20, 40, 60, 80}, pendingAges(env, ToUtility))
	assert.Equal(t, 0.98, person.utility)
}

func TestClinicalDiagnosis_BiopsiesThenTreatmentFIFO(t *testing.T) {
	m := newTestModel(t, nil)
	env := sim.NewSimulation()
	person := &Person{ID: 0, Cohort: 1960, model: m}
	person.state = Localised
	person.tmc = 40

	env.ScheduleKindAt(60, ToMetastatic)
	env.ScheduleKindAt(55, ToScreen)
	person.HandleMessage(env, &sim.Message{Kind: ToClinicalDiagnosis})

	assert.Equal(t, ClinicalDiagnosis, person.dx)
	assert.Empty(t, pendingAges(env, ToMetastatic))
	assert.Empty(t, pendingAges(env, ToScreen))

	// The three diagnostic biopsies fire before treatment at the same
	// timestamp, in insertion order.
	atNow := env.Pending(func(msg *sim.Message) bool {
		return msg.Kind == ToClinicalDiagnosticBiopsy || msg.Kind == ToTreatment
	})
	require.Len(t, atNow, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, ToClinicalDiagnosticBiopsy, atNow[i].Kind)
	}
	assert.Equal(t, ToTreatment, atNow[3].Kind)
}

func TestMetastatic_RemovesCompetingEvents(t *testing.T) {
	m := newTestModel(t, nil)
	env := sim.NewSimulation()
	person := &Person{ID: 0, Cohort: 1960, model: m}
	person.state = Localised
	person.tmc = 30

	env.ScheduleKindAt(60, ToClinicalDiagnosis)
	env.ScheduleAt(80, &sim.Message{Kind: ToUtility, Payload: sim.UtilitySet{Value: 0.91}})
	person.HandleMessage(env, &sim.Message{Kind: ToMetastatic})

	assert.Equal(t, Metastatic, person.state)
	assert.Empty(t, pendingAges(env, ToUtility))
	// The pre-metastatic clinical diagnosis is gone; only the
	// rescheduled one at tmc+35 remains.
	assert.Equal(t, []float64{65}, pendingAges(env, ToClinicalDiagnosis))
}

func TestScreenDiagnosis_RemovesCompetingEvents(t *testing.T) {
	m := newTestModel(t, nil)
	env := sim.NewSimulation()
	person := &Person{ID: 0, Cohort: 1960, model: m}
	person.state = Localised

	env.ScheduleKindAt(60, ToClinicalDiagnosis)
	env.ScheduleKindAt(62, ToMetastatic)
	env.ScheduleKindAt(64, ToScreen)
	person.HandleMessage(env, &sim.Message{Kind: ToScreenDiagnosis})

	assert.Equal(t, ScreenDiagnosis, person.dx)
	assert.Empty(t, pendingAges(env, ToClinicalDiagnosis))
	assert.Empty(t, pendingAges(env, ToMetastatic))
	assert.Empty(t, pendingAges(env, ToScreen))
	require.Len(t, pendingAges(env, ToTreatment), 1)
}

func TestUtilityMessages_SetAndChange(t *testing.T) {
	m := newTestModel(t, nil)
	env := sim.NewSimulation()
	person := &Person{ID: 0, Cohort: 1960, model: m}
	person.utility = 0.98

	person.HandleMessage(env, &sim.Message{Kind: ToUtility, Payload: sim.UtilitySet{Value: 0.95}})
	assert.InDelta(t, 0.95, person.utility, 1e-12)

	person.HandleMessage(env, &sim.Message{Kind: ToUtilityChange, Payload: sim.UtilityChange{Delta: -0.09}})
	assert.InDelta(t, 0.86, person.utility, 1e-12)

	person.HandleMessage(env, &sim.Message{Kind: ToUtilityChange, Payload: sim.UtilityChange{Delta: 0.09}})
	assert.InDelta(t, 0.95, person.utility, 1e-12)
}

func TestModel_UnknownPolicyFallsBackToNoScreening(t *testing.T) {
	p := DefaultParameters()
	p.Screen = "everyFullMoon"
	m, err := NewModel(p)
	require.NoError(t, err)
	assert.Equal(t, NoScreening, m.Policy())
}

func TestParseScreeningPolicy_RoundTrip(t *testing.T) {
	for policy, name := range policyNames {
		got, ok := ParseScreeningPolicy(name)
		assert.True(t, ok, name)
		assert.Equal(t, policy, got)
	}
	_, ok := ParseScreeningPolicy("bogus")
	assert.False(t, ok)
}

func TestParameters_Validate(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())

	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"non-positive g0", func(p *Parameters) { p.G0 = 0 }},
		{"negative tau2", func(p *Parameters) { p.Tau2 = -1 }},
		{"short mubeta2", func(p *Parameters) { p.MuBeta2 = []float64{0.1} }},
		{"short mu0", func(p *Parameters) { p.Mu0 = p.Mu0[:10] }},
		{"empty survival", func(p *Parameters) { p.SurvivalDist = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}
