package prostate

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// Person is the per-individual process: one natural history from birth to
// death, driven by self-messages. Ages are in years; the PSA growth
// equations run on t = age - 35.
type Person struct {
	ID     int
	Cohort float64

	model *Model

	beta0, beta1, beta2 float64
	t0, y0, ym          float64
	tm, tc, tmc         float64
	aoc                 float64

	state    State
	dx       Diagnosis
	grade    Grade
	extGrade ExtGrade
	tx       Treatment
	adt      bool
	utility  float64

	everPSA                bool
	previousNegativeBiopsy bool
	organised              bool
}

// ymean returns the geometric mean PSA at t = age - 35.
func (p *Person) ymean(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t < p.t0 {
		return math.Exp(p.beta0 + p.beta1*t)
	}
	return math.Exp(p.beta0 + p.beta1*t + p.beta2*(t-p.t0))
}

// y returns a measured PSA at t = age - 35: the mean trajectory with
// multiplicative log-normal noise, drawn from the current stream.
func (p *Person) y(t float64) float64 {
	return p.ymean(t) * math.Exp(p.model.rng.Normal(0, math.Sqrt(p.model.params.Tau2)))
}

func (p *Person) addCosts(env *sim.Simulation, item string) {
	p.model.costs.Add(CostKey{Item: item, Cohort: p.Cohort}, env.Now(), p.model.params.CostParameters[item])
}

func (p *Person) scheduleUtilityChange(env *sim.Simulation, t, delta float64) {
	env.ScheduleAt(t, &sim.Message{Kind: ToUtilityChange, Payload: sim.UtilityChange{Delta: delta}})
}

func (p *Person) scheduleUtilitySet(env *sim.Simulation, t, value float64) {
	env.ScheduleAt(t, &sim.Message{Kind: ToUtility, Payload: sim.UtilitySet{Value: value}})
}

// utilityPair schedules the transient decrement at now and its recovery
// after the item's duration.
func (p *Person) utilityPair(env *sim.Simulation, estimate, duration string) {
	e := p.model.params.UtilityEstimates[estimate]
	d := p.model.params.UtilityDuration[duration]
	p.scheduleUtilityChange(env, env.Now(), -e)
	p.scheduleUtilityChange(env, env.Now()+d, e)
}

// Init draws the per-individual natural-history parameters and primes the
// queue: onset, other-cause death, the screening schedule of the selected
// policy, and the age-indexed baseline utilities.
func (p *Person) Init(env *sim.Simulation) {
	m := p.model
	params := m.params
	rng := m.rng

	p.state = Healthy
	p.dx = NotDiagnosed
	p.tx = NoTreatment
	p.everPSA = false
	p.previousNegativeBiopsy = false
	p.organised = false
	p.adt = false

	m.rngNh.Set()
	p.t0 = math.Sqrt(2 * rng.Exp(1) / params.G0)
	if rng.RandU01() >= 1+params.CLowGradeSlope*p.t0 {
		p.grade = GleasonGe8
	} else {
		p.grade = GleasonLe7
	}
	p.beta0 = rng.Normal(params.MuBeta0, params.SeBeta0)
	p.beta1 = rng.NormalPos(params.MuBeta1, params.SeBeta1)
	p.beta2 = rng.NormalPos(params.MuBeta2[p.grade], params.SeBeta2[p.grade])
	p.y0 = p.ymean(p.t0)

	// Invert the integrated hazards of metastatic spread and clinical
	// presentation, which are proportional to PSA growth.
	b12 := p.beta1 + p.beta2
	p.tm = (math.Log(b12*rng.Exp(1)/params.Gm+p.y0) - p.beta0 + p.beta2*p.t0) / b12
	p.ym = p.ymean(p.tm)
	p.tc = (math.Log(b12*rng.Exp(1)/params.Gc+p.y0) - p.beta0 + p.beta2*p.t0) / b12
	p.tmc = (math.Log(b12*rng.Exp(1)/(params.Gc*params.ThetaC)+p.ym) - p.beta0 + p.beta2*p.t0) / b12

	from := rng.Unif(0, 1)
	p.aoc = m.rmu0.Rand(rng.Exp(1), from)

	if p.grade == GleasonLe7 {
		if rng.RandU01() <= m.tables.probGrade7.Approx(p.beta2) {
			p.extGrade = ExtGleason7
		} else {
			p.extGrade = ExtGleasonLe6
		}
	} else {
		p.extGrade = ExtGleasonGe8
	}

	env.ScheduleKindAt(p.t0+35, ToLocalised)
	env.ScheduleKindAt(p.aoc, ToOtherDeath)

	m.rngScreen.Set()
	if rng.RandU01() < params.ScreeningCompliance {
		p.scheduleScreening(env)
	}
	if rng.RandU01() < params.StudyParticipation &&
		(m.policy == Stockholm3Goteborg || m.policy == Stockholm3RiskStratified) &&
		2013-p.Cohort >= 50 && 2013-p.Cohort < 70 {
		env.ScheduleKindAt(rng.Unif(2013, 2015)-p.Cohort, ToOrganised)
	}
	m.rngNh.Set()

	p.utility = 0.98
	p.scheduleUtilitySet(env, 20, 0.97)
	p.scheduleUtilitySet(env, 40, 0.96)
	p.scheduleUtilitySet(env, 60, 0.95)
	p.scheduleUtilitySet(env, 80, 0.91)

	if p.ID < params.NLifeHistories {
		out := m.outParameters
		out.Record("id", float64(p.ID))
		out.Record("beta0", p.beta0)
		out.Record("beta1", p.beta1)
		out.Record("beta2", p.beta2)
		out.Record("t0", p.t0)
		out.Record("tm", p.tm)
		out.Record("tc", p.tc)
		out.Record("tmc", p.tmc)
		out.Record("y0", p.y0)
		out.Record("ym", p.ym)
		out.Record("aoc", p.aoc)
		out.Record("cohort", p.Cohort)
		out.Record("ext_grade", float64(p.extGrade))
		out.Record("age_psa", -1)
		out.Record("pca_death", 0)
	}
}

// scheduleScreening primes the initial toScreen schedule for the selected
// policy. Runs on the screen stream.
func (p *Person) scheduleScreening(env *sim.Simulation) {
	m := p.model
	rng := m.rng
	switch m.policy {
	case NoScreening:
	case RandomScreen50to70:
		env.ScheduleKindAt(rng.Unif(50, 70), ToScreen)
	case TwoYearlyScreen50to70:
		for start := 50.0; start <= 70.0; start += 2.0 {
			env.ScheduleKindAt(start, ToScreen)
		}
	case FourYearlyScreen50to70:
		for start := 50.0; start <= 70.0; start += 4.0 {
			env.ScheduleKindAt(start, ToScreen)
		}
	case Screen50:
		env.ScheduleKindAt(50, ToScreen)
	case Screen60:
		env.ScheduleKindAt(60, ToScreen)
	case Screen70:
		env.ScheduleKindAt(70, ToScreen)
	case ScreenUptake, Stockholm3Goteborg, Stockholm3RiskStratified:
		// Uptake by birth cohort: younger cohorts start from age 35 on a
		// log-logistic age scale, cohorts aged 50+ in 1995 start from
		// 1995 on a period scale, intermediate cohorts mix the two.
		pscreening := 0.9
		if p.Cohort < 1932 {
			pscreening = 0.9 - (1932-p.Cohort)*0.03
		}
		const (
			shapeA, scaleA = 3.8, 15.0
			shapeT, scaleT = 2.0, 10.0
		)
		uscreening := rng.RandU01()
		var firstScreen float64
		switch {
		case p.Cohort > 1960:
			firstScreen = 35 + rng.LogLogistic(shapeA, scaleA)
		case p.Cohort < 1945:
			firstScreen = (1995 - p.Cohort) + rng.LogLogistic(shapeT, scaleT)
		default:
			age0 := 1995 - p.Cohort
			u := rng.RandU01()
			if (age0-35)/15 < u {
				firstScreen = age0 + rng.LogLogisticTrunc(shapeA, scaleA, age0-35)
			} else {
				firstScreen = age0 + rng.LogLogistic(shapeT, scaleT)
			}
		}
		if uscreening < pscreening {
			env.ScheduleKindAt(firstScreen, ToScreen)
		}
	default:
		logrus.Warnf("prostate: screening policy not matched: %d; no screening scheduled", m.policy)
	}
}

// HandleMessage reacts to one delivered event.
func (p *Person) HandleMessage(env *sim.Simulation, msg *sim.Message) {
	m := p.model
	params := m.params
	rng := m.rng

	age := env.Now()
	year := age + p.Cohort
	psa := p.y(age - 35)
	z := p.ymean(age - 35)

	m.report.AddWeighted(
		FullState{State: p.state, ExtGrade: p.extGrade, Dx: p.dx, PSAGe3: psa >= 3.0, Cohort: p.Cohort},
		msg.Kind, env.PreviousEventTime(), age, p.utility)
	if p.ID < params.NLifeHistories {
		m.lifeHistories = append(m.lifeHistories, LifeHistory{
			ID: p.ID, State: p.state, ExtGrade: p.extGrade, Dx: p.dx,
			Event: msg.Kind, Begin: env.PreviousEventTime(), End: age, Year: year, PSA: psa,
		})
	}

	// By default draws come from the natural-history stream.
	m.rngNh.Set()

	switch msg.Kind {

	case ToCancerDeath:
		p.addCosts(env, "DeathCost")
		if p.ID < params.NLifeHistories {
			m.outParameters.Record("age_d", age)
			m.outParameters.Revise("pca_death", 1)
		}
		env.Stop()

	case ToOtherDeath:
		p.addCosts(env, "DeathCost")
		if p.ID < params.NLifeHistories {
			m.outParameters.Record("age_d", age)
		}
		env.Stop()

	case ToLocalised:
		p.state = Localised
		env.ScheduleKindAt(p.tc+35, ToClinicalDiagnosis)
		env.ScheduleKindAt(p.tm+35, ToMetastatic)

	case ToMetastatic:
		p.state = Metastatic
		env.RemoveKind(ToClinicalDiagnosis)
		env.RemoveKind(ToUtility)
		env.ScheduleKindAt(p.tmc+35, ToClinicalDiagnosis)

	case ToClinicalDiagnosis:
		p.dx = ClinicalDiagnosis
		env.RemoveKind(ToMetastatic) // competing events
		env.RemoveKind(ToScreen)
		// Three biopsies per clinical diagnosis, then treatment, all at
		// now: FIFO tie-break delivers them in this order.
		env.ScheduleKindAt(age, ToClinicalDiagnosticBiopsy)
		env.ScheduleKindAt(age, ToClinicalDiagnosticBiopsy)
		env.ScheduleKindAt(age, ToClinicalDiagnosticBiopsy)
		env.ScheduleKindAt(age, ToTreatment)

	case ToOrganised:
		p.organised = true
		env.RemoveKind(ToScreen) // drop the opportunistic schedule
		env.ScheduleKindAt(age, ToScreen)

	case ToScreen, ToBiopsyFollowUpScreen:
		p.handleScreen(env, msg.Kind, age, psa, z)

	case ToScreenDiagnosis:
		p.dx = ScreenDiagnosis
		env.RemoveKind(ToMetastatic) // competing events
		env.RemoveKind(ToClinicalDiagnosis)
		env.RemoveKind(ToScreen)
		env.ScheduleKindAt(age, ToTreatment)

	case ToClinicalDiagnosticBiopsy:
		p.addCosts(env, "BiopsyCost")
		p.utilityPair(env, "BiopsyUtility", "BiopsyUtilityDuration")

	case ToScreenInitiatedBiopsy:
		p.addCosts(env, "BiopsyCost")
		p.utilityPair(env, "BiopsyUtility", "BiopsyUtilityDuration")
		switch {
		case p.state == Healthy:
			p.previousNegativeBiopsy = true
			if age < 70 && rng.RandU01() < params.ScreeningCompliance {
				env.ScheduleKindAt(age+1, ToBiopsyFollowUpScreen)
			}
		case p.state == Metastatic || (p.state == Localised && rng.RandU01() < params.BiopsySensitivity):
			env.ScheduleKindAt(age, ToScreenDiagnosis)
		default: // false-negative biopsy
			if age < 70 && rng.RandU01() < params.ScreeningCompliance {
				env.ScheduleKindAt(age+1, ToBiopsyFollowUpScreen)
			}
		}

	case ToTreatment:
		p.handleTreatment(env, age, year)

	case ToRP:
		p.addCosts(env, "ProstatectomyCost")
		p.twoPartUtility(env, "ProstatectomyUtilityPart1", "ProstatectomyUtilityDurationPart1",
			"ProstatectomyUtilityPart2", "ProstatectomyUtilityDurationPart2")

	case ToRT:
		p.addCosts(env, "RadiationTherapyCost")
		p.twoPartUtility(env, "RadiationTherapyUtilityPart1", "RadiationTherapyUtilityDurationPart1",
			"RadiationTherapyUtilityPart2", "RadiationTherapyUtilityDurationPart2")

	case ToCM:
		p.addCosts(env, "ActiveSurveillanceCost")
		p.utilityPair(env, "ActiveSurveillanceUtility", "ActiveSurveillanceUtilityDuration")

	case ToADT:
		// costs and utilities for ADT not yet parameterised

	case ToUtility:
		if set, ok := msg.Payload.(sim.UtilitySet); ok {
			p.utility = set.Value
		} else {
			logrus.Errorf("prostate: toUtility message without UtilitySet payload")
		}

	case ToUtilityChange:
		if change, ok := msg.Payload.(sim.UtilityChange); ok {
			p.utility += change.Delta
		} else {
			logrus.Errorf("prostate: toUtilityChange message without UtilityChange payload")
		}

	default:
		logrus.Errorf("prostate: no valid kind of event: %d", msg.Kind)
	}
}

// handleScreen records the PSA sample, its cost and transient utility,
// and decides between an immediate biopsy and the policy's rescreening
// schedule.
func (p *Person) handleScreen(env *sim.Simulation, kind sim.MessageKind, age, psa, z float64) {
	m := p.model
	params := m.params
	rng := m.rng

	if params.IncludePSARecords {
		rec := m.psaRecords
		rec.Record("id", float64(p.ID))
		rec.Record("state", float64(p.state))
		rec.Record("ext_grade", float64(p.extGrade))
		rec.Record("organised", boolToFloat(p.organised))
		rec.Record("dx", float64(p.dx))
		rec.Record("age", age)
		rec.Record("psa", psa)
		rec.Record("t0", p.t0)
		rec.Record("beta0", p.beta0)
		rec.Record("beta1", p.beta1)
		rec.Record("beta2", p.beta2)
		rec.Record("Z", z)
	}

	if p.organised {
		p.addCosts(env, "InvitationCost")
		if params.Panel || (m.policy == Stockholm3RiskStratified && psa >= 1.0) {
			p.addCosts(env, "FormalPSABiomarkerCost")
		} else {
			p.addCosts(env, "FormalPSACost")
		}
		p.utilityPair(env, "FormalPSAUtility", "FormalPSAUtilityDuration")
	} else {
		if params.Panel {
			p.addCosts(env, "OpportunisticPSABiomarkerCost")
		} else {
			p.addCosts(env, "OpportunisticPSACost")
		}
		p.utilityPair(env, "OpportunisticPSAUtility", "OpportunisticPSAUtilityDuration")
	}

	if !p.everPSA {
		if p.ID < params.NLifeHistories {
			m.outParameters.Revise("age_psa", age)
		}
		p.everPSA = true
	}

	compliance := m.tables.biopsyCompliance.At(sim.Bounds(psa, 4, 7), sim.Bounds(age, 55, 75))
	switch {
	case kind == ToScreen && psa >= params.PSAThreshold && rng.RandU01() < compliance:
		env.ScheduleKindAt(age, ToScreenInitiatedBiopsy)
	case kind == ToBiopsyFollowUpScreen && psa >= params.PSAThresholdBiopsyFollowUp && rng.RandU01() < compliance:
		env.ScheduleKindAt(age, ToScreenInitiatedBiopsy)
	default:
		p.scheduleRescreen(env, age, psa)
	}
}

// scheduleRescreen applies the policy's rescreening rule on the screen
// stream.
func (p *Person) scheduleRescreen(env *sim.Simulation, age, psa float64) {
	m := p.model
	rng := m.rng

	m.rngScreen.Set()
	defer m.rngNh.Set()

	if p.organised {
		switch m.policy {
		case Stockholm3Goteborg:
			if psa < 1.0 {
				env.ScheduleKindAt(age+4, ToScreen)
			} else {
				env.ScheduleKindAt(age+2, ToScreen)
			}
		case Stockholm3RiskStratified:
			if psa < 1.0 {
				env.ScheduleKindAt(age+8, ToScreen)
			} else {
				env.ScheduleKindAt(age+4, ToScreen)
			}
		default:
			logrus.Warnf("prostate: organised rescreening not defined for policy %s", m.policy)
		}
		return
	}

	switch m.policy {
	case ScreenUptake, Stockholm3Goteborg, Stockholm3RiskStratified:
		ageKey := sim.Bounds(age, 30, 90)
		prescreened := 1.0 - m.tables.rescreenCure.At(ageKey, psa)
		shape := m.tables.rescreenShape.At(ageKey, psa)
		scale := m.tables.rescreenScale.At(ageKey, psa)
		u := rng.RandU01()
		next := age + rng.Weibull(shape, scale)
		if u < prescreened {
			env.ScheduleKindAt(next, ToScreen)
		}
	default:
		// Fixed schedules were fully laid out at init; nothing to add.
	}
}

// twoPartUtility schedules the two-phase recovery profile of the curative
// treatments: a deep decrement for the first phase, then a shallower one
// until the end of the second.
func (p *Person) twoPartUtility(env *sim.Simulation, est1, dur1, est2, dur2 string) {
	ue := p.model.params.UtilityEstimates
	ud := p.model.params.UtilityDuration
	now := env.Now()
	p.scheduleUtilityChange(env, now, -ue[est1])
	p.scheduleUtilityChange(env, now+ud[dur1], ue[est1])
	p.scheduleUtilityChange(env, now+ud[dur1], -ue[est2])
	p.scheduleUtilityChange(env, now+ud[dur2], ue[est2])
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
