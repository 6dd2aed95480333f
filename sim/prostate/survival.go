package prostate

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

// calculateTreatment assigns the primary treatment by CDF inversion on
// the (age, year, grade)-keyed probability table. The residual after
// pCM+pRP is RT; the table is trusted not to exceed one.
func (p *Person) calculateTreatment(u, age, year float64) Treatment {
	pCM, pRP := p.model.tables.treatmentProbs(age, year, p.grade)
	var tx Treatment
	switch {
	case u < pCM:
		tx = CM
	case u < pCM+pRP:
		tx = RP
	default:
		tx = RT
	}
	logrus.Debugf("id=%d age=%.0f dxy=%.0f grade=%d tx=%s u=%.6f pCM=%.6f pRP=%.6f",
		p.ID, age, year, p.grade, tx, u, pCM, pRP)
	return tx
}

// calculateSurvival maps a survival draw u to an age at cancer death.
// ageDiag is the age at (actual or counterfactual) diagnosis, ageC the
// age clinical diagnosis would occur without screening; their difference
// is the lead time. Curative treatment of localised disease scales the
// hazard by 0.62, attenuated over lead time by the calibrated
// interaction.
func (p *Person) calculateSurvival(u, ageDiag, ageC float64, tx Treatment) float64 {
	params := p.model.params
	ageM := p.tm + 35
	localised := ageDiag < ageM
	txhaz := 1.0
	if localised && (tx == RP || tx == RT) {
		txhaz = 0.62
	}
	leadTime := ageC - ageDiag
	txbenefit := math.Exp(math.Log(txhaz) + math.Log(params.CTxltInteraction)*leadTime)
	ustar := math.Pow(u, 1/(params.CBaselineSpecific*txbenefit*params.SxBenefit))

	var ageD float64
	if localised {
		ageD = ageC + p.model.tables.hLocalFor(ageDiag, p.grade).Invert(-math.Log(ustar))
	} else {
		ageD = ageC + p.model.tables.hDistFor(p.grade).Invert(-math.Log(ustar))
	}
	logrus.Debugf("id=%d lead_time=%f tx=%s txbenefit=%f u=%f ustar=%f age_diag=%f age_m=%f age_c=%f age_d=%f",
		p.ID, leadTime, tx, txbenefit, u, ustar, ageDiag, ageM, ageC, ageD)
	return ageD
}

// handleTreatment assigns treatment at diagnosis and schedules the death
// from prostate cancer. The scheduled age blends the screened-arm
// survival with the counterfactual no-lead-time survival, weighted by
// exp(-c_benefit_value * lead_time).
func (p *Person) handleTreatment(env *sim.Simulation, age, year float64) {
	m := p.model
	params := m.params
	rng := m.rng

	m.rngTreatment.Set()
	uTx := rng.RandU01()
	uAdt := rng.RandU01()

	if p.state == Metastatic {
		p.addCosts(env, "MetastaticCancerCost")
		p.scheduleUtilityChange(env, age, -params.UtilityEstimates["MetastaticCancerUtility"])
	} else {
		p.tx = p.calculateTreatment(uTx, age, year)
		switch p.tx {
		case CM:
			env.ScheduleKindAt(age, ToCM)
		case RP:
			env.ScheduleKindAt(age, ToRP)
		case RT:
			env.ScheduleKindAt(age, ToRT)
		}
		pADT := m.tables.adtProb(p.tx, age, year, p.grade)
		if uAdt < pADT {
			p.adt = true
			env.ScheduleKindAt(age, ToADT)
		}
		logrus.Debugf("id=%d adt=%t u=%.6f pADT=%.6f", p.ID, p.adt, uAdt, pADT)
	}

	m.rngNh.Set()
	uSurv := rng.RandU01()
	ageC := p.tc + 35
	if p.state != Localised {
		ageC = p.tmc + 35
	}
	leadTime := ageC - age
	ageCd := p.calculateSurvival(uSurv, ageC, ageC, p.calculateTreatment(uTx, ageC, year+leadTime))
	ageSd := p.calculateSurvival(uSurv, age, ageC, p.tx)
	weight := math.Exp(-params.CBenefitValue * leadTime)
	ageCancerDeath := weight*ageCd + (1-weight)*ageSd
	env.ScheduleKindAt(ageCancerDeath, ToCancerDeath)

	ue := params.UtilityEstimates
	ud := params.UtilityDuration
	metastaticDur := ud["MetastaticCancerUtilityDuration"]
	palliativeDur := ud["PalliativeUtilityDuration"]

	// Localised -> metastatic phase -> cancer death.
	if p.state == Localised {
		if ageCancerDeath > age+metastaticDur+palliativeDur {
			p.scheduleUtilityChange(env, ageCancerDeath-metastaticDur-palliativeDur, -ue["MetastaticCancerUtility"])
		} else {
			p.scheduleUtilityChange(env, age, -ue["MetastaticCancerUtility"])
		}
	}
	// Metastatic phase -> palliative phase -> cancer death.
	if ageCancerDeath > age+palliativeDur {
		p.scheduleUtilityChange(env, ageCancerDeath-palliativeDur, -ue["PalliativeUtility"]+ue["MetastaticCancerUtility"])
	} else {
		p.scheduleUtilityChange(env, age, -ue["PalliativeUtility"]+ue["MetastaticCancerUtility"])
	}
}
