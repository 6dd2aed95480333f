package prostate

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/Bogdasayen/prostata-exploration/sim"
)

type prtxKey struct {
	Age  float64
	Year float64
	G    Grade
}

type pradtKey struct {
	Tx   Treatment
	Age  float64
	Year float64
	G    Grade
}

type localKey struct {
	Age float64
	G   Grade
}

// tables holds the compiled lookup structures built once per model from
// the raw parameter rows. All lookups clamp to the table domain first.
type tables struct {
	prtxCM    map[prtxKey]float64
	prtxRP    map[prtxKey]float64
	prtxAges  sim.Axis
	prtxYears sim.Axis

	pradt      map[pradtKey]float64
	pradtAges  sim.Axis
	pradtYears sim.Axis

	biopsyCompliance *sim.Lookup2D

	rescreenShape *sim.Lookup2D
	rescreenScale *sim.Lookup2D
	rescreenCure  *sim.Lookup2D

	probGrade7 *sim.NumericInterpolate

	// Cumulative hazards -log(S) prepared for inversion.
	hDist     map[Grade]*sim.NumericInterpolate
	hLocal    map[localKey]*sim.NumericInterpolate
	hLocalAge sim.Axis
}

func compileTables(p *Parameters) (*tables, error) {
	t := &tables{
		prtxCM:           make(map[prtxKey]float64),
		prtxRP:           make(map[prtxKey]float64),
		pradt:            make(map[pradtKey]float64),
		biopsyCompliance: sim.NewLookup2D(),
		rescreenShape:    sim.NewLookup2D(),
		rescreenScale:    sim.NewLookup2D(),
		rescreenCure:     sim.NewLookup2D(),
		probGrade7:       &sim.NumericInterpolate{},
		hDist:            make(map[Grade]*sim.NumericInterpolate),
		hLocal:           make(map[localKey]*sim.NumericInterpolate),
	}

	ages := make([]float64, 0, len(p.Prtx))
	years := make([]float64, 0, len(p.Prtx))
	for _, row := range p.Prtx {
		key := prtxKey{Age: row.Age, Year: row.DxY, G: Grade(row.Grade)}
		t.prtxCM[key] = row.CM
		t.prtxRP[key] = row.RP
		ages = append(ages, row.Age)
		years = append(years, row.DxY)
	}
	t.prtxAges = sim.NewAxis(ages)
	t.prtxYears = sim.NewAxis(years)

	ages = ages[:0]
	years = years[:0]
	for _, row := range p.Pradt {
		key := pradtKey{Tx: Treatment(row.Tx), Age: row.Age, Year: row.DxY, G: Grade(row.Grade)}
		t.pradt[key] = row.ADT
		ages = append(ages, row.Age)
		years = append(years, row.DxY)
	}
	t.pradtAges = sim.NewAxis(ages)
	t.pradtYears = sim.NewAxis(years)

	for _, row := range p.BiopsyCompliance {
		t.biopsyCompliance.Set(row.PSA, row.Age, row.Compliance)
	}
	for _, row := range p.Rescreening {
		t.rescreenShape.Set(row.Age5, row.Total, row.Shape)
		t.rescreenScale.Set(row.Age5, row.Total, row.Scale)
		t.rescreenCure.Set(row.Age5, row.Total, row.Cure)
	}

	for _, row := range p.ProbGrade7 {
		t.probGrade7.Push(row.Beta2, row.P)
	}
	if err := t.probGrade7.Prepare(); err != nil {
		return nil, fmt.Errorf("prob_grade7: %w", err)
	}

	for _, row := range p.SurvivalDist {
		g := Grade(row.Grade)
		ni := t.hDist[g]
		if ni == nil {
			ni = &sim.NumericInterpolate{}
			t.hDist[g] = ni
		}
		ni.Push(row.Time, -math.Log(row.Survival))
	}
	for g, ni := range t.hDist {
		if err := ni.Prepare(); err != nil {
			return nil, fmt.Errorf("survival_dist grade %d: %w", g, err)
		}
	}

	localAges := make([]float64, 0, len(p.SurvivalLocal))
	for _, row := range p.SurvivalLocal {
		key := localKey{Age: row.Age, G: Grade(row.Grade)}
		ni := t.hLocal[key]
		if ni == nil {
			ni = &sim.NumericInterpolate{}
			t.hLocal[key] = ni
		}
		ni.Push(row.Time, -math.Log(row.Survival))
		localAges = append(localAges, row.Age)
	}
	for key, ni := range t.hLocal {
		if err := ni.Prepare(); err != nil {
			return nil, fmt.Errorf("survival_local age %g grade %d: %w", key.Age, key.G, err)
		}
	}
	t.hLocalAge = sim.NewAxis(localAges)

	return t, nil
}

// treatmentProbs returns (pCM, pRP) for diagnosis at the given age, year
// and grade, clamped to the table domain.
func (t *tables) treatmentProbs(age, year float64, g Grade) (float64, float64) {
	key := prtxKey{
		Age:  t.prtxAges.Floor(sim.Bounds(age, 50, 79)),
		Year: t.prtxYears.Floor(sim.Bounds(year, 1973, 2004)),
		G:    g,
	}
	return t.prtxCM[key], t.prtxRP[key]
}

// adtProb returns the adjuvant-ADT probability for the given treatment,
// age, year and grade.
func (t *tables) adtProb(tx Treatment, age, year float64, g Grade) float64 {
	key := pradtKey{
		Tx:   tx,
		Age:  t.pradtAges.Floor(sim.Bounds(age, 50, 79)),
		Year: t.pradtYears.Floor(sim.Bounds(year, 1973, 2004)),
		G:    g,
	}
	return t.pradt[key]
}

// hLocalFor returns the localised cumulative-hazard curve for the
// smallest tabulated age band at or above the clamped diagnosis age. A
// grade the table has no row for is a domain anomaly: it warns and falls
// back to the nearest row present.
func (t *tables) hLocalFor(ageDiag float64, g Grade) *sim.NumericInterpolate {
	age := t.hLocalAge.Ceil(sim.Bounds(ageDiag, 50, 80))
	if ni := t.hLocal[localKey{Age: age, G: g}]; ni != nil {
		return ni
	}
	logrus.Warnf("prostate: no localised survival row for age %g grade %d, using nearest", age, g)
	for _, key := range []localKey{
		{Age: t.hLocalAge.Floor(sim.Bounds(ageDiag, 50, 80)), G: g},
		{Age: age, G: 1 - g},
	} {
		if ni := t.hLocal[key]; ni != nil {
			return ni
		}
	}
	for _, ni := range t.hLocal {
		return ni
	}
	return nil
}

// hDistFor returns the metastatic cumulative-hazard curve for a grade,
// falling back to the nearest row present.
func (t *tables) hDistFor(g Grade) *sim.NumericInterpolate {
	if ni := t.hDist[g]; ni != nil {
		return ni
	}
	logrus.Warnf("prostate: no distant survival row for grade %d, using nearest", g)
	for _, ni := range t.hDist {
		return ni
	}
	return nil
}
