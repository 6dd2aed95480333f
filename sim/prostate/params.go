package prostate

import (
	"fmt"
	"math"
)

// TreatmentRow is one cell of the primary-treatment probability table,
// keyed by age at diagnosis, diagnosis year and grade. CM and RP are
// cumulative-free probabilities; the residual 1-CM-RP is treated as RT.
type TreatmentRow struct {
	Age   float64 `yaml:"age"`
	DxY   float64 `yaml:"dxy"`
	Grade int     `yaml:"grade"`
	CM    float64 `yaml:"cm"`
	RP    float64 `yaml:"rp"`
}

// ADTRow is one cell of the adjuvant-ADT probability table.
type ADTRow struct {
	Tx    int     `yaml:"tx"`
	Age   float64 `yaml:"age"`
	DxY   float64 `yaml:"dxy"`
	Grade int     `yaml:"grade"`
	ADT   float64 `yaml:"adt"`
}

// ComplianceRow is one cell of the biopsy-compliance table keyed by PSA
// level and age.
type ComplianceRow struct {
	PSA        float64 `yaml:"psa"`
	Age        float64 `yaml:"age"`
	Compliance float64 `yaml:"compliance"`
}

// RescreeningRow parameterises the Weibull opportunistic-rescreening
// interval by five-year age band and PSA level; Cure is the probability
// of never rescreening.
type RescreeningRow struct {
	Age5  float64 `yaml:"age5"`
	Total float64 `yaml:"total"`
	Shape float64 `yaml:"shape"`
	Scale float64 `yaml:"scale"`
	Cure  float64 `yaml:"cure"`
}

// ProbGrade7Row is one knot of the interpolated Pr(Gleason 7 | beta2).
type ProbGrade7Row struct {
	Beta2 float64 `yaml:"beta2"`
	P     float64 `yaml:"p"`
}

// SurvivalDistRow is one knot of the metastatic survival curve per grade.
type SurvivalDistRow struct {
	Grade    int     `yaml:"grade"`
	Time     float64 `yaml:"time"`
	Survival float64 `yaml:"survival"`
}

// SurvivalLocalRow is one knot of the localised survival curve per
// diagnosis-age band and grade.
type SurvivalLocalRow struct {
	Age      float64 `yaml:"age"`
	Grade    int     `yaml:"grade"`
	Time     float64 `yaml:"time"`
	Survival float64 `yaml:"survival"`
}

// Parameters is the full input bundle of the cancer model. YAML parameter
// files override the built-in defaults field by field; unknown fields are
// rejected by the strict decoder in cmd.
type Parameters struct {
	N                 int    `yaml:"n"`
	FirstID           int    `yaml:"first_id"`
	NLifeHistories    int    `yaml:"n_life_histories"`
	IncludePSARecords bool   `yaml:"include_psa_records"`
	Panel             bool   `yaml:"panel"`
	Screen            string `yaml:"screen"`

	// CohortYear is the birth year assigned to every individual unless
	// Cohorts supplies per-individual years.
	CohortYear float64   `yaml:"cohort_year"`
	Cohorts    []float64 `yaml:"cohorts,omitempty"`

	DiscountRate float64 `yaml:"discount_rate"`

	// Natural-history scalars.
	G0             float64 `yaml:"g0"`
	Gm             float64 `yaml:"gm"`
	Gc             float64 `yaml:"gc"`
	ThetaC         float64 `yaml:"thetac"`
	Tau2           float64 `yaml:"tau2"`
	MuBeta0        float64 `yaml:"mubeta0"`
	SeBeta0        float64 `yaml:"sebeta0"`
	MuBeta1        float64 `yaml:"mubeta1"`
	SeBeta1        float64 `yaml:"sebeta1"`
	CLowGradeSlope float64 `yaml:"c_low_grade_slope"`

	// Survival and benefit scalars.
	CTxltInteraction  float64 `yaml:"c_txlt_interaction"`
	CBaselineSpecific float64 `yaml:"c_baseline_specific"`
	SxBenefit         float64 `yaml:"sxbenefit"`
	CBenefitValue     float64 `yaml:"c_benefit_value"`

	// Screening scalars.
	PSAThreshold               float64 `yaml:"psa_threshold"`
	PSAThresholdBiopsyFollowUp float64 `yaml:"psa_threshold_biopsy_follow_up"`
	BiopsySensitivity          float64 `yaml:"biopsy_sensitivity"`
	ScreeningCompliance        float64 `yaml:"screening_compliance"`
	StudyParticipation         float64 `yaml:"study_participation"`

	// Grade-indexed vectors (index 0: Gleason <= 7, index 1: >= 8).
	MuBeta2 []float64 `yaml:"mubeta2"`
	SeBeta2 []float64 `yaml:"sebeta2"`

	// Other-cause mortality hazard on a one-year age grid, ages 0..105.
	Mu0 []float64 `yaml:"mu0"`

	CostParameters   map[string]float64 `yaml:"cost_parameters"`
	UtilityEstimates map[string]float64 `yaml:"utility_estimates"`
	UtilityDuration  map[string]float64 `yaml:"utility_duration"`

	Prtx             []TreatmentRow     `yaml:"prtx"`
	Pradt            []ADTRow           `yaml:"pradt"`
	BiopsyCompliance []ComplianceRow    `yaml:"biopsy_compliance"`
	Rescreening      []RescreeningRow   `yaml:"rescreening"`
	ProbGrade7       []ProbGrade7Row    `yaml:"prob_grade7"`
	SurvivalDist     []SurvivalDistRow  `yaml:"survival_dist"`
	SurvivalLocal    []SurvivalLocalRow `yaml:"survival_local"`
}

// Validate checks the invariants the natural-history equations rely on.
func (p *Parameters) Validate() error {
	if p.N < 0 {
		return fmt.Errorf("params: n must be non-negative")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"g0", p.G0}, {"gm", p.Gm}, {"gc", p.Gc}, {"thetac", p.ThetaC},
		{"sebeta0", p.SeBeta0}, {"sebeta1", p.SeBeta1},
		{"c_baseline_specific", p.CBaselineSpecific}, {"sxbenefit", p.SxBenefit},
		{"c_txlt_interaction", p.CTxltInteraction},
	} {
		if f.value <= 0 || math.IsInf(f.value, 0) || math.IsNaN(f.value) {
			return fmt.Errorf("params: %s must be positive and finite, have %g", f.name, f.value)
		}
	}
	if p.Tau2 < 0 {
		return fmt.Errorf("params: tau2 must be non-negative")
	}
	if len(p.MuBeta2) != 2 || len(p.SeBeta2) != 2 {
		return fmt.Errorf("params: mubeta2 and sebeta2 must have one entry per grade")
	}
	if p.SeBeta2[0] <= 0 || p.SeBeta2[1] <= 0 {
		return fmt.Errorf("params: sebeta2 entries must be positive")
	}
	if len(p.Mu0) != 106 {
		return fmt.Errorf("params: mu0 must cover ages 0..105, have %d entries", len(p.Mu0))
	}
	if len(p.Cohorts) > 0 && len(p.Cohorts) < p.N {
		return fmt.Errorf("params: cohorts has %d entries for n=%d individuals", len(p.Cohorts), p.N)
	}
	if len(p.SurvivalDist) == 0 || len(p.SurvivalLocal) == 0 {
		return fmt.Errorf("params: survival tables must not be empty")
	}
	return nil
}

// CohortOf returns the birth year of individual i.
func (p *Parameters) CohortOf(i int) float64 {
	if i < len(p.Cohorts) {
		return p.Cohorts[i]
	}
	return p.CohortYear
}

// DefaultParameters returns a complete runnable bundle. Scalar values
// follow the published FHCRC calibration; the tables are compact
// illustrative grids with the same shape as the calibrated inputs.
func DefaultParameters() *Parameters {
	p := &Parameters{
		N:              100,
		NLifeHistories: 10,
		Screen:         "noScreening",
		CohortYear:     1960,

		G0:             0.0005,
		Gm:             0.0004,
		Gc:             0.0015,
		ThetaC:         19.66,
		Tau2:           0.0829,
		MuBeta0:        -1.609,
		SeBeta0:        0.2384,
		MuBeta1:        0.04463,
		SeBeta1:        0.0430,
		CLowGradeSlope: -0.006,

		CTxltInteraction:  0.95,
		CBaselineSpecific: 1.0,
		SxBenefit:         1.0,
		CBenefitValue:     0.0,

		PSAThreshold:               3.0,
		PSAThresholdBiopsyFollowUp: 4.0,
		BiopsySensitivity:          0.8,
		ScreeningCompliance:        0.75,
		StudyParticipation:         0.5,

		MuBeta2: []float64{0.0397, 0.1678},
		SeBeta2: []float64{0.0913, 0.3968},

		CostParameters: map[string]float64{
			"InvitationCost":                15,
			"FormalPSACost":                 41,
			"FormalPSABiomarkerCost":        2872,
			"OpportunisticPSACost":          1774,
			"OpportunisticPSABiomarkerCost": 2872,
			"BiopsyCost":                    9424,
			"ActiveSurveillanceCost":        12265,
			"ProstatectomyCost":             95000,
			"RadiationTherapyCost":          115000,
			"MetastaticCancerCost":          255000,
			"DeathCost":                     0,
		},
		UtilityEstimates: map[string]float64{
			"InvitationUtility":            0.001,
			"FormalPSAUtility":             0.01,
			"OpportunisticPSAUtility":      0.01,
			"BiopsyUtility":                0.09,
			"ActiveSurveillanceUtility":    0.05,
			"ProstatectomyUtilityPart1":    0.28,
			"ProstatectomyUtilityPart2":    0.18,
			"RadiationTherapyUtilityPart1": 0.27,
			"RadiationTherapyUtilityPart2": 0.18,
			"MetastaticCancerUtility":      0.40,
			"PalliativeUtility":            0.60,
		},
		UtilityDuration: map[string]float64{
			"InvitationUtilityDuration":            1.0 / 52,
			"FormalPSAUtilityDuration":             1.0 / 52,
			"OpportunisticPSAUtilityDuration":      1.0 / 52,
			"BiopsyUtilityDuration":                3.0 / 52,
			"ActiveSurveillanceUtilityDuration":    1.0,
			"ProstatectomyUtilityDurationPart1":    2.0 / 12,
			"ProstatectomyUtilityDurationPart2":    10.0 / 12,
			"RadiationTherapyUtilityDurationPart1": 2.0 / 12,
			"RadiationTherapyUtilityDurationPart2": 10.0 / 12,
			"MetastaticCancerUtilityDuration":      36.0 / 12,
			"PalliativeUtilityDuration":            6.0 / 12,
		},

		ProbGrade7: []ProbGrade7Row{
			{Beta2: 0.00, P: 0.10},
			{Beta2: 0.05, P: 0.26},
			{Beta2: 0.10, P: 0.45},
			{Beta2: 0.20, P: 0.70},
			{Beta2: 0.50, P: 0.92},
		},
	}

	// Other-cause mortality: Gompertz-shaped hazard on the one-year grid.
	p.Mu0 = make([]float64, 106)
	for a := range p.Mu0 {
		p.Mu0[a] = 1e-4 * math.Exp(0.09*float64(a))
	}

	// Primary treatment probabilities: CM falls and RP rises with later
	// diagnosis years; high grade shifts towards curative treatment.
	for _, age := range []float64{50, 60, 70} {
		for _, year := range []float64{1973, 1985, 1995, 2004} {
			for g := 0; g < 2; g++ {
				cm := 0.55 - 0.005*(year-1973) - 0.25*float64(g)
				rp := 0.20 + 0.004*(year-1973) + 0.15*float64(g)
				if age >= 70 {
					cm += 0.15
					rp -= 0.10
				}
				p.Prtx = append(p.Prtx, TreatmentRow{Age: age, DxY: year, Grade: g, CM: cm, RP: rp})
				for _, tx := range []int{int(CM), int(RP), int(RT)} {
					adt := 0.05 + 0.002*(year-1973) + 0.20*float64(g)
					if tx == int(RT) {
						adt += 0.15
					}
					p.Pradt = append(p.Pradt, ADTRow{Tx: tx, Age: age, DxY: year, Grade: g, ADT: adt})
				}
			}
		}
	}

	for _, psa := range []float64{4, 5, 6, 7} {
		for _, age := range []float64{55, 65, 75} {
			p.BiopsyCompliance = append(p.BiopsyCompliance, ComplianceRow{
				PSA: psa, Age: age, Compliance: 0.95 - 0.01*(age-55)/10 - 0.02*(7-psa),
			})
		}
	}

	for _, age5 := range []float64{30, 40, 50, 60, 70, 80, 90} {
		for _, total := range []float64{0, 1, 3} {
			p.Rescreening = append(p.Rescreening, RescreeningRow{
				Age5: age5, Total: total,
				Shape: 1.2,
				Scale: 6.0 - 1.5*math.Min(total, 2),
				Cure:  0.30 - 0.05*math.Min(total, 2),
			})
		}
	}

	// Survival curves: exponential decay on a 0..30 year grid, steeper
	// for high grade and metastatic disease.
	for g := 0; g < 2; g++ {
		rate := 0.12 + 0.10*float64(g)
		for t := 0.0; t <= 30.0; t += 2.5 {
			p.SurvivalDist = append(p.SurvivalDist, SurvivalDistRow{
				Grade: g, Time: t, Survival: math.Exp(-rate * t),
			})
		}
	}
	for _, age := range []float64{50, 60, 70, 80} {
		for g := 0; g < 2; g++ {
			rate := 0.02 + 0.04*float64(g) + 0.001*(age-50)
			for t := 0.0; t <= 30.0; t += 2.5 {
				p.SurvivalLocal = append(p.SurvivalLocal, SurvivalLocalRow{
					Age: age, Grade: g, Time: t, Survival: math.Exp(-rate * t),
				})
			}
		}
	}

	return p
}
