package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPar = RunPar{Lam1: 3.0, Sigm1: 0.3, P2: 0.2, Lam2: 5.0, Mu3: 1.0, Tau3: 0.2}

func TestRun_DeterministicForFixedSeed(t *testing.T) {
	seed := [6]uint64{1, 1, 1, 1, 1, 1}
	a, err := Run(seed, testPar, 50)
	require.NoError(t, err)
	b, err := Run(seed, testPar, 50)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_SeedChangesResults(t *testing.T) {
	a, err := Run([6]uint64{1, 1, 1, 1, 1, 1}, testPar, 50)
	require.NoError(t, err)
	b, err := Run([6]uint64{2, 2, 2, 2, 2, 2}, testPar, 50)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRun_RejectsInvalidSeed(t *testing.T) {
	_, err := Run([6]uint64{0, 0, 0, 1, 1, 1}, testPar, 10)
	assert.Error(t, err)
}

func TestRun_CensusShape(t *testing.T) {
	res, err := Run([6]uint64{1, 1, 1, 1, 1, 1}, testPar, 100)
	require.NoError(t, err)

	for stage, counts := range res.Counts {
		require.Len(t, counts, 10, stage)
		// No decade can census more individuals than were simulated.
		for bin, c := range counts {
			assert.LessOrEqual(t, c, 100.0, "stage=%s bin=%d", stage, bin)
			assert.GreaterOrEqual(t, c, 0.0)
		}
	}

	// Every individual alive at age 10 is censused in some stage; the
	// first-decade total cannot exceed n.
	firstDecade := 0.0
	for _, counts := range res.Counts {
		firstDecade += counts[0]
	}
	assert.LessOrEqual(t, firstDecade, 100.0)
	assert.Greater(t, firstDecade, 0.0)
}

func TestRun_TimeAtRiskBounded(t *testing.T) {
	const n = 100
	res, err := Run([6]uint64{1, 1, 1, 1, 1, 1}, testPar, n)
	require.NoError(t, err)

	require.NotEmpty(t, res.TimeAtRisk)
	require.LessOrEqual(t, len(res.TimeAtRisk), len(riskAges))
	for i, total := range res.TimeAtRisk {
		assert.LessOrEqual(t, total, riskAges[i]*n, "horizon %g", riskAges[i])
		assert.Greater(t, total, 0.0)
	}
}

func TestRun_SingleIndividual(t *testing.T) {
	res, err := Run([6]uint64{42, 42, 42, 42, 42, 42}, testPar, 1)
	require.NoError(t, err)

	// One individual contributes at most one census tick per decade.
	for stage, counts := range res.Counts {
		for bin, c := range counts {
			assert.LessOrEqual(t, c, 1.0, "stage=%s bin=%d", stage, bin)
		}
	}
	require.NotEmpty(t, res.TimeAtRisk)
	assert.LessOrEqual(t, res.TimeAtRisk[0], 20.0)
}
