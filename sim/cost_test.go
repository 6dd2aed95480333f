package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountedInterval(t *testing.T) {
	tests := []struct {
		name             string
		start, end, rate float64
		want             float64
	}{
		{"zero rate is plain length", 2, 7, 0, 5},
		{"zero-length interval", 3, 3, 0.03, 0},
		{"from time origin", 0, 1, 0.03, (1 - math.Pow(1.03, -1)) / math.Log(1.03)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DiscountedInterval(tt.start, tt.end, tt.rate), 1e-12)
		})
	}
}

func TestDiscountedInterval_Additive(t *testing.T) {
	whole := DiscountedInterval(0, 10, 0.03)
	split := DiscountedInterval(0, 4, 0.03) + DiscountedInterval(4, 10, 0.03)
	assert.InDelta(t, whole, split, 1e-12)
}

type costKey struct {
	Item   string
	Cohort float64
}

func TestCostReport_AccumulatesDiscounted(t *testing.T) {
	c := NewCostReport[costKey]()
	c.SetPartition([]float64{0, 50, 100})
	c.SetDiscountRate(0.03)

	key := costKey{Item: "BiopsyCost", Cohort: 1960}
	c.Add(key, 60, 100)
	c.Add(key, 65, 100)

	rows := c.Frame()
	require.Len(t, rows, 1)
	assert.Equal(t, key, rows[0].Key)
	assert.Equal(t, 50.0, rows[0].Age)
	want := 100*math.Pow(1.03, -60) + 100*math.Pow(1.03, -65)
	assert.InDelta(t, want, rows[0].Cost, 1e-9)
}

func TestCostReport_ZeroRateKeepsAmounts(t *testing.T) {
	c := NewCostReport[costKey]()
	c.SetPartition([]float64{0, 50, 100})
	c.Add(costKey{Item: "DeathCost", Cohort: 1950}, 20, 500)

	rows := c.Frame()
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Age)
	assert.InDelta(t, 500.0, rows[0].Cost, 1e-12)
}

func TestCostReport_BucketsClampToPartition(t *testing.T) {
	c := NewCostReport[costKey]()
	c.SetPartition([]float64{0, 50, 100})
	c.Add(costKey{Item: "a", Cohort: 0}, 150, 1) // past the end
	c.Add(costKey{Item: "b", Cohort: 0}, -5, 1)  // before the start

	rows := c.Frame()
	require.Len(t, rows, 2)
	assert.Equal(t, 50.0, rows[0].Age)
	assert.Equal(t, 0.0, rows[1].Age)
}

func TestCostReport_Clear(t *testing.T) {
	c := NewCostReport[costKey]()
	c.SetPartition([]float64{0, 100})
	c.Add(costKey{Item: "a", Cohort: 0}, 10, 1)
	c.Clear()
	c.SetPartition([]float64{0, 100})
	assert.Empty(t, c.Frame())
}
