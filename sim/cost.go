package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// DiscountedInterval integrates (1+rate)^(-u) du between start and end.
// With rate zero this is simply the interval length.
func DiscountedInterval(start, end, rate float64) float64 {
	if rate == 0 {
		return end - start
	}
	logRate := math.Log(1.0 + rate)
	return (math.Pow(1.0+rate, -start) - math.Pow(1.0+rate, -end)) / logRate
}

// CostReport accumulates discounted amounts keyed by an arbitrary
// comparable key (cost category plus cohort year in the cancer model) and
// the age bucket of the spending time.
type CostReport[K comparable] struct {
	partition    []float64
	max          float64
	discountRate float64
	costs        map[K]map[float64]float64
}

// NewCostReport returns an empty cost report with discount rate zero.
func NewCostReport[K comparable]() *CostReport[K] {
	return &CostReport[K]{costs: make(map[K]map[float64]float64)}
}

// SetPartition installs the age cutpoints used to bucket spending times.
func (c *CostReport[K]) SetPartition(partition []float64) {
	for i := 1; i < len(partition); i++ {
		if partition[i] <= partition[i-1] {
			logrus.Panicf("costs: partition not strictly increasing at index %d", i)
		}
	}
	c.partition = append([]float64(nil), partition...)
	c.max = partition[len(partition)-1]
}

// SetDiscountRate sets the annual discount rate (default 0).
func (c *CostReport[K]) SetDiscountRate(rate float64) {
	c.discountRate = rate
}

// Clear drops all accumulated values and the partition.
func (c *CostReport[K]) Clear() {
	c.costs = make(map[K]map[float64]float64)
	c.partition = nil
	c.max = 0
}

// Add credits amount spent at time t, discounted back to time zero at the
// report's rate and bucketed by the age partition.
func (c *CostReport[K]) Add(key K, t, amount float64) {
	if len(c.partition) == 0 {
		logrus.Panicf("costs: Add before SetPartition")
	}
	edge := c.bucketOf(t)
	byAge := c.costs[key]
	if byAge == nil {
		byAge = make(map[float64]float64)
		c.costs[key] = byAge
	}
	byAge[edge] += amount * math.Pow(1.0+c.discountRate, -t)
}

func (c *CostReport[K]) bucketOf(t float64) float64 {
	if t <= c.partition[0] {
		return c.partition[0]
	}
	if t >= c.max {
		return c.partition[len(c.partition)-2]
	}
	i := sort.SearchFloat64s(c.partition, t)
	if c.partition[i] > t {
		i--
	}
	return c.partition[i]
}

// CostRow is one row of the cost frame.
type CostRow[K comparable] struct {
	Key  K
	Age  float64
	Cost float64
}

// Frame flattens the accumulated costs into rows ordered by (key, age).
func (c *CostReport[K]) Frame() []CostRow[K] {
	var rows []CostRow[K]
	for key, byAge := range c.costs {
		for age, cost := range byAge {
			rows = append(rows, CostRow[K]{Key: key, Age: age, Cost: cost})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if ka, kb := fmt.Sprint(rows[i].Key), fmt.Sprint(rows[j].Key); ka != kb {
			return ka < kb
		}
		return rows[i].Age < rows[j].Age
	})
	return rows
}
