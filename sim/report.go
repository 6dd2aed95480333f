package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// EventReport aggregates person-time, event counts and point prevalence
// over an age partition, keyed by an arbitrary comparable state type and
// event type. One report instance accumulates across all individuals of a
// run; the driver calls Clear before reusing it.
//
// The partition is a strictly increasing sequence of age cutpoints.
// Intervals extending past the last cutpoint are truncated: person-time up
// to the last cutpoint is still credited but the terminating event is
// dropped. Drivers wanting full life histories end the partition with a
// large guard cutpoint.
type EventReport[S comparable, E comparable] struct {
	partition    []float64
	max          float64
	discountRate float64

	pt     map[S]map[float64]float64
	ut     map[S]map[float64]float64
	events map[S]map[E]map[float64]int
	prev   map[S]map[float64]int
}

// NewEventReport returns an empty report with no partition set.
func NewEventReport[S comparable, E comparable]() *EventReport[S, E] {
	r := &EventReport[S, E]{}
	r.reset()
	return r
}

func (r *EventReport[S, E]) reset() {
	r.pt = make(map[S]map[float64]float64)
	r.ut = make(map[S]map[float64]float64)
	r.events = make(map[S]map[E]map[float64]int)
	r.prev = make(map[S]map[float64]int)
}

// SetPartition installs the age cutpoints. The sequence must be strictly
// increasing; setting the same partition twice is idempotent.
func (r *EventReport[S, E]) SetPartition(partition []float64) {
	for i := 1; i < len(partition); i++ {
		if partition[i] <= partition[i-1] {
			logrus.Panicf("report: partition not strictly increasing at index %d", i)
		}
	}
	r.partition = append([]float64(nil), partition...)
	r.max = partition[len(partition)-1]
}

// SetDiscountRate sets the annual rate applied to utility-weighted
// person-time. Default zero (no discounting).
func (r *EventReport[S, E]) SetDiscountRate(rate float64) {
	r.discountRate = rate
}

// Clear drops all accumulated values and the partition.
func (r *EventReport[S, E]) Clear() {
	r.reset()
	r.partition = nil
	r.max = 0
}

// Add credits the half-open interval [lhs, rhs) spent in state,
// terminating with an event of the given kind at rhs, with unit utility.
func (r *EventReport[S, E]) Add(state S, event E, lhs, rhs float64) {
	r.AddWeighted(state, event, lhs, rhs, 1.0)
}

// AddWeighted is Add with a utility weight: besides raw person-time it
// accumulates utility-weighted (and, if a discount rate is set,
// discounted) person-time per bucket. Requires lhs <= rhs; an empty
// interval contributes no person-time but still credits its event.
func (r *EventReport[S, E]) AddWeighted(state S, event E, lhs, rhs, utility float64) {
	if len(r.partition) == 0 {
		logrus.Panicf("report: Add before SetPartition")
	}
	if lhs > rhs {
		logrus.Panicf("report: interval [%f, %f) reversed", lhs, rhs)
	}

	// Greatest cutpoint at or below lhs. An interval starting before the
	// first cutpoint is credited from the first cutpoint.
	lo := sort.SearchFloat64s(r.partition, lhs)
	if lo == len(r.partition) || r.partition[lo] > lhs {
		lo--
	}
	if lo < 0 {
		lo = 0
	}

	itmax := rhs
	if itmax > r.max {
		itmax = r.max
	}
	i := lo
	for ; i < len(r.partition) && r.partition[i] < itmax; i++ {
		edge := r.partition[i]
		upper := r.partition[i+1]
		if rhs < upper {
			upper = rhs
		}
		lower := edge
		if lhs > lower {
			lower = lhs
		}
		bucket(r.pt, state)[edge] += upper - lower
		bucket(r.ut, state)[edge] += utility * DiscountedInterval(lower, upper, r.discountRate)
		if lhs <= edge && edge < rhs {
			bucketInt(r.prev, state)[edge]++
		}
	}
	// The event is counted in the bucket containing rhs: the greatest
	// cutpoint at or below it. Event falls outside the partition once
	// rhs >= max: truncation drops it.
	if rhs < r.max {
		j := sort.SearchFloat64s(r.partition, rhs)
		if j == len(r.partition) || r.partition[j] > rhs {
			j--
		}
		if j >= 0 {
			ev := r.events[state]
			if ev == nil {
				ev = make(map[E]map[float64]int)
				r.events[state] = ev
			}
			if ev[event] == nil {
				ev[event] = make(map[float64]int)
			}
			ev[event][r.partition[j]]++
		}
	}
}

func bucket[S comparable](m map[S]map[float64]float64, state S) map[float64]float64 {
	b := m[state]
	if b == nil {
		b = make(map[float64]float64)
		m[state] = b
	}
	return b
}

func bucketInt[S comparable](m map[S]map[float64]int, state S) map[float64]int {
	b := m[state]
	if b == nil {
		b = make(map[float64]int)
		m[state] = b
	}
	return b
}

// PersonTimeRow is one row of the person-time frame.
type PersonTimeRow[S comparable] struct {
	State      S
	Age        float64
	PersonTime float64
	Utility    float64
}

// EventRow is one row of the event-count frame.
type EventRow[S comparable, E comparable] struct {
	State S
	Event E
	Age   float64
	N     int
}

// PrevalenceRow is one row of the point-prevalence frame.
type PrevalenceRow[S comparable] struct {
	State S
	Age   float64
	N     int
}

// Frames is the report's tabular output bundle.
type Frames[S comparable, E comparable] struct {
	PersonTime []PersonTimeRow[S]
	Events     []EventRow[S, E]
	Prevalence []PrevalenceRow[S]
}

// Frames flattens the nested maps into three row-oriented tables, ordered
// by (state, age) with states in their string order so output is stable
// across runs.
func (r *EventReport[S, E]) Frames() Frames[S, E] {
	var out Frames[S, E]
	for state, byAge := range r.pt {
		for age, pt := range byAge {
			out.PersonTime = append(out.PersonTime, PersonTimeRow[S]{
				State: state, Age: age, PersonTime: pt, Utility: r.ut[state][age],
			})
		}
	}
	sort.Slice(out.PersonTime, func(i, j int) bool {
		a, b := out.PersonTime[i], out.PersonTime[j]
		if sa, sb := fmt.Sprint(a.State), fmt.Sprint(b.State); sa != sb {
			return sa < sb
		}
		return a.Age < b.Age
	})

	for state, byEvent := range r.events {
		for event, byAge := range byEvent {
			for age, n := range byAge {
				out.Events = append(out.Events, EventRow[S, E]{State: state, Event: event, Age: age, N: n})
			}
		}
	}
	sort.Slice(out.Events, func(i, j int) bool {
		a, b := out.Events[i], out.Events[j]
		if sa, sb := fmt.Sprint(a.State), fmt.Sprint(b.State); sa != sb {
			return sa < sb
		}
		if ea, eb := fmt.Sprint(a.Event), fmt.Sprint(b.Event); ea != eb {
			return ea < eb
		}
		return a.Age < b.Age
	})

	for state, byAge := range r.prev {
		for age, n := range byAge {
			out.Prevalence = append(out.Prevalence, PrevalenceRow[S]{State: state, Age: age, N: n})
		}
	}
	sort.Slice(out.Prevalence, func(i, j int) bool {
		a, b := out.Prevalence[i], out.Prevalence[j]
		if sa, sb := fmt.Sprint(a.State), fmt.Sprint(b.State); sa != sb {
			return sa < sb
		}
		return a.Age < b.Age
	})
	return out
}
