package sim

import "github.com/sirupsen/logrus"

// SimpleReport is a loosely-typed column recorder for outputs with too
// many fields for a fixed row struct (per-individual parameter draws, PSA
// test records). Columns appear in first-recorded order and may be ragged
// while a run is in flight.
type SimpleReport struct {
	fields []string
	data   map[string][]float64
}

// NewSimpleReport returns an empty recorder.
func NewSimpleReport() *SimpleReport {
	return &SimpleReport{data: make(map[string][]float64)}
}

// Record appends value to the named column, creating it on first use.
func (r *SimpleReport) Record(field string, value float64) {
	if _, ok := r.data[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.data[field] = append(r.data[field], value)
}

// Revise replaces the last value of the named column.
func (r *SimpleReport) Revise(field string, value float64) {
	col := r.data[field]
	if len(col) == 0 {
		logrus.Panicf("report: Revise on empty column %q", field)
	}
	col[len(col)-1] = value
}

// Clear drops all columns.
func (r *SimpleReport) Clear() {
	r.fields = nil
	r.data = make(map[string][]float64)
}

// Append concatenates other's columns onto this report.
func (r *SimpleReport) Append(other *SimpleReport) {
	for _, f := range other.fields {
		if _, ok := r.data[f]; !ok {
			r.fields = append(r.fields, f)
		}
		r.data[f] = append(r.data[f], other.data[f]...)
	}
}

// Fields returns the column names in first-recorded order.
func (r *SimpleReport) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Column returns the named column's values.
func (r *SimpleReport) Column(field string) []float64 {
	return r.data[field]
}

// Len returns the length of the longest column.
func (r *SimpleReport) Len() int {
	n := 0
	for _, col := range r.data {
		if len(col) > n {
			n = len(col)
		}
	}
	return n
}
