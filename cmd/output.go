package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Bogdasayen/prostata-exploration/sim"
	"github.com/Bogdasayen/prostata-exploration/sim/prostate"
)

// printCancerResults displays aggregated results at the end of a run:
// person-time totals by state, event totals by event kind, cost totals by
// item, the recorded ages at death, and the life-history and PSA record
// counts.
func printCancerResults(res *prostate.Results, n int, elapsed time.Duration) {
	fmt.Println("=== Cancer model summary ===")
	fmt.Printf("Individuals          : %d\n", n)
	fmt.Printf("Elapsed              : %s\n", elapsed.Round(time.Millisecond))

	ptByState := map[string]float64{}
	for _, row := range res.Summary.PersonTime {
		ptByState[row.State.State.String()] += row.PersonTime
	}
	for _, state := range sortedKeys(ptByState) {
		fmt.Printf("Person-time %-12s: %12.2f\n", state, ptByState[state])
	}

	evByKind := map[string]int{}
	for _, row := range res.Summary.Events {
		evByKind[prostate.EventName(row.Event)] += row.N
	}
	for _, event := range sortedKeys(evByKind) {
		fmt.Printf("Events %-17s: %6d\n", event, evByKind[event])
	}

	costByItem := map[string]float64{}
	for _, row := range res.Costs {
		costByItem[row.Key.Item] += row.Cost
	}
	for _, item := range sortedKeys(costByItem) {
		fmt.Printf("Cost %-19s: %14.2f\n", item, costByItem[item])
	}

	var deathAges sim.Means
	for _, age := range res.Parameters.Column("age_d") {
		deathAges.Push(age)
	}
	if deathAges.N() > 1 {
		fmt.Printf("Age at death         : mean %.2f sd %.2f (n=%d recorded)\n",
			deathAges.Mean(), deathAges.SD(), deathAges.N())
	}

	fmt.Printf("Life-history records : %d\n", len(res.LifeHistories))
	fmt.Printf("PSA records          : %d\n", res.PSARecords.Len())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeCancerCSV writes the full result frames as CSV files into dir.
func writeCancerCSV(dir string, res *prostate.Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	pt := [][]string{{"state", "ext_grade", "dx", "psa_ge3", "cohort", "age", "pt", "utility"}}
	for _, row := range res.Summary.PersonTime {
		pt = append(pt, []string{
			row.State.State.String(), strconv.Itoa(int(row.State.ExtGrade)), row.State.Dx.String(),
			strconv.FormatBool(row.State.PSAGe3), formatFloat(row.State.Cohort),
			formatFloat(row.Age), formatFloat(row.PersonTime), formatFloat(row.Utility),
		})
	}
	if err := writeCSV(filepath.Join(dir, "person_time.csv"), pt); err != nil {
		return err
	}

	ev := [][]string{{"state", "ext_grade", "dx", "psa_ge3", "cohort", "event", "age", "n"}}
	for _, row := range res.Summary.Events {
		ev = append(ev, []string{
			row.State.State.String(), strconv.Itoa(int(row.State.ExtGrade)), row.State.Dx.String(),
			strconv.FormatBool(row.State.PSAGe3), formatFloat(row.State.Cohort),
			prostate.EventName(row.Event), formatFloat(row.Age), strconv.Itoa(row.N),
		})
	}
	if err := writeCSV(filepath.Join(dir, "events.csv"), ev); err != nil {
		return err
	}

	prev := [][]string{{"state", "ext_grade", "dx", "psa_ge3", "cohort", "age", "n"}}
	for _, row := range res.Summary.Prevalence {
		prev = append(prev, []string{
			row.State.State.String(), strconv.Itoa(int(row.State.ExtGrade)), row.State.Dx.String(),
			strconv.FormatBool(row.State.PSAGe3), formatFloat(row.State.Cohort),
			formatFloat(row.Age), strconv.Itoa(row.N),
		})
	}
	if err := writeCSV(filepath.Join(dir, "prevalence.csv"), prev); err != nil {
		return err
	}

	costs := [][]string{{"item", "cohort", "age", "cost"}}
	for _, row := range res.Costs {
		costs = append(costs, []string{
			row.Key.Item, formatFloat(row.Key.Cohort), formatFloat(row.Age), formatFloat(row.Cost),
		})
	}
	if err := writeCSV(filepath.Join(dir, "costs.csv"), costs); err != nil {
		return err
	}

	lh := [][]string{{"id", "state", "ext_grade", "dx", "event", "begin", "end", "year", "psa"}}
	for _, row := range res.LifeHistories {
		lh = append(lh, []string{
			strconv.Itoa(row.ID), row.State.String(), strconv.Itoa(int(row.ExtGrade)), row.Dx.String(),
			prostate.EventName(row.Event), formatFloat(row.Begin), formatFloat(row.End),
			formatFloat(row.Year), formatFloat(row.PSA),
		})
	}
	return writeCSV(filepath.Join(dir, "life_histories.csv"), lh)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
