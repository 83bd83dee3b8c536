package navsim

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders the report as one row per scenario.
func (r *Report) Table() string {
	t := table.NewWriter()
	t.SetTitle("run %s", r.ID)
	t.AppendHeader(table.Row{
		"Scenario", "Result", "Steps", "Distance (m)", "Min clearance (m)",
		"Collisions", "Blocked", "Mean speed (m/s)", "P90 speed (m/s)", "Max speed (m/s)",
	})
	for _, run := range r.Runs {
		t.AppendRow([]interface{}{
			run.Scenario.Name,
			run.Outcome(),
			run.Steps,
			fmt.Sprintf("%.2f", run.DistanceM),
			formatClearance(run.MinClearanceM),
			run.Collisions,
			run.BlockedCycles,
			fmt.Sprintf("%.3f", run.SpeedMeanMS),
			fmt.Sprintf("%.3f", run.SpeedP90MS),
			fmt.Sprintf("%.3f", run.SpeedMaxMS),
		})
	}
	return t.Render()
}

// WriteSummary writes the report table to w.
func (r *Report) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Table())
	return err
}

// Outcome is a one word description of the run.
func (r *Run) Outcome() string {
	switch {
	case r.Collisions > 0:
		return "collided"
	case r.Reached:
		return "reached"
	default:
		return "gave up"
	}
}

func formatClearance(v float64) string {
	if math.IsInf(v, 1) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
