// Package projection maps a scenario set and a point in virtual time to the
// values a presentation layer draws: bar fills, positions on the shared
// scale, page mockup states and metric comparison charts. Every function is
// pure.
package projection

import (
	"fmt"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/pkg/render1/model"
)

// PhaseFill returns how much of phase p is filled at elapsed, in percent.
// It is 0 up to the phase start, 100 from the phase end on, and linear in
// between.
func PhaseFill(p model.Phase, elapsed float64) float64 {
	if elapsed <= p.StartMs {
		return 0
	}
	if elapsed >= p.EndMs() {
		return 100
	}
	return (elapsed - p.StartMs) / p.DurationMs * 100
}

// Position returns the horizontal position of timestamp on a scale of
// maxDuration, in percent. An empty scale maps everything to 0.
func Position(timestamp, maxDuration float64) float64 {
	if maxDuration <= 0 {
		return 0
	}
	return timestamp / maxDuration * 100
}

// PageStateAt returns the page mockup state of s. Idle simulations show a
// blank page and completed ones the last transition. While running, the
// state is the last transition whose timestamp is not after elapsed.
func PageStateAt(s model.Scenario, elapsed float64, status model.Status) model.PageState {
	state := model.PageBlank
	switch status {
	case model.StatusCompleted:
		if n := len(s.PageStates); n > 0 {
			state = s.PageStates[n-1].State
		}
	case model.StatusRunning:
		for _, t := range s.PageStates {
			if t.AtMs <= elapsed {
				state = t.State
			}
		}
	}
	return state
}

// View projects a single scenario at elapsed on a shared scale of
// maxDuration.
func View(s model.Scenario, elapsed, maxDuration float64, status model.Status) model.ScenarioView {
	total := catalog.TotalDuration(s)
	v := model.ScenarioView{
		ID:        s.ID,
		Name:      s.Name,
		Color:     s.Color,
		PageState: PageStateAt(s, elapsed, status),
		TotalMs:   total,
		WidthPct:  Position(total, maxDuration),
		Finished:  status == model.StatusCompleted || (status == model.StatusRunning && elapsed >= total),
		FCPPct:    Position(s.Metrics.FCPMs, maxDuration),
		LCPPct:    Position(s.Metrics.LCPMs, maxDuration),
		Phases:    make([]model.PhaseView, 0, len(s.Phases)),
	}
	for _, p := range s.Phases {
		v.Phases = append(v.Phases, model.PhaseView{
			ID:       p.ID,
			Label:    p.Label,
			Category: p.Category,
			LeftPct:  Position(p.StartMs, maxDuration),
			WidthPct: Position(p.DurationMs, maxDuration),
			FillPct:  PhaseFill(p, elapsed),
		})
	}
	return v
}

// Project builds the snapshot of scenarios at elapsed. All views share the
// same elapsed time and the same maximum duration.
func Project(scenarios []model.Scenario, elapsed float64, status model.Status) model.Snapshot {
	max := catalog.MaxDuration(scenarios)
	snap := model.Snapshot{
		Status:        status,
		ElapsedMs:     elapsed,
		MaxDurationMs: max,
		CursorPct:     Position(elapsed, max),
		Scenarios:     make([]model.ScenarioView, 0, len(scenarios)),
	}
	for _, s := range scenarios {
		snap.Scenarios = append(snap.Scenarios, View(s, elapsed, max, status))
	}
	return snap
}

// FormatMs renders a duration in milliseconds for display, switching to
// seconds from one second on.
func FormatMs(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}
