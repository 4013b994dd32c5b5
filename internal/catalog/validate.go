package catalog

import (
	"errors"
	"fmt"

	"github.com/m-lab/rendersim/pkg/render1/model"
)

var (
	// ErrMissingID is returned for scenarios or presets without an ID.
	ErrMissingID = errors.New("missing id")
	// ErrDuplicateID is returned when two scenarios or presets share an ID.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrNoPhases is returned for scenarios without phases.
	ErrNoPhases = errors.New("scenario has no phases")
	// ErrPhaseOrder is returned when phases are not listed by ascending start.
	ErrPhaseOrder = errors.New("phases not in ascending start order")
	// ErrPhaseBounds is returned for negative phases or phases ending after
	// the scenario's total duration.
	ErrPhaseBounds = errors.New("phase out of bounds")
	// ErrTransitionOrder is returned when page-state transitions go back in time.
	ErrTransitionOrder = errors.New("page-state transitions not in time order")
	// ErrInvalidMultiplier is returned for presets with a non-positive multiplier.
	ErrInvalidMultiplier = errors.New("invalid network multiplier")
	// ErrUnknownPreset is returned when looking up a preset that does not exist.
	ErrUnknownPreset = errors.New("unknown network preset")
	// ErrUnknownScenario is returned when looking up a scenario that does not exist.
	ErrUnknownScenario = errors.New("unknown scenario")
)

// Validate checks the structural invariants of a scenario: phases listed in
// ascending start order, none of them negative or ending after the last
// phase, and page-state transitions in non-decreasing time order.
func Validate(s model.Scenario) error {
	if s.ID == "" {
		return ErrMissingID
	}
	if len(s.Phases) == 0 {
		return fmt.Errorf("%s: %w", s.ID, ErrNoPhases)
	}
	total := TotalDuration(s)
	for i, p := range s.Phases {
		if p.StartMs < 0 || p.DurationMs < 0 {
			return fmt.Errorf("%s: phase %q: %w", s.ID, p.ID, ErrPhaseBounds)
		}
		if p.EndMs() > total {
			return fmt.Errorf("%s: phase %q ends at %.1fms after %.1fms: %w",
				s.ID, p.ID, p.EndMs(), total, ErrPhaseBounds)
		}
		if i > 0 && p.StartMs < s.Phases[i-1].StartMs {
			return fmt.Errorf("%s: phase %q: %w", s.ID, p.ID, ErrPhaseOrder)
		}
	}
	for i := 1; i < len(s.PageStates); i++ {
		if s.PageStates[i].AtMs < s.PageStates[i-1].AtMs {
			return fmt.Errorf("%s: transition to %q at %.1fms: %w", s.ID,
				s.PageStates[i].State, s.PageStates[i].AtMs, ErrTransitionOrder)
		}
	}
	return nil
}

// Warnings reports soft data-entry problems that do not make the scenario
// unusable: FCP and LCP are expected to coincide with a page-state
// transition.
func Warnings(s model.Scenario) []string {
	var warnings []string
	if !hasTransitionAt(s, s.Metrics.FCPMs) {
		warnings = append(warnings,
			fmt.Sprintf("%s: FCP %.1fms does not match a page-state transition", s.ID, s.Metrics.FCPMs))
	}
	if !hasTransitionAt(s, s.Metrics.LCPMs) {
		warnings = append(warnings,
			fmt.Sprintf("%s: LCP %.1fms does not match a page-state transition", s.ID, s.Metrics.LCPMs))
	}
	return warnings
}

func hasTransitionAt(s model.Scenario, at float64) bool {
	for _, t := range s.PageStates {
		if t.AtMs == at {
			return true
		}
	}
	return false
}

func validatePreset(p model.NetworkPreset) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Multiplier <= 0 {
		return fmt.Errorf("%s: %w", p.ID, ErrInvalidMultiplier)
	}
	return nil
}
