package catalog

import (
	"github.com/m-lab/rendersim/pkg/render1/model"
)

// TotalDuration returns the end of the scenario's last phase. A scenario
// without phases has a total duration of zero.
func TotalDuration(s model.Scenario) float64 {
	if len(s.Phases) == 0 {
		return 0
	}
	return s.Phases[len(s.Phases)-1].EndMs()
}

// MaxDuration returns the longest total duration among scenarios, or zero
// for an empty set. It is the shared horizontal scale of a comparison.
func MaxDuration(scenarios []model.Scenario) float64 {
	max := 0.0
	for _, s := range scenarios {
		if d := TotalDuration(s); d > max {
			max = d
		}
	}
	return max
}

// ApplyNetworkMultiplier returns s with every network-bound phase stretched
// by multiplier. Phases after a stretched phase are shifted by the
// accumulated growth. Declared timing metrics and page-state timestamps are
// rescaled by the ratio between the new and the original total duration.
//
// A multiplier of 1 returns s unchanged, sharing its slices. Any other
// multiplier returns a scenario with freshly allocated slices; s is never
// modified.
func ApplyNetworkMultiplier(s model.Scenario, multiplier float64) model.Scenario {
	if multiplier == 1 {
		return s
	}
	original := TotalDuration(s)

	scaled := s
	scaled.Phases = make([]model.Phase, len(s.Phases))
	offset := 0.0
	for i, p := range s.Phases {
		p.StartMs += offset
		if p.Category.NetworkBound() {
			grown := p.DurationMs * multiplier
			offset += grown - p.DurationMs
			p.DurationMs = grown
		}
		scaled.Phases[i] = p
	}

	ratio := 1.0
	if original > 0 {
		ratio = TotalDuration(scaled) / original
	}

	scaled.Metrics.TTFBMs = s.Metrics.TTFBMs * ratio
	scaled.Metrics.FCPMs = s.Metrics.FCPMs * ratio
	scaled.Metrics.LCPMs = s.Metrics.LCPMs * ratio
	scaled.Metrics.TTIMs = s.Metrics.TTIMs * ratio

	scaled.PageStates = make([]model.PageStateTransition, len(s.PageStates))
	for i, t := range s.PageStates {
		t.AtMs *= ratio
		scaled.PageStates[i] = t
	}
	return scaled
}

// Scale applies the preset's multiplier to every scenario and returns the
// scaled set. The input slice is not modified.
func Scale(scenarios []model.Scenario, preset model.NetworkPreset) []model.Scenario {
	out := make([]model.Scenario, len(scenarios))
	for i, s := range scenarios {
		out[i] = ApplyNetworkMultiplier(s, preset.Multiplier)
	}
	return out
}
