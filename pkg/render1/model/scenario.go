// Package model contains the data types of the render1 timeline simulator.
// All times are expressed in milliseconds from the start of a scenario.
package model

// PhaseCategory tags what kind of work a Phase represents.
type PhaseCategory string

const (
	// CategoryServer is server-side compute (rendering, data fetching on the server).
	CategoryServer = PhaseCategory("server")
	// CategoryNetwork is a network transfer between server and browser.
	CategoryNetwork = PhaseCategory("network")
	// CategoryClient is client-side compute (parsing, executing JS, rendering).
	CategoryClient = PhaseCategory("client")
	// CategoryHydration is the client attaching interactivity to server HTML.
	CategoryHydration = PhaseCategory("hydration")
	// CategoryFetch is a data fetch initiated by the client.
	CategoryFetch = PhaseCategory("fetch")
	// CategoryIdle is time where nothing observable happens.
	CategoryIdle = PhaseCategory("idle")
)

// NetworkBound returns whether phases of this category are affected by the
// network preset's latency multiplier.
func (c PhaseCategory) NetworkBound() bool {
	switch c {
	case CategoryServer, CategoryNetwork, CategoryFetch:
		return true
	}
	return false
}

// PageState is the visual completeness of the simulated page.
type PageState string

const (
	PageBlank    = PageState("blank")
	PageShell    = PageState("shell")
	PageLoading  = PageState("loading")
	PagePartial  = PageState("partial")
	PageStreamed = PageState("streamed")
	PageComplete = PageState("complete")
)

// Phase is a labeled, timed sub-interval of a Scenario's timeline.
type Phase struct {
	// ID identifies the phase within its scenario.
	ID string `json:"id" yaml:"id"`
	// Label is the short human-readable name of the phase.
	Label string `json:"label" yaml:"label"`
	// StartMs is the offset from the scenario start.
	StartMs float64 `json:"startMs" yaml:"startMs"`
	// DurationMs is the length of the phase.
	DurationMs float64 `json:"durationMs" yaml:"durationMs"`
	// Category determines whether the network preset scales this phase.
	Category PhaseCategory `json:"category" yaml:"category"`
	// Description explains what happens during the phase.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EndMs returns the offset at which the phase ends.
func (p Phase) EndMs() float64 {
	return p.StartMs + p.DurationMs
}

// MetricKey names one of the declared timing metrics.
type MetricKey string

const (
	MetricTTFB = MetricKey("ttfb")
	MetricFCP  = MetricKey("fcp")
	MetricLCP  = MetricKey("lcp")
	MetricTTI  = MetricKey("tti")
)

// MetricKeys lists the timing metrics in display order.
var MetricKeys = []MetricKey{MetricTTFB, MetricFCP, MetricLCP, MetricTTI}

// Metrics are the performance numbers declared for a Scenario. They are not
// computed from the phases; catalog authors keep them consistent by hand.
type Metrics struct {
	TTFBMs    float64 `json:"ttfbMs" yaml:"ttfbMs"`
	FCPMs     float64 `json:"fcpMs" yaml:"fcpMs"`
	LCPMs     float64 `json:"lcpMs" yaml:"lcpMs"`
	TTIMs     float64 `json:"ttiMs" yaml:"ttiMs"`
	BundleKB  float64 `json:"bundleKB" yaml:"bundleKB"`
	PayloadKB float64 `json:"payloadKB" yaml:"payloadKB"`
}

// Value returns the timing metric named by key, and false if the key is
// unknown.
func (m Metrics) Value(key MetricKey) (float64, bool) {
	switch key {
	case MetricTTFB:
		return m.TTFBMs, true
	case MetricFCP:
		return m.FCPMs, true
	case MetricLCP:
		return m.LCPMs, true
	case MetricTTI:
		return m.TTIMs, true
	}
	return 0, false
}

// PageStateTransition is the moment the simulated page switches to State.
type PageStateTransition struct {
	AtMs  float64   `json:"atMs" yaml:"atMs"`
	State PageState `json:"state" yaml:"state"`
}

// Scenario describes one rendering strategy as an ordered timeline.
//
// Scenarios from a catalog are never mutated. Transforms such as network
// scaling return a new Scenario with its own slices.
type Scenario struct {
	ID          string                `json:"id" yaml:"id"`
	Name        string                `json:"name" yaml:"name"`
	ShortName   string                `json:"shortName" yaml:"shortName"`
	Description string                `json:"description" yaml:"description"`
	Color       string                `json:"color" yaml:"color"`
	Phases      []Phase               `json:"phases" yaml:"phases"`
	Metrics     Metrics               `json:"metrics" yaml:"metrics"`
	PageStates  []PageStateTransition `json:"pageStates" yaml:"pageStates"`
}

// Clone returns a deep copy of s.
func (s Scenario) Clone() Scenario {
	c := s
	c.Phases = append([]Phase(nil), s.Phases...)
	c.PageStates = append([]PageStateTransition(nil), s.PageStates...)
	return c
}

// NetworkPreset is a named latency multiplier applied to network-bound phases.
type NetworkPreset struct {
	ID         string  `json:"id" yaml:"id"`
	Label      string  `json:"label" yaml:"label"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}
