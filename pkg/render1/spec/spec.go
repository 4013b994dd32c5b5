// Package spec contains constants for the render1 timeline simulator.
package spec

import "time"

const (
	// DisplaySpeedup multiplies wall-clock time before it is published as
	// elapsed virtual time. It only makes runs feel snappier on screen.
	DisplaySpeedup = 1.8

	// FrameInterval is the interval between two frame advances, roughly one
	// display refresh at 60Hz.
	FrameInterval = 16 * time.Millisecond

	// FrameBufferSize is the capacity of the snapshot channel returned by
	// the simulator. Frames are dropped, not queued, past this size.
	FrameBufferSize = 64

	// ScenariosPath lists the scenario catalog.
	ScenariosPath = "/render/v1/scenarios"
	// ScenarioPath returns a single scenario.
	ScenarioPath = "/render/v1/scenarios/{id}"
	// ComparePath returns a metric comparison chart.
	ComparePath = "/render/v1/compare"
	// SimulatePath selects the WebSocket timeline simulation.
	SimulatePath = "/render/v1/simulate"

	// SecWebSocketProtocol is the value of the Sec-WebSocket-Protocol header.
	SecWebSocketProtocol = "net.measurementlab.render.v1"

	// MaxMessageSize bounds control messages read from clients.
	MaxMessageSize = 1 << 12

	// MaxRuntime is the maximum lifetime of a simulation WebSocket session.
	MaxRuntime = 10 * time.Minute

	// DefaultPreset is the ID of the preset used when none is requested.
	DefaultPreset = "fast"
)
