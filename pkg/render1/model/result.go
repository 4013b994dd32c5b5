package model

import "time"

// ControlMessage is sent by clients over the simulation WebSocket to drive
// the simulator.
type ControlMessage struct {
	// Type is one of "start", "reset" or "config".
	Type string `json:"type"`
	// Preset is the network preset ID for "config" messages.
	Preset string `json:"preset,omitempty"`
	// CacheHit is the cache-hit toggle for "config" messages.
	CacheHit *bool `json:"cacheHit,omitempty"`
}

// Control message types.
const (
	ControlStart  = "start"
	ControlReset  = "reset"
	ControlConfig = "config"
)

// SimulationResult is the archival record of a simulation session.
type SimulationResult struct {
	// GitShortCommit is the Git commit (short form) of the running server code.
	GitShortCommit string
	// Version is the symbolic version (if any) of the running server code.
	Version string
	// ID is the measurement ID of the session.
	ID string
	// Client is the client's ip:port pair.
	Client string
	// Server is the server's ip:port pair.
	Server string
	// StartTime is when the WebSocket session was established.
	StartTime time.Time
	// EndTime is when the session was closed.
	EndTime time.Time
	// Preset is the last network preset in use.
	Preset string
	// CacheHit is the last cache-hit setting in use.
	CacheHit bool
	// ScenarioIDs are the scenarios shown in the session.
	ScenarioIDs []string
	// RunsStarted counts start transitions.
	RunsStarted int
	// RunsCompleted counts runs that reached the maximum duration.
	RunsCompleted int
	// Resets counts explicit and configuration-triggered resets.
	Resets int
	// FinalElapsedMs is the elapsed time of the last snapshot sent.
	FinalElapsedMs float64
}
