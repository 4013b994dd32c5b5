package model

// Status is the state of a simulator run.
type Status string

const (
	// StatusIdle means the simulation has not been started, or was reset.
	StatusIdle = Status("idle")
	// StatusRunning means the virtual clock is advancing.
	StatusRunning = Status("running")
	// StatusCompleted means the clock reached the maximum duration and is
	// pinned there until the next start.
	StatusCompleted = Status("completed")
)

// Snapshot is the read-only view of a simulator at one frame. Every
// scenario in a Snapshot shares ElapsedMs and MaxDurationMs so that all
// timelines are drawn on a single horizontal scale.
type Snapshot struct {
	// Status is the simulator status when the snapshot was taken.
	Status Status `json:"status"`
	// ElapsedMs is the virtual time since start, after the display speedup.
	ElapsedMs float64 `json:"elapsedMs"`
	// MaxDurationMs is the longest total duration among Scenarios.
	MaxDurationMs float64 `json:"maxDurationMs"`
	// CursorPct is the position of the time cursor on the shared scale.
	CursorPct float64 `json:"cursorPct"`
	// Preset is the ID of the network preset the scenarios were scaled with.
	Preset string `json:"preset"`
	// CacheHit reports whether the cache-hit variant of cached scenarios is shown.
	CacheHit bool `json:"cacheHit"`
	// Scenarios holds one view per displayed scenario, in display order.
	Scenarios []ScenarioView `json:"scenarios"`
}

// ScenarioView is the projection of a single scenario at a given time.
type ScenarioView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	PageState PageState `json:"pageState"`
	TotalMs   float64   `json:"totalMs"`

	// WidthPct is the share of the shared scale this scenario occupies.
	WidthPct float64 `json:"widthPct"`
	// Finished is true once the elapsed time passed the scenario's end.
	Finished bool `json:"finished"`

	FCPPct float64     `json:"fcpPct"`
	LCPPct float64     `json:"lcpPct"`
	Phases []PhaseView `json:"phases"`
}

// PhaseView is the projection of a single phase: where its bar sits on the
// shared scale and how much of it is filled.
type PhaseView struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Category PhaseCategory `json:"category"`
	LeftPct  float64       `json:"leftPct"`
	WidthPct float64       `json:"widthPct"`
	FillPct  float64       `json:"fillPct"`
}

// Rating classifies a metric value against metric-specific thresholds.
type Rating string

const (
	RatingGood       = Rating("good")
	RatingAcceptable = Rating("acceptable")
	RatingPoor       = Rating("poor")
)

// ComparisonBar is one bar of a metric comparison chart.
type ComparisonBar struct {
	ScenarioID string  `json:"scenarioId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Value      float64 `json:"value"`
	WidthPct   float64 `json:"widthPct"`
	Rating     Rating  `json:"rating"`
}
