package model

// ScenarioList is the response of the scenario catalog endpoint.
type ScenarioList struct {
	// Preset is the network preset the scenarios are scaled with.
	Preset string `json:"preset"`
	// CacheHit reports which variant of cached scenarios is listed.
	CacheHit bool `json:"cacheHit"`
	// MaxDurationMs is the shared horizontal scale of Scenarios.
	MaxDurationMs float64 `json:"maxDurationMs"`
	// Presets lists every available network preset.
	Presets   []NetworkPreset `json:"presets"`
	Scenarios []Scenario      `json:"scenarios"`
}
