// Package spec contains constants for the bench1 render-strategy benchmark.
package spec

import "time"

const (
	// MinItemCount is the smallest accepted dataset size.
	MinItemCount = 0
	// MaxItemCount is the largest accepted dataset size.
	MaxItemCount = 200
	// DefaultItemCount is the dataset size of a new harness.
	DefaultItemCount = 50

	// ItemCostIterations is the fixed synthetic CPU cost of rendering one item.
	ItemCostIterations = 20000
	// FilterCostIterations is the synthetic cost of testing one item against
	// the filter.
	FilterCostIterations = 4000
	// RenderPasses is how many times a measured subtree renders before it
	// commits: the initial render plus re-renders triggered by its parent
	// with unchanged inputs.
	RenderPasses = 3

	// RevealStep is the base per-item stagger used by slow mode.
	RevealStep = 4 * time.Millisecond

	// MinChartMs floors the chart denominator so empty runs never divide by zero.
	MinChartMs = 1.0

	// BenchmarkPath runs a benchmark for the session identified by "mid".
	BenchmarkPath = "/bench/v1/run"
	// ResultPath returns the last run for the session identified by "mid".
	ResultPath = "/bench/v1/result"
	// HistoryPath returns averaged measurements across sessions.
	HistoryPath = "/bench/v1/history"

	// DefaultSessionCacheTTL is the default session cache TTL.
	DefaultSessionCacheTTL = 5 * time.Minute
)
