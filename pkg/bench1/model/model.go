// Package model contains the data types of the bench1 render-strategy
// benchmark.
package model

import "time"

// Strategy is an optimization regime for rendering the benchmark workload.
type Strategy string

const (
	// StrategyNone recomputes the filtered list and re-renders every item on
	// every render pass.
	StrategyNone = Strategy("none")
	// StrategyMemoList memoizes the filtered list.
	StrategyMemoList = Strategy("memo-list")
	// StrategyMemoItems memoizes each rendered item.
	StrategyMemoItems = Strategy("memo-items")
	// StrategyMemoBoth combines list and item memoization.
	StrategyMemoBoth = Strategy("memo-both")
)

// Strategies lists every strategy in increasing optimization level.
var Strategies = []Strategy{StrategyNone, StrategyMemoList, StrategyMemoItems, StrategyMemoBoth}

// Level returns the optimization level of s, from 0 (none) to 3 (both).
func (s Strategy) Level() int {
	switch s {
	case StrategyMemoList:
		return 1
	case StrategyMemoItems:
		return 2
	case StrategyMemoBoth:
		return 3
	}
	return 0
}

// StrategyResult is the measured render time of one strategy in one run,
// projected onto the comparison chart.
type StrategyResult struct {
	Strategy Strategy `json:"strategy"`
	// RenderMs is the wall-clock time between mount and commit.
	RenderMs float64 `json:"renderMs"`
	// WidthPct is the bar width relative to the slowest strategy.
	WidthPct float64 `json:"widthPct"`
	// Rank is 1 for the fastest strategy.
	Rank int `json:"rank"`
	// Speedup is the baseline (no memoization) time divided by RenderMs.
	Speedup float64 `json:"speedup"`
}

// BenchmarkRun is one invocation of the four-strategy comparison.
type BenchmarkRun struct {
	// RunID increases by one on every run of the same harness.
	RunID int64 `json:"runId"`
	// ItemCount is the size of the synthetic dataset.
	ItemCount int `json:"itemCount"`
	// SlowMode enables the illustrative staggered reveal.
	SlowMode bool `json:"slowMode"`
	// Ready is set once results can be revealed.
	Ready bool `json:"ready"`
	// Results holds one entry per strategy, fastest first.
	Results []StrategyResult `json:"results"`
	// RevealDelaysMs is the per-strategy reveal stagger in slow mode.
	RevealDelaysMs map[Strategy][]float64 `json:"revealDelaysMs,omitempty" bigquery:"-"`
}

// BenchmarkResult is the archival record of a benchmark session.
type BenchmarkResult struct {
	// GitShortCommit is the Git commit (short form) of the running server code.
	GitShortCommit string
	// Version is the symbolic version (if any) of the running server code.
	Version string
	// ID is the measurement ID of the session.
	ID string
	// Client is the client's ip:port pair of the last request.
	Client string
	// StartTime is the session creation time.
	StartTime time.Time
	// EndTime is set when the session expires.
	EndTime time.Time
	// Runs lists every run of the session in order.
	Runs []BenchmarkRun
}
