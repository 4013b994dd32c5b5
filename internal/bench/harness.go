// Package bench implements the render-strategy benchmark: four
// implementations of the same filter-and-render workload, measured with the
// wall clock on a cold mount each run.
package bench

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/bench1/spec"
)

// Harness runs the four strategies and keeps the measurements of the
// current run. It is safe for concurrent use.
type Harness struct {
	mu sync.Mutex

	itemCount int
	slowMode  bool
	seed      int64
	query     Query

	runID    int64
	ready    bool
	measured map[model.Strategy]time.Duration
}

// NewHarness returns a Harness with spec.DefaultItemCount items.
func NewHarness() *Harness {
	return &Harness{
		itemCount: spec.DefaultItemCount,
		seed:      1,
		query:     DefaultQuery,
		measured:  map[model.Strategy]time.Duration{},
	}
}

// SetItemCount sets the dataset size for the next runs, clamped to the
// accepted range, and returns the value actually set.
func (h *Harness) SetItemCount(n int) int {
	if n < spec.MinItemCount {
		n = spec.MinItemCount
	}
	if n > spec.MaxItemCount {
		n = spec.MaxItemCount
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.itemCount = n
	return n
}

// ItemCount returns the current dataset size.
func (h *Harness) ItemCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.itemCount
}

// SetSlowMode toggles the illustrative staggered reveal. It has no effect
// on measurements.
func (h *Harness) SetSlowMode(slow bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.slowMode = slow
}

// RunID returns the ID of the current run. It is 0 before the first run.
func (h *Harness) RunID() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runID
}

// Record stores the render time of strategy s for run runID. Measurements
// for any other than the current run are discarded and Record returns
// false.
func (h *Harness) Record(runID int64, s model.Strategy, d time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if runID != h.runID {
		return false
	}
	h.measured[s] = d
	return true
}

// RunTest starts a new run: the run ID is incremented, previous
// measurements are cleared and every strategy is mounted cold and measured
// in turn. Once all strategies recorded, the run is marked ready.
func (h *Harness) RunTest(ctx context.Context) (model.BenchmarkRun, error) {
	h.mu.Lock()
	h.runID++
	id := h.runID
	h.ready = false
	h.measured = map[model.Strategy]time.Duration{}
	products := GenerateProducts(h.itemCount, h.seed)
	q := h.query
	h.mu.Unlock()

	log.Debug("benchmark run started", "run", id, "items", len(products))
	for _, s := range model.Strategies {
		if err := ctx.Err(); err != nil {
			return model.BenchmarkRun{}, err
		}
		h.Record(id, s, Mount(s, products, q, spec.RenderPasses))
	}

	h.mu.Lock()
	if id == h.runID {
		h.ready = true
	}
	h.mu.Unlock()
	return h.Results(), nil
}

// Results returns the current run projected onto the comparison chart.
func (h *Harness) Results() model.BenchmarkRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	run := model.BenchmarkRun{
		RunID:     h.runID,
		ItemCount: h.itemCount,
		SlowMode:  h.slowMode,
		Ready:     h.ready,
		Results:   Compare(h.measured),
	}
	if h.slowMode {
		run.RevealDelaysMs = make(map[model.Strategy][]float64, len(model.Strategies))
		for _, s := range model.Strategies {
			run.RevealDelaysMs[s] = RevealDelays(s, h.itemCount)
		}
	}
	return run
}

// RevealDelays returns the delay, in milliseconds, before each of n items
// of strategy s is revealed in slow mode. Less optimized strategies reveal
// more slowly. These delays are never part of a measurement.
func RevealDelays(s model.Strategy, n int) []float64 {
	maxLevel := model.StrategyMemoBoth.Level()
	step := float64(spec.RevealStep) / float64(time.Millisecond) * float64(maxLevel-s.Level()+1)
	delays := make([]float64, n)
	for i := range delays {
		delays[i] = float64(i) * step
	}
	return delays
}

// Compare ranks measurements from fastest to slowest. Bar widths are
// relative to the slowest strategy, with a denominator of at least
// spec.MinChartMs. Speedup is relative to the unoptimized strategy and zero
// when either time is zero or missing.
func Compare(measured map[model.Strategy]time.Duration) []model.StrategyResult {
	results := make([]model.StrategyResult, 0, len(measured))
	maxMs := 0.0
	for _, s := range model.Strategies {
		d, ok := measured[s]
		if !ok {
			continue
		}
		ms := float64(d) / float64(time.Millisecond)
		if ms > maxMs {
			maxMs = ms
		}
		results = append(results, model.StrategyResult{Strategy: s, RenderMs: ms})
	}
	denom := maxMs
	if denom < spec.MinChartMs {
		denom = spec.MinChartMs
	}
	baseline, hasBaseline := measured[model.StrategyNone]
	baseMs := float64(baseline) / float64(time.Millisecond)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RenderMs < results[j].RenderMs
	})
	for i := range results {
		r := &results[i]
		r.Rank = i + 1
		r.WidthPct = r.RenderMs / denom * 100
		if hasBaseline && baseMs > 0 && r.RenderMs > 0 {
			r.Speedup = baseMs / r.RenderMs
		}
	}
	return results
}
