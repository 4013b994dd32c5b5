package bench_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/m-lab/rendersim/internal/bench"
	"github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/bench1/spec"
)

func TestGenerateProducts(t *testing.T) {
	a := bench.GenerateProducts(20, 7)
	b := bench.GenerateProducts(20, 7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different products (-a +b):\n%s", diff)
	}
	if len(bench.GenerateProducts(0, 7)) != 0 {
		t.Errorf("GenerateProducts(0) is not empty")
	}
}

func TestRenderer(t *testing.T) {
	products := bench.GenerateProducts(10, 1)
	q := bench.Query{}
	tests := []struct {
		strategy    model.Strategy
		filterCalls int
		itemRenders int
	}{
		{model.StrategyNone, 30, 30},
		{model.StrategyMemoList, 10, 30},
		{model.StrategyMemoItems, 30, 10},
		{model.StrategyMemoBoth, 10, 10},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			r := bench.NewRenderer(tt.strategy)
			var first, last []bench.Item
			for i := 0; i < 3; i++ {
				out := r.Render(products, q)
				if i == 0 {
					first = out
				}
				last = out
			}
			if r.FilterCalls != tt.filterCalls || r.ItemRenders != tt.itemRenders {
				t.Errorf("filter calls %d item renders %d, want %d and %d",
					r.FilterCalls, r.ItemRenders, tt.filterCalls, tt.itemRenders)
			}
			if diff := cmp.Diff(first, last); diff != "" {
				t.Errorf("memoized output differs (-first +last):\n%s", diff)
			}
		})
	}

	t.Run("new inputs invalidate the list cache", func(t *testing.T) {
		r := bench.NewRenderer(model.StrategyMemoBoth)
		r.Render(products, q)
		r.Render(bench.GenerateProducts(10, 1), q)
		if r.FilterCalls != 20 || r.ItemRenders != 10 {
			t.Errorf("filter calls %d item renders %d", r.FilterCalls, r.ItemRenders)
		}
	})
}

func TestHarness_RunTest(t *testing.T) {
	h := bench.NewHarness()
	h.SetItemCount(10)
	ctx := context.Background()

	// A measurement recorded before a run must not survive it.
	if !h.Record(h.RunID(), model.StrategyNone, time.Hour) {
		t.Fatalf("Record() for the current run was rejected")
	}
	for i := int64(1); i <= 4; i++ {
		stale := h.RunID()
		run, err := h.RunTest(ctx)
		if err != nil {
			t.Fatalf("RunTest() error = %v", err)
		}
		if run.RunID != i || !run.Ready || run.ItemCount != 10 {
			t.Errorf("run %d = %+v", i, run)
		}
		if len(run.Results) != len(model.Strategies) {
			t.Fatalf("run %d has %d results", i, len(run.Results))
		}
		for _, r := range run.Results {
			if r.RenderMs < 0 || r.RenderMs >= float64(time.Hour/time.Millisecond) {
				t.Errorf("run %d: %s measured %vms", i, r.Strategy, r.RenderMs)
			}
		}
		if h.Record(stale, model.StrategyNone, time.Hour) {
			t.Errorf("Record() for run %d was accepted during run %d", stale, i)
		}
	}
}

func TestHarness_ZeroItems(t *testing.T) {
	h := bench.NewHarness()
	if got := h.SetItemCount(-5); got != 0 {
		t.Errorf("SetItemCount(-5) = %d", got)
	}
	run, err := h.RunTest(context.Background())
	if err != nil {
		t.Fatalf("RunTest() error = %v", err)
	}
	for _, r := range run.Results {
		if r.RenderMs < 0 || math.IsNaN(r.WidthPct) || math.IsInf(r.WidthPct, 0) || r.WidthPct > 100 {
			t.Errorf("zero-item result = %+v", r)
		}
	}
	if got := h.SetItemCount(1000); got != spec.MaxItemCount {
		t.Errorf("SetItemCount(1000) = %d", got)
	}
}

func TestHarness_Cancelled(t *testing.T) {
	h := bench.NewHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.RunTest(ctx); err == nil {
		t.Errorf("RunTest() with a cancelled context succeeded")
	}
	if h.Results().Ready {
		t.Errorf("cancelled run is marked ready")
	}
}

func TestHarness_SlowMode(t *testing.T) {
	h := bench.NewHarness()
	h.SetItemCount(5)
	h.SetSlowMode(true)
	run := h.Results()
	if len(run.RevealDelaysMs) != len(model.Strategies) {
		t.Fatalf("reveal delays = %v", run.RevealDelaysMs)
	}
	none := run.RevealDelaysMs[model.StrategyNone]
	both := run.RevealDelaysMs[model.StrategyMemoBoth]
	if none[0] != 0 || none[4] <= both[4] {
		t.Errorf("unoptimized reveal %v should be slower than %v", none, both)
	}
	h.SetSlowMode(false)
	if h.Results().RevealDelaysMs != nil {
		t.Errorf("reveal delays without slow mode")
	}
}

func TestCompare(t *testing.T) {
	got := bench.Compare(map[model.Strategy]time.Duration{
		model.StrategyNone:      40 * time.Millisecond,
		model.StrategyMemoList:  20 * time.Millisecond,
		model.StrategyMemoItems: 10 * time.Millisecond,
		model.StrategyMemoBoth:  5 * time.Millisecond,
	})
	want := []model.StrategyResult{
		{Strategy: model.StrategyMemoBoth, RenderMs: 5, WidthPct: 12.5, Rank: 1, Speedup: 8},
		{Strategy: model.StrategyMemoItems, RenderMs: 10, WidthPct: 25, Rank: 2, Speedup: 4},
		{Strategy: model.StrategyMemoList, RenderMs: 20, WidthPct: 50, Rank: 3, Speedup: 2},
		{Strategy: model.StrategyNone, RenderMs: 40, WidthPct: 100, Rank: 4, Speedup: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}

	zero := bench.Compare(map[model.Strategy]time.Duration{model.StrategyNone: 0, model.StrategyMemoBoth: 0})
	for _, r := range zero {
		if r.WidthPct != 0 || r.Speedup != 0 {
			t.Errorf("zero measurement = %+v", r)
		}
	}
	if len(bench.Compare(nil)) != 0 {
		t.Errorf("Compare(nil) is not empty")
	}
}
