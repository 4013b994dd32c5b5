package catalog_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-lab/go/testingx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/pkg/render1/model"
)

func scenario600() model.Scenario {
	return model.Scenario{
		ID: "test",
		Phases: []model.Phase{
			{ID: "server", StartMs: 0, DurationMs: 500, Category: model.CategoryServer},
			{ID: "paint", StartMs: 500, DurationMs: 100, Category: model.CategoryClient},
		},
		Metrics: model.Metrics{TTFBMs: 500, FCPMs: 600, LCPMs: 600, TTIMs: 600, BundleKB: 10},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 600, State: model.PageComplete},
		},
	}
}

func TestDefault(t *testing.T) {
	c := catalog.Default()
	for _, cacheHit := range []bool{true, false} {
		for _, s := range c.Scenarios(cacheHit) {
			if err := catalog.Validate(s); err != nil {
				t.Errorf("Validate(%s, cacheHit=%v) = %v", s.ID, cacheHit, err)
			}
			if w := catalog.Warnings(s); len(w) != 0 {
				t.Errorf("Warnings(%s, cacheHit=%v) = %v", s.ID, cacheHit, w)
			}
			if total := catalog.TotalDuration(s); s.Metrics.TTIMs > total {
				t.Errorf("%s: TTI %.0f after total duration %.0f", s.ID, s.Metrics.TTIMs, total)
			}
		}
	}
	if len(c.Presets()) < 2 {
		t.Errorf("expected at least two presets")
	}
}

func TestTotalAndMaxDuration(t *testing.T) {
	if got := catalog.TotalDuration(scenario600()); got != 600 {
		t.Errorf("TotalDuration() = %v, want 600", got)
	}
	if got := catalog.TotalDuration(model.Scenario{}); got != 0 {
		t.Errorf("TotalDuration(empty) = %v, want 0", got)
	}
	if got := catalog.MaxDuration(nil); got != 0 {
		t.Errorf("MaxDuration(nil) = %v, want 0", got)
	}
	short := model.Scenario{ID: "short", Phases: []model.Phase{{ID: "a", DurationMs: 230}}}
	if got := catalog.MaxDuration([]model.Scenario{short, scenario600()}); got != 600 {
		t.Errorf("MaxDuration() = %v, want 600", got)
	}
}

func TestApplyNetworkMultiplier(t *testing.T) {
	t.Run("multiplier 1 returns the same scenario", func(t *testing.T) {
		s := scenario600()
		got := catalog.ApplyNetworkMultiplier(s, 1)
		if &got.Phases[0] != &s.Phases[0] || &got.PageStates[0] != &s.PageStates[0] {
			t.Errorf("identity multiplier allocated new slices")
		}
	})

	t.Run("x3 scales metrics with the total duration", func(t *testing.T) {
		s := scenario600()
		got := catalog.ApplyNetworkMultiplier(s, 3)
		total := catalog.TotalDuration(got)
		if total != 1600 {
			t.Fatalf("scaled total = %v, want 1600", total)
		}
		ratio := total / 600
		if math.Abs(got.Metrics.TTFBMs-500*ratio) > 1e-9 {
			t.Errorf("TTFB = %v, want %v", got.Metrics.TTFBMs, 500*ratio)
		}
		if math.Abs(got.Metrics.FCPMs-total) > 1e-9 {
			t.Errorf("FCP = %v, want it to stay equal to the total %v", got.Metrics.FCPMs, total)
		}
		if got.Metrics.BundleKB != 10 {
			t.Errorf("sizes must not be scaled, got BundleKB = %v", got.Metrics.BundleKB)
		}
		if got.Phases[1].StartMs != 1500 || got.Phases[1].DurationMs != 100 {
			t.Errorf("client phase = %+v, want start 1500 duration 100", got.Phases[1])
		}
		if math.Abs(got.PageStates[1].AtMs-total) > 1e-9 {
			t.Errorf("last transition at %v, want %v", got.PageStates[1].AtMs, total)
		}
	})

	t.Run("the original scenario is never modified", func(t *testing.T) {
		s := scenario600()
		before := s.Clone()
		scaled := catalog.ApplyNetworkMultiplier(s, 3)
		scaled.Phases[0].Label = "changed"
		scaled.PageStates[0].State = model.PageShell
		if diff := cmp.Diff(before, s); diff != "" {
			t.Errorf("original changed (-want +got):\n%s", diff)
		}
		// Repeated scaling from the base never accumulates drift.
		again := catalog.ApplyNetworkMultiplier(s, 3)
		if catalog.TotalDuration(again) != 1600 {
			t.Errorf("second scaling drifted: %v", catalog.TotalDuration(again))
		}
	})

	t.Run("zero total duration keeps metrics finite", func(t *testing.T) {
		s := model.Scenario{
			ID:      "zero",
			Phases:  []model.Phase{{ID: "idle", Category: model.CategoryIdle}},
			Metrics: model.Metrics{FCPMs: 10},
		}
		got := catalog.ApplyNetworkMultiplier(s, 3)
		if got.Metrics.FCPMs != 10 {
			t.Errorf("FCP = %v, want 10", got.Metrics.FCPMs)
		}
	})

	t.Run("network multipliers never shorten a scenario", func(t *testing.T) {
		c := catalog.Default()
		for _, s := range c.Scenarios(false) {
			for _, m := range []float64{1.5, 2, 3, 10} {
				if got := catalog.TotalDuration(catalog.ApplyNetworkMultiplier(s, m)); got < catalog.TotalDuration(s) {
					t.Errorf("%s x%v: total %v shorter than %v", s.ID, m, got, catalog.TotalDuration(s))
				}
			}
		}
	})
}

func TestScale(t *testing.T) {
	c := catalog.Default()
	slow, err := c.Preset("slow")
	testingx.Must(t, err, "cannot find slow preset")
	base := c.Scenarios(true)
	scaled := catalog.Scale(base, slow)
	if len(scaled) != len(base) {
		t.Fatalf("Scale() returned %d scenarios, want %d", len(scaled), len(base))
	}
	if catalog.MaxDuration(scaled) <= catalog.MaxDuration(base) {
		t.Errorf("slow preset did not grow the shared scale")
	}
}

func TestCatalog_Scenarios(t *testing.T) {
	c := catalog.Default()

	hit, err := c.Lookup("isr", true)
	testingx.Must(t, err, "cannot find isr")
	miss, err := c.Lookup("isr", false)
	testingx.Must(t, err, "cannot find isr")
	if catalog.TotalDuration(miss) <= catalog.TotalDuration(hit) {
		t.Errorf("cache miss should take longer than a hit")
	}
	if !c.HasCacheVariant("isr") || c.HasCacheVariant("ssr") {
		t.Errorf("HasCacheVariant() returned unexpected values")
	}

	// Mutating returned scenarios must not leak into the catalog.
	list := c.Scenarios(true)
	list[0].Phases[0].DurationMs = 1e6
	if fresh := c.Scenarios(true); fresh[0].Phases[0].DurationMs == 1e6 {
		t.Errorf("catalog was modified through a returned copy")
	}

	if _, err := c.Lookup("nope", true); !errors.Is(err, catalog.ErrUnknownScenario) {
		t.Errorf("Lookup(nope) error = %v, want ErrUnknownScenario", err)
	}
	if _, err := c.Preset("nope"); !errors.Is(err, catalog.ErrUnknownPreset) {
		t.Errorf("Preset(nope) error = %v, want ErrUnknownPreset", err)
	}

	sel, err := c.Select([]string{"csr", "ssr"}, true)
	testingx.Must(t, err, "cannot select scenarios")
	if len(sel) != 2 || sel[0].ID != "csr" || sel[1].ID != "ssr" {
		t.Errorf("Select() returned the wrong scenarios")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.Scenario)
		want   error
	}{
		{"missing id", func(s *model.Scenario) { s.ID = "" }, catalog.ErrMissingID},
		{"no phases", func(s *model.Scenario) { s.Phases = nil }, catalog.ErrNoPhases},
		{"negative duration", func(s *model.Scenario) { s.Phases[0].DurationMs = -1 }, catalog.ErrPhaseBounds},
		{"phase after the end", func(s *model.Scenario) { s.Phases[0].DurationMs = 700 }, catalog.ErrPhaseBounds},
		{"unordered phases", func(s *model.Scenario) { s.Phases[1].StartMs = 0; s.Phases[0].StartMs = 10; s.Phases[0].DurationMs = 10 }, catalog.ErrPhaseOrder},
		{"unordered transitions", func(s *model.Scenario) { s.PageStates[0].AtMs = 700 }, catalog.ErrTransitionOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scenario600()
			tt.mutate(&s)
			if err := catalog.Validate(s); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
	if w := catalog.Warnings(model.Scenario{ID: "x", Metrics: model.Metrics{FCPMs: 5, LCPMs: 5}}); len(w) != 2 {
		t.Errorf("Warnings() = %v, want two warnings", w)
	}
}

func TestNew(t *testing.T) {
	s := scenario600()
	if _, err := catalog.New([]model.Scenario{s, s}, nil, nil); !errors.Is(err, catalog.ErrDuplicateID) {
		t.Errorf("New() with duplicate scenarios = %v", err)
	}
	if _, err := catalog.New([]model.Scenario{s}, map[string]model.Scenario{"other": s}, nil); !errors.Is(err, catalog.ErrUnknownScenario) {
		t.Errorf("New() with orphan variant = %v", err)
	}
	bad := []model.NetworkPreset{{ID: "zero", Multiplier: 0}}
	if _, err := catalog.New([]model.Scenario{s}, nil, bad); !errors.Is(err, catalog.ErrInvalidMultiplier) {
		t.Errorf("New() with zero multiplier = %v", err)
	}
}

const yamlCatalog = `
presets:
  - id: fast
    label: Fast
    multiplier: 1
  - id: satellite
    label: Satellite
    multiplier: 5
scenarios:
  - id: custom
    name: Custom
    shortName: C
    color: "#000000"
    phases:
      - {id: request, label: Request, startMs: 0, durationMs: 100, category: network}
      - {id: paint, label: Paint, startMs: 100, durationMs: 50, category: client}
    metrics: {ttfbMs: 100, fcpMs: 150, lcpMs: 150, ttiMs: 150}
    pageStates:
      - {atMs: 0, state: blank}
      - {atMs: 150, state: complete}
    cacheMiss:
      phases:
        - {id: request, label: Request, startMs: 0, durationMs: 300, category: network}
      metrics: {ttfbMs: 300, fcpMs: 300, lcpMs: 300, ttiMs: 300}
      pageStates:
        - {atMs: 0, state: blank}
        - {atMs: 300, state: complete}
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.yaml")
		testingx.Must(t, os.WriteFile(path, []byte(yamlCatalog), 0o644), "cannot write catalog")
		c, err := catalog.Load(path)
		testingx.Must(t, err, "cannot load catalog")
		p, err := c.Preset("satellite")
		testingx.Must(t, err, "missing preset")
		if p.Multiplier != 5 {
			t.Errorf("satellite multiplier = %v", p.Multiplier)
		}
		miss, err := c.Lookup("custom", false)
		testingx.Must(t, err, "missing scenario")
		if miss.Name != "Custom" || catalog.TotalDuration(miss) != 300 {
			t.Errorf("cache-miss variant = %+v", miss)
		}
	})

	t.Run("json uses the default presets", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.json")
		js := `{"scenarios":[{"id":"j","phases":[{"id":"a","startMs":0,"durationMs":10,"category":"server"}]}]}`
		testingx.Must(t, os.WriteFile(path, []byte(js), 0o644), "cannot write catalog")
		c, err := catalog.Load(path)
		testingx.Must(t, err, "cannot load catalog")
		if _, err := c.Preset("slow"); err != nil {
			t.Errorf("default presets not applied: %v", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.txt")
		testingx.Must(t, os.WriteFile(path, []byte("x"), 0o644), "cannot write catalog")
		if _, err := catalog.Load(path); err == nil {
			t.Errorf("Load() accepted a .txt file")
		}
	})
}
