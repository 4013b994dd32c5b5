// Package catalog holds the immutable scenario catalog of the timeline
// simulator, together with the pure timing transforms applied to it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/m-lab/rendersim/pkg/render1/model"
)

// Catalog is a validated, read-only set of scenarios and network presets.
// Every accessor returns copies, so callers can never alter the catalog.
type Catalog struct {
	scenarios []model.Scenario
	cacheMiss map[string]model.Scenario
	presets   []model.NetworkPreset
}

// New validates scenarios, their cache-miss variants and presets and returns
// a Catalog holding private copies of them.
func New(scenarios []model.Scenario, cacheMiss map[string]model.Scenario,
	presets []model.NetworkPreset) (*Catalog, error) {
	c := &Catalog{
		cacheMiss: make(map[string]model.Scenario, len(cacheMiss)),
	}
	seen := map[string]struct{}{}
	for _, s := range scenarios {
		if err := Validate(s); err != nil {
			return nil, err
		}
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("scenario %s: %w", s.ID, ErrDuplicateID)
		}
		seen[s.ID] = struct{}{}
		for _, w := range Warnings(s) {
			log.Warn("catalog data", "warning", w)
		}
		c.scenarios = append(c.scenarios, s.Clone())
	}
	for id, s := range cacheMiss {
		if _, ok := seen[id]; !ok {
			return nil, fmt.Errorf("cache-miss variant %s: %w", id, ErrUnknownScenario)
		}
		if err := Validate(s); err != nil {
			return nil, err
		}
		c.cacheMiss[id] = s.Clone()
	}
	seenPresets := map[string]struct{}{}
	for _, p := range presets {
		if err := validatePreset(p); err != nil {
			return nil, err
		}
		if _, ok := seenPresets[p.ID]; ok {
			return nil, fmt.Errorf("preset %s: %w", p.ID, ErrDuplicateID)
		}
		seenPresets[p.ID] = struct{}{}
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultScenarios, defaultCacheMiss, defaultPresets)
	if err != nil {
		// The built-in data is covered by tests.
		panic(err)
	}
	return c
}

// Scenarios returns a copy of every scenario in catalog order. When cacheHit
// is false, scenarios that have a cache-miss variant are replaced by it.
func (c *Catalog) Scenarios(cacheHit bool) []model.Scenario {
	out := make([]model.Scenario, 0, len(c.scenarios))
	for _, s := range c.scenarios {
		out = append(out, c.variant(s, cacheHit).Clone())
	}
	return out
}

// Lookup returns a copy of the scenario with the given ID.
func (c *Catalog) Lookup(id string, cacheHit bool) (model.Scenario, error) {
	for _, s := range c.scenarios {
		if s.ID == id {
			return c.variant(s, cacheHit).Clone(), nil
		}
	}
	return model.Scenario{}, fmt.Errorf("%s: %w", id, ErrUnknownScenario)
}

// Select returns copies of the scenarios with the given IDs, in the order
// requested. An empty ids slice selects the whole catalog.
func (c *Catalog) Select(ids []string, cacheHit bool) ([]model.Scenario, error) {
	if len(ids) == 0 {
		return c.Scenarios(cacheHit), nil
	}
	out := make([]model.Scenario, 0, len(ids))
	for _, id := range ids {
		s, err := c.Lookup(id, cacheHit)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// HasCacheVariant reports whether the scenario changes with the cache-hit
// toggle.
func (c *Catalog) HasCacheVariant(id string) bool {
	_, ok := c.cacheMiss[id]
	return ok
}

func (c *Catalog) variant(s model.Scenario, cacheHit bool) model.Scenario {
	if cacheHit {
		return s
	}
	if miss, ok := c.cacheMiss[s.ID]; ok {
		return miss
	}
	return s
}

// Presets returns the network presets in catalog order.
func (c *Catalog) Presets() []model.NetworkPreset {
	return append([]model.NetworkPreset(nil), c.presets...)
}

// Preset returns the network preset with the given ID.
func (c *Catalog) Preset(id string) (model.NetworkPreset, error) {
	for _, p := range c.presets {
		if p.ID == id {
			return p, nil
		}
	}
	return model.NetworkPreset{}, fmt.Errorf("%s: %w", id, ErrUnknownPreset)
}

// fileScenario is the on-disk form of a scenario. CacheMiss optionally holds
// the phases, metrics and page states shown when the cache-hit toggle is off.
type fileScenario struct {
	model.Scenario `yaml:",inline"`

	CacheMiss *model.Scenario `json:"cacheMiss,omitempty" yaml:"cacheMiss,omitempty"`
}

type file struct {
	Presets   []model.NetworkPreset `json:"presets" yaml:"presets"`
	Scenarios []fileScenario        `json:"scenarios" yaml:"scenarios"`
}

// Load reads a catalog from a YAML (.yaml, .yml) or JSON file. When the file
// declares no presets, the built-in ones are used.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse catalog %s: %w", path, err)
	}

	scenarios := make([]model.Scenario, 0, len(f.Scenarios))
	cacheMiss := map[string]model.Scenario{}
	for _, fs := range f.Scenarios {
		scenarios = append(scenarios, fs.Scenario)
		if fs.CacheMiss == nil {
			continue
		}
		miss := inherit(*fs.CacheMiss, fs.Scenario)
		cacheMiss[fs.ID] = miss
	}
	presets := f.Presets
	if len(presets) == 0 {
		presets = defaultPresets
	}
	log.Debug("catalog loaded", "path", path, "scenarios", len(scenarios),
		"variants", len(cacheMiss), "presets", len(presets))
	return New(scenarios, cacheMiss, presets)
}

// inherit fills the descriptive fields of a cache-miss variant from its
// parent scenario.
func inherit(miss, parent model.Scenario) model.Scenario {
	miss.ID = parent.ID
	if miss.Name == "" {
		miss.Name = parent.Name
	}
	if miss.ShortName == "" {
		miss.ShortName = parent.ShortName
	}
	if miss.Description == "" {
		miss.Description = parent.Description
	}
	if miss.Color == "" {
		miss.Color = parent.Color
	}
	return miss
}
