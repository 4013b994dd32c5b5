// Package simulator implements the time-driven interpreter behind the
// rendering timeline: a small state machine (idle, running, completed)
// advanced by a frame loop that recomputes virtual time from an absolute
// origin on every tick.
package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-lab/go/memoryless"
	"github.com/m-lab/go/rtx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/projection"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

// ErrNoCatalog is returned by New when the configuration has no catalog.
var ErrNoCatalog = errors.New("simulator needs a catalog")

// Clock returns the current time. It is only used to compute elapsed time
// since the start of a run.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config is the configuration of a Simulator.
type Config struct {
	// Catalog provides the scenarios. Required.
	Catalog *catalog.Catalog

	// ScenarioIDs selects the scenarios to display, in order. Empty means
	// every scenario in the catalog.
	ScenarioIDs []string

	// Preset is the ID of the initial network preset. Defaults to
	// spec.DefaultPreset.
	Preset string

	// CacheHit selects the cache-hit variant of scenarios that have one.
	CacheHit bool

	// Speedup multiplies wall-clock time into virtual time. Defaults to
	// spec.DisplaySpeedup.
	Speedup float64

	// FrameInterval is the interval between frames. Defaults to
	// spec.FrameInterval.
	FrameInterval time.Duration

	// Clock defaults to the system clock.
	Clock Clock

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Stats counts the lifecycle events of a Simulator.
type Stats struct {
	RunsStarted   int
	RunsCompleted int
	Resets        int
}

// Simulator owns the virtual clock of one timeline comparison. It is safe
// for concurrent use.
type Simulator struct {
	cfg Config

	mu sync.Mutex

	// Requested configuration. It becomes active immediately while idle and
	// at the next Start otherwise.
	preset   model.NetworkPreset
	cacheHit bool

	// Active configuration and the scenarios scaled with it.
	activePreset   model.NetworkPreset
	activeCacheHit bool
	scenarios      []model.Scenario
	maxDuration    float64

	status  model.Status
	origin  time.Time
	elapsed float64

	// gen identifies the current run. Frame loops of older runs stop as
	// soon as they notice gen changed.
	gen    int
	cancel context.CancelFunc
	closed bool
	stats  Stats
}

// New returns an idle Simulator.
func New(cfg Config) (*Simulator, error) {
	if cfg.Catalog == nil {
		return nil, ErrNoCatalog
	}
	if cfg.Preset == "" {
		cfg.Preset = spec.DefaultPreset
	}
	if cfg.Speedup <= 0 {
		cfg.Speedup = spec.DisplaySpeedup
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = spec.FrameInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	preset, err := cfg.Catalog.Preset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	// Fail early on unknown scenario IDs.
	if _, err := cfg.Catalog.Select(cfg.ScenarioIDs, cfg.CacheHit); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:      cfg,
		preset:   preset,
		cacheHit: cfg.CacheHit,
		status:   model.StatusIdle,
	}
	s.applyConfig()
	return s, nil
}

// applyConfig makes the requested configuration active and rescales the
// scenarios from the immutable catalog. Must be called with mu held.
func (s *Simulator) applyConfig() {
	base, err := s.cfg.Catalog.Select(s.cfg.ScenarioIDs, s.cacheHit)
	// The IDs were checked by New and the catalog is immutable.
	rtx.PanicOnError(err, "cannot select scenarios")
	s.activePreset = s.preset
	s.activeCacheHit = s.cacheHit
	s.scenarios = catalog.Scale(base, s.preset)
	s.maxDuration = catalog.MaxDuration(s.scenarios)
}

// Start starts a new run from zero, stopping the current one if any, and
// returns a channel of snapshots. The channel receives a frame right away
// and then one per frame interval. A reader slower than the frame rate
// misses intermediate frames but always receives the final one. The channel
// is closed when the run completes, when it is reset or restarted, or when
// ctx is done.
func (s *Simulator) Start(ctx context.Context) <-chan model.Snapshot {
	dst := make(chan model.Snapshot, spec.FrameBufferSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(dst)
		return dst
	}
	s.stopLoop()
	s.applyConfig()
	s.gen++
	s.status = model.StatusRunning
	s.elapsed = 0
	s.origin = s.cfg.Clock.Now()
	s.stats.RunsStarted++
	gen := s.gen

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	first := s.snapshot()
	s.mu.Unlock()

	t, err := memoryless.NewTicker(loopCtx, memoryless.Config{
		Min:      s.cfg.FrameInterval,
		Expected: s.cfg.FrameInterval,
		Max:      s.cfg.FrameInterval,
	})
	// This can only fail for a non-positive interval, which New prevents.
	rtx.PanicOnError(err, "ticker creation failed (this should never happen)")

	s.cfg.Logger.Debug("simulation started", "preset", first.Preset,
		"cacheHit", first.CacheHit, "maxDurationMs", first.MaxDurationMs)
	publish(dst, first)
	go s.loop(loopCtx, gen, t, dst)
	return dst
}

func (s *Simulator) loop(ctx context.Context, gen int, t *memoryless.Ticker, dst chan model.Snapshot) {
	defer close(dst)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-t.C:
			if !ok {
				return
			}
			snap, current := s.advance(gen)
			if !current {
				return
			}
			publish(dst, snap)
			if snap.Status == model.StatusCompleted {
				s.cfg.Logger.Debug("simulation completed", "elapsedMs", snap.ElapsedMs)
				return
			}
		}
	}
}

// publish sends snap without blocking. When dst is full the oldest frame is
// dropped to make room. Only the frame loop sends on dst.
func publish(dst chan model.Snapshot, snap model.Snapshot) {
	select {
	case dst <- snap:
		return
	default:
	}
	select {
	case <-dst:
	default:
	}
	dst <- snap
}

// Step advances the current run by one frame and returns the resulting
// snapshot. Outside of a run it returns the current snapshot unchanged.
func (s *Simulator) Step() model.Snapshot {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	snap, _ := s.advance(gen)
	return snap
}

// advance recomputes elapsed time from the origin of run gen. It reports
// false when gen is no longer the current run.
func (s *Simulator) advance(gen int) (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.snapshot(), false
	}
	if s.status == model.StatusRunning {
		raw := s.cfg.Clock.Now().Sub(s.origin)
		elapsed := float64(raw) / float64(time.Millisecond) * s.cfg.Speedup
		if elapsed >= s.maxDuration {
			elapsed = s.maxDuration
			s.status = model.StatusCompleted
			s.stats.RunsCompleted++
		}
		s.elapsed = elapsed
	}
	return s.snapshot(), true
}

// Reset stops the current run, if any, and returns to idle with elapsed
// time zero. Resetting an idle simulator does nothing.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Simulator) reset() {
	if s.status == model.StatusIdle {
		return
	}
	s.stopLoop()
	s.gen++
	s.status = model.StatusIdle
	s.elapsed = 0
	s.stats.Resets++
	s.applyConfig()
	s.cfg.Logger.Debug("simulation reset")
}

func (s *Simulator) stopLoop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetNetworkPreset selects the network preset by ID. A completed run is
// reset. While idle the preset applies immediately, while running it applies
// from the next Start and the current run keeps its timings.
func (s *Simulator) SetNetworkPreset(id string) error {
	p, err := s.cfg.Catalog.Preset(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = p
	s.configChanged()
	return nil
}

// SetCacheHit toggles the cache-hit variant. It follows the same policy as
// SetNetworkPreset.
func (s *Simulator) SetCacheHit(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheHit = hit
	s.configChanged()
}

func (s *Simulator) configChanged() {
	switch s.status {
	case model.StatusCompleted:
		s.reset()
	case model.StatusIdle:
		s.applyConfig()
	case model.StatusRunning:
		s.cfg.Logger.Debug("configuration change deferred to next run",
			"preset", s.preset.ID, "cacheHit", s.cacheHit)
	}
}

// Snapshot returns the projection of the simulator at its last frame.
func (s *Simulator) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Simulator) snapshot() model.Snapshot {
	snap := projection.Project(s.scenarios, s.elapsed, s.status)
	snap.Preset = s.activePreset.ID
	snap.CacheHit = s.activeCacheHit
	return snap
}

// Status returns the current status.
func (s *Simulator) Status() model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Scenarios returns the scenarios of the active configuration, scaled by
// the active network preset.
func (s *Simulator) Scenarios() []model.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Scenario, len(s.scenarios))
	for i := range s.scenarios {
		out[i] = s.scenarios[i].Clone()
	}
	return out
}

// Stats returns the lifecycle counters.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close stops any frame loop. Start on a closed simulator returns a closed
// channel.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLoop()
	s.gen++
	s.closed = true
}
