// Package session keeps the benchmark harness of each client between
// requests and archives the session when it expires.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jellydator/ttlcache/v3"
	"github.com/m-lab/go/prometheusx"

	"github.com/m-lab/rendersim/internal/bench"
	"github.com/m-lab/rendersim/internal/persistence"
	"github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/version"
)

// Session is the benchmark state of one measurement ID.
type Session struct {
	ID        string
	StartTime time.Time
	Harness   *bench.Harness

	mu     sync.Mutex
	client string
	runs   []model.BenchmarkRun
}

// New returns a session with a fresh harness.
func New(id string) *Session {
	return &Session{
		ID:        id,
		StartTime: time.Now(),
		Harness:   bench.NewHarness(),
	}
}

// AddRun appends a completed run to the session history.
func (s *Session) AddRun(run model.BenchmarkRun, client string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	s.client = client
}

// Runs returns the number of runs recorded so far.
func (s *Session) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Archive returns the archival record of this session.
func (s *Session) Archive() model.BenchmarkResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.BenchmarkResult{
		GitShortCommit: prometheusx.GitShortCommit,
		Version:        version.Version,
		ID:             s.ID,
		Client:         s.client,
		StartTime:      s.StartTime,
		Runs:           append([]model.BenchmarkRun(nil), s.runs...),
	}
}

// Store is a TTL cache of sessions. Sessions expire a fixed time after
// creation; on expiry or deletion, sessions with at least one run are
// written to the data directory.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
	mu    sync.Mutex
}

// NewStore returns a Store archiving to dir and starts its expiration loop.
func NewStore(dir string, ttl time.Duration) *Store {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Session](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Session](),
	)
	cache.OnEviction(func(ctx context.Context,
		er ttlcache.EvictionReason,
		i *ttlcache.Item[string, *Session]) {
		log.Debug("Session expired", "id", i.Key(), "reason", er)
		archive := i.Value().Archive()
		if len(archive.Runs) == 0 {
			return
		}
		archive.EndTime = time.Now()
		_, err := persistence.WriteDataFile(dir, "bench1", "session", archive.ID, archive)
		if err != nil {
			log.Error("failed to write benchmark result", "mid", archive.ID, "error", err)
		}
	})
	go cache.Start()
	return &Store{cache: cache}
}

// GetOrCreate returns the session for mid, creating it if needed.
func (st *Store) GetOrCreate(mid string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if item := st.cache.Get(mid); item != nil {
		return item.Value()
	}
	s := New(mid)
	st.cache.Set(mid, s, ttlcache.DefaultTTL)
	log.Debug("session created", "id", mid)
	return s
}

// Get returns the session for mid, if any.
func (st *Store) Get(mid string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	item := st.cache.Get(mid)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Delete removes and archives the session for mid.
func (st *Store) Delete(mid string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.Delete(mid)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}

// Close archives every live session and stops the expiration loop.
func (st *Store) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.DeleteAll()
	st.cache.Stop()
}
