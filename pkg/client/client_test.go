package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-lab/go/testingx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/handler"
	"github.com/m-lab/rendersim/internal/session"
	benchmodel "github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

func TestNew(t *testing.T) {
	t.Run("new clients have the expected name and version", func(t *testing.T) {
		c := New("test", "v1.0.0", Config{})
		if c.ClientName != "test" || c.ClientVersion != "v1.0.0" {
			t.Errorf("client.New() returned client with wrong name/version")
		}
		if c.config.Scheme != DefaultScheme || c.config.Runs != DefaultRuns || c.config.Emitter == nil {
			t.Errorf("client.New() did not apply defaults: %+v", c.config)
		}
	})
	t.Run("empty name panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("client.New() with empty name did not panic")
			}
		}()
		New("", "v1.0.0", Config{})
	})
}

func Test_makeUserAgent(t *testing.T) {
	t.Run("generate requested user agent", func(t *testing.T) {
		got := makeUserAgent("clientname", "clientversion")
		expected := fmt.Sprintf("%s/%s %s/%s", "clientname", "clientversion",
			libraryName, libraryVersion)
		if got != expected {
			t.Errorf("makeUserAgent() = %s, want %s", got, expected)
		}
	})
}

func TestClient_connect(t *testing.T) {
	c := New("test", "version", Config{
		MeasurementID: "mid-1",
		Preset:        "slow",
		CacheHit:      false,
		ScenarioIDs:   []string{"ssr", "isr"},
	})

	t.Run("connect sends qs parameters and headers", func(t *testing.T) {
		upgrader := websocket.Upgrader{}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wsConn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer wsConn.Close()

			expected := map[string]string{
				"mid":                    "mid-1",
				"preset":                 "slow",
				"cache":                  "false",
				"client_arch":            runtime.GOARCH,
				"client_library_name":    libraryName,
				"client_library_version": libraryVersion,
				"client_os":              runtime.GOOS,
				"client_name":            c.ClientName,
				"client_version":         c.ClientVersion,
			}
			for k, v := range expected {
				if got := r.URL.Query().Get(k); got != v {
					t.Errorf("expected qs parameter %s = %s, got %s", k, v, got)
				}
			}
			if got := r.URL.Query()["scenario"]; len(got) != 2 || got[0] != "ssr" || got[1] != "isr" {
				t.Errorf("expected scenarios [ssr isr], got %v", got)
			}
			if got := r.Header.Get("Sec-WebSocket-Protocol"); got != spec.SecWebSocketProtocol {
				t.Errorf("expected Sec-WebSocket-Protocol = %s, got %s", spec.SecWebSocketProtocol, got)
			}
			if got := r.Header.Get("User-Agent"); got != makeUserAgent(c.ClientName, c.ClientVersion) {
				t.Errorf("unexpected User-Agent %s", got)
			}
		})
		srv := httptest.NewServer(handler)
		defer srv.Close()

		u, err := url.Parse(srv.URL)
		testingx.Must(t, err, "cannot parse test server URL")
		c.config.Server = u.Host
		c.config.Scheme = "ws"
		conn, err := c.connect(context.Background(), c.serviceURL("ws", spec.SimulatePath))
		testingx.Must(t, err, "connect failed")
		conn.Close()
	})
}

type recorder struct {
	HumanReadable
	snapshots int
	completed *model.Snapshot
	runs      []benchmodel.BenchmarkRun
	errs      []error
}

func (r *recorder) OnSnapshot(s model.Snapshot)              { r.snapshots++ }
func (r *recorder) OnComplete(s model.Snapshot)              { r.completed = &s }
func (r *recorder) OnBenchmark(run benchmodel.BenchmarkRun) { r.runs = append(r.runs, run) }
func (r *recorder) OnError(err error)                        { r.errs = append(r.errs, err) }

func setupServer(t *testing.T) (*httptest.Server, *session.Store) {
	sessions := session.NewStore(t.TempDir(), time.Minute)
	t.Cleanup(sessions.Close)
	h := handler.New(t.TempDir(), catalog.Default(), sessions, nil)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, sessions
}

func TestClient_Simulate(t *testing.T) {
	srv, _ := setupServer(t)
	rec := &recorder{}
	c := New("test", "version", Config{
		Server:        strings.TrimPrefix(srv.URL, "http://"),
		Scheme:        "ws",
		MeasurementID: "sim-mid",
		Preset:        "fast",
		CacheHit:      true,
		ScenarioIDs:   []string{"ssr", "csr"},
		Emitter:       rec,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	final, err := c.Simulate(ctx)
	testingx.Must(t, err, "simulation failed")
	if final.Status != model.StatusCompleted {
		t.Errorf("final status = %s, want completed", final.Status)
	}
	if final.ElapsedMs != final.MaxDurationMs {
		t.Errorf("final elapsed = %v, want %v", final.ElapsedMs, final.MaxDurationMs)
	}
	if len(final.Scenarios) != 2 {
		t.Errorf("final frame has %d scenarios, want 2", len(final.Scenarios))
	}
	if rec.completed == nil || rec.snapshots < 2 {
		t.Errorf("emitter saw %d snapshots, completed=%v", rec.snapshots, rec.completed != nil)
	}
}

func TestClient_Benchmark(t *testing.T) {
	srv, sessions := setupServer(t)
	rec := &recorder{}
	c := New("test", "version", Config{
		Server:        strings.TrimPrefix(srv.URL, "http://"),
		Scheme:        "ws",
		MeasurementID: "bench-mid",
		ItemCount:     10,
		Runs:          2,
		Emitter:       rec,
	})

	runs, err := c.Benchmark(context.Background())
	testingx.Must(t, err, "benchmark failed")
	if len(runs) != 2 || len(rec.runs) != 2 {
		t.Fatalf("got %d runs (%d emitted), want 2", len(runs), len(rec.runs))
	}
	for i, run := range runs {
		if run.RunID != int64(i+1) || run.ItemCount != 10 || len(run.Results) != len(benchmodel.Strategies) {
			t.Errorf("run %d = %+v", i, run)
		}
	}
	if _, ok := sessions.Get("bench-mid"); ok {
		t.Errorf("session still open after Benchmark")
	}
}

func TestClient_BenchmarkError(t *testing.T) {
	srv, _ := setupServer(t)
	rec := &recorder{}
	c := New("test", "version", Config{
		Server:  strings.TrimPrefix(srv.URL, "http://"),
		Scheme:  "ws",
		Emitter: rec,
	})
	// No measurement ID: the server rejects the request.
	if _, err := c.Benchmark(context.Background()); err == nil {
		t.Errorf("Benchmark() without mid succeeded")
	}
	if len(rec.errs) != 1 {
		t.Errorf("emitter saw %d errors, want 1", len(rec.errs))
	}
}
