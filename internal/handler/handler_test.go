package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/go/testingx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/handler"
	"github.com/m-lab/rendersim/internal/history"
	"github.com/m-lab/rendersim/internal/persistence"
	"github.com/m-lab/rendersim/internal/session"
	benchmodel "github.com/m-lab/rendersim/pkg/bench1/model"
	benchspec "github.com/m-lab/rendersim/pkg/bench1/spec"
	"github.com/m-lab/rendersim/pkg/render1"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

func setup(t *testing.T, withHistory bool) (*httptest.Server, string) {
	dir := t.TempDir()
	sessions := session.NewStore(dir, time.Minute)
	t.Cleanup(sessions.Close)
	var hist *history.Store
	if withHistory {
		var err error
		hist, err = history.Open(filepath.Join(dir, "history.sqlite3"))
		testingx.Must(t, err, "cannot open history")
		t.Cleanup(func() { hist.Close() })
	}
	h := handler.New(dir, catalog.Default(), sessions, hist)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, dir
}

func get(t *testing.T, u string, v any) int {
	resp, err := http.Get(u)
	testingx.Must(t, err, "request failed")
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		testingx.Must(t, json.NewDecoder(resp.Body).Decode(v), "cannot decode response")
	}
	return resp.StatusCode
}

func TestHandler_Scenarios(t *testing.T) {
	srv, _ := setup(t, false)

	var fast, slow model.ScenarioList
	if code := get(t, srv.URL+spec.ScenariosPath, &fast); code != http.StatusOK {
		t.Fatalf("GET scenarios = %d", code)
	}
	if fast.Preset != spec.DefaultPreset || !fast.CacheHit || len(fast.Scenarios) != 5 || len(fast.Presets) < 2 {
		t.Errorf("default scenario list = %+v", fast)
	}
	if code := get(t, srv.URL+spec.ScenariosPath+"?preset=slow&cache=false&scenario=isr", &slow); code != http.StatusOK {
		t.Fatalf("GET slow scenarios = %d", code)
	}
	if len(slow.Scenarios) != 1 || slow.MaxDurationMs <= 540 {
		t.Errorf("slow isr list = %+v", slow)
	}

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"unknown preset", spec.ScenariosPath + "?preset=dialup", http.StatusBadRequest},
		{"invalid cache", spec.ScenariosPath + "?cache=maybe", http.StatusBadRequest},
		{"unknown scenario filter", spec.ScenariosPath + "?scenario=php", http.StatusBadRequest},
		{"single scenario", "/render/v1/scenarios/csr", http.StatusOK},
		{"unknown single scenario", "/render/v1/scenarios/php", http.StatusNotFound},
		{"compare default metric", spec.ComparePath, http.StatusOK},
		{"compare unknown metric", spec.ComparePath + "?metric=cls", http.StatusBadRequest},
		{"simulate without mid", spec.SimulatePath, http.StatusBadRequest},
		{"simulate with unknown scenario", spec.SimulatePath + "?mid=x&scenario=php", http.StatusBadRequest},
		{"simulate without upgrade", spec.SimulatePath + "?mid=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := get(t, srv.URL+tt.target, nil); code != tt.code {
				t.Errorf("GET %s = %d, want %d", tt.target, code, tt.code)
			}
		})
	}

	var bars []model.ComparisonBar
	get(t, srv.URL+spec.ComparePath+"?metric=ttfb&scenario=ssr&scenario=ssg", &bars)
	if len(bars) != 2 || bars[0].WidthPct != 100 || bars[1].Rating != model.RatingGood {
		t.Errorf("compare bars = %+v", bars)
	}
}

func TestHandler_Simulate(t *testing.T) {
	srv, dir := setup(t, false)

	u, err := url.Parse(srv.URL + spec.SimulatePath + "?mid=test-mid&scenario=ssg")
	rtx.Must(err, "cannot parse URL")
	u.Scheme = "ws"
	headers := http.Header{}
	headers.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), headers)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	proto := render1.New(conn)
	snapshots, errCh := proto.ReceiverLoop(context.Background())
	rtx.Must(proto.SendControl(model.ControlMessage{Type: model.ControlStart}), "cannot start")

	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case snap := <-snapshots:
			done = snap.Status == model.StatusCompleted
		case err := <-errCh:
			t.Fatalf("receiver failed: %v", err)
		case <-timeout:
			t.Fatalf("simulation did not complete")
		}
	}
	proto.Close()
	conn.Close()

	// The session is archived once the server notices the closed connection.
	var files []string
	var result model.SimulationResult
	var readErr error
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
		files, _ = filepath.Glob(filepath.Join(dir, "render1", "*", "*", "*", "*.json.gz"))
		if len(files) == 0 {
			continue
		}
		if readErr = persistence.ReadDataFile(files[0], &result); readErr == nil {
			break
		}
	}
	if len(files) != 1 {
		t.Fatalf("archived files = %v", files)
	}
	testingx.Must(t, readErr, "cannot read archive")
	if result.ID != "test-mid" || result.RunsStarted != 1 || result.RunsCompleted != 1 ||
		strings.Join(result.ScenarioIDs, ",") != "ssg" {
		t.Errorf("archived result = %+v", result)
	}
}

func TestHandler_Benchmark(t *testing.T) {
	srv, _ := setup(t, true)

	var run benchmodel.BenchmarkRun
	if code := get(t, srv.URL+benchspec.BenchmarkPath+"?mid=b1&items=5&slow=true", &run); code != http.StatusOK {
		t.Fatalf("GET benchmark = %d", code)
	}
	if run.RunID != 1 || run.ItemCount != 5 || !run.Ready || len(run.Results) != 4 || len(run.RevealDelaysMs) != 4 {
		t.Errorf("first run = %+v", run)
	}
	get(t, srv.URL+benchspec.BenchmarkPath+"?mid=b1", &run)
	if run.RunID != 2 || run.ItemCount != 5 || run.SlowMode {
		t.Errorf("second run = %+v", run)
	}

	var averages []history.Average
	if code := get(t, srv.URL+benchspec.HistoryPath+"?items=5", &averages); code != http.StatusOK {
		t.Fatalf("GET history = %d", code)
	}
	if len(averages) != 4 || averages[0].Runs != 2 {
		t.Errorf("history = %+v", averages)
	}

	var result benchmodel.BenchmarkRun
	if code := get(t, srv.URL+benchspec.ResultPath+"?mid=b1", &result); code != http.StatusOK {
		t.Fatalf("GET result = %d", code)
	}
	if result.RunID != 2 {
		t.Errorf("result = %+v", result)
	}
	// Results close the session.
	if code := get(t, srv.URL+benchspec.ResultPath+"?mid=b1", nil); code != http.StatusNotFound {
		t.Errorf("second GET result = %d", code)
	}

	tests := []struct {
		target string
		code   int
	}{
		{benchspec.BenchmarkPath, http.StatusBadRequest},
		{benchspec.BenchmarkPath + "?mid=x&items=many", http.StatusBadRequest},
		{benchspec.BenchmarkPath + "?mid=x&slow=maybe", http.StatusBadRequest},
		{benchspec.ResultPath, http.StatusBadRequest},
		{benchspec.HistoryPath + "?items=many", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code := get(t, srv.URL+tt.target, nil); code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.target, code, tt.code)
		}
	}
}

func TestHandler_HistoryDisabled(t *testing.T) {
	srv, _ := setup(t, false)
	if code := get(t, srv.URL+benchspec.HistoryPath, nil); code != http.StatusNotFound {
		t.Errorf("GET history without database = %d", code)
	}
}

func TestGetMIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?mid=abc", nil)
	if mid, err := handler.GetMIDFromRequest(req); err != nil || mid != "abc" {
		t.Errorf("GetMIDFromRequest() = %q, %v", mid, err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := handler.GetMIDFromRequest(req); err == nil {
		t.Errorf("GetMIDFromRequest() without mid succeeded")
	}
}
