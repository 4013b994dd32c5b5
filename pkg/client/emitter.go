package client

import (
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/m-lab/rendersim/internal/projection"
	benchmodel "github.com/m-lab/rendersim/pkg/bench1/model"
	"github.com/m-lab/rendersim/pkg/render1/model"
)

// Emitter is an interface for emitting results.
type Emitter interface {
	// OnStart is called before connecting to the server for a test.
	OnStart(server, test string)
	// OnConnect is called when the WebSocket connection is established.
	OnConnect(server string)
	// OnSnapshot is called on every received simulation frame.
	OnSnapshot(s model.Snapshot)
	// OnComplete is called with the final frame of a simulation.
	OnComplete(s model.Snapshot)
	// OnBenchmark is called after each benchmark run.
	OnBenchmark(run benchmodel.BenchmarkRun)
	// OnError is called on errors.
	OnError(err error)
	// OnDebug is called to print debug information.
	OnDebug(msg string)
}

// HumanReadable prints human-readable output to stdout.
// It can be configured to include debug output, too.
type HumanReadable struct {
	Debug bool
}

// OnStart prints the test and server hostname.
func (HumanReadable) OnStart(server, test string) {
	fmt.Printf("Starting %s (server: %s)\n", test, server)
}

// OnConnect is called when the connection to the server is established.
func (HumanReadable) OnConnect(server string) {
	fmt.Printf("Connected to %s\n", server)
}

// OnSnapshot is called on every frame.
func (HumanReadable) OnSnapshot(s model.Snapshot) {
	// NOTHING - don't print individual frames in this Emitter.
}

// OnComplete prints the final state of every scenario.
func (HumanReadable) OnComplete(s model.Snapshot) {
	fmt.Printf("Simulation complete (preset: %s, cache hit: %t)\n", s.Preset, s.CacheHit)
	for _, v := range s.Scenarios {
		fmt.Printf("  %-28s total %8s  width %5.1f%%  page %s\n",
			v.Name, projection.FormatMs(v.TotalMs), v.WidthPct, v.PageState)
	}
}

// OnBenchmark prints the ranked results of a run.
func (HumanReadable) OnBenchmark(run benchmodel.BenchmarkRun) {
	fmt.Printf("Run #%d (%d items)\n", run.RunID, run.ItemCount)
	for _, r := range run.Results {
		fmt.Printf("  %d. %-10s %8.3fms  x%.2f\n", r.Rank, r.Strategy, r.RenderMs, r.Speedup)
	}
}

// OnError is called on errors.
func (HumanReadable) OnError(err error) {
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		fmt.Println(err)
	}
}

// OnDebug is called to print debug information.
func (e HumanReadable) OnDebug(msg string) {
	if e.Debug {
		fmt.Printf("DEBUG: %s\n", msg)
	}
}

// Checks that HumanReadable implements Emitter.
var _ Emitter = &HumanReadable{}
