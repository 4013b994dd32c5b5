package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/m-lab/rendersim/pkg/client"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

const clientName = "rendersim-client-cli"

var clientVersion = "v0.1.0"

var (
	flagServer    = flag.String("server", "localhost:8080", "Server address")
	flagScheme    = flag.String("scheme", "ws", "Websocket scheme (wss or ws)")
	flagMID       = flag.String("mid", "", "Measurement ID (random if empty)")
	flagPreset    = flag.String("preset", spec.DefaultPreset, "Network preset")
	flagCacheHit  = flag.Bool("cache", true, "Show the cache-hit variant of cached scenarios")
	flagScenarios = flagx.StringArray{}
	flagItems     = flag.Int("items", 50, "Benchmark item count")
	flagSlow      = flag.Bool("slow", false, "Request slow-mode reveal delays")
	flagRuns      = flag.Int("runs", client.DefaultRuns, "Number of benchmark runs")
	flagTests     = flag.String("tests", "simulate,bench", "Comma-separated tests to run (simulate, bench)")
	flagTimeout   = flag.Duration("timeout", time.Minute, "Timeout for the whole run")
	flagNoVerify  = flag.Bool("no-verify", false, "Skip TLS certificate verification")
	flagDebug     = flag.Bool("debug", false, "Print debug output")
)

func init() {
	flag.Var(&flagScenarios, "scenario", "Scenario to simulate (repeatable, all if empty)")
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")

	if *flagDebug {
		log.SetLevel(log.DebugLevel)
	}
	mid := *flagMID
	if mid == "" {
		mid = uuid.NewString()
	}

	cl := client.New(clientName, clientVersion, client.Config{
		Server:        *flagServer,
		Scheme:        *flagScheme,
		MeasurementID: mid,
		Preset:        *flagPreset,
		CacheHit:      *flagCacheHit,
		ScenarioIDs:   flagScenarios,
		ItemCount:     *flagItems,
		SlowMode:      *flagSlow,
		Runs:          *flagRuns,
		Emitter:       client.HumanReadable{Debug: *flagDebug},
		NoVerify:      *flagNoVerify,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	failed := false
	for _, test := range strings.Split(*flagTests, ",") {
		var err error
		switch strings.TrimSpace(test) {
		case "simulate":
			_, err = cl.Simulate(ctx)
		case "bench":
			_, err = cl.Benchmark(ctx)
		default:
			log.Error("unknown test", "test", test)
			failed = true
			continue
		}
		if err != nil {
			log.Error("test failed", "test", test, "mid", mid, "error", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
