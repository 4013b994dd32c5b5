package main

import (
	"context"
	"crypto/tls"
	"flag"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-lab/access/controller"
	"github.com/m-lab/access/token"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/handler"
	"github.com/m-lab/rendersim/internal/history"
	"github.com/m-lab/rendersim/internal/session"
	benchspec "github.com/m-lab/rendersim/pkg/bench1/spec"
	"github.com/m-lab/rendersim/pkg/render1/spec"
)

var (
	flagCertFile          = flag.String("cert", "", "The file with server certificates in PEM format.")
	flagKeyFile           = flag.String("key", "", "The file with server key in PEM format.")
	flagEndpoint          = flag.String("wss_addr", ":4443", "Listen address/port for TLS connections")
	flagEndpointCleartext = flag.String("ws_addr", ":8080", "Listen address/port for cleartext connections")
	flagDataDir           = flag.String("datadir", "./data", "Directory to store data in")
	flagCatalog           = flag.String("catalog", "", "YAML or JSON scenario catalog (built-in catalog if empty)")
	flagSessionTTL        = flag.Duration("session.ttl", benchspec.DefaultSessionCacheTTL, "Time after creation at which a benchmark session expires and is archived")
	flagHistoryDB         = flag.String("history.db", "", "SQLite database for benchmark history (disabled if empty)")
	tokenVerifyKey        = flagx.FileBytesArray{}
	tokenVerify           bool
	tokenMachine          string

	// Context for the whole program.
	ctx, cancel = context.WithCancel(context.Background())
)

func init() {
	flag.Var(&tokenVerifyKey, "token.verify-key", "Public key for verifying access tokens")
	flag.BoolVar(&tokenVerify, "token.verify", false, "Verify access tokens")
	flag.StringVar(&tokenMachine, "token.machine", "", "Use given machine name to verify token claims")
}

// httpServer creates a new *http.Server with explicit Read and Write
// timeouts, the provided address and handler, and an empty TLS configuration.
func httpServer(addr string, handler http.Handler) *http.Server {
	tlsconf := &tls.Config{}
	return &http.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: tlsconf,
		// NOTE: WebSocket simulations outlive a single request/response, so
		// only the header read is bounded here. The render1 protocol sets its
		// own deadlines on the upgraded connection.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}

func loadCatalog(path string) *catalog.Catalog {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(path)
	rtx.Must(err, "cannot load catalog from %s", path)
	return cat
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")

	// Initialize logging and metrics.
	log.SetReportCaller(true)
	log.SetReportTimestamp(true)
	log.SetLevel(log.DebugLevel)

	promSrv := prometheusx.MustServeMetrics()
	defer promSrv.Close()

	v, err := token.NewVerifier(tokenVerifyKey.Get()...)
	if (tokenVerify) && err != nil {
		rtx.Must(err, "Failed to load verifier")
	}
	// Enforce tokens on simulations and benchmark runs. Catalog reads are
	// public.
	txPaths := controller.Paths{
		spec.SimulatePath:       true,
		benchspec.BenchmarkPath: true,
	}
	tokenPaths := controller.Paths{
		spec.SimulatePath:       true,
		benchspec.BenchmarkPath: true,
	}
	acm, _ := controller.Setup(ctx, v, tokenVerify, tokenMachine,
		txPaths, tokenPaths)

	sessions := session.NewStore(*flagDataDir, *flagSessionTTL)
	defer sessions.Close()

	var hist *history.Store
	if *flagHistoryDB != "" {
		hist, err = history.Open(*flagHistoryDB)
		rtx.Must(err, "cannot open history database")
		defer hist.Close()
	}

	h := handler.New(*flagDataDir, loadCatalog(*flagCatalog), sessions, hist)
	router := h.Router()
	cleartextServer := httpServer(*flagEndpointCleartext, acm.Then(router))

	log.Info("About to listen for ws tests", "endpoint", *flagEndpointCleartext)

	l, err := net.Listen("tcp", cleartextServer.Addr)
	rtx.Must(err, "failed to create listener")
	defer l.Close()

	go func() {
		err := cleartextServer.Serve(l)
		rtx.Must(err, "Could not start cleartext server")
		defer cleartextServer.Close()
	}()

	// Only start TLS-based services if certs and keys are provided
	if *flagCertFile != "" && *flagKeyFile != "" {
		tlsServer := httpServer(*flagEndpoint, acm.Then(router))
		log.Info("About to listen for wss tests", "endpoint", *flagEndpoint)

		l, err := net.Listen("tcp", tlsServer.Addr)
		rtx.Must(err, "failed to create listener")
		defer l.Close()

		go func() {
			err := tlsServer.ServeTLS(l, *flagCertFile, *flagKeyFile)
			rtx.Must(err, "Could not start TLS server")
			defer tlsServer.Close()
		}()
	}

	<-ctx.Done()
	cancel()
}
