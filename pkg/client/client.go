// Package client implements a client for the rendersim server: it streams
// a timeline simulation over WebSocket and runs remote render benchmarks.
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	benchmodel "github.com/m-lab/rendersim/pkg/bench1/model"
	benchspec "github.com/m-lab/rendersim/pkg/bench1/spec"
	"github.com/m-lab/rendersim/pkg/render1"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
	"github.com/m-lab/rendersim/pkg/version"
)

const (
	// DefaultWebSocketHandshakeTimeout is the default timeout used by the client
	// for the WebSocket handshake.
	DefaultWebSocketHandshakeTimeout = 5 * time.Second

	// DefaultScheme is the default WebSocket scheme for a new Client.
	DefaultScheme = "wss"

	// DefaultRuns is the default number of benchmark runs.
	DefaultRuns = 4

	libraryName = "rendersim-client"
)

var libraryVersion = version.Version

// Client is a client for the render1 and bench1 endpoints.
type Client struct {
	// ClientName is the name of the client sent to the server as part of the user-agent.
	ClientName string
	// ClientVersion is the version of the client sent to the server as part of the user-agent.
	ClientVersion string

	config Config

	dialer     *websocket.Dialer
	httpClient *http.Client
}

// makeUserAgent creates the user agent string.
func makeUserAgent(clientName, clientVersion string) string {
	return clientName + "/" + clientVersion + " " + libraryName + "/" + libraryVersion
}

// New returns a new Client with the provided client name, version and config.
// It panics if clientName or clientVersion are empty.
func New(clientName, clientVersion string, config Config) *Client {
	if clientName == "" || clientVersion == "" {
		panic("client name and version must be non-empty")
	}
	if config.Scheme == "" {
		config.Scheme = DefaultScheme
	}
	if config.Runs <= 0 {
		config.Runs = DefaultRuns
	}
	if config.Emitter == nil {
		config.Emitter = HumanReadable{}
	}
	tlsConfig := &tls.Config{InsecureSkipVerify: config.NoVerify}
	return &Client{
		ClientName:    clientName,
		ClientVersion: clientVersion,

		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: DefaultWebSocketHandshakeTimeout,
			TLSClientConfig:  tlsConfig,
		},
		httpClient: &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		},
	}
}

// serviceURL returns the URL of path on the configured server, with the
// measurement ID and client metadata in the querystring.
func (c *Client) serviceURL(scheme, path string) *url.URL {
	u := &url.URL{
		Scheme: scheme,
		Host:   c.config.Server,
		Path:   path,
	}
	q := u.Query()
	q.Set("mid", c.config.MeasurementID)
	q.Set("client_arch", runtime.GOARCH)
	q.Set("client_library_name", libraryName)
	q.Set("client_library_version", libraryVersion)
	q.Set("client_os", runtime.GOOS)
	q.Set("client_name", c.ClientName)
	q.Set("client_version", c.ClientVersion)
	u.RawQuery = q.Encode()
	return u
}

func (c *Client) httpScheme() string {
	if c.config.Scheme == "ws" {
		return "http"
	}
	return "https"
}

func (c *Client) connect(ctx context.Context, serviceURL *url.URL) (*websocket.Conn, error) {
	q := serviceURL.Query()
	if c.config.Preset != "" {
		q.Set("preset", c.config.Preset)
	}
	q.Set("cache", strconv.FormatBool(c.config.CacheHit))
	for _, id := range c.config.ScenarioIDs {
		q.Add("scenario", id)
	}
	serviceURL.RawQuery = q.Encode()
	headers := http.Header{}
	headers.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	headers.Add("User-Agent", makeUserAgent(c.ClientName, c.ClientVersion))
	conn, _, err := c.dialer.DialContext(ctx, serviceURL.String(), headers)
	return conn, err
}

// Simulate runs one timeline simulation on the server and returns its final
// frame.
func (c *Client) Simulate(ctx context.Context) (model.Snapshot, error) {
	mURL := c.serviceURL(c.config.Scheme, spec.SimulatePath)
	c.config.Emitter.OnStart(mURL.Host, "simulation")
	conn, err := c.connect(ctx, mURL)
	if err != nil {
		c.config.Emitter.OnError(err)
		return model.Snapshot{}, err
	}
	defer conn.Close()
	c.config.Emitter.OnConnect(mURL.String())

	// Release the receiver goroutine on every return path.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	proto := render1.New(conn)
	snapshots, errCh := proto.ReceiverLoop(ctx)
	started := false
	var last model.Snapshot
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case s, ok := <-snapshots:
			if !ok {
				return last, ctx.Err()
			}
			last = s
			c.config.Emitter.OnSnapshot(s)
			if !started {
				// The first frame describes the idle simulator.
				c.config.Emitter.OnDebug(fmt.Sprintf("max duration %.1fms, starting",
					s.MaxDurationMs))
				if err := proto.SendControl(model.ControlMessage{Type: model.ControlStart}); err != nil {
					return last, err
				}
				started = true
				continue
			}
			if s.Status == model.StatusCompleted {
				c.config.Emitter.OnComplete(s)
				proto.Close()
				return s, nil
			}
		case err := <-errCh:
			c.config.Emitter.OnError(err)
			return last, err
		}
	}
}

// Benchmark runs the configured number of benchmark runs on the server and
// returns them in order. The server-side session is closed at the end.
func (c *Client) Benchmark(ctx context.Context) ([]benchmodel.BenchmarkRun, error) {
	mURL := c.serviceURL(c.httpScheme(), benchspec.BenchmarkPath)
	q := mURL.Query()
	if c.config.ItemCount >= 0 {
		q.Set("items", strconv.Itoa(c.config.ItemCount))
	}
	q.Set("slow", strconv.FormatBool(c.config.SlowMode))
	mURL.RawQuery = q.Encode()
	c.config.Emitter.OnStart(mURL.Host, "benchmark")

	var runs []benchmodel.BenchmarkRun
	for i := 0; i < c.config.Runs; i++ {
		var run benchmodel.BenchmarkRun
		if err := c.getJSON(ctx, http.MethodPost, mURL, &run); err != nil {
			c.config.Emitter.OnError(err)
			return runs, err
		}
		c.config.Emitter.OnBenchmark(run)
		runs = append(runs, run)
	}

	var final benchmodel.BenchmarkRun
	if err := c.getJSON(ctx, http.MethodGet, c.serviceURL(c.httpScheme(), benchspec.ResultPath), &final); err != nil {
		c.config.Emitter.OnDebug(fmt.Sprintf("cannot close session: %v", err))
	}
	return runs, nil
}

func (c *Client) getJSON(ctx context.Context, method string, u *url.URL, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", makeUserAgent(c.ClientName, c.ClientVersion))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: %s", method, u.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
