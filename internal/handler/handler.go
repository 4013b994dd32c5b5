// Package handler contains the HTTP and WebSocket handlers of the rendersim
// server.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/m-lab/access/controller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/history"
	"github.com/m-lab/rendersim/internal/session"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rendersim_requests_total",
		Help: "Number of requests handled, by handler and status code.",
	}, []string{"handler", "code"})
	controlMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rendersim_simulation_control_messages_total",
		Help: "Number of simulation control messages received, by type.",
	}, []string{"type"})
	renderSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rendersim_benchmark_render_seconds",
		Help:    "Measured render time of benchmark strategies.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"strategy"})
)

// Handler serves the scenario catalog, the timeline simulation and the
// render benchmark.
type Handler struct {
	archivalDataDir string
	catalog         *catalog.Catalog
	sessions        *session.Store
	history         *history.Store
}

// New returns a Handler. hist may be nil, in which case benchmark runs are
// not added to the history and the history endpoint is disabled.
func New(archivalDataDir string, cat *catalog.Catalog, sessions *session.Store,
	hist *history.Store) *Handler {
	return &Handler{
		archivalDataDir: archivalDataDir,
		catalog:         cat,
		sessions:        sessions,
		history:         hist,
	}
}

// GetMIDFromRequest extracts the measurement id ("mid") from a given HTTP
// request, if present.
//
// A measurement ID can be specified in two ways: via a "mid" querystring
// parameter (when access tokens are not required) or via the ID field
// in the JWT access token.
func GetMIDFromRequest(req *http.Request) (string, error) {
	// If the request includes a valid JWT token, the claim and the ID are in
	// the request's context already.
	claims := controller.GetClaim(req.Context())
	if claims != nil {
		return claims.ID, nil
	}

	// Otherwise, try getting the "mid" querystring parameter.
	if mid := req.URL.Query().Get("mid"); mid != "" {
		return mid, nil
	}

	return "", errors.New("no valid token nor mid found in the request")
}

// writeBadRequest sends a Bad Request response to the client using writer.
func writeBadRequest(writer http.ResponseWriter, name string) {
	writeStatus(writer, name, http.StatusBadRequest)
}

func writeStatus(writer http.ResponseWriter, name string, code int) {
	writer.Header().Set("Connection", "Close")
	writer.WriteHeader(code)
	requestsTotal.WithLabelValues(name, strconv.Itoa(code)).Inc()
}

// writeJSON sends v as the JSON body of a 200 response.
func writeJSON(writer http.ResponseWriter, name string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("cannot marshal response", "handler", name, "error", err)
		writeStatus(writer, name, http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	if _, err := writer.Write(b); err != nil {
		log.Debug("cannot write response", "handler", name, "error", err)
	}
	requestsTotal.WithLabelValues(name, strconv.Itoa(http.StatusOK)).Inc()
}

// boolParam parses the boolean querystring parameter key, returning def if
// it is missing.
func boolParam(req *http.Request, key string, def bool) (bool, error) {
	v := req.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
