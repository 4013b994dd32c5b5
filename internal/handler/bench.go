package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/m-lab/rendersim/pkg/bench1/spec"
)

// Benchmark runs the four-strategy benchmark for the session identified by
// the request's mid. The optional "items" and "slow" parameters update the
// session's harness before running. Possible status codes are:
// - 400 if the request has no mid or invalid parameters
// - 503 if the run was cancelled
func (h *Handler) Benchmark(rw http.ResponseWriter, req *http.Request) {
	mid, err := GetMIDFromRequest(req)
	if err != nil {
		log.Info("Received request without mid", "source", req.RemoteAddr,
			"error", err)
		writeBadRequest(rw, "benchmark")
		return
	}
	query := req.URL.Query()
	items := -1
	if v := query.Get("items"); v != "" {
		if items, err = strconv.Atoi(v); err != nil {
			log.Info("Invalid items", "source", req.RemoteAddr, "error", err)
			writeBadRequest(rw, "benchmark")
			return
		}
	}
	sess := h.sessions.GetOrCreate(mid)
	slow, err := boolParam(req, "slow", false)
	if err != nil {
		writeBadRequest(rw, "benchmark")
		return
	}
	if items >= 0 {
		sess.Harness.SetItemCount(items)
	}
	sess.Harness.SetSlowMode(slow)

	run, err := sess.Harness.RunTest(req.Context())
	if err != nil {
		log.Info("benchmark run cancelled", "mid", mid, "error", err)
		writeStatus(rw, "benchmark", http.StatusServiceUnavailable)
		return
	}
	sess.AddRun(run, req.RemoteAddr)
	for _, r := range run.Results {
		renderSeconds.WithLabelValues(string(r.Strategy)).Observe(r.RenderMs / 1000)
	}
	if h.history != nil {
		if err := h.history.Insert(req.Context(), mid, run, time.Now()); err != nil {
			log.Error("cannot store benchmark run", "mid", mid, "error", err)
		}
	}
	log.Debug("benchmark run", "mid", mid, "run", run.RunID, "items", run.ItemCount)
	writeJSON(rw, "benchmark", run)
}

// Result returns the last run of the session identified by the request's
// mid and closes the session. Possible status codes are:
// - 400 if the request does not contain a mid
// - 404 if the mid is not found in the sessions cache
func (h *Handler) Result(rw http.ResponseWriter, req *http.Request) {
	mid, err := GetMIDFromRequest(req)
	if err != nil {
		log.Info("Received request without mid", "source", req.RemoteAddr,
			"error", err)
		writeBadRequest(rw, "result")
		return
	}
	sess, ok := h.sessions.Get(mid)
	if !ok {
		writeStatus(rw, "result", http.StatusNotFound)
		return
	}
	writeJSON(rw, "result", sess.Harness.Results())

	// Remove this session from the cache, which archives it.
	h.sessions.Delete(mid)
}

// History returns the average render time per strategy over every stored
// run with the requested item count. It returns 404 when the server has no
// history database.
func (h *Handler) History(rw http.ResponseWriter, req *http.Request) {
	if h.history == nil {
		writeStatus(rw, "history", http.StatusNotFound)
		return
	}
	items := spec.DefaultItemCount
	if v := req.URL.Query().Get("items"); v != "" {
		var err error
		if items, err = strconv.Atoi(v); err != nil {
			writeBadRequest(rw, "history")
			return
		}
	}
	averages, err := h.history.Averages(req.Context(), items)
	if err != nil {
		log.Error("cannot read benchmark history", "error", err)
		writeStatus(rw, "history", http.StatusInternalServerError)
		return
	}
	writeJSON(rw, "history", averages)
}
