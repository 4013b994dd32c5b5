package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/m-lab/go/prometheusx"

	"github.com/m-lab/rendersim/internal/catalog"
	"github.com/m-lab/rendersim/internal/persistence"
	"github.com/m-lab/rendersim/internal/projection"
	"github.com/m-lab/rendersim/internal/simulator"
	"github.com/m-lab/rendersim/pkg/render1"
	"github.com/m-lab/rendersim/pkg/render1/model"
	"github.com/m-lab/rendersim/pkg/render1/spec"
	"github.com/m-lab/rendersim/pkg/version"
)

// viewOptions are the querystring options shared by the render1 endpoints.
type viewOptions struct {
	preset   model.NetworkPreset
	cacheHit bool
	ids      []string
}

// parseViewOptions reads "preset", "cache" and the repeatable "scenario"
// parameters.
func (h *Handler) parseViewOptions(req *http.Request) (viewOptions, error) {
	query := req.URL.Query()
	presetID := query.Get("preset")
	if presetID == "" {
		presetID = spec.DefaultPreset
	}
	preset, err := h.catalog.Preset(presetID)
	if err != nil {
		return viewOptions{}, err
	}
	cacheHit, err := boolParam(req, "cache", true)
	if err != nil {
		return viewOptions{}, err
	}
	return viewOptions{preset: preset, cacheHit: cacheHit, ids: query["scenario"]}, nil
}

// Scenarios lists the catalog scaled with the requested preset.
func (h *Handler) Scenarios(rw http.ResponseWriter, req *http.Request) {
	opts, err := h.parseViewOptions(req)
	if err != nil {
		log.Info("Invalid scenarios request", "source", req.RemoteAddr, "error", err)
		writeBadRequest(rw, "scenarios")
		return
	}
	base, err := h.catalog.Select(opts.ids, opts.cacheHit)
	if err != nil {
		log.Info("Invalid scenarios request", "source", req.RemoteAddr, "error", err)
		writeBadRequest(rw, "scenarios")
		return
	}
	scaled := catalog.Scale(base, opts.preset)
	writeJSON(rw, "scenarios", model.ScenarioList{
		Preset:        opts.preset.ID,
		CacheHit:      opts.cacheHit,
		MaxDurationMs: catalog.MaxDuration(scaled),
		Presets:       h.catalog.Presets(),
		Scenarios:     scaled,
	})
}

// Scenario returns the scenario named by the "id" path variable.
func (h *Handler) Scenario(rw http.ResponseWriter, req *http.Request) {
	opts, err := h.parseViewOptions(req)
	if err != nil {
		writeBadRequest(rw, "scenario")
		return
	}
	s, err := h.catalog.Lookup(mux.Vars(req)["id"], opts.cacheHit)
	if err != nil {
		writeStatus(rw, "scenario", http.StatusNotFound)
		return
	}
	writeJSON(rw, "scenario", catalog.ApplyNetworkMultiplier(s, opts.preset.Multiplier))
}

// Compare returns the comparison chart of the "metric" parameter, LCP by
// default.
func (h *Handler) Compare(rw http.ResponseWriter, req *http.Request) {
	opts, err := h.parseViewOptions(req)
	if err != nil {
		writeBadRequest(rw, "compare")
		return
	}
	metric := model.MetricKey(req.URL.Query().Get("metric"))
	if metric == "" {
		metric = model.MetricLCP
	}
	base, err := h.catalog.Select(opts.ids, opts.cacheHit)
	if err != nil {
		writeBadRequest(rw, "compare")
		return
	}
	bars, err := projection.Compare(metric, catalog.Scale(base, opts.preset))
	if err != nil {
		log.Info("Invalid compare request", "source", req.RemoteAddr, "error", err)
		writeBadRequest(rw, "compare")
		return
	}
	writeJSON(rw, "compare", bars)
}

// Simulate upgrades the connection to WebSocket and runs a timeline
// simulation driven by the client's control messages. The session is
// archived when the connection ends.
func (h *Handler) Simulate(rw http.ResponseWriter, req *http.Request) {
	mid, err := GetMIDFromRequest(req)
	if err != nil {
		log.Info("Received request without mid", "source", req.RemoteAddr,
			"error", err)
		writeBadRequest(rw, "simulate")
		return
	}
	opts, err := h.parseViewOptions(req)
	if err != nil {
		log.Info("Invalid simulate request", "source", req.RemoteAddr, "error", err)
		writeBadRequest(rw, "simulate")
		return
	}
	sim, err := simulator.New(simulator.Config{
		Catalog:     h.catalog,
		ScenarioIDs: opts.ids,
		Preset:      opts.preset.ID,
		CacheHit:    opts.cacheHit,
	})
	if err != nil {
		log.Info("Invalid simulate request", "source", req.RemoteAddr, "error", err)
		writeBadRequest(rw, "simulate")
		return
	}
	defer sim.Close()

	// Once upgraded, the underlying TCP connection is hijacked and we cannot
	// call writeBadRequest anymore.
	wsConn, err := render1.Upgrade(rw, req)
	if err != nil {
		log.Info("Websocket upgrade failed", "error", err)
		return
	}
	defer wsConn.Close()
	requestsTotal.WithLabelValues("simulate", "101").Inc()

	archivalData := model.SimulationResult{
		GitShortCommit: prometheusx.GitShortCommit,
		Version:        version.Version,
		ID:             mid,
		Client:         wsConn.RemoteAddr().String(),
		Server:         wsConn.LocalAddr().String(),
		StartTime:      time.Now(),
	}
	for _, s := range sim.Scenarios() {
		archivalData.ScenarioIDs = append(archivalData.ScenarioIDs, s.ID)
	}
	defer func() {
		snap := sim.Snapshot()
		stats := sim.Stats()
		archivalData.EndTime = time.Now()
		archivalData.Preset = snap.Preset
		archivalData.CacheHit = snap.CacheHit
		archivalData.FinalElapsedMs = snap.ElapsedMs
		archivalData.RunsStarted = stats.RunsStarted
		archivalData.RunsCompleted = stats.RunsCompleted
		archivalData.Resets = stats.Resets
		h.writeResult(uuid.NewString(), &archivalData)
	}()

	ctx, cancel := context.WithTimeout(req.Context(), spec.MaxRuntime)
	defer cancel()

	controlCh, errCh := render1.New(wsConn).SenderLoop(ctx, sim)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-controlCh:
			controlMessagesTotal.WithLabelValues(m.Type).Inc()
			log.Debug("control message", "mid", mid, "type", m.Type)
		case err := <-errCh:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				log.Info("Connection closed unexpectedly", "mid", mid, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writeResult(uuid string, result *model.SimulationResult) {
	_, err := persistence.WriteDataFile(
		h.archivalDataDir, "render1", "simulation", uuid, result)
	if err != nil {
		log.Error("failed to write render1 result", "mid", result.ID, "error", err)
	}
}
