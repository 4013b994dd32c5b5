package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	benchspec "github.com/m-lab/rendersim/pkg/bench1/spec"
	renderspec "github.com/m-lab/rendersim/pkg/render1/spec"
)

// Router returns a router serving every endpoint of h.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(renderspec.ScenariosPath, h.Scenarios).Methods(http.MethodGet)
	r.HandleFunc(renderspec.ScenarioPath, h.Scenario).Methods(http.MethodGet)
	r.HandleFunc(renderspec.ComparePath, h.Compare).Methods(http.MethodGet)
	r.HandleFunc(renderspec.SimulatePath, h.Simulate).Methods(http.MethodGet)
	r.HandleFunc(benchspec.BenchmarkPath, h.Benchmark).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(benchspec.ResultPath, h.Result).Methods(http.MethodGet)
	r.HandleFunc(benchspec.HistoryPath, h.History).Methods(http.MethodGet)
	return r
}
