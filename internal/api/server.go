// Package api exposes the simulation engine over HTTP: analysis
// submission, stored-analysis retrieval, the airport registry, and the
// operational endpoints (health, metrics).
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cianfru/aerowake/internal/airports"
	"github.com/cianfru/aerowake/internal/metrics"
	"github.com/cianfru/aerowake/internal/params"
	"github.com/cianfru/aerowake/internal/simulation"
	"github.com/cianfru/aerowake/internal/store"
	"github.com/cianfru/aerowake/pkg/models"
)

// Server wires the engine, registry, and store behind the HTTP surface.
// One simulator per preset, built once; simulators are stateless across
// requests.
type Server struct {
	log        zerolog.Logger
	airports   *airports.Registry
	store      store.Store
	simulators map[params.Preset]*simulation.Simulator
	startTime  time.Time
}

// NewServer builds a Server with simulators for every preset.
func NewServer(log zerolog.Logger, reg *airports.Registry, st store.Store) *Server {
	sims := make(map[params.Preset]*simulation.Simulator, 4)
	for _, p := range []params.Preset{
		params.PresetDefault, params.PresetConservative,
		params.PresetLiberal, params.PresetResearch,
	} {
		sims[p] = simulation.New(params.New(p))
	}
	return &Server{
		log:        log,
		airports:   reg,
		store:      st,
		simulators: sims,
		startTime:  time.Now(),
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logging)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/analyses", s.handleAnalyze).Methods("POST")
	v1.HandleFunc("/analyses", s.handleListAnalyses).Methods("GET")
	v1.HandleFunc("/analyses/{id}", s.handleGetAnalysis).Methods("GET")
	v1.HandleFunc("/analyses/{id}", s.handleDeleteAnalysis).Methods("DELETE")
	v1.HandleFunc("/analyses/{id}/duties/{dutyID}", s.handleGetDuty).Methods("GET")
	v1.HandleFunc("/airports", s.handleListAirports).Methods("GET")
	v1.HandleFunc("/airports", s.handleRegisterAirport).Methods("POST")
	v1.HandleFunc("/presets", s.handlePresets).Methods("GET")

	return r
}

// logging is the per-request middleware: structured access log plus the
// HTTP instruments.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequests.Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPLatency.Observe(elapsed.Seconds())
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ---------------------------------------------------------------------------
// Analysis handlers
// ---------------------------------------------------------------------------

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req RosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	preset, ok := params.ParsePreset(orDefault(req.Preset, "default"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown preset "+strconv.Quote(req.Preset))
		return
	}

	roster, err := req.toRoster(s.airports)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	metrics.SimulationRuns.Inc()
	analysis, err := s.simulators[preset].SimulateRosterFrom(roster, req.PriorState)
	if err != nil {
		metrics.SimulationErrors.Inc()
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metrics.SimulationLatency.Observe(time.Since(start).Seconds())
	metrics.DutiesSimulated.Add(int64(analysis.TotalDuties))
	metrics.PinchEvents.Add(int64(analysis.TotalPinchEvents))
	metrics.CriticalDuties.Add(int64(analysis.CriticalRiskDuties))

	s.log.Info().
		Str("pilot_id", roster.PilotID).
		Str("month", roster.Month).
		Str("preset", preset.String()).
		Int("duties", analysis.TotalDuties).
		Int("critical", analysis.CriticalRiskDuties).
		Float64("worst", analysis.WorstPerformance).
		Msg("roster analyzed")

	if !req.Persist {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"preset":   preset.String(),
			"analysis": analysis,
		})
		return
	}

	rec, err := s.store.Save(r.Context(), roster.PilotID, roster.Month, preset.String(), *analysis)
	if err != nil {
		metrics.StoreErrors.Inc()
		s.log.Error().Err(err).Str("pilot_id", roster.PilotID).Msg("persist failed")
		respondError(w, http.StatusInternalServerError, "failed to persist analysis")
		return
	}
	metrics.AnalysesStored.Inc()
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		metrics.StoreErrors.Inc()
		s.log.Error().Err(err).Str("id", id).Msg("get failed")
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		metrics.StoreErrors.Inc()
		s.log.Error().Err(err).Str("id", id).Msg("delete failed")
		respondError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	s.log.Info().Str("id", id).Msg("analysis deleted")
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDuty serves one duty's timeline out of a stored analysis.
func (s *Server) handleGetDuty(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, dutyID := vars["id"], vars["dutyID"]

	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		metrics.StoreErrors.Inc()
		s.log.Error().Err(err).Str("id", id).Msg("get failed")
		respondError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}

	for i := range rec.Analysis.Duties {
		if rec.Analysis.Duties[i].DutyID == dutyID {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"analysis_id": rec.ID,
				"pilot_id":    rec.PilotID,
				"duty":        rec.Analysis.Duties[i],
			})
			return
		}
	}
	respondError(w, http.StatusNotFound, "duty not found in analysis")
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	pilotID := r.URL.Query().Get("pilot_id")
	if pilotID == "" {
		respondError(w, http.StatusBadRequest, "pilot_id query parameter is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	summaries, err := s.store.List(r.Context(), pilotID, limit)
	if err != nil {
		metrics.StoreErrors.Inc()
		s.log.Error().Err(err).Str("pilot_id", pilotID).Msg("list failed")
		respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pilot_id": pilotID,
		"analyses": summaries,
		"count":    len(summaries),
	})
}

// ---------------------------------------------------------------------------
// Airport handlers
// ---------------------------------------------------------------------------

func (s *Server) handleListAirports(w http.ResponseWriter, r *http.Request) {
	list := s.airports.List()
	metrics.AirportsRegistered.Set(float64(len(list)))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"airports": list,
		"count":    len(list),
	})
}

func (s *Server) handleRegisterAirport(w http.ResponseWriter, r *http.Request) {
	var a models.Airport
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.airports.Register(a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.AirportsRegistered.Set(float64(s.airports.Len()))
	respondJSON(w, http.StatusCreated, a)
}

// ---------------------------------------------------------------------------
// Operational handlers
// ---------------------------------------------------------------------------

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": []string{
			params.PresetDefault.String(),
			params.PresetConservative.String(),
			params.PresetLiberal.String(),
			params.PresetResearch.String(),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.AirportsRegistered.Set(float64(s.airports.Len()))
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write([]byte(metrics.Default().Export()))
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
