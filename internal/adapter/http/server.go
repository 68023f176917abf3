package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/pipeline"
)

// RunStatusProvider exposes the outcome of the most recent pipeline run.
type RunStatusProvider interface {
	LastRun() (pipeline.RunStatus, bool)
}

// Server exposes health, readiness, run status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /status, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, status RunStatusProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /status", handleStatus(status))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker sharedobs.ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type tableLoadResponse struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

type statusResponse struct {
	RunID            string               `json:"run_id"`
	Label            string               `json:"label"`
	StartedAt        time.Time            `json:"started_at"`
	DurationSeconds  float64              `json:"duration_seconds"`
	Succeeded        bool                 `json:"succeeded"`
	Error            string               `json:"error,omitempty"`
	ClimateAvailable bool                 `json:"climate_available"`
	WeatherComplete  bool                 `json:"weather_complete"`
	Validation       domain.LedgerSummary `json:"validation"`
	Loaded           []tableLoadResponse  `json:"loaded"`
}

func handleStatus(provider RunStatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st, ok := provider.LastRun()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "no run yet"})
			return
		}

		r := st.Report
		resp := statusResponse{
			RunID:            r.RunID,
			Label:            r.Label,
			StartedAt:        r.StartedAt,
			DurationSeconds:  r.Duration.Seconds(),
			Succeeded:        st.Err == nil,
			ClimateAvailable: r.ClimateAvailable,
			WeatherComplete:  r.WeatherComplete,
			Validation:       r.Validation,
			Loaded:           make([]tableLoadResponse, 0, len(r.Loaded)),
		}
		if st.Err != nil {
			resp.Error = st.Err.Error()
		}
		for _, l := range r.Loaded {
			resp.Loaded = append(resp.Loaded, tableLoadResponse(l))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
