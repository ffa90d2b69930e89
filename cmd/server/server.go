package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/miretskiy/ossim/config"
	"github.com/miretskiy/ossim/integration"
	"github.com/miretskiy/ossim/simulator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// errorResponse is a consistent JSON error payload
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// history is implemented by recorders that can list what they stored
type history interface {
	Records() ([]integration.RunRecord, error)
}

type server struct {
	cfg      config.Config
	logger   zerolog.Logger
	recorder integration.Recorder
	upgrader websocket.Upgrader
}

func newServer(cfg config.Config, logger zerolog.Logger, recorder integration.Recorder) *server {
	if recorder == nil {
		recorder = integration.NopRecorder{}
	}
	return &server{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// routes builds the HTTP surface
func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Post("/compare", s.handleCompare)
		r.Get("/runs", s.handleRuns)
	})
	return r
}

func (s *server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	run, err := s.execute(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	cmp, err := simulator.Compare(req)
	if err != nil {
		promMetrics.runErrorsTotal.WithLabelValues(req.Family.String()).Inc()
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *server) handleRuns(w http.ResponseWriter, r *http.Request) {
	h, ok := s.recorder.(history)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "run history is not kept by this recorder", Code: http.StatusNotImplemented})
		return
	}
	runs, err := h.Records()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *server) decodeRequest(w http.ResponseWriter, r *http.Request) (simulator.Request, bool) {
	req := s.newRequest()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Code: http.StatusBadRequest})
		return req, false
	}
	return req, true
}

// newRequest returns the request that client JSON is decoded onto. Config
// fields the client omits come from the server config, then the library
// defaults; fields it sends are kept as given and validated.
func (s *server) newRequest() simulator.Request {
	req := simulator.DefaultRequest()
	req.Config.MaxTrack = s.cfg.MaxTrack
	req.Config.StepIntervalMs = s.cfg.DefaultStepIntervalMs
	if req.Config.StartingTrack > req.Config.MaxTrack {
		req.Config.StartingTrack = 0
	}
	return req
}

// execute runs a request, records it and updates metrics. Recording
// failures are logged but do not fail the run.
func (s *server) execute(ctx context.Context, req simulator.Request) (*simulator.Run, error) {
	run, err := simulator.Execute(req)
	if err != nil {
		promMetrics.runErrorsTotal.WithLabelValues(req.Family.String()).Inc()
		s.logger.Debug().Err(err).Str("family", req.Family.String()).Str("algorithm", req.Algorithm).Msg("run rejected")
		return nil, err
	}
	updatePrometheusMetrics(run)
	s.logger.Info().
		Str("family", run.Family.String()).
		Str("algorithm", run.Algorithm).
		Int("steps", run.Trace().Len()).
		Float64("execution_ms", run.ExecutionTimeMs).
		Msg("run completed")

	rec, err := integration.NewRunRecord(req, run)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to build run record")
		return run, nil
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("id", rec.ID).Msg("failed to record run")
	}
	return run, nil
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var se simulator.SimError
	if errors.As(err, &se) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
