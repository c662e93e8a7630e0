// Package server exposes loaded model artifacts over HTTP. Predictions
// are pure reads of immutable artifacts, so handlers are safe for any
// number of concurrent callers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"fittrack-ml/internal/artifact"
	"fittrack-ml/internal/metrics"
	"fittrack-ml/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server serves prediction requests for every artifact found at startup.
type Server struct {
	models  map[string]*artifact.Model
	metrics *metrics.Metrics
	http    *http.Server
}

// PredictionRequest carries one named feature vector. MuscleGroup is only
// consulted by the recovery_time task.
type PredictionRequest struct {
	Features    map[string]float64 `json:"features"`
	MuscleGroup string             `json:"muscle_group,omitempty"`
}

// ModelInfo describes one loaded artifact for the /models endpoint.
type ModelInfo struct {
	Task      string    `json:"task"`
	Mode      string    `json:"mode"`
	Features  []string  `json:"features"`
	TrainedAt time.Time `json:"trained_at"`
}

// New loads the artifacts present in modelsDir and builds the HTTP
// server. Tasks without an artifact are skipped with a warning; at least
// one loadable artifact is required.
func New(modelsDir string, port int, requestTimeout time.Duration, m *metrics.Metrics) (*Server, error) {
	s := &Server{
		models:  make(map[string]*artifact.Model),
		metrics: m,
	}

	for _, spec := range pipeline.Tasks() {
		path := artifact.Path(modelsDir, spec.Name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Warn().Str("task", spec.Name).Str("path", path).Msg("no artifact for task, skipping")
			continue
		}
		model, err := artifact.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load artifact for %s: %w", spec.Name, err)
		}
		s.models[spec.Name] = model
		m.ModelAge.WithLabelValues(spec.Name).Set(time.Since(model.TrainedAt).Seconds())
		log.Info().Str("task", spec.Name).Time("trained_at", model.TrainedAt).Msg("model artifact loaded")
	}
	if len(s.models) == 0 {
		return nil, fmt.Errorf("no model artifacts found in %s", modelsDir)
	}
	m.ModelsLoaded.Set(float64(len(s.models)))

	mux := http.NewServeMux()
	mux.HandleFunc("/predict/", s.handlePredict)
	mux.HandleFunc("/models", s.handleModels)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Int("models", len(s.models)).Msg("starting inference server")
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	task := r.URL.Path[len("/predict/"):]
	model, ok := s.models[task]
	if !ok {
		http.Error(w, fmt.Sprintf("no model loaded for task %q", task), http.StatusNotFound)
		return
	}

	start := time.Now()
	defer func() {
		s.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	}()

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.PredictionErrors.WithLabelValues(task).Inc()
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Features) == 0 {
		s.metrics.PredictionErrors.WithLabelValues(task).Inc()
		http.Error(w, "features cannot be empty", http.StatusBadRequest)
		return
	}

	result, err := s.predict(task, model, req)
	if err != nil {
		s.metrics.PredictionErrors.WithLabelValues(task).Inc()
		log.Error().Err(err).Str("task", task).Msg("prediction failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.metrics.PredictionsTotal.WithLabelValues(task).Inc()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) predict(task string, model *artifact.Model, req PredictionRequest) (any, error) {
	switch task {
	case pipeline.TaskWorkoutSuccess:
		return pipeline.PredictCompletion(model, req.Features)
	case pipeline.TaskRecoveryTime:
		return pipeline.PredictRecovery(model, req.Features, req.MuscleGroup)
	case pipeline.TaskWeightProgression:
		return pipeline.PredictProgression(model, req.Features)
	}
	return nil, fmt.Errorf("unsupported task %q", task)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	infos := make([]ModelInfo, 0, len(s.models))
	for _, spec := range pipeline.Tasks() {
		if m, ok := s.models[spec.Name]; ok {
			infos = append(infos, ModelInfo{
				Task:      m.Task,
				Mode:      string(m.Mode),
				Features:  m.Schema.Names(),
				TrainedAt: m.TrainedAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
