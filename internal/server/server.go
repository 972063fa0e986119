// Package server provides the HTTP API for the ASL learning platform.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/detector"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/practice"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/server/api"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// Version is the API version reported by the health endpoint.
const Version = "1.0.0"

// Config holds the server configuration.
type Config struct {
	Store      *store.Store
	Classifier *classify.Manager
	Evaluator  *practice.Evaluator
	Detector   detector.Detector

	// AllowedOrigins is the CORS allowlist. Empty disables CORS headers.
	AllowedOrigins []string
}

// Server is the HTTP server for the ASL learning platform.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()

	s.handler = s.mux
	if len(config.AllowedOrigins) > 0 {
		s.handler = withCORS(config.AllowedOrigins, s.mux)
	}

	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register model endpoints if a classifier is configured
	if s.config.Classifier != nil {
		predictHandler := NewPredictHandler(s.config.Classifier)
		s.mux.HandleFunc("/api/predict", predictHandler.Predict)
		s.mux.HandleFunc("/api/labels", predictHandler.Labels)
		s.mux.HandleFunc("/api/model/reload", predictHandler.Reload)
		s.mux.Handle("/api/predict/stream", NewStreamHandler(s.config.Classifier))
	}

	// Register resource handlers if a store is configured
	if s.config.Store != nil {
		lessonHandler := api.NewLessonHandler(s.config.Store)
		s.mux.Handle("/api/lessons", lessonHandler)
		s.mux.Handle("/api/lessons/", lessonHandler)

		progressHandler := api.NewProgressHandler(s.config.Store)
		s.mux.Handle("/api/progress", progressHandler)
		s.mux.Handle("/api/progress/", progressHandler)

		settingsHandler := api.NewSettingsHandler(s.config.Store)
		s.mux.Handle("/api/settings", settingsHandler)
		s.mux.Handle("/api/settings/", settingsHandler)

		samplesHandler := api.NewTrainingSamplesHandler(s.config.Store)
		s.mux.Handle("/api/training/samples", samplesHandler)
	}

	// Register the practice endpoint if an evaluator is configured
	if s.config.Evaluator != nil {
		practiceHandler := api.NewPracticeHandler(s.config.Evaluator)
		s.mux.Handle("/api/practice/attempt", practiceHandler)
	}

	// Register server-side hand tracking if a detector is configured
	if s.config.Detector != nil {
		trackingHandler := NewHandTrackingHandler(s.config.Detector)
		s.mux.Handle("/api/hand-tracking/process-frame", trackingHandler)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	database := "not_configured"
	if s.config.Store != nil {
		database = "connected"
	}

	response := map[string]interface{}{
		"status":       "ok",
		"version":      Version,
		"uptime":       time.Since(s.start).String(),
		"model_loaded": s.config.Classifier != nil && s.config.Classifier.Loaded(),
		"database":     database,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
