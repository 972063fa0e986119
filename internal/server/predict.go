package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// PredictHandler serves the classifier: predictions, label metadata and
// model reloads.
type PredictHandler struct {
	classifier *classify.Manager
}

// NewPredictHandler creates a new PredictHandler for the given classifier.
func NewPredictHandler(c *classify.Manager) *PredictHandler {
	return &PredictHandler{classifier: c}
}

// Request and response types

type predictRequest struct {
	Landmarks [][]float64 `json:"landmarks"`
}

type labelsResponse struct {
	NumClasses int      `json:"num_classes"`
	Labels     []string `json:"labels"`
	Letters    []string `json:"letters"`
}

type reloadResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	ModelType  string `json:"model_type"`
	NumClasses int    `json:"num_classes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// predictionError maps a classification failure to a status code and a
// message safe to return to the client. Internal failures get a generic
// message; the caller logs the detail.
func predictionError(err error) (int, string) {
	var verr *landmark.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, classify.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "Model not loaded"
	default:
		return http.StatusInternalServerError, "Prediction failed"
	}
}

// Predict handles POST /api/predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	prediction, err := h.classifier.Predict(req.Landmarks)
	if err != nil {
		status, message := predictionError(err)
		if status == http.StatusInternalServerError {
			log.Printf("predict failed: %v", err)
		}
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

// Labels handles GET /api/labels.
func (h *PredictHandler) Labels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.classifier.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "Model not loaded")
		return
	}

	writeJSON(w, http.StatusOK, labelsResponse{
		NumClasses: snap.NumClasses,
		Labels:     snap.Labels,
		Letters:    snap.Letters,
	})
}

// Reload handles POST /api/model/reload.
func (h *PredictHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := h.classifier.Reload()
	if err != nil {
		log.Printf("model reload failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Failed to reload model")
		return
	}

	writeJSON(w, http.StatusOK, reloadResponse{
		Status:     "reloaded",
		Version:    snap.Version,
		ModelType:  snap.ModelType,
		NumClasses: snap.NumClasses,
	})
}
