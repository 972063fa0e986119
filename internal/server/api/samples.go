package api

import (
	"encoding/json"
	"net/http"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// TrainingSamplesHandler handles HTTP requests for recorded training
// samples.
type TrainingSamplesHandler struct {
	store *store.Store
}

// NewTrainingSamplesHandler creates a new TrainingSamplesHandler with the
// given store.
func NewTrainingSamplesHandler(s *store.Store) *TrainingSamplesHandler {
	return &TrainingSamplesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected path: /api/training/samples
func (h *TrainingSamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSampleRequest struct {
	Sign      string      `json:"sign"`
	Landmarks [][]float64 `json:"landmarks"`
}

// list handles GET /api/training/samples with an optional sign filter.
func (h *TrainingSamplesHandler) list(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.TrainingSamples().List(r.URL.Query().Get("sign"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	if samples == nil {
		samples = []*store.TrainingSample{}
	}
	writeJSON(w, http.StatusOK, samples)
}

// create handles POST /api/training/samples. The landmark set is validated
// the same way the prediction endpoint validates its input.
func (h *TrainingSamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Sign == "" {
		writeError(w, http.StatusBadRequest, "sign is required")
		return
	}
	if err := landmark.Validate(req.Landmarks); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := json.Marshal(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode landmarks")
		return
	}

	sample := &store.TrainingSample{
		Sign:      req.Sign,
		Landmarks: data,
	}

	if err := h.store.TrainingSamples().Create(sample); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}

	writeJSON(w, http.StatusCreated, sample)
}
