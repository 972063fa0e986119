package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/practice"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// PracticeHandler grades practice attempts: one request classifies the
// landmarks, records the session and updates the user's lesson progress.
type PracticeHandler struct {
	evaluator *practice.Evaluator
}

// NewPracticeHandler creates a new PracticeHandler with the given evaluator.
func NewPracticeHandler(e *practice.Evaluator) *PracticeHandler {
	return &PracticeHandler{evaluator: e}
}

type attemptRequest struct {
	UserID    string      `json:"user_id"`
	LessonID  int64       `json:"lesson_id"`
	Landmarks [][]float64 `json:"landmarks"`
}

// ServeHTTP handles POST /api/practice/attempt.
func (h *PracticeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.LessonID <= 0 {
		writeError(w, http.StatusBadRequest, "lesson_id is required")
		return
	}

	attempt, err := h.evaluator.Evaluate(req.UserID, req.LessonID, req.Landmarks)
	if err != nil {
		var verr *landmark.ValidationError
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Lesson not found")
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, classify.ErrModelUnavailable):
			writeError(w, http.StatusServiceUnavailable, "Model not loaded")
		default:
			log.Printf("practice attempt failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to evaluate attempt")
		}
		return
	}

	writeJSON(w, http.StatusOK, attempt)
}
