package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// Default number of sessions returned by the recent-sessions endpoint.
const defaultSessionLimit = 50

// ProgressHandler handles HTTP requests for user progress and practice
// session resources.
type ProgressHandler struct {
	store *store.Store
}

// NewProgressHandler creates a new ProgressHandler with the given store.
func NewProgressHandler(s *store.Store) *ProgressHandler {
	return &ProgressHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/progress, /api/progress/session,
	// /api/progress/user/{user_id}, /api/progress/sessions/{user_id},
	// /api/progress/stats/{user_id}
	path := strings.TrimPrefix(r.URL.Path, "/api/progress")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.upsert(w, r)

	case path == "session":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.recordSession(w, r)

	case strings.HasPrefix(path, "user/"):
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listByUser(w, r, strings.TrimPrefix(path, "user/"))

	case strings.HasPrefix(path, "sessions/"):
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listSessions(w, r, strings.TrimPrefix(path, "sessions/"))

	case strings.HasPrefix(path, "stats/"):
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stats(w, r, strings.TrimPrefix(path, "stats/"))

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Request types

type upsertProgressRequest struct {
	UserID   string  `json:"user_id"`
	LessonID int64   `json:"lesson_id"`
	Attempts int     `json:"attempts"`
	Accuracy float64 `json:"accuracy"`
	Status   string  `json:"status"`
}

type recordSessionRequest struct {
	UserID       string  `json:"user_id"`
	SignDetected string  `json:"sign_detected"`
	Confidence   float64 `json:"confidence"`
	IsCorrect    *bool   `json:"is_correct"`
}

// upsert handles POST /api/progress and creates or updates the progress row
// for a user and lesson.
func (h *ProgressHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.LessonID <= 0 {
		writeError(w, http.StatusBadRequest, "lesson_id is required")
		return
	}
	if req.Status != "" && req.Status != store.StatusNotStarted &&
		req.Status != store.StatusInProgress && req.Status != store.StatusCompleted {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	// Verify lesson exists
	if _, err := h.store.Lessons().GetByID(req.LessonID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify lesson")
		return
	}

	progress := &store.UserProgress{
		UserID:   req.UserID,
		LessonID: req.LessonID,
		Attempts: req.Attempts,
		Accuracy: req.Accuracy,
		Status:   req.Status,
	}

	if err := h.store.Progress().Upsert(progress); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save progress")
		return
	}

	writeJSON(w, http.StatusCreated, progress)
}

// recordSession handles POST /api/progress/session.
func (h *ProgressHandler) recordSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// A missing correctness flag records as incorrect rather than unknown.
	correct := req.IsCorrect != nil && *req.IsCorrect

	session := &store.PracticeSession{
		UserID:       req.UserID,
		SignDetected: req.SignDetected,
		Confidence:   req.Confidence,
		IsCorrect:    &correct,
	}

	if err := h.store.Sessions().Create(session); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record session")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// listByUser handles GET /api/progress/user/{user_id}.
func (h *ProgressHandler) listByUser(w http.ResponseWriter, r *http.Request, userID string) {
	progress, err := h.store.Progress().ListByUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list progress")
		return
	}

	if progress == nil {
		progress = []*store.UserProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

// listSessions handles GET /api/progress/sessions/{user_id} with an optional
// limit parameter.
func (h *ProgressHandler) listSessions(w http.ResponseWriter, r *http.Request, userID string) {
	limit, err := queryInt(r, "limit", defaultSessionLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	sessions, err := h.store.Sessions().ListByUser(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []*store.PracticeSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// stats handles GET /api/progress/stats/{user_id}.
func (h *ProgressHandler) stats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, err := h.store.Progress().Stats(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
