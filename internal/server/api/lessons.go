// Package api provides HTTP handlers for the ASL learning platform resources.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// Listing defaults.
const defaultLessonLimit = 100

// LessonHandler handles HTTP requests for lesson resources.
type LessonHandler struct {
	store *store.Store
}

// NewLessonHandler creates a new LessonHandler with the given store.
func NewLessonHandler(s *store.Store) *LessonHandler {
	return &LessonHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *LessonHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/lessons, /api/lessons/{id},
	// /api/lessons/category/{category}
	path := strings.TrimPrefix(r.URL.Path, "/api/lessons")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/lessons
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if category, ok := strings.CutPrefix(path, "category/"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listByCategory(w, r, category)
		return
	}

	// Item endpoint: /api/lessons/{id}
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lesson ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request types

type createLessonRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	VideoURL    string `json:"video_url"`
	Difficulty  string `json:"difficulty"`
	SignName    string `json:"sign_name"`
}

type updateLessonRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	VideoURL    string `json:"video_url"`
	Difficulty  string `json:"difficulty"`
	SignName    string `json:"sign_name"`
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

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}

// list handles GET /api/lessons with optional skip, limit and category.
func (h *LessonHandler) list(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid skip parameter")
		return
	}
	limit, err := queryInt(r, "limit", defaultLessonLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	lessons, err := h.store.Lessons().List(store.LessonFilter{
		Skip:     skip,
		Limit:    limit,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list lessons")
		return
	}

	if lessons == nil {
		lessons = []*store.Lesson{}
	}
	writeJSON(w, http.StatusOK, lessons)
}

// listByCategory handles GET /api/lessons/category/{category}.
func (h *LessonHandler) listByCategory(w http.ResponseWriter, r *http.Request, category string) {
	lessons, err := h.store.Lessons().ListByCategory(category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list lessons")
		return
	}

	if lessons == nil {
		lessons = []*store.Lesson{}
	}
	writeJSON(w, http.StatusOK, lessons)
}

// get handles GET /api/lessons/{id}.
func (h *LessonHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	lesson, err := h.store.Lessons().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get lesson")
		return
	}

	writeJSON(w, http.StatusOK, lesson)
}

// create handles POST /api/lessons.
func (h *LessonHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate required fields
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.SignName == "" {
		writeError(w, http.StatusBadRequest, "sign_name is required")
		return
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = store.DifficultyBeginner
	}

	lesson := &store.Lesson{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		VideoURL:    req.VideoURL,
		Difficulty:  difficulty,
		SignName:    req.SignName,
	}

	if err := h.store.Lessons().Create(lesson); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create lesson")
		return
	}

	writeJSON(w, http.StatusCreated, lesson)
}

// update handles PUT /api/lessons/{id}.
func (h *LessonHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	lesson, err := h.store.Lessons().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get lesson")
		return
	}

	var req updateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Description != "" {
		lesson.Description = req.Description
	}
	if req.Category != "" {
		lesson.Category = req.Category
	}
	if req.VideoURL != "" {
		lesson.VideoURL = req.VideoURL
	}
	if req.Difficulty != "" {
		lesson.Difficulty = req.Difficulty
	}
	if req.SignName != "" {
		lesson.SignName = req.SignName
	}

	if err := h.store.Lessons().Update(lesson); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update lesson")
		return
	}

	writeJSON(w, http.StatusOK, lesson)
}

// delete handles DELETE /api/lessons/{id}.
func (h *LessonHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	err := h.store.Lessons().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete lesson")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
