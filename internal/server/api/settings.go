package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// SettingsHandler handles HTTP requests for user settings resources.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/settings, /api/settings/user/{user_id}
	path := strings.TrimPrefix(r.URL.Path, "/api/settings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.create(w, r)
		return
	}

	userID, ok := strings.CutPrefix(path, "user/")
	if !ok || userID == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, userID)
	case http.MethodPut:
		h.update(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createSettingsRequest carries new settings. Absent fields take the
// defaults.
type createSettingsRequest struct {
	UserID string `json:"user_id"`
	store.SettingsUpdate
}

// get handles GET /api/settings/user/{user_id}, creating default settings
// for a user seen for the first time.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request, userID string) {
	settings, err := h.store.Settings().GetOrCreate(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// create handles POST /api/settings.
func (h *SettingsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// Check if settings already exist
	if _, err := h.store.Settings().Get(req.UserID); err == nil {
		writeError(w, http.StatusBadRequest, "Settings already exist. Use PUT to update.")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to check settings")
		return
	}

	settings := store.DefaultSettings(req.UserID)
	applyUpdate(settings, &req.SettingsUpdate)

	if err := h.store.Settings().Create(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create settings")
		return
	}

	writeJSON(w, http.StatusCreated, settings)
}

// update handles PUT /api/settings/user/{user_id}. Only the provided fields
// change; a user without settings gets the defaults plus the update.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request, userID string) {
	var req store.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settings, err := h.store.Settings().Update(userID, &req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// applyUpdate copies the non-nil fields of update onto settings.
func applyUpdate(settings *store.UserSettings, update *store.SettingsUpdate) {
	if update.PerformanceMode != nil {
		settings.PerformanceMode = *update.PerformanceMode
	}
	if update.VideoResolution != nil {
		settings.VideoResolution = *update.VideoResolution
	}
	if update.FrameRate != nil {
		settings.FrameRate = *update.FrameRate
	}
	if update.ModelComplexity != nil {
		settings.ModelComplexity = *update.ModelComplexity
	}
	if update.InferenceThrottleMS != nil {
		settings.InferenceThrottleMS = *update.InferenceThrottleMS
	}
	if update.MinConfidence != nil {
		settings.MinConfidence = *update.MinConfidence
	}
	if update.UseServerProcessing != nil {
		settings.UseServerProcessing = *update.UseServerProcessing
	}
}
