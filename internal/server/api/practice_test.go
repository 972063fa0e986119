package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/practice"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// writeBiasArtifact writes a single-layer model whose weights are all zero,
// so the bias vector alone decides the predicted label.
func writeBiasArtifact(t *testing.T, path string, labels []string, biases []float64) {
	t.Helper()

	n := len(labels)
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, landmark.FeatureSize)
	}

	a := &classify.Artifact{
		ModelType:  classify.ModelMLP,
		NumClasses: n,
		InputSize:  landmark.FeatureSize,
		Labels:     labels,
		MLP:        &classify.MLPWeights{Layers: []classify.DenseLayer{{W: w, B: biases}}},
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("failed to marshal artifact: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
}

// newPracticeHandler wires a handler to a real store and a model that always
// predicts "A".
func newPracticeHandler(t *testing.T) (*PracticeHandler, *store.Store) {
	t.Helper()

	s := newTestStore(t)

	modelPath := filepath.Join(t.TempDir(), "model.json")
	writeBiasArtifact(t, modelPath, []string{"A", "B"}, []float64{2, 0})

	manager := classify.NewManager(modelPath)
	if _, err := manager.Reload(); err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	t.Cleanup(func() {
		manager.Close()
	})

	return NewPracticeHandler(practice.New(s, manager)), s
}

func postAttempt(t *testing.T, handler *PracticeHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/practice/attempt", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPracticeHandler_Attempt(t *testing.T) {
	handler, s := newPracticeHandler(t)

	lesson := createTestLesson(t, s, "Letter A", "alphabet", "A")

	body, _ := json.Marshal(attemptRequest{
		UserID:    "user1",
		LessonID:  lesson.ID,
		Landmarks: validLandmarks(),
	})
	rec := postAttempt(t, handler, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var attempt practice.Attempt
	if err := json.NewDecoder(rec.Body).Decode(&attempt); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if attempt.Prediction == nil || attempt.Prediction.Sign != "A" {
		t.Fatalf("unexpected prediction: %+v", attempt.Prediction)
	}
	if !attempt.Correct {
		t.Error("expected the attempt to be graded correct")
	}
	if attempt.ExpectedSign != "A" {
		t.Errorf("expected sign A, got %q", attempt.ExpectedSign)
	}
	if attempt.Attempts != 1 || attempt.Accuracy != 100 {
		t.Errorf("unexpected progress numbers: %+v", attempt)
	}
	if attempt.Status != store.StatusInProgress {
		t.Errorf("expected status %q, got %q", store.StatusInProgress, attempt.Status)
	}

	// The attempt recorded a practice session.
	sessions, err := s.Sessions().ListByUser("user1", 10)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 recorded session, got %d", len(sessions))
	}
}

func TestPracticeHandler_Attempt_Incorrect(t *testing.T) {
	handler, s := newPracticeHandler(t)

	// The model always predicts A; a lesson for B grades incorrect.
	lesson := createTestLesson(t, s, "Letter B", "alphabet", "B")

	body, _ := json.Marshal(attemptRequest{
		UserID:    "user1",
		LessonID:  lesson.ID,
		Landmarks: validLandmarks(),
	})
	rec := postAttempt(t, handler, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var attempt practice.Attempt
	if err := json.NewDecoder(rec.Body).Decode(&attempt); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if attempt.Correct {
		t.Error("expected the attempt to be graded incorrect")
	}
	if attempt.Accuracy != 0 {
		t.Errorf("expected accuracy 0, got %v", attempt.Accuracy)
	}
}

func TestPracticeHandler_Attempt_LessonNotFound(t *testing.T) {
	handler, _ := newPracticeHandler(t)

	body, _ := json.Marshal(attemptRequest{
		UserID:    "user1",
		LessonID:  999,
		Landmarks: validLandmarks(),
	})
	rec := postAttempt(t, handler, body)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "Lesson not found" {
		t.Errorf("unexpected error message: %q", errResp.Error)
	}
}

func TestPracticeHandler_Attempt_InvalidLandmarks(t *testing.T) {
	handler, s := newPracticeHandler(t)

	lesson := createTestLesson(t, s, "Letter A", "alphabet", "A")

	body, _ := json.Marshal(attemptRequest{
		UserID:    "user1",
		LessonID:  lesson.ID,
		Landmarks: validLandmarks()[:20],
	})
	rec := postAttempt(t, handler, body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "landmarks: expected 21, got 20" {
		t.Errorf("unexpected error message: %q", errResp.Error)
	}
}

func TestPracticeHandler_Attempt_ModelUnavailable(t *testing.T) {
	s := newTestStore(t)

	// A manager pointed at a missing artifact never loads.
	manager := classify.NewManager(filepath.Join(t.TempDir(), "missing.json"))
	handler := NewPracticeHandler(practice.New(s, manager))

	lesson := createTestLesson(t, s, "Letter A", "alphabet", "A")

	body, _ := json.Marshal(attemptRequest{
		UserID:    "user1",
		LessonID:  lesson.ID,
		Landmarks: validLandmarks(),
	})
	rec := postAttempt(t, handler, body)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestPracticeHandler_Attempt_MissingFields(t *testing.T) {
	handler, _ := newPracticeHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing user_id", `{"lesson_id": 1}`},
		{"missing lesson_id", `{"user_id": "user1"}`},
		{"invalid json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postAttempt(t, handler, []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestPracticeHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newPracticeHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/practice/attempt", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
