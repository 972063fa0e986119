package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/detector"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
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

// newTestClassifier returns a loaded manager whose model always predicts the
// first label.
func newTestClassifier(t *testing.T, labels []string) *classify.Manager {
	t.Helper()

	biases := make([]float64, len(labels))
	biases[0] = 2

	path := filepath.Join(t.TempDir(), "model.json")
	writeBiasArtifact(t, path, labels, biases)

	m := classify.NewManager(path)
	if _, err := m.Reload(); err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	t.Cleanup(func() {
		m.Close()
	})

	return m
}

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "asl-server-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func testLandmarks() [][]float64 {
	points := make([][]float64, landmark.NumLandmarks)
	for i := range points {
		points[i] = []float64{float64(i) * 0.01, float64(i) * 0.02, 0}
	}
	return points
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if response["version"] != Version {
			t.Errorf("expected version %q, got %v", Version, response["version"])
		}
		if response["model_loaded"] != false {
			t.Errorf("expected model_loaded false, got %v", response["model_loaded"])
		}
		if response["database"] != "not_configured" {
			t.Errorf("expected database not_configured, got %v", response["database"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Health_WithDependencies(t *testing.T) {
	s := New(Config{
		Store:      newTestStore(t),
		Classifier: newTestClassifier(t, []string{"A", "B"}),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["model_loaded"] != true {
		t.Errorf("expected model_loaded true, got %v", response["model_loaded"])
	}
	if response["database"] != "connected" {
		t.Errorf("expected database connected, got %v", response["database"])
	}
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_RoutesRequireDependencies(t *testing.T) {
	// With nothing configured only the health endpoint exists.
	s := New(Config{})

	paths := []string{
		"/api/predict",
		"/api/labels",
		"/api/lessons",
		"/api/practice/attempt",
		"/api/hand-tracking/process-frame",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
			}
		})
	}
}

func TestServer_Predict(t *testing.T) {
	s := New(Config{Classifier: newTestClassifier(t, []string{"A", "B"})})

	body, _ := json.Marshal(predictRequest{Landmarks: testLandmarks()})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var pred classify.Prediction
	if err := json.NewDecoder(rec.Body).Decode(&pred); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if pred.Sign != "A" {
		t.Errorf("expected sign A, got %q", pred.Sign)
	}
	if pred.Confidence <= 0 || pred.Confidence > 1 {
		t.Errorf("confidence out of range: %v", pred.Confidence)
	}
	if len(pred.Probabilities) != 2 {
		t.Errorf("expected 2 class probabilities, got %d", len(pred.Probabilities))
	}
}

func TestServer_Predict_Errors(t *testing.T) {
	s := New(Config{Classifier: newTestClassifier(t, []string{"A", "B"})})

	short, _ := json.Marshal(predictRequest{Landmarks: testLandmarks()[:20]})

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
		wantError  string
	}{
		{"invalid json", []byte("nope"), http.StatusBadRequest, "Invalid JSON"},
		{"wrong landmark count", short, http.StatusBadRequest, "landmarks: expected 21, got 20"},
		{"empty landmarks", []byte(`{"landmarks": []}`), http.StatusBadRequest, "landmarks: expected 21, got 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var errResp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, errResp.Error)
			}
		})
	}
}

func TestServer_Predict_ModelNotLoaded(t *testing.T) {
	m := classify.NewManager(filepath.Join(t.TempDir(), "missing.json"))
	s := New(Config{Classifier: m})

	body, _ := json.Marshal(predictRequest{Landmarks: testLandmarks()})
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "Model not loaded" {
		t.Errorf("unexpected error message: %q", errResp.Error)
	}
}

func TestServer_Labels(t *testing.T) {
	s := New(Config{Classifier: newTestClassifier(t, []string{"A", "B", "C"})})

	req := httptest.NewRequest(http.MethodGet, "/api/labels", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var labels labelsResponse
	if err := json.NewDecoder(rec.Body).Decode(&labels); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if labels.NumClasses != 3 {
		t.Errorf("expected 3 classes, got %d", labels.NumClasses)
	}
	if len(labels.Labels) != 3 || len(labels.Letters) != 3 {
		t.Errorf("unexpected label sets: %+v", labels)
	}
}

func TestServer_Labels_ModelNotLoaded(t *testing.T) {
	m := classify.NewManager(filepath.Join(t.TempDir(), "missing.json"))
	s := New(Config{Classifier: m})

	req := httptest.NewRequest(http.MethodGet, "/api/labels", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestServer_ModelReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeBiasArtifact(t, path, []string{"A", "B"}, []float64{2, 0})

	m := classify.NewManager(path)
	t.Cleanup(func() {
		m.Close()
	})
	s := New(Config{Classifier: m})

	req := httptest.NewRequest(http.MethodPost, "/api/model/reload", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var reload reloadResponse
	if err := json.NewDecoder(rec.Body).Decode(&reload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if reload.Status != "reloaded" {
		t.Errorf("expected status reloaded, got %q", reload.Status)
	}
	if reload.ModelType != classify.ModelMLP || reload.NumClasses != 2 {
		t.Errorf("unexpected reload metadata: %+v", reload)
	}
	if reload.Version == "" {
		t.Error("expected a snapshot version")
	}

	if !m.Loaded() {
		t.Error("expected the model to be loaded after reload")
	}
}

func TestServer_ModelReload_MissingArtifact(t *testing.T) {
	m := classify.NewManager(filepath.Join(t.TempDir(), "missing.json"))
	s := New(Config{Classifier: m})

	req := httptest.NewRequest(http.MethodPost, "/api/model/reload", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestServer_HandTracking(t *testing.T) {
	mock := detector.NewMockDetector()
	mock.SetHands([]landmark.Hand{detector.LetterAPose()})

	s := New(Config{Detector: mock})

	imageData := base64.StdEncoding.EncodeToString([]byte("frame-bytes"))
	body, _ := json.Marshal(processFrameRequest{ImageData: imageData})

	req := httptest.NewRequest(http.MethodPost, "/api/hand-tracking/process-frame", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp processFrameResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.HandCount != 1 {
		t.Errorf("expected 1 hand, got %d", resp.HandCount)
	}
	if len(resp.Landmarks) != 1 {
		t.Fatalf("expected landmarks for 1 hand, got %d", len(resp.Landmarks))
	}
	if len(resp.Landmarks[0]) != landmark.NumLandmarks {
		t.Errorf("expected %d points, got %d", landmark.NumLandmarks, len(resp.Landmarks[0]))
	}
	if len(resp.Landmarks[0][0]) != landmark.NumCoords {
		t.Errorf("expected %d coordinates, got %d", landmark.NumCoords, len(resp.Landmarks[0][0]))
	}
	if resp.ProcessingTimeMS < 0 {
		t.Errorf("expected a non-negative processing time, got %v", resp.ProcessingTimeMS)
	}
}

func TestServer_HandTracking_NoHands(t *testing.T) {
	mock := detector.NewMockDetector()
	s := New(Config{Detector: mock})

	imageData := base64.StdEncoding.EncodeToString([]byte("frame-bytes"))
	body, _ := json.Marshal(processFrameRequest{ImageData: imageData})

	req := httptest.NewRequest(http.MethodPost, "/api/hand-tracking/process-frame", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp processFrameResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.HandCount != 0 {
		t.Errorf("expected 0 hands, got %d", resp.HandCount)
	}
	// No hands still yields an empty list, not null.
	if resp.Landmarks == nil {
		t.Error("expected an empty landmarks list")
	}
}

func TestServer_HandTracking_InvalidImage(t *testing.T) {
	mock := detector.NewMockDetector()
	s := New(Config{Detector: mock})

	// Not valid base64
	body := []byte(`{"image_data": "!!!not-base64!!!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/hand-tracking/process-frame", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "Invalid image data" {
		t.Errorf("unexpected error message: %q", errResp.Error)
	}
}

func TestServer_HandTracking_DetectorErrors(t *testing.T) {
	imageData := base64.StdEncoding.EncodeToString([]byte("frame-bytes"))
	body, _ := json.Marshal(processFrameRequest{ImageData: imageData})

	t.Run("undecodable frame", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetError(detector.ErrInvalidFrame)
		s := New(Config{Detector: mock})

		req := httptest.NewRequest(http.MethodPost, "/api/hand-tracking/process-frame", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("detector failure", func(t *testing.T) {
		mock := detector.NewMockDetector()
		mock.SetError(errors.New("subprocess exited"))
		s := New(Config{Detector: mock})

		req := httptest.NewRequest(http.MethodPost, "/api/hand-tracking/process-frame", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
		}
	})
}

func TestServer_CORS(t *testing.T) {
	origins := []string{"http://localhost:3000", "https://example.com"}
	s := New(Config{AllowedOrigins: origins})

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("expected origin echoed back, got %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("expected credentials allowed, got %q", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("expected Vary: Origin, got %q", got)
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no CORS headers, got origin %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("expected allowed methods on preflight response")
		}
	})

	t.Run("no origin header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no CORS headers, got origin %q", got)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		s := New(Config{})
		if s == nil {
			t.Fatal("expected non-nil server")
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}
