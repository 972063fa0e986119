package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// validLandmarks returns a well-formed 21-point landmark set.
func validLandmarks() [][]float64 {
	points := make([][]float64, landmark.NumLandmarks)
	for i := range points {
		points[i] = []float64{float64(i) * 0.01, float64(i) * 0.02, 0}
	}
	return points
}

func TestTrainingSamplesHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewTrainingSamplesHandler(s)

	body, _ := json.Marshal(createSampleRequest{
		Sign:      "A",
		Landmarks: validLandmarks(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/training/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var sample store.TrainingSample
	if err := json.NewDecoder(rec.Body).Decode(&sample); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sample.ID == 0 {
		t.Error("expected a non-zero sample ID")
	}
	if sample.Sign != "A" {
		t.Errorf("expected sign A, got %q", sample.Sign)
	}

	// The landmark payload round-trips through storage.
	stored, err := s.TrainingSamples().List("A")
	if err != nil {
		t.Fatalf("failed to list samples: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored sample, got %d", len(stored))
	}
	var points [][]float64
	if err := json.Unmarshal(stored[0].Landmarks, &points); err != nil {
		t.Fatalf("failed to decode stored landmarks: %v", err)
	}
	if len(points) != landmark.NumLandmarks {
		t.Errorf("expected %d stored points, got %d", landmark.NumLandmarks, len(points))
	}
}

func TestTrainingSamplesHandler_Create_Validation(t *testing.T) {
	s := newTestStore(t)
	handler := NewTrainingSamplesHandler(s)

	short := validLandmarks()[:20]
	shortBody, _ := json.Marshal(createSampleRequest{Sign: "A", Landmarks: short})

	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"missing sign", mustMarshal(t, createSampleRequest{Landmarks: validLandmarks()}), "sign is required"},
		{"wrong landmark count", shortBody, "landmarks: expected 21, got 20"},
		{"invalid json", []byte("nope"), "Invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/training/samples", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}

			var errResp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error != tt.want {
				t.Errorf("expected error %q, got %q", tt.want, errResp.Error)
			}
		})
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return data
}

func TestTrainingSamplesHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewTrainingSamplesHandler(s)

	data, _ := json.Marshal(validLandmarks())
	for _, sign := range []string{"A", "A", "B"} {
		err := s.TrainingSamples().Create(&store.TrainingSample{Sign: sign, Landmarks: data})
		if err != nil {
			t.Fatalf("failed to seed sample: %v", err)
		}
	}

	t.Run("all samples", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/training/samples", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var samples []store.TrainingSample
		if err := json.NewDecoder(rec.Body).Decode(&samples); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(samples) != 3 {
			t.Errorf("expected 3 samples, got %d", len(samples))
		}
	})

	t.Run("sign filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/training/samples?sign=B", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		var samples []store.TrainingSample
		if err := json.NewDecoder(rec.Body).Decode(&samples); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(samples) != 1 || samples[0].Sign != "B" {
			t.Errorf("expected only the B sample, got %+v", samples)
		}
	})
}

func TestTrainingSamplesHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewTrainingSamplesHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/training/samples", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
