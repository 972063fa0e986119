package store

import (
	"encoding/json"
	"testing"
)

func TestTrainingSampleRepository_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.TrainingSamples()

	landmarks := json.RawMessage(`[[0.1,0.2,0.3],[0.4,0.5,0.6]]`)

	for _, sign := range []string{"A", "A", "B"} {
		sample := &TrainingSample{Sign: sign, Landmarks: landmarks}
		if err := repo.Create(sample); err != nil {
			t.Fatalf("failed to create sample: %v", err)
		}
		if sample.ID == 0 {
			t.Error("ID should be set after create")
		}
		if sample.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set after create")
		}
	}

	t.Run("all", func(t *testing.T) {
		all, err := repo.List("")
		if err != nil {
			t.Fatalf("failed to list samples: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 samples, got %d", len(all))
		}
		// Insert order is preserved
		for i, want := range []string{"A", "A", "B"} {
			if all[i].Sign != want {
				t.Errorf("sample %d: got sign %q, want %q", i, all[i].Sign, want)
			}
		}
		if string(all[0].Landmarks) != string(landmarks) {
			t.Errorf("landmarks should round-trip unchanged: got %s", all[0].Landmarks)
		}
	})

	t.Run("filtered by sign", func(t *testing.T) {
		filtered, err := repo.List("A")
		if err != nil {
			t.Fatalf("failed to list samples: %v", err)
		}
		if len(filtered) != 2 {
			t.Fatalf("expected 2 samples for sign A, got %d", len(filtered))
		}
	})

	t.Run("unknown sign", func(t *testing.T) {
		filtered, err := repo.List("Z")
		if err != nil {
			t.Fatalf("failed to list samples: %v", err)
		}
		if len(filtered) != 0 {
			t.Errorf("expected no samples for sign Z, got %d", len(filtered))
		}
	})
}

func TestTrainingSampleRepository_CreateBatch(t *testing.T) {
	s := newTestStore(t)
	repo := s.TrainingSamples()

	batch := []json.RawMessage{
		json.RawMessage(`[[0.1,0.2,0.3]]`),
		json.RawMessage(`[[0.4,0.5,0.6]]`),
		json.RawMessage(`[[0.7,0.8,0.9]]`),
	}
	if err := repo.CreateBatch("W", batch); err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}

	samples, err := repo.List("W")
	if err != nil {
		t.Fatalf("failed to list samples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	for i, sample := range samples {
		if string(sample.Landmarks) != string(batch[i]) {
			t.Errorf("sample %d landmarks: got %s, want %s", i, sample.Landmarks, batch[i])
		}
	}
}
