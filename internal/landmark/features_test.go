package landmark

import (
	"errors"
	"strings"
	"testing"
)

func validPoints() [][]float64 {
	points := make([][]float64, NumLandmarks)
	for i := range points {
		points[i] = []float64{float64(i) * 0.01, float64(i) * 0.02, float64(i) * 0.001}
	}
	return points
}

func TestValidate(t *testing.T) {
	t.Run("accepts exactly 21 landmarks", func(t *testing.T) {
		if err := Validate(validPoints()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("rejects wrong landmark counts", func(t *testing.T) {
		for _, count := range []int{0, 1, 20, 22, 42} {
			points := make([][]float64, count)
			for i := range points {
				points[i] = []float64{0, 0, 0}
			}

			err := Validate(points)
			if err == nil {
				t.Errorf("expected error for %d landmarks", count)
				continue
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError for %d landmarks, got %T", count, err)
				continue
			}
			if verr.Expected != NumLandmarks || verr.Actual != count {
				t.Errorf("count %d: expected %d/%d in error, got %d/%d",
					count, NumLandmarks, count, verr.Expected, verr.Actual)
			}
		}
	})

	t.Run("rejects nil points", func(t *testing.T) {
		if err := Validate(nil); err == nil {
			t.Fatal("expected error for nil points")
		}
	})

	t.Run("rejects non-triple coordinates", func(t *testing.T) {
		for _, coords := range []int{0, 1, 2, 4} {
			points := validPoints()
			points[7] = make([]float64, coords)

			err := Validate(points)
			if err == nil {
				t.Errorf("expected error for %d coordinates", coords)
				continue
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError for %d coordinates, got %T", coords, err)
				continue
			}
			if verr.Expected != NumCoords || verr.Actual != coords {
				t.Errorf("coords %d: expected %d/%d in error, got %d/%d",
					coords, NumCoords, coords, verr.Expected, verr.Actual)
			}
			if !strings.Contains(verr.Field, "7") {
				t.Errorf("expected field to name landmark 7, got %q", verr.Field)
			}
		}
	})

	t.Run("error message names expected and actual", func(t *testing.T) {
		err := Validate(make([][]float64, 5))
		if err == nil {
			t.Fatal("expected error")
		}
		msg := err.Error()
		if !strings.Contains(msg, "21") || !strings.Contains(msg, "5") {
			t.Errorf("expected message to contain both counts, got %q", msg)
		}
	})
}

func TestFlatten(t *testing.T) {
	t.Run("concatenates coordinates in landmark order", func(t *testing.T) {
		points := validPoints()

		features, err := Flatten(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(features) != FeatureSize {
			t.Fatalf("expected %d features, got %d", FeatureSize, len(features))
		}

		for i, p := range points {
			for k := 0; k < NumCoords; k++ {
				if features[3*i+k] != p[k] {
					t.Errorf("feature[%d] = %f, want %f", 3*i+k, features[3*i+k], p[k])
				}
			}
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		points := validPoints()

		first, err := Flatten(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Flatten(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("feature %d differs between identical calls: %f vs %f", i, first[i], second[i])
			}
		}
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		if _, err := Flatten(make([][]float64, 3)); err == nil {
			t.Fatal("expected error for 3 landmarks")
		}
	})
}

func TestFromPoints(t *testing.T) {
	t.Run("builds hand from valid points", func(t *testing.T) {
		points := validPoints()

		hand, err := FromPoints(points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i := 0; i < NumLandmarks; i++ {
			if hand.Points[i].X != points[i][0] ||
				hand.Points[i].Y != points[i][1] ||
				hand.Points[i].Z != points[i][2] {
				t.Errorf("landmark %d = %+v, want (%f, %f, %f)",
					i, hand.Points[i], points[i][0], points[i][1], points[i][2])
			}
		}
	})

	t.Run("rejects invalid points", func(t *testing.T) {
		if _, err := FromPoints(make([][]float64, 2)); err == nil {
			t.Fatal("expected error for 2 landmarks")
		}
	})
}
