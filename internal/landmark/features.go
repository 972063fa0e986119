package landmark

import "fmt"

// ValidationError reports a malformed landmark set. It is recoverable: the
// request is rejected and shared state is untouched.
type ValidationError struct {
	Field    string // what was malformed: "landmarks", "landmark[i]", "features"
	Expected int
	Actual   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// Validate checks that points is exactly 21 landmarks of exactly 3 coordinates
// each. On success the set passes through unchanged; no side effects.
func Validate(points [][]float64) error {
	if len(points) != NumLandmarks {
		return &ValidationError{Field: "landmarks", Expected: NumLandmarks, Actual: len(points)}
	}
	for i, p := range points {
		if len(p) != NumCoords {
			return &ValidationError{
				Field:    fmt.Sprintf("landmark[%d] coordinates", i),
				Expected: NumCoords,
				Actual:   len(p),
			}
		}
	}
	return nil
}

// Flatten converts a valid 21-point landmark set into the 63-element feature
// vector, concatenating each point's coordinates in point order:
// features[3*i+k] == points[i][k]. The conversion is deterministic; identical
// input always yields identical output.
func Flatten(points [][]float64) ([]float64, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}

	features := make([]float64, 0, FeatureSize)
	for _, p := range points {
		features = append(features, p[0], p[1], p[2])
	}

	// Defensive re-check of the flattened length.
	if len(features) != FeatureSize {
		return nil, &ValidationError{Field: "features", Expected: FeatureSize, Actual: len(features)}
	}

	return features, nil
}

// FromPoints builds a Hand from a validated 21x3 landmark set.
func FromPoints(points [][]float64) (*Hand, error) {
	if err := Validate(points); err != nil {
		return nil, err
	}

	h := &Hand{}
	for i, p := range points {
		h.Points[i] = Point3D{X: p[0], Y: p[1], Z: p[2]}
	}
	return h, nil
}
