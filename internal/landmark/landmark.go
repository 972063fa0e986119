// Package landmark defines the hand landmark data model shared by the hand
// tracker and the sign classifier.
package landmark

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// NumCoords is the number of coordinates per landmark (x, y, z).
const NumCoords = 3

// FeatureSize is the length of a flattened landmark set, the classifier's
// input width.
const FeatureSize = NumLandmarks * NumCoords

// Point3D represents a 3D point in space with x, y, z coordinates.
// Coordinates are nominally normalized image-relative values in [0,1],
// produced by the hand tracker.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand represents the 21 hand landmarks of one tracked hand at one instant.
// Order is significant: position 0 is the wrist and subsequent indices are
// fixed anatomical joints.
type Hand struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes the hand landmarks relative to wrist position and hand
// size. The normalized landmarks have the wrist at origin (0,0,0) and are
// scaled so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new Hand instance with normalized points.
func (h *Hand) Normalize() *Hand {
	if h == nil {
		return nil
	}

	normalized := &Hand{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	// Translate all points relative to the wrist
	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	// Scale so the wrist to middle finger MCP distance is 1.0
	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}

// Features returns the flattened 63-element feature vector for the hand,
// concatenating each point's coordinates in point order.
func (h *Hand) Features() []float64 {
	features := make([]float64, 0, FeatureSize)
	for i := 0; i < NumLandmarks; i++ {
		features = append(features, h.Points[i].X, h.Points[i].Y, h.Points[i].Z)
	}
	return features
}
