package detector

import (
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []landmark.Hand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []landmark.Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame []byte) ([]landmark.Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// LetterAPose returns a preset hand signing the ASL letter A: a fist with the
// thumb resting alongside the index finger.
func LetterAPose() landmark.Hand {
	hand := landmark.Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	hand.Points[landmark.Wrist] = landmark.Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb alongside the fist, tip only slightly above the knuckle line
	hand.Points[landmark.ThumbCMC] = landmark.Point3D{X: 0.56, Y: 0.75, Z: 0.0}
	hand.Points[landmark.ThumbMCP] = landmark.Point3D{X: 0.58, Y: 0.71, Z: 0.01}
	hand.Points[landmark.ThumbIP] = landmark.Point3D{X: 0.58, Y: 0.66, Z: 0.02}
	hand.Points[landmark.ThumbTip] = landmark.Point3D{X: 0.58, Y: 0.62, Z: 0.02}

	// Index finger curled into the palm
	hand.Points[landmark.IndexMCP] = landmark.Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	hand.Points[landmark.IndexPIP] = landmark.Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	hand.Points[landmark.IndexDIP] = landmark.Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	hand.Points[landmark.IndexTip] = landmark.Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	hand.Points[landmark.MiddleMCP] = landmark.Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	hand.Points[landmark.MiddlePIP] = landmark.Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	hand.Points[landmark.MiddleDIP] = landmark.Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	hand.Points[landmark.MiddleTip] = landmark.Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	hand.Points[landmark.RingMCP] = landmark.Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	hand.Points[landmark.RingPIP] = landmark.Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	hand.Points[landmark.RingDIP] = landmark.Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	hand.Points[landmark.RingTip] = landmark.Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	hand.Points[landmark.PinkyMCP] = landmark.Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	hand.Points[landmark.PinkyPIP] = landmark.Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	hand.Points[landmark.PinkyDIP] = landmark.Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	hand.Points[landmark.PinkyTip] = landmark.Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return hand
}

// LetterBPose returns a preset hand signing the ASL letter B: a flat hand with
// the four fingers extended together and the thumb folded across the palm.
func LetterBPose() landmark.Hand {
	hand := landmark.Hand{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist at base
	hand.Points[landmark.Wrist] = landmark.Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb folded across the palm toward the pinky side
	hand.Points[landmark.ThumbCMC] = landmark.Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	hand.Points[landmark.ThumbMCP] = landmark.Point3D{X: 0.53, Y: 0.71, Z: -0.02}
	hand.Points[landmark.ThumbIP] = landmark.Point3D{X: 0.49, Y: 0.70, Z: -0.03}
	hand.Points[landmark.ThumbTip] = landmark.Point3D{X: 0.46, Y: 0.69, Z: -0.03}

	// Index finger extended upward
	hand.Points[landmark.IndexMCP] = landmark.Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	hand.Points[landmark.IndexPIP] = landmark.Point3D{X: 0.56, Y: 0.55, Z: 0.0}
	hand.Points[landmark.IndexDIP] = landmark.Point3D{X: 0.56, Y: 0.45, Z: 0.0}
	hand.Points[landmark.IndexTip] = landmark.Point3D{X: 0.56, Y: 0.36, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	hand.Points[landmark.MiddleMCP] = landmark.Point3D{X: 0.52, Y: 0.66, Z: 0.0}
	hand.Points[landmark.MiddlePIP] = landmark.Point3D{X: 0.52, Y: 0.52, Z: 0.0}
	hand.Points[landmark.MiddleDIP] = landmark.Point3D{X: 0.52, Y: 0.40, Z: 0.0}
	hand.Points[landmark.MiddleTip] = landmark.Point3D{X: 0.52, Y: 0.30, Z: 0.0}

	// Ring finger extended upward
	hand.Points[landmark.RingMCP] = landmark.Point3D{X: 0.48, Y: 0.67, Z: 0.0}
	hand.Points[landmark.RingPIP] = landmark.Point3D{X: 0.48, Y: 0.54, Z: 0.0}
	hand.Points[landmark.RingDIP] = landmark.Point3D{X: 0.48, Y: 0.43, Z: 0.0}
	hand.Points[landmark.RingTip] = landmark.Point3D{X: 0.48, Y: 0.34, Z: 0.0}

	// Pinky finger extended upward
	hand.Points[landmark.PinkyMCP] = landmark.Point3D{X: 0.44, Y: 0.69, Z: 0.0}
	hand.Points[landmark.PinkyPIP] = landmark.Point3D{X: 0.44, Y: 0.58, Z: 0.0}
	hand.Points[landmark.PinkyDIP] = landmark.Point3D{X: 0.44, Y: 0.49, Z: 0.0}
	hand.Points[landmark.PinkyTip] = landmark.Point3D{X: 0.44, Y: 0.41, Z: 0.0}

	return hand
}
