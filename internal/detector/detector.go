// Package detector provides hand landmark detection from encoded video frames.
package detector

import "github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes an encoded video frame (JPEG or PNG) and returns
	// detected hand landmarks. Returns an empty slice if no hands are detected.
	Detect(frame []byte) ([]landmark.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// MaxFrameWidth caps the width of frames handed to the tracker. Wider
	// frames are downscaled first (default: 640).
	MaxFrameWidth int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		MaxFrameWidth:   640,
	}
}
