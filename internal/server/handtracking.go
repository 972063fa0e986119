package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/detector"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// HandTrackingHandler runs server-side hand detection on frames posted by
// clients in maximum performance mode.
type HandTrackingHandler struct {
	detector detector.Detector
}

// NewHandTrackingHandler creates a new HandTrackingHandler with the given
// detector.
func NewHandTrackingHandler(d detector.Detector) *HandTrackingHandler {
	return &HandTrackingHandler{detector: d}
}

type processFrameRequest struct {
	ImageData string `json:"image_data"`
}

type processFrameResponse struct {
	Landmarks        [][][]float64 `json:"landmarks"`
	HandCount        int           `json:"hand_count"`
	ProcessingTimeMS float64       `json:"processing_time_ms"`
}

// ServeHTTP handles POST /api/hand-tracking/process-frame.
func (h *HandTrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req processFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	frame, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image data")
		return
	}

	start := time.Now()
	hands, err := h.detector.Detect(frame)
	if err != nil {
		if errors.Is(err, detector.ErrInvalidFrame) {
			writeError(w, http.StatusBadRequest, "Invalid image data")
			return
		}
		log.Printf("hand tracking failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Frame processing failed")
		return
	}
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	writeJSON(w, http.StatusOK, processFrameResponse{
		Landmarks:        handsToLandmarks(hands),
		HandCount:        len(hands),
		ProcessingTimeMS: elapsed,
	})
}

// handsToLandmarks converts detected hands to the wire format: one 21x3
// coordinate list per hand.
func handsToLandmarks(hands []landmark.Hand) [][][]float64 {
	out := make([][][]float64, 0, len(hands))
	for _, hand := range hands {
		points := make([][]float64, 0, landmark.NumLandmarks)
		for _, p := range hand.Points {
			points = append(points, []float64{p.X, p.Y, p.Z})
		}
		out = append(out, points)
	}
	return out
}
