package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin filtering happens in the CORS layer
	},
}

// StreamHandler classifies landmark frames over a WebSocket connection.
// Each connection runs its own read-classify-write loop, so responses come
// back in the order the frames arrived and connections never interfere with
// each other.
type StreamHandler struct {
	classifier *classify.Manager
}

// NewStreamHandler creates a new StreamHandler for the given classifier.
func NewStreamHandler(c *classify.Manager) *StreamHandler {
	return &StreamHandler{classifier: c}
}

type streamFrame struct {
	Landmarks [][]float64 `json:"landmarks"`
	Timestamp int64       `json:"timestamp"`
}

type streamResponse struct {
	*classify.Prediction
	Timestamp int64 `json:"timestamp"`
}

type streamError struct {
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

// ServeHTTP upgrades the connection and serves the per-connection loop.
// Malformed frames are answered with an error message on the same
// connection; only a read or write failure ends the loop.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame streamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if err := conn.WriteJSON(streamError{Error: "Invalid JSON"}); err != nil {
				return
			}
			continue
		}

		prediction, err := h.classifier.Predict(frame.Landmarks)
		if err != nil {
			status, message := predictionError(err)
			if status == http.StatusInternalServerError {
				log.Printf("stream predict failed: %v", err)
			}
			if err := conn.WriteJSON(streamError{Error: message, Timestamp: frame.Timestamp}); err != nil {
				return
			}
			continue
		}

		response := streamResponse{Prediction: prediction, Timestamp: frame.Timestamp}
		if err := conn.WriteJSON(response); err != nil {
			return
		}
	}
}
