package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// onnxLabels is the label sidecar written next to exported .onnx models by
// the deployment packaging step. Labels are keyed by stringified class index.
type onnxLabels struct {
	NumClasses int               `json:"num_classes"`
	IdxToLabel map[string]string `json:"idx_to_label"`
}

// labelsSidecarPath returns the labels.json path next to a model file.
func labelsSidecarPath(modelPath string) string {
	return filepath.Join(filepath.Dir(modelPath), "labels.json")
}

// parseONNXLabels converts the sidecar's index-keyed map into an ordered
// label slice, requiring every class index in [0, num_classes) exactly once.
func parseONNXLabels(data []byte) (int, []string, error) {
	var raw onnxLabels
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	if raw.NumClasses < 1 {
		return 0, nil, fmt.Errorf("num_classes must be positive, got %d", raw.NumClasses)
	}

	labels := make([]string, raw.NumClasses)
	seen := make([]bool, raw.NumClasses)
	for key, label := range raw.IdxToLabel {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return 0, nil, fmt.Errorf("label index %q is not a number", key)
		}
		if idx < 0 || idx >= raw.NumClasses {
			return 0, nil, fmt.Errorf("label index %d out of range for %d classes", idx, raw.NumClasses)
		}
		if seen[idx] {
			return 0, nil, fmt.Errorf("duplicate label index %d", idx)
		}
		seen[idx] = true
		labels[idx] = label
	}
	for i, ok := range seen {
		if !ok {
			return 0, nil, fmt.Errorf("missing label for class %d", i)
		}
	}
	return raw.NumClasses, labels, nil
}

// loadONNX loads an exported model.onnx and its labels.json sidecar into an
// artifact description plus a ready scorer.
func loadONNX(modelPath string) (*Artifact, Scorer, error) {
	sidecar := labelsSidecarPath(modelPath)
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", sidecar, err)
	}
	numClasses, labels, err := parseONNXLabels(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", sidecar, err)
	}

	scorer, err := newONNXScorer(modelPath, landmark.FeatureSize, numClasses)
	if err != nil {
		return nil, nil, err
	}

	artifact := &Artifact{
		ModelType:  ModelONNX,
		NumClasses: numClasses,
		InputSize:  landmark.FeatureSize,
		Labels:     labels,
	}
	return artifact, scorer, nil
}

// onnxScorer runs exported models through the ONNX runtime. The session
// reuses one input and one output tensor, so calls are serialized; the
// native Go scorers stay lock-free.
type onnxScorer struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newONNXScorer(modelPath string, inputSize, numClasses int) (*onnxScorer, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(inputSize)))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numClasses)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxScorer{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

func (s *onnxScorer) Scores(features []float64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, fmt.Errorf("scorer is closed")
	}

	data := s.input.GetData()
	if len(features) != len(data) {
		return nil, fmt.Errorf("expected %d features, got %d", len(data), len(features))
	}
	for i, v := range features {
		data[i] = float32(v)
	}

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	scores := make([]float64, len(out))
	for i, v := range out {
		scores[i] = float64(v)
	}
	return scores, nil
}

// Close destroys the runtime session and its tensors.
func (s *onnxScorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	return nil
}
