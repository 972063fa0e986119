// Package classify implements the sign classifier: model artifact loading,
// the feed-forward and recurrent scorers, softmax, letter selection, and the
// atomically swappable model manager the server predicts through.
package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// Model types understood by the loader.
const (
	ModelMLP  = "mlp"
	ModelLSTM = "lstm"
	ModelONNX = "onnx"
)

// Artifact is a trained model file. The trainer writes it, the server loads
// it. Labels are ordered by class index and must match num_classes exactly.
type Artifact struct {
	ModelType  string       `json:"model_type"`
	NumClasses int          `json:"num_classes"`
	InputSize  int          `json:"input_size"`
	Labels     []string     `json:"labels"`
	MLP        *MLPWeights  `json:"mlp,omitempty"`
	LSTM       *LSTMWeights `json:"lstm,omitempty"`
}

// MLPWeights holds the dense layer stack of a feed-forward model. All layers
// except the last carry batch normalization statistics and are followed by a
// ReLU; the last layer produces the raw class scores.
type MLPWeights struct {
	Layers []DenseLayer `json:"layers"`
}

// DenseLayer is one fully connected layer, optionally with the batch
// normalization statistics trained alongside it. W has one row per output.
type DenseLayer struct {
	W       [][]float64 `json:"w"`
	B       []float64   `json:"b"`
	BNGamma []float64   `json:"bn_gamma,omitempty"`
	BNBeta  []float64   `json:"bn_beta,omitempty"`
	BNMean  []float64   `json:"bn_mean,omitempty"`
	BNVar   []float64   `json:"bn_var,omitempty"`
}

func (l *DenseLayer) hasBatchNorm() bool {
	return len(l.BNGamma) > 0 || len(l.BNBeta) > 0 || len(l.BNMean) > 0 || len(l.BNVar) > 0
}

// LSTMWeights holds the stacked recurrent cells and the classification head
// applied to the final hidden state.
type LSTMWeights struct {
	HiddenSize int          `json:"hidden_size"`
	Layers     []LSTMLayer  `json:"layers"`
	Head       []DenseLayer `json:"head"`
}

// LSTMLayer is one recurrent cell. Weight rows are stacked gates in the
// order input, forget, cell, output: 4*hidden_size rows total.
type LSTMLayer struct {
	WIH [][]float64 `json:"w_ih"`
	WHH [][]float64 `json:"w_hh"`
	BIH []float64   `json:"b_ih"`
	BHH []float64   `json:"b_hh"`
}

// LoadArtifact reads and validates a native JSON artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	return ParseArtifact(data)
}

// ParseArtifact decodes and validates a native JSON artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &a, nil
}

// Validate checks the artifact metadata and that every weight shape chains
// from input_size through to num_classes.
func (a *Artifact) Validate() error {
	if a.NumClasses < 1 {
		return fmt.Errorf("num_classes must be positive, got %d", a.NumClasses)
	}
	if a.InputSize < 1 {
		return fmt.Errorf("input_size must be positive, got %d", a.InputSize)
	}
	if len(a.Labels) != a.NumClasses {
		return fmt.Errorf("got %d labels for %d classes", len(a.Labels), a.NumClasses)
	}

	switch a.ModelType {
	case ModelMLP:
		if a.MLP == nil || len(a.MLP.Layers) == 0 {
			return fmt.Errorf("mlp model has no layers")
		}
		if err := validateDense(a.MLP.Layers, a.InputSize, a.NumClasses); err != nil {
			return fmt.Errorf("mlp: %w", err)
		}
	case ModelLSTM:
		if a.LSTM == nil || len(a.LSTM.Layers) == 0 {
			return fmt.Errorf("lstm model has no layers")
		}
		if err := a.LSTM.validate(a.InputSize, a.NumClasses); err != nil {
			return fmt.Errorf("lstm: %w", err)
		}
	default:
		return fmt.Errorf("unknown model_type %q", a.ModelType)
	}
	return nil
}

// validateDense walks a dense layer chain checking that each layer consumes
// what the previous one produces and that the final width matches numOutputs.
func validateDense(layers []DenseLayer, inputSize, numOutputs int) error {
	in := inputSize
	for i := range layers {
		layer := &layers[i]

		rows, cols, err := matrixShape(layer.W)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if cols != in {
			return fmt.Errorf("layer %d: weights expect %d inputs, previous layer provides %d", i, cols, in)
		}
		if len(layer.B) != rows {
			return fmt.Errorf("layer %d: got %d biases for %d outputs", i, len(layer.B), rows)
		}
		if layer.hasBatchNorm() {
			for name, vals := range map[string][]float64{
				"bn_gamma": layer.BNGamma,
				"bn_beta":  layer.BNBeta,
				"bn_mean":  layer.BNMean,
				"bn_var":   layer.BNVar,
			} {
				if len(vals) != rows {
					return fmt.Errorf("layer %d: %s has %d values for %d outputs", i, name, len(vals), rows)
				}
			}
		}
		in = rows
	}
	if in != numOutputs {
		return fmt.Errorf("output layer produces %d values, expected %d", in, numOutputs)
	}
	return nil
}

func (w *LSTMWeights) validate(inputSize, numClasses int) error {
	if w.HiddenSize < 1 {
		return fmt.Errorf("hidden_size must be positive, got %d", w.HiddenSize)
	}

	gateRows := 4 * w.HiddenSize
	in := inputSize
	for i := range w.Layers {
		layer := &w.Layers[i]

		rows, cols, err := matrixShape(layer.WIH)
		if err != nil {
			return fmt.Errorf("layer %d: w_ih: %w", i, err)
		}
		if rows != gateRows || cols != in {
			return fmt.Errorf("layer %d: w_ih is %dx%d, expected %dx%d", i, rows, cols, gateRows, in)
		}

		rows, cols, err = matrixShape(layer.WHH)
		if err != nil {
			return fmt.Errorf("layer %d: w_hh: %w", i, err)
		}
		if rows != gateRows || cols != w.HiddenSize {
			return fmt.Errorf("layer %d: w_hh is %dx%d, expected %dx%d", i, rows, cols, gateRows, w.HiddenSize)
		}

		if len(layer.BIH) != gateRows {
			return fmt.Errorf("layer %d: b_ih has %d values, expected %d", i, len(layer.BIH), gateRows)
		}
		if len(layer.BHH) != gateRows {
			return fmt.Errorf("layer %d: b_hh has %d values, expected %d", i, len(layer.BHH), gateRows)
		}
		in = w.HiddenSize
	}

	if len(w.Head) == 0 {
		return fmt.Errorf("model has no head layers")
	}
	if err := validateDense(w.Head, w.HiddenSize, numClasses); err != nil {
		return fmt.Errorf("head: %w", err)
	}
	return nil
}

// matrixShape returns the dimensions of a weight matrix, rejecting empty and
// ragged matrices.
func matrixShape(w [][]float64) (rows, cols int, err error) {
	if len(w) == 0 {
		return 0, 0, fmt.Errorf("weight matrix is empty")
	}
	cols = len(w[0])
	if cols == 0 {
		return 0, 0, fmt.Errorf("weight matrix has empty rows")
	}
	for i, row := range w {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("weight matrix row %d has %d values, row 0 has %d", i, len(row), cols)
		}
	}
	return len(w), cols, nil
}
