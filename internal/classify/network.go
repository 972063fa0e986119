package classify

import (
	"fmt"
	"math"
)

// batchNormEpsilon matches the training-time epsilon baked into the batch
// normalization statistics of MLP artifacts.
const batchNormEpsilon = 1e-5

// Scorer produces one raw score (logit) per class for a feature vector.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Scores(features []float64) ([]float64, error)
}

// NewScorer builds the scorer for a validated native artifact.
func NewScorer(a *Artifact) (Scorer, error) {
	switch a.ModelType {
	case ModelMLP:
		return &mlpScorer{layers: a.MLP.Layers, inputSize: a.InputSize}, nil
	case ModelLSTM:
		return &lstmScorer{
			layers:    a.LSTM.Layers,
			head:      a.LSTM.Head,
			hidden:    a.LSTM.HiddenSize,
			inputSize: a.InputSize,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model_type %q", a.ModelType)
	}
}

// mlpScorer runs the feed-forward stack: Linear -> BatchNorm -> ReLU per
// hidden layer, bare Linear for the output layer. Dropout is inert at
// inference time. Weights are never mutated, so concurrent calls are safe.
type mlpScorer struct {
	layers    []DenseLayer
	inputSize int
}

func (s *mlpScorer) Scores(features []float64) ([]float64, error) {
	if len(features) != s.inputSize {
		return nil, fmt.Errorf("expected %d features, got %d", s.inputSize, len(features))
	}

	x := features
	last := len(s.layers) - 1
	for i := range s.layers {
		layer := &s.layers[i]
		x = affine(layer.W, x, layer.B)
		if i == last {
			break
		}
		if layer.hasBatchNorm() {
			batchNorm(x, layer)
		}
		relu(x)
	}
	return x, nil
}

// lstmScorer runs the stacked recurrent cells over a sequence of feature
// vectors and scores the final hidden state of the top cell through the
// Linear -> ReLU -> Linear head.
type lstmScorer struct {
	layers    []LSTMLayer
	head      []DenseLayer
	hidden    int
	inputSize int
}

// Scores treats the feature vector as a single-step sequence.
func (s *lstmScorer) Scores(features []float64) ([]float64, error) {
	return s.ScoresSequence([][]float64{features})
}

// ScoresSequence steps every cell through the sequence in order and returns
// one score vector regardless of sequence length.
func (s *lstmScorer) ScoresSequence(seq [][]float64) ([]float64, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("empty feature sequence")
	}

	h := make([][]float64, len(s.layers))
	c := make([][]float64, len(s.layers))
	for l := range s.layers {
		h[l] = make([]float64, s.hidden)
		c[l] = make([]float64, s.hidden)
	}

	for t, features := range seq {
		if len(features) != s.inputSize {
			return nil, fmt.Errorf("step %d: expected %d features, got %d", t, s.inputSize, len(features))
		}
		x := features
		for l := range s.layers {
			stepCell(&s.layers[l], x, h[l], c[l], s.hidden)
			x = h[l]
		}
	}

	out := h[len(s.layers)-1]
	last := len(s.head) - 1
	for i := range s.head {
		out = affine(s.head[i].W, out, s.head[i].B)
		if i != last {
			relu(out)
		}
	}
	return out, nil
}

// stepCell advances one cell by a single timestep, updating h and c in place.
// Gate rows follow the input, forget, cell, output layout of the weights.
func stepCell(l *LSTMLayer, x, h, c []float64, hidden int) {
	gates := affine(l.WIH, x, l.BIH)
	rec := affine(l.WHH, h, l.BHH)
	for j := range gates {
		gates[j] += rec[j]
	}

	for j := 0; j < hidden; j++ {
		i := sigmoid(gates[j])
		f := sigmoid(gates[hidden+j])
		g := math.Tanh(gates[2*hidden+j])
		o := sigmoid(gates[3*hidden+j])

		c[j] = f*c[j] + i*g
		h[j] = o * math.Tanh(c[j])
	}
}

// Softmax converts raw scores into a probability distribution. The maximum
// score is subtracted before exponentiation so large logits cannot overflow.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	max := scores[0]
	for _, v := range scores[1:] {
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, v := range scores {
		e := math.Exp(v - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// affine computes w*x + b, one output per weight row.
func affine(w [][]float64, x, b []float64) []float64 {
	out := make([]float64, len(w))
	for j, row := range w {
		sum := b[j]
		for k, v := range row {
			sum += v * x[k]
		}
		out[j] = sum
	}
	return out
}

// batchNorm applies inference-time batch normalization in place using the
// running statistics stored in the layer.
func batchNorm(x []float64, l *DenseLayer) {
	for j := range x {
		norm := (x[j] - l.BNMean[j]) / math.Sqrt(l.BNVar[j]+batchNormEpsilon)
		x[j] = norm*l.BNGamma[j] + l.BNBeta[j]
	}
}

func relu(x []float64) {
	for j, v := range x {
		if v < 0 {
			x[j] = 0
		}
	}
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}
