package training

import (
	"math"
	"math/rand"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
)

// Optimizer and batch normalization constants, matching the statistics the
// serving-side forward pass expects.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8

	bnEpsilon  = 1e-5
	bnMomentum = 0.1
)

// trainLayer is one dense layer with its optimizer state. Hidden layers carry
// batch normalization parameters and running statistics; the output layer
// does not.
type trainLayer struct {
	in, out   int
	batchNorm bool

	w     [][]float64
	b     []float64
	gamma []float64
	beta  []float64

	runMean []float64
	runVar  []float64

	// Adam first and second moments per parameter tensor.
	wM, wV         [][]float64
	bM, bV         []float64
	gammaM, gammaV []float64
	betaM, betaV   []float64
}

func newTrainLayer(rng *rand.Rand, in, out int, batchNorm bool) *trainLayer {
	l := &trainLayer{in: in, out: out, batchNorm: batchNorm}

	// Uniform init over +-1/sqrt(in) for weights and biases.
	bound := 1.0 / math.Sqrt(float64(in))
	l.w = make([][]float64, out)
	l.wM = make([][]float64, out)
	l.wV = make([][]float64, out)
	for j := range l.w {
		l.w[j] = make([]float64, in)
		l.wM[j] = make([]float64, in)
		l.wV[j] = make([]float64, in)
		for k := range l.w[j] {
			l.w[j][k] = (2*rng.Float64() - 1) * bound
		}
	}
	l.b = make([]float64, out)
	l.bM = make([]float64, out)
	l.bV = make([]float64, out)
	for j := range l.b {
		l.b[j] = (2*rng.Float64() - 1) * bound
	}

	if batchNorm {
		l.gamma = make([]float64, out)
		l.beta = make([]float64, out)
		l.runMean = make([]float64, out)
		l.runVar = make([]float64, out)
		l.gammaM = make([]float64, out)
		l.gammaV = make([]float64, out)
		l.betaM = make([]float64, out)
		l.betaV = make([]float64, out)
		for j := 0; j < out; j++ {
			l.gamma[j] = 1
			l.runVar[j] = 1
		}
	}
	return l
}

// batchCache holds the per-batch intermediates the backward pass needs.
type batchCache struct {
	in       [][]float64 // layer input
	xhat     [][]float64 // normalized linear output (batch norm layers)
	invStd   []float64
	act      [][]float64 // layer output consumed by the next layer
	reluMask [][]bool
	dropMask [][]float64 // inverted dropout scale factors, 0 for dropped units
}

// forward runs the layer over a batch. Training mode normalizes with batch
// statistics, updates the running estimates, and applies inverted dropout;
// eval mode uses the running estimates and keeps every unit.
func (l *trainLayer) forward(in [][]float64, training bool, dropout float64, rng *rand.Rand) *batchCache {
	bsz := len(in)
	cache := &batchCache{in: in}

	z := make([][]float64, bsz)
	for s, x := range in {
		z[s] = affineRow(l.w, x, l.b)
	}

	if !l.batchNorm {
		cache.act = z
		return cache
	}

	var mean, variance []float64
	if training {
		mean = make([]float64, l.out)
		variance = make([]float64, l.out)
		for j := 0; j < l.out; j++ {
			var sum float64
			for s := range z {
				sum += z[s][j]
			}
			m := sum / float64(bsz)
			var sq float64
			for s := range z {
				d := z[s][j] - m
				sq += d * d
			}
			mean[j] = m
			variance[j] = sq / float64(bsz)
		}

		// Running estimates track the unbiased variance.
		for j := 0; j < l.out; j++ {
			unbiased := variance[j]
			if bsz > 1 {
				unbiased = variance[j] * float64(bsz) / float64(bsz-1)
			}
			l.runMean[j] = (1-bnMomentum)*l.runMean[j] + bnMomentum*mean[j]
			l.runVar[j] = (1-bnMomentum)*l.runVar[j] + bnMomentum*unbiased
		}
	} else {
		mean, variance = l.runMean, l.runVar
	}

	invStd := make([]float64, l.out)
	for j := range invStd {
		invStd[j] = 1.0 / math.Sqrt(variance[j]+bnEpsilon)
	}
	cache.invStd = invStd

	xhat := make([][]float64, bsz)
	act := make([][]float64, bsz)
	reluMask := make([][]bool, bsz)
	for s := range z {
		xhat[s] = make([]float64, l.out)
		act[s] = make([]float64, l.out)
		reluMask[s] = make([]bool, l.out)
		for j := 0; j < l.out; j++ {
			xh := (z[s][j] - mean[j]) * invStd[j]
			xhat[s][j] = xh
			y := l.gamma[j]*xh + l.beta[j]
			if y > 0 {
				act[s][j] = y
				reluMask[s][j] = true
			}
		}
	}
	cache.xhat = xhat
	cache.reluMask = reluMask

	if training && dropout > 0 {
		keep := 1.0 - dropout
		dropMask := make([][]float64, bsz)
		for s := range act {
			dropMask[s] = make([]float64, l.out)
			for j := 0; j < l.out; j++ {
				if rng.Float64() < keep {
					dropMask[s][j] = 1.0 / keep
					act[s][j] *= dropMask[s][j]
				} else {
					act[s][j] = 0
				}
			}
		}
		cache.dropMask = dropMask
	}

	cache.act = act
	return cache
}

// layerGrads accumulates one batch's parameter gradients.
type layerGrads struct {
	w     [][]float64
	b     []float64
	gamma []float64
	beta  []float64
}

func newLayerGrads(l *trainLayer) *layerGrads {
	g := &layerGrads{
		w: make([][]float64, l.out),
		b: make([]float64, l.out),
	}
	for j := range g.w {
		g.w[j] = make([]float64, l.in)
	}
	if l.batchNorm {
		g.gamma = make([]float64, l.out)
		g.beta = make([]float64, l.out)
	}
	return g
}

// backward consumes the gradient of the loss with respect to this layer's
// output, accumulates parameter gradients, and returns the gradient with
// respect to the layer input.
func (l *trainLayer) backward(cache *batchCache, dOut [][]float64, g *layerGrads) [][]float64 {
	bsz := len(dOut)

	dZ := dOut
	if l.batchNorm {
		// Back through dropout and relu to the normalized output.
		dY := make([][]float64, bsz)
		for s := range dOut {
			dY[s] = make([]float64, l.out)
			for j := 0; j < l.out; j++ {
				d := dOut[s][j]
				if cache.dropMask != nil {
					d *= cache.dropMask[s][j]
				}
				if !cache.reluMask[s][j] {
					d = 0
				}
				dY[s][j] = d
			}
		}

		dZ = make([][]float64, bsz)
		for s := range dZ {
			dZ[s] = make([]float64, l.out)
		}
		n := float64(bsz)
		for j := 0; j < l.out; j++ {
			var sumD, sumDX float64
			for s := 0; s < bsz; s++ {
				d := dY[s][j]
				g.gamma[j] += d * cache.xhat[s][j]
				g.beta[j] += d
				dxhat := d * l.gamma[j]
				sumD += dxhat
				sumDX += dxhat * cache.xhat[s][j]
			}
			for s := 0; s < bsz; s++ {
				dxhat := dY[s][j] * l.gamma[j]
				dZ[s][j] = (n*dxhat - sumD - cache.xhat[s][j]*sumDX) * cache.invStd[j] / n
			}
		}
	}

	dIn := make([][]float64, bsz)
	for s := range dZ {
		dIn[s] = make([]float64, l.in)
		x := cache.in[s]
		for j := 0; j < l.out; j++ {
			d := dZ[s][j]
			g.b[j] += d
			row := l.w[j]
			gw := g.w[j]
			for k := 0; k < l.in; k++ {
				gw[k] += d * x[k]
				dIn[s][k] += d * row[k]
			}
		}
	}
	return dIn
}

// applyAdam runs one Adam update on every parameter tensor of the layer.
func (l *trainLayer) applyAdam(g *layerGrads, lr, bc1, bc2 float64) {
	for j := range l.w {
		adamUpdate(l.w[j], g.w[j], l.wM[j], l.wV[j], lr, bc1, bc2)
	}
	adamUpdate(l.b, g.b, l.bM, l.bV, lr, bc1, bc2)
	if l.batchNorm {
		adamUpdate(l.gamma, g.gamma, l.gammaM, l.gammaV, lr, bc1, bc2)
		adamUpdate(l.beta, g.beta, l.betaM, l.betaV, lr, bc1, bc2)
	}
}

func adamUpdate(p, g, m, v []float64, lr, bc1, bc2 float64) {
	for i := range p {
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*g[i]
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*g[i]*g[i]
		mhat := m[i] / bc1
		vhat := v[i] / bc2
		p[i] -= lr * mhat / (math.Sqrt(vhat) + adamEpsilon)
	}
}

// mlpNet is the training-time network: batch-normalized hidden layers and a
// bare output layer.
type mlpNet struct {
	layers  []*trainLayer
	dropout float64
	rng     *rand.Rand
	step    int
}

func newMLPNet(rng *rand.Rand, inputSize int, hiddenSizes []int, numClasses int, dropout float64) *mlpNet {
	n := &mlpNet{dropout: dropout, rng: rng}
	in := inputSize
	for _, h := range hiddenSizes {
		n.layers = append(n.layers, newTrainLayer(rng, in, h, true))
		in = h
	}
	n.layers = append(n.layers, newTrainLayer(rng, in, numClasses, false))
	return n
}

// trainBatch runs one optimizer step on a batch. Returns the mean
// cross-entropy loss and the number of correct argmax predictions.
func (n *mlpNet) trainBatch(batch []Example, lr float64) (float64, int) {
	bsz := len(batch)
	in := make([][]float64, bsz)
	for s, ex := range batch {
		in[s] = ex.Features
	}

	caches := make([]*batchCache, len(n.layers))
	x := in
	for i, l := range n.layers {
		dropout := n.dropout
		if i == len(n.layers)-1 {
			dropout = 0
		}
		caches[i] = l.forward(x, true, dropout, n.rng)
		x = caches[i].act
	}
	logits := x

	// Softmax cross-entropy. Its gradient with respect to the logits is
	// probabilities minus the one-hot target, averaged over the batch.
	var loss float64
	correct := 0
	dOut := make([][]float64, bsz)
	for s, ex := range batch {
		probs := classify.Softmax(logits[s])
		loss += -math.Log(math.Max(probs[ex.Class], 1e-12))
		if argmax(logits[s]) == ex.Class {
			correct++
		}

		dOut[s] = make([]float64, len(probs))
		for j, p := range probs {
			dOut[s][j] = p / float64(bsz)
		}
		dOut[s][ex.Class] -= 1.0 / float64(bsz)
	}
	loss /= float64(bsz)

	grads := make([]*layerGrads, len(n.layers))
	d := dOut
	for i := len(n.layers) - 1; i >= 0; i-- {
		grads[i] = newLayerGrads(n.layers[i])
		d = n.layers[i].backward(caches[i], d, grads[i])
	}

	n.step++
	bc1 := 1 - math.Pow(adamBeta1, float64(n.step))
	bc2 := 1 - math.Pow(adamBeta2, float64(n.step))
	for i, l := range n.layers {
		l.applyAdam(grads[i], lr, bc1, bc2)
	}

	return loss, correct
}

// evaluate computes the mean batch loss and the accuracy percentage over a
// set without updating parameters or running statistics.
func (n *mlpNet) evaluate(examples []Example, batchSize int) (float64, float64) {
	if len(examples) == 0 {
		return 0, 0
	}

	var lossSum float64
	batches := 0
	correct := 0
	for start := 0; start < len(examples); start += batchSize {
		end := start + batchSize
		if end > len(examples) {
			end = len(examples)
		}
		batch := examples[start:end]

		in := make([][]float64, len(batch))
		for s, ex := range batch {
			in[s] = ex.Features
		}
		x := in
		for _, l := range n.layers {
			x = l.forward(x, false, 0, n.rng).act
		}

		var loss float64
		for s, ex := range batch {
			probs := classify.Softmax(x[s])
			loss += -math.Log(math.Max(probs[ex.Class], 1e-12))
			if argmax(x[s]) == ex.Class {
				correct++
			}
		}
		lossSum += loss / float64(len(batch))
		batches++
	}

	return lossSum / float64(batches), 100 * float64(correct) / float64(len(examples))
}

// artifact deep-copies the current parameters into a serving artifact.
// Hidden layers export their running statistics for inference-time
// normalization.
func (n *mlpNet) artifact(labels []string) *classify.Artifact {
	layers := make([]classify.DenseLayer, len(n.layers))
	for i, l := range n.layers {
		layers[i] = classify.DenseLayer{
			W: copyMatrix(l.w),
			B: copyVector(l.b),
		}
		if l.batchNorm {
			layers[i].BNGamma = copyVector(l.gamma)
			layers[i].BNBeta = copyVector(l.beta)
			layers[i].BNMean = copyVector(l.runMean)
			layers[i].BNVar = copyVector(l.runVar)
		}
	}

	return &classify.Artifact{
		ModelType:  classify.ModelMLP,
		NumClasses: len(labels),
		InputSize:  n.layers[0].in,
		Labels:     append([]string(nil), labels...),
		MLP:        &classify.MLPWeights{Layers: layers},
	}
}

func affineRow(w [][]float64, x, b []float64) []float64 {
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

func argmax(scores []float64) int {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func copyVector(v []float64) []float64 {
	return append([]float64(nil), v...)
}
