package training

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
)

// Config controls a training run. Zero values select the defaults the
// pipeline was tuned with.
type Config struct {
	LearningRate float64 // default 0.001
	BatchSize    int     // default 32
	Epochs       int     // default 100
	Patience     int     // epochs without validation improvement, default 15
	HiddenSizes  []int   // default 128, 256, 128, 64
	Dropout      float64 // default 0.3
	Seed         int64   // default 42
}

func (c Config) withDefaults() Config {
	if c.LearningRate == 0 {
		c.LearningRate = 0.001
	}
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.Epochs == 0 {
		c.Epochs = 100
	}
	if c.Patience == 0 {
		c.Patience = 15
	}
	if len(c.HiddenSizes) == 0 {
		c.HiddenSizes = []int{128, 256, 128, 64}
	}
	if c.Dropout == 0 {
		c.Dropout = 0.3
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	return c
}

// Metrics holds per-epoch loss and accuracy. Accuracies are percentages.
type Metrics struct {
	Loss []float64 `json:"loss"`
	Acc  []float64 `json:"acc"`
}

// History records how a training run progressed.
type History struct {
	Train      Metrics `json:"train"`
	Val        Metrics `json:"val"`
	BestValAcc float64 `json:"best_val_acc"`
}

// Train fits the classifier to the dataset and returns the artifact holding
// the weights of the best validation epoch, plus the run history. Training
// stops early once the validation accuracy has not improved for
// cfg.Patience epochs.
func Train(ds *Dataset, cfg Config) (*classify.Artifact, *History, error) {
	cfg = cfg.withDefaults()
	if len(ds.Train) == 0 {
		return nil, nil, fmt.Errorf("empty training set")
	}
	if len(ds.Val) == 0 {
		return nil, nil, fmt.Errorf("empty validation set")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	net := newMLPNet(rng, ds.InputSize(), cfg.HiddenSizes, len(ds.Labels), cfg.Dropout)

	train := make([]Example, len(ds.Train))
	copy(train, ds.Train)

	history := &History{}
	var best *classify.Artifact
	bestAcc := -1.0
	patience := 0

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(train), func(a, b int) {
			train[a], train[b] = train[b], train[a]
		})

		var lossSum float64
		correct := 0
		seen := 0
		batches := 0
		for start := 0; start < len(train); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(train) {
				end = len(train)
			}
			// A single sample has no batch statistics to normalize with.
			if end-start < 2 && batches > 0 {
				break
			}

			loss, c := net.trainBatch(train[start:end], cfg.LearningRate)
			lossSum += loss
			correct += c
			seen += end - start
			batches++
		}
		trainLoss := lossSum / float64(batches)
		trainAcc := 100 * float64(correct) / float64(seen)

		valLoss, valAcc := net.evaluate(ds.Val, cfg.BatchSize)

		history.Train.Loss = append(history.Train.Loss, trainLoss)
		history.Train.Acc = append(history.Train.Acc, trainAcc)
		history.Val.Loss = append(history.Val.Loss, valLoss)
		history.Val.Acc = append(history.Val.Acc, valAcc)

		log.Printf("Epoch %d/%d: train loss %.4f acc %.2f%%, val loss %.4f acc %.2f%%",
			epoch+1, cfg.Epochs, trainLoss, trainAcc, valLoss, valAcc)

		if valAcc > bestAcc {
			bestAcc = valAcc
			patience = 0
			best = net.artifact(ds.Labels)
		} else {
			patience++
		}
		if patience >= cfg.Patience {
			log.Printf("Early stopping after %d epochs", epoch+1)
			break
		}
	}
	history.BestValAcc = bestAcc

	return best, history, nil
}

// EvaluateArtifact scores examples with a serving scorer built from the
// artifact and returns the accuracy percentage. It exercises the same code
// path the server predicts through.
func EvaluateArtifact(a *classify.Artifact, examples []Example) (float64, error) {
	if len(examples) == 0 {
		return 0, fmt.Errorf("no examples to evaluate")
	}
	scorer, err := classify.NewScorer(a)
	if err != nil {
		return 0, err
	}

	correct := 0
	for _, ex := range examples {
		scores, err := scorer.Scores(ex.Features)
		if err != nil {
			return 0, err
		}
		if argmax(scores) == ex.Class {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(examples)), nil
}

// WriteArtifact writes the artifact JSON atomically so a server reloading
// from the same path never observes a partial file.
func WriteArtifact(a *classify.Artifact, path string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return writeFileAtomic(path, data)
}

// WriteHistory writes the training history next to the artifact.
func WriteHistory(h *History, path string) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes to a temp file in the target directory, then
// renames it over the destination.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
