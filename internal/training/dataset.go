// Package training implements the offline pipeline that turns recorded
// landmark samples into the model artifact served by the classifier:
// dataset preparation, the training loop, and artifact export.
package training

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// Defaults for dataset preparation.
const (
	DefaultMinSamplesPerClass = 10
	DefaultSeed               = 42
)

// Sample is one recorded hand pose with its sign label.
type Sample struct {
	Sign      string      `json:"sign"`
	Landmarks [][]float64 `json:"landmarks"`
}

// Example pairs a flattened feature vector with its class index.
type Example struct {
	Features []float64
	Class    int
}

// Dataset is a prepared stratified split. Labels are sorted and an example's
// Class indexes into them.
type Dataset struct {
	Labels []string
	Train  []Example
	Val    []Example
	Test   []Example
}

// InputSize returns the feature width of the dataset.
func (d *Dataset) InputSize() int {
	if len(d.Train) > 0 {
		return len(d.Train[0].Features)
	}
	return landmark.FeatureSize
}

// LoadSamplesDir reads every *.json file in dir concurrently. Each file holds
// a JSON array of samples; files are combined in name order.
func LoadSamplesDir(ctx context.Context, dir string) ([]Sample, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sample files found in %s", dir)
	}

	perFile := make([][]Sample, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			var samples []Sample
			if err := json.Unmarshal(data, &samples); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			perFile[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Sample
	for _, samples := range perFile {
		all = append(all, samples...)
	}
	log.Printf("Loaded %d samples from %d files", len(all), len(files))
	return all, nil
}

// PrepareOptions controls dataset preparation. Zero values select defaults.
type PrepareOptions struct {
	MinSamplesPerClass int
	Seed               int64
}

// Prepare drops classes with too few samples for a meaningful split, maps the
// remaining labels to class indices in sorted order, and splits each class
// 70/15/15 into train, validation, and test sets. The split is deterministic
// for a given seed.
func Prepare(samples []Sample, opts PrepareOptions) (*Dataset, error) {
	minPerClass := opts.MinSamplesPerClass
	if minPerClass <= 0 {
		minPerClass = DefaultMinSamplesPerClass
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Sign]++
	}

	kept := make(map[string]bool)
	for label, n := range counts {
		if n >= minPerClass {
			kept[label] = true
		} else {
			log.Printf("Dropping class %q: %d samples, need at least %d", label, n, minPerClass)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no class has at least %d samples", minPerClass)
	}

	labels := make([]string, 0, len(kept))
	for label := range kept {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	classIdx := make(map[string]int, len(labels))
	for i, label := range labels {
		classIdx[label] = i
	}

	perClass := make([][]Example, len(labels))
	for i, s := range samples {
		if !kept[s.Sign] {
			continue
		}
		features, err := landmark.Flatten(s.Landmarks)
		if err != nil {
			return nil, fmt.Errorf("sample %d (%s): %w", i, s.Sign, err)
		}
		class := classIdx[s.Sign]
		perClass[class] = append(perClass[class], Example{Features: features, Class: class})
	}

	rng := rand.New(rand.NewSource(seed))
	ds := &Dataset{Labels: labels}
	for _, examples := range perClass {
		rng.Shuffle(len(examples), func(a, b int) {
			examples[a], examples[b] = examples[b], examples[a]
		})

		// 30% rounded is held out and split between validation and test.
		n := len(examples)
		hold := (3*n + 5) / 10
		val := hold / 2
		test := hold - val
		ds.Train = append(ds.Train, examples[:n-hold]...)
		ds.Val = append(ds.Val, examples[n-hold:n-test]...)
		ds.Test = append(ds.Test, examples[n-test:]...)
	}

	log.Printf("Dataset: %d classes, %d train, %d val, %d test samples",
		len(labels), len(ds.Train), len(ds.Val), len(ds.Test))
	return ds, nil
}
