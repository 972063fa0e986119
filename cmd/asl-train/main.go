package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/training"
)

func main() {
	dataDir := flag.String("data", "", "directory of *.json sample files")
	dbPath := flag.String("db", "", "read samples from this database instead of -data")
	outPath := flag.String("out", "models/asl_model.json", "artifact output path")
	historyPath := flag.String("history", "", "history output path (default history.json next to the artifact)")
	epochs := flag.Int("epochs", 0, "maximum training epochs")
	batchSize := flag.Int("batch", 0, "batch size")
	learningRate := flag.Float64("lr", 0, "learning rate")
	minSamples := flag.Int("min-samples", 0, "minimum samples per class")
	seed := flag.Int64("seed", 0, "random seed for the split and the weights")
	flag.Parse()

	if *dataDir == "" && *dbPath == "" {
		log.Fatal("either -data or -db is required")
	}

	var samples []training.Sample
	var err error
	if *dbPath != "" {
		samples, err = loadSamplesDB(*dbPath)
	} else {
		samples, err = training.LoadSamplesDir(context.Background(), *dataDir)
	}
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}

	ds, err := training.Prepare(samples, training.PrepareOptions{
		MinSamplesPerClass: *minSamples,
		Seed:               *seed,
	})
	if err != nil {
		log.Fatalf("Failed to prepare dataset: %v", err)
	}

	fmt.Printf("Training on %d examples across %d classes\n", len(ds.Train), len(ds.Labels))

	artifact, history, err := training.Train(ds, training.Config{
		LearningRate: *learningRate,
		BatchSize:    *batchSize,
		Epochs:       *epochs,
		Seed:         *seed,
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	testAcc, err := training.EvaluateArtifact(artifact, ds.Test)
	if err != nil {
		log.Fatalf("Failed to evaluate artifact: %v", err)
	}
	fmt.Printf("Best validation accuracy: %.2f%%\n", history.BestValAcc)
	fmt.Printf("Test accuracy: %.2f%%\n", testAcc)

	if dir := filepath.Dir(*outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	if err := training.WriteArtifact(artifact, *outPath); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}
	fmt.Printf("Model written to %s\n", *outPath)

	hp := *historyPath
	if hp == "" {
		hp = filepath.Join(filepath.Dir(*outPath), "history.json")
	}
	if err := training.WriteHistory(history, hp); err != nil {
		log.Fatalf("Failed to write history: %v", err)
	}
	fmt.Printf("History written to %s\n", hp)
}

// loadSamplesDB reads every recorded training sample from the platform
// database.
func loadSamplesDB(path string) ([]training.Sample, error) {
	st, err := store.New(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rows, err := st.TrainingSamples().List("")
	if err != nil {
		return nil, err
	}

	samples := make([]training.Sample, 0, len(rows))
	for _, row := range rows {
		var points [][]float64
		if err := json.Unmarshal(row.Landmarks, &points); err != nil {
			return nil, fmt.Errorf("sample %d: %w", row.ID, err)
		}
		samples = append(samples, training.Sample{Sign: row.Sign, Landmarks: points})
	}
	log.Printf("Loaded %d samples from %s", len(samples), path)
	return samples, nil
}
