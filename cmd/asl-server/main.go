package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/config"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/detector"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/practice"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/server"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// startupLoadRetries bounds the background wait for the first model
// artifact. After that the model stays unloaded until a reload request.
const startupLoadRetries = 10

func main() {
	fmt.Println("ASL Learning Platform API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the store
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if cfg.SeedLessons {
		added, err := st.Lessons().SeedAlphabet()
		if err != nil {
			log.Fatalf("Failed to seed lessons: %v", err)
		}
		if added > 0 {
			fmt.Printf("Seeded %d alphabet lessons\n", added)
		}
	}

	// The classifier loads in the background so the API comes up even when
	// the trainer has not produced an artifact yet.
	classifier := classify.NewManager(cfg.ModelPath)
	defer classifier.Close()

	go func() {
		if err := classifier.LoadWhenReady(context.Background(), startupLoadRetries); err != nil {
			log.Printf("Model not loaded: %v", err)
		} else {
			fmt.Printf("Model loaded from %s\n", classifier.Path())
		}
	}()

	// Server-side hand tracking is optional; without the tracker script the
	// endpoint is simply not registered.
	var det detector.Detector
	if d, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), cfg.HandTrackerScript); err != nil {
		log.Printf("Hand tracking disabled: %v", err)
	} else {
		det = d
		defer d.Close()
	}

	srv := server.New(server.Config{
		Store:          st,
		Classifier:     classifier,
		Evaluator:      practice.New(st, classifier),
		Detector:       det,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	fmt.Printf("Starting server on %s\n", cfg.Addr())
	if err := srv.ListenAndServe(cfg.Addr()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
