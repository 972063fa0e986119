package classify

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/landmark"
)

// Snapshot is one fully loaded model: artifact metadata plus the scorer built
// from it. Snapshots are immutable; the manager swaps whole snapshots on
// reload so in-flight predictions keep the weights they started with.
type Snapshot struct {
	Version    string
	Path       string
	ModelType  string
	NumClasses int
	InputSize  int
	Labels     []string
	Letters    []string
	LoadedAt   time.Time

	scorer Scorer
}

// Classify scores a flattened feature vector and selects the predicted letter.
func (s *Snapshot) Classify(features []float64) (*Prediction, error) {
	scores, err := s.scorer.Scores(features)
	if err != nil {
		return nil, err
	}
	return SelectLetter(Softmax(scores), s.Labels)
}

// Manager owns the currently served model snapshot. Predictions read the
// snapshot pointer once and never block reloads; reloads build a complete
// snapshot before swapping it in.
type Manager struct {
	path    string
	current atomic.Pointer[Snapshot]
	group   singleflight.Group

	mu      sync.Mutex
	retired []io.Closer
}

// NewManager creates a manager that loads artifacts from path. No model is
// served until Reload or LoadWhenReady succeeds.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the artifact path the manager loads from.
func (m *Manager) Path() string {
	return m.path
}

// Current returns the served snapshot, or nil when no model is loaded.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Loaded reports whether a model is currently being served.
func (m *Manager) Loaded() bool {
	return m.current.Load() != nil
}

// Reload builds a fresh snapshot from the artifact path and swaps it in.
// Concurrent calls collapse into a single load. On failure the previous
// snapshot keeps serving.
func (m *Manager) Reload() (*Snapshot, error) {
	v, err, _ := m.group.Do("reload", func() (interface{}, error) {
		snap, err := m.load()
		if err != nil {
			return nil, err
		}
		m.swap(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// LoadWhenReady loads the initial model, retrying with Fibonacci backoff
// while the artifact is missing or unreadable. Useful at startup when the
// trainer has not produced an artifact yet.
func (m *Manager) LoadWhenReady(ctx context.Context, maxRetries uint64) error {
	b := retry.NewFibonacci(1 * time.Second)
	return retry.Do(ctx, retry.WithMaxRetries(maxRetries, b), func(ctx context.Context) error {
		if _, err := m.Reload(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Predict validates and flattens raw request landmarks, then classifies them
// with the current snapshot. The snapshot pointer is read once, so a reload
// racing with this call cannot mix weights and labels from different models.
func (m *Manager) Predict(points [][]float64) (*Prediction, error) {
	snap := m.current.Load()
	if snap == nil {
		return nil, ErrModelUnavailable
	}

	features, err := landmark.Flatten(points)
	if err != nil {
		return nil, err
	}
	return snap.Classify(features)
}

// Close retires the current snapshot and releases every scorer that holds
// native resources. Call only after the server has stopped serving.
func (m *Manager) Close() error {
	if snap := m.current.Swap(nil); snap != nil {
		m.retire(snap)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for _, c := range m.retired {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	m.retired = nil
	return first
}

func (m *Manager) load() (*Snapshot, error) {
	var (
		artifact *Artifact
		scorer   Scorer
		err      error
	)
	if strings.EqualFold(filepath.Ext(m.path), ".onnx") {
		artifact, scorer, err = loadONNX(m.path)
	} else {
		artifact, err = LoadArtifact(m.path)
		if err == nil {
			scorer, err = NewScorer(artifact)
		}
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Version:    uuid.NewString(),
		Path:       m.path,
		ModelType:  artifact.ModelType,
		NumClasses: artifact.NumClasses,
		InputSize:  artifact.InputSize,
		Labels:     artifact.Labels,
		Letters:    LetterLabels(artifact.Labels),
		LoadedAt:   time.Now(),
		scorer:     scorer,
	}
	if len(snap.Letters) == 0 {
		log.Printf("CONFIG ERROR: %v: predictions will fall back to the unrestricted argmax", ErrNoLetterLabels)
	}
	return snap, nil
}

// swap publishes the new snapshot. The replaced scorer is retired rather than
// closed: in-flight predictions may still hold the old snapshot.
func (m *Manager) swap(snap *Snapshot) {
	if old := m.current.Swap(snap); old != nil {
		m.retire(old)
	}
}

func (m *Manager) retire(snap *Snapshot) {
	closer, ok := snap.scorer.(io.Closer)
	if !ok {
		return
	}
	m.mu.Lock()
	m.retired = append(m.retired, closer)
	m.mu.Unlock()
}
