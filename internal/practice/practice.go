// Package practice evaluates graded practice attempts: a classified hand pose
// is compared against the lesson being practiced and the result is folded into
// the user's session history and per-lesson progress.
package practice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/classify"
	"github.com/Arnavsharma2/ASL-Learning-Platform/internal/store"
)

// Completion thresholds.
const (
	// CompletionAttempts is the minimum number of attempts before a lesson
	// can be marked completed.
	CompletionAttempts = 5
	// CompletionAccuracy is the running accuracy (percent) required to mark
	// a lesson completed.
	CompletionAccuracy = 80.0
)

// Classifier scores raw landmark points. *classify.Manager satisfies it.
type Classifier interface {
	Predict(points [][]float64) (*classify.Prediction, error)
}

// Attempt is the outcome of one graded practice attempt.
type Attempt struct {
	Prediction   *classify.Prediction `json:"prediction"`
	ExpectedSign string               `json:"expected_sign"`
	Correct      bool                 `json:"correct"`
	Attempts     int                  `json:"attempts"`
	Accuracy     float64              `json:"accuracy"`
	Status       string               `json:"status"`
}

// Evaluator wires the classifier to the store for graded practice.
type Evaluator struct {
	store      *store.Store
	classifier Classifier
}

// New creates an evaluator backed by the given store and classifier.
func New(st *store.Store, classifier Classifier) *Evaluator {
	return &Evaluator{store: st, classifier: classifier}
}

// Evaluate classifies the landmarks, grades the prediction against the
// lesson's sign, records a practice session and folds the attempt into the
// user's progress for that lesson. Sign comparison ignores case.
func (e *Evaluator) Evaluate(userID string, lessonID int64, points [][]float64) (*Attempt, error) {
	lesson, err := e.store.Lessons().GetByID(lessonID)
	if err != nil {
		return nil, err
	}

	pred, err := e.classifier.Predict(points)
	if err != nil {
		return nil, err
	}

	correct := strings.EqualFold(pred.Sign, lesson.SignName)

	session := &store.PracticeSession{
		UserID:       userID,
		SignDetected: pred.Sign,
		Confidence:   pred.Confidence,
		IsCorrect:    &correct,
	}
	if err := e.store.Sessions().Create(session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	progress, err := e.updateProgress(userID, lessonID, correct)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	return &Attempt{
		Prediction:   pred,
		ExpectedSign: lesson.SignName,
		Correct:      correct,
		Attempts:     progress.Attempts,
		Accuracy:     progress.Accuracy,
		Status:       progress.Status,
	}, nil
}

// updateProgress folds one graded attempt into the user's progress row.
// Attempts increments, accuracy is the running average over all attempts
// where a correct attempt scores 100 and a wrong one 0, and status moves
// to in_progress and then completed once the thresholds are met. A
// completed lesson never moves back.
func (e *Evaluator) updateProgress(userID string, lessonID int64, correct bool) (*store.UserProgress, error) {
	progress, err := e.store.Progress().Get(userID, lessonID)
	if errors.Is(err, store.ErrNotFound) {
		progress = &store.UserProgress{UserID: userID, LessonID: lessonID}
	} else if err != nil {
		return nil, err
	}

	score := 0.0
	if correct {
		score = 100.0
	}
	progress.Accuracy = (progress.Accuracy*float64(progress.Attempts) + score) / float64(progress.Attempts+1)
	progress.Attempts++

	if progress.Status != store.StatusCompleted {
		progress.Status = store.StatusInProgress
		if progress.Attempts >= CompletionAttempts && progress.Accuracy >= CompletionAccuracy {
			progress.Status = store.StatusCompleted
		}
	}

	if err := e.store.Progress().Upsert(progress); err != nil {
		return nil, err
	}

	return progress, nil
}
