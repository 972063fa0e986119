package store

import (
	"database/sql"
	"errors"
	"time"
)

// Progress status values.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// UserProgress tracks a user's accumulated results for one lesson.
type UserProgress struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	LessonID      int64     `json:"lesson_id"`
	Attempts      int       `json:"attempts"`
	Accuracy      float64   `json:"accuracy"`
	Status        string    `json:"status"`
	LastPracticed time.Time `json:"last_practiced"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserStats aggregates a user's practice history across all lessons.
type UserStats struct {
	UserID            string  `json:"user_id"`
	TotalAttempts     int     `json:"total_attempts"`
	CorrectAttempts   int     `json:"correct_attempts"`
	AccuracyRate      float64 `json:"accuracy_rate"`
	AvgLessonAccuracy float64 `json:"avg_lesson_accuracy"`
	LessonsPracticed  int     `json:"lessons_practiced"`
}

// ProgressRepository provides operations for per-lesson user progress.
type ProgressRepository struct {
	db *sql.DB
}

// Progress returns the progress repository for this store.
func (s *Store) Progress() *ProgressRepository {
	return &ProgressRepository{db: s.db}
}

// Get retrieves the progress row for one user and lesson pair.
func (r *ProgressRepository) Get(userID string, lessonID int64) (*UserProgress, error) {
	p := &UserProgress{}

	err := r.db.QueryRow(
		`SELECT id, user_id, lesson_id, attempts, accuracy, status, last_practiced, created_at
		 FROM user_progress WHERE user_id = ? AND lesson_id = ?`,
		userID, lessonID,
	).Scan(&p.ID, &p.UserID, &p.LessonID, &p.Attempts, &p.Accuracy, &p.Status, &p.LastPracticed, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// ListByUser retrieves all progress rows for a user, most recently practiced
// first.
func (r *ProgressRepository) ListByUser(userID string) ([]*UserProgress, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, lesson_id, attempts, accuracy, status, last_practiced, created_at
		 FROM user_progress WHERE user_id = ? ORDER BY last_practiced DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []*UserProgress
	for rows.Next() {
		p := &UserProgress{}
		err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Attempts, &p.Accuracy, &p.Status, &p.LastPracticed, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Upsert creates the progress row for the user and lesson or overwrites its
// attempts, accuracy and status, refreshing last_practiced either way. The
// row's ID and CreatedAt are filled in on return.
func (r *ProgressRepository) Upsert(p *UserProgress) error {
	if p.Status == "" {
		p.Status = StatusNotStarted
	}
	now := time.Now()

	existing, err := r.Get(p.UserID, p.LessonID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
		p.LastPracticed = now

		_, err := r.db.Exec(
			`UPDATE user_progress SET attempts = ?, accuracy = ?, status = ?, last_practiced = ?
			 WHERE id = ?`,
			p.Attempts, p.Accuracy, p.Status, p.LastPracticed, p.ID,
		)
		return err
	}

	p.CreatedAt = now
	p.LastPracticed = now

	result, err := r.db.Exec(
		`INSERT INTO user_progress (user_id, lesson_id, attempts, accuracy, status, last_practiced, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.LessonID, p.Attempts, p.Accuracy, p.Status, p.LastPracticed, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id

	return nil
}

// Stats aggregates practice sessions and lesson progress for a user. A user
// with no history gets zero values, not an error.
func (r *ProgressRepository) Stats(userID string) (*UserStats, error) {
	stats := &UserStats{UserID: userID}

	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct = 1 THEN 1 ELSE 0 END), 0)
		 FROM practice_sessions WHERE user_id = ?`,
		userID,
	).Scan(&stats.TotalAttempts, &stats.CorrectAttempts)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(accuracy), 0)
		 FROM user_progress WHERE user_id = ?`,
		userID,
	).Scan(&stats.LessonsPracticed, &stats.AvgLessonAccuracy)
	if err != nil {
		return nil, err
	}

	if stats.TotalAttempts > 0 {
		stats.AccuracyRate = float64(stats.CorrectAttempts) / float64(stats.TotalAttempts) * 100
	}

	return stats, nil
}
