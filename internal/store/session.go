package store

import (
	"database/sql"
	"time"
)

// PracticeSession records a single recognition attempt by a user. IsCorrect
// is nil for free practice where no expected sign was set.
type PracticeSession struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	SignDetected string    `json:"sign_detected"`
	Confidence   float64   `json:"confidence"`
	IsCorrect    *bool     `json:"is_correct"`
	Timestamp    time.Time `json:"timestamp"`
}

// SessionRepository provides operations for practice session records.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the practice session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a practice session and fills in its assigned ID.
func (r *SessionRepository) Create(sess *PracticeSession) error {
	sess.Timestamp = time.Now()

	var correct sql.NullBool
	if sess.IsCorrect != nil {
		correct = sql.NullBool{Bool: *sess.IsCorrect, Valid: true}
	}

	result, err := r.db.Exec(
		`INSERT INTO practice_sessions (user_id, sign_detected, confidence, is_correct, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.UserID, sess.SignDetected, sess.Confidence, correct, sess.Timestamp,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sess.ID = id

	return nil
}

// ListByUser retrieves the most recent sessions for a user, newest first.
// A non-positive limit falls back to 50.
func (r *SessionRepository) ListByUser(userID string, limit int) ([]*PracticeSession, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, user_id, sign_detected, confidence, is_correct, timestamp
		 FROM practice_sessions
		 WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*PracticeSession
	for rows.Next() {
		sess := &PracticeSession{}
		var correct sql.NullBool

		err := rows.Scan(&sess.ID, &sess.UserID, &sess.SignDetected, &sess.Confidence, &correct, &sess.Timestamp)
		if err != nil {
			return nil, err
		}

		if correct.Valid {
			sess.IsCorrect = &correct.Bool
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
