package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// TrainingSample is a recorded landmark set kept as raw material for the
// offline trainer. Landmarks holds the 21x3 coordinate array as JSON.
type TrainingSample struct {
	ID        int64           `json:"id"`
	Sign      string          `json:"sign"`
	Landmarks json.RawMessage `json:"landmarks"`
	CreatedAt time.Time       `json:"created_at"`
}

// TrainingSampleRepository provides operations for recorded training samples.
type TrainingSampleRepository struct {
	db *sql.DB
}

// TrainingSamples returns the training sample repository for this store.
func (s *Store) TrainingSamples() *TrainingSampleRepository {
	return &TrainingSampleRepository{db: s.db}
}

// Create inserts a training sample and fills in its assigned ID.
func (r *TrainingSampleRepository) Create(sample *TrainingSample) error {
	sample.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO training_samples (sign, landmarks, created_at) VALUES (?, ?, ?)`,
		sample.Sign, string(sample.Landmarks), sample.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sample.ID = id

	return nil
}

// CreateBatch inserts multiple samples for one sign in a single transaction.
func (r *TrainingSampleRepository) CreateBatch(sign string, landmarks []json.RawMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO training_samples (sign, landmarks, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, data := range landmarks {
		if _, err := stmt.Exec(sign, string(data), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List retrieves samples in insert order, optionally restricted to one sign.
func (r *TrainingSampleRepository) List(sign string) ([]*TrainingSample, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if sign != "" {
		rows, err = r.db.Query(
			`SELECT id, sign, landmarks, created_at FROM training_samples
			 WHERE sign = ? ORDER BY id`,
			sign,
		)
	} else {
		rows, err = r.db.Query(
			`SELECT id, sign, landmarks, created_at FROM training_samples ORDER BY id`,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*TrainingSample
	for rows.Next() {
		sample := &TrainingSample{}
		var landmarks string

		err := rows.Scan(&sample.ID, &sample.Sign, &landmarks, &sample.CreatedAt)
		if err != nil {
			return nil, err
		}

		sample.Landmarks = json.RawMessage(landmarks)
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
