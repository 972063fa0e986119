package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Lesson difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Lesson represents one sign in the curriculum.
type Lesson struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	VideoURL    string `json:"video_url"`
	Difficulty  string `json:"difficulty"`
	SignName    string `json:"sign_name"`
}

// LessonFilter narrows and pages List results.
type LessonFilter struct {
	Skip     int
	Limit    int
	Category string
}

// LessonRepository provides CRUD operations for lessons.
type LessonRepository struct {
	db *sql.DB
}

// Lessons returns the lesson repository for this store.
func (s *Store) Lessons() *LessonRepository {
	return &LessonRepository{db: s.db}
}

// Create inserts a new lesson and fills in its assigned ID.
func (r *LessonRepository) Create(l *Lesson) error {
	result, err := r.db.Exec(
		`INSERT INTO lessons (title, description, category, video_url, difficulty, sign_name)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.Title, l.Description, l.Category, l.VideoURL, l.Difficulty, l.SignName,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id

	return nil
}

// GetByID retrieves a lesson by its ID.
func (r *LessonRepository) GetByID(id int64) (*Lesson, error) {
	l := &Lesson{}

	err := r.db.QueryRow(
		`SELECT id, title, description, category, video_url, difficulty, sign_name
		 FROM lessons WHERE id = ?`,
		id,
	).Scan(&l.ID, &l.Title, &l.Description, &l.Category, &l.VideoURL, &l.Difficulty, &l.SignName)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return l, nil
}

// List retrieves lessons ordered by ID. A non-positive limit falls back to 100.
func (r *LessonRepository) List(f LessonFilter) ([]*Lesson, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if f.Category != "" {
		rows, err = r.db.Query(
			`SELECT id, title, description, category, video_url, difficulty, sign_name
			 FROM lessons WHERE category = ? ORDER BY id LIMIT ? OFFSET ?`,
			f.Category, limit, skip,
		)
	} else {
		rows, err = r.db.Query(
			`SELECT id, title, description, category, video_url, difficulty, sign_name
			 FROM lessons ORDER BY id LIMIT ? OFFSET ?`,
			limit, skip,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLessons(rows)
}

// ListByCategory retrieves all lessons in a category ordered by ID.
func (r *LessonRepository) ListByCategory(category string) ([]*Lesson, error) {
	rows, err := r.db.Query(
		`SELECT id, title, description, category, video_url, difficulty, sign_name
		 FROM lessons WHERE category = ? ORDER BY id`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLessons(rows)
}

func scanLessons(rows *sql.Rows) ([]*Lesson, error) {
	var lessons []*Lesson
	for rows.Next() {
		l := &Lesson{}
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Category, &l.VideoURL, &l.Difficulty, &l.SignName); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lessons, nil
}

// Update updates an existing lesson in the database.
func (r *LessonRepository) Update(l *Lesson) error {
	result, err := r.db.Exec(
		`UPDATE lessons SET title = ?, description = ?, category = ?, video_url = ?, difficulty = ?, sign_name = ?
		 WHERE id = ?`,
		l.Title, l.Description, l.Category, l.VideoURL, l.Difficulty, l.SignName, l.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a lesson from the database by its ID.
func (r *LessonRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
