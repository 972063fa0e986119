package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Lessons table - stores the sign curriculum
		`CREATE TABLE IF NOT EXISTS lessons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			sign_name TEXT NOT NULL
		)`,

		// User progress table - one row per user and lesson
		`CREATE TABLE IF NOT EXISTS user_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			lesson_id INTEGER NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
			attempts INTEGER NOT NULL DEFAULT 0,
			accuracy REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'not_started' CHECK(status IN ('not_started', 'in_progress', 'completed')),
			last_practiced DATETIME DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, lesson_id)
		)`,

		// Practice sessions table - one row per recognition attempt
		`CREATE TABLE IF NOT EXISTS practice_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			sign_detected TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			is_correct INTEGER,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// User settings table - per-user capture and inference tuning
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY,
			performance_mode TEXT NOT NULL DEFAULT 'balanced',
			video_resolution TEXT NOT NULL DEFAULT '640x480',
			frame_rate INTEGER NOT NULL DEFAULT 30,
			model_complexity INTEGER NOT NULL DEFAULT 0,
			inference_throttle_ms INTEGER NOT NULL DEFAULT 250,
			min_confidence REAL NOT NULL DEFAULT 0.8,
			use_server_processing INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Training samples table - raw recorded landmark sets for the trainer
		`CREATE TABLE IF NOT EXISTS training_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign TEXT NOT NULL,
			landmarks TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_lessons_category ON lessons(category)`,
		`CREATE INDEX IF NOT EXISTS idx_user_progress_user_id ON user_progress(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_practice_sessions_user_id ON practice_sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_training_samples_sign ON training_samples(sign)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
