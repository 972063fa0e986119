package store

import (
	"database/sql"
	"errors"
	"time"
)

// Performance mode values.
const (
	PerformanceModeBattery  = "battery"
	PerformanceModeBalanced = "balanced"
	PerformanceModeMax      = "max_performance"
)

// UserSettings holds per-user capture and inference tuning.
type UserSettings struct {
	UserID              string    `json:"user_id"`
	PerformanceMode     string    `json:"performance_mode"`
	VideoResolution     string    `json:"video_resolution"`
	FrameRate           int       `json:"frame_rate"`
	ModelComplexity     int       `json:"model_complexity"`
	InferenceThrottleMS int       `json:"inference_throttle_ms"`
	MinConfidence       float64   `json:"min_confidence"`
	UseServerProcessing bool      `json:"use_server_processing"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings assigned to a user on first contact.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		PerformanceMode:     PerformanceModeBalanced,
		VideoResolution:     "640x480",
		FrameRate:           30,
		ModelComplexity:     0,
		InferenceThrottleMS: 250,
		MinConfidence:       0.8,
		UseServerProcessing: false,
	}
}

// SettingsUpdate carries a partial settings change. Nil fields keep their
// stored values.
type SettingsUpdate struct {
	PerformanceMode     *string  `json:"performance_mode"`
	VideoResolution     *string  `json:"video_resolution"`
	FrameRate           *int     `json:"frame_rate"`
	ModelComplexity     *int     `json:"model_complexity"`
	InferenceThrottleMS *int     `json:"inference_throttle_ms"`
	MinConfidence       *float64 `json:"min_confidence"`
	UseServerProcessing *bool    `json:"use_server_processing"`
}

// SettingsRepository provides operations for per-user settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves the settings row for a user.
func (r *SettingsRepository) Get(userID string) (*UserSettings, error) {
	settings := &UserSettings{}

	err := r.db.QueryRow(
		`SELECT user_id, performance_mode, video_resolution, frame_rate, model_complexity,
		 inference_throttle_ms, min_confidence, use_server_processing, updated_at
		 FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(
		&settings.UserID, &settings.PerformanceMode, &settings.VideoResolution,
		&settings.FrameRate, &settings.ModelComplexity, &settings.InferenceThrottleMS,
		&settings.MinConfidence, &settings.UseServerProcessing, &settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return settings, nil
}

// GetOrCreate retrieves a user's settings, inserting the defaults first when
// no row exists yet.
func (r *SettingsRepository) GetOrCreate(userID string) (*UserSettings, error) {
	settings, err := r.Get(userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	settings = DefaultSettings(userID)
	if err := r.Create(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Create inserts a settings row for a user. Inserting a second row for the
// same user fails on the primary key.
func (r *SettingsRepository) Create(settings *UserSettings) error {
	settings.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO user_settings (user_id, performance_mode, video_resolution, frame_rate,
		 model_complexity, inference_throttle_ms, min_confidence, use_server_processing, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settings.UserID, settings.PerformanceMode, settings.VideoResolution, settings.FrameRate,
		settings.ModelComplexity, settings.InferenceThrottleMS, settings.MinConfidence,
		settings.UseServerProcessing, settings.UpdatedAt,
	)
	return err
}

// Update applies the non-nil fields of update to a user's settings and returns
// the resulting row. A user without a settings row gets the defaults plus the
// update.
func (r *SettingsRepository) Update(userID string, update *SettingsUpdate) (*UserSettings, error) {
	settings, err := r.Get(userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		settings = DefaultSettings(userID)
		if err := r.Create(settings); err != nil {
			return nil, err
		}
	}

	if update.PerformanceMode != nil {
		settings.PerformanceMode = *update.PerformanceMode
	}
	if update.VideoResolution != nil {
		settings.VideoResolution = *update.VideoResolution
	}
	if update.FrameRate != nil {
		settings.FrameRate = *update.FrameRate
	}
	if update.ModelComplexity != nil {
		settings.ModelComplexity = *update.ModelComplexity
	}
	if update.InferenceThrottleMS != nil {
		settings.InferenceThrottleMS = *update.InferenceThrottleMS
	}
	if update.MinConfidence != nil {
		settings.MinConfidence = *update.MinConfidence
	}
	if update.UseServerProcessing != nil {
		settings.UseServerProcessing = *update.UseServerProcessing
	}

	settings.UpdatedAt = time.Now()

	_, err = r.db.Exec(
		`UPDATE user_settings SET performance_mode = ?, video_resolution = ?, frame_rate = ?,
		 model_complexity = ?, inference_throttle_ms = ?, min_confidence = ?,
		 use_server_processing = ?, updated_at = ?
		 WHERE user_id = ?`,
		settings.PerformanceMode, settings.VideoResolution, settings.FrameRate,
		settings.ModelComplexity, settings.InferenceThrottleMS, settings.MinConfidence,
		settings.UseServerProcessing, settings.UpdatedAt, userID,
	)
	if err != nil {
		return nil, err
	}

	return settings, nil
}
