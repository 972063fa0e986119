// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// baseOrigins are always allowed for CORS: the local dev servers and the
// deployed frontend.
var baseOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"https://asl-learning-platform-psi.vercel.app",
}

type Config struct {
	// Server config
	Port        int
	FrontendURL string

	// Storage config
	DBPath    string
	ModelPath string

	// SeedLessons inserts the alphabet lessons on startup when true.
	SeedLessons bool

	// HandTrackerScript overrides the hand tracker script location.
	// Empty means auto-discover.
	HandTrackerScript string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	seed, _ := strconv.ParseBool(getEnv("SEED_LESSONS", "false"))

	cfg := &Config{
		Port:              port,
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		DBPath:            getEnv("DB_PATH", "data/asl.db"),
		ModelPath:         getEnv("MODEL_PATH", "models/asl_model.json"),
		SeedLessons:       seed,
		HandTrackerScript: getEnv("HAND_TRACKER_SCRIPT", ""),
	}

	// Validate required fields
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535")
	}

	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigins returns the CORS allowlist: the base origins plus the
// configured frontend's origin when it points somewhere other than localhost.
func (c *Config) AllowedOrigins() []string {
	origins := slices.Clone(baseOrigins)

	if c.FrontendURL != "" && !strings.Contains(c.FrontendURL, "localhost") {
		if origin := extractOrigin(c.FrontendURL); origin != "" && !slices.Contains(origins, origin) {
			origins = append(origins, origin)
		}
	}

	return origins
}

// extractOrigin reduces a URL to scheme://host[:port]. Browsers match CORS
// origins without the path, so a frontend URL configured with one must be
// stripped.
func extractOrigin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
