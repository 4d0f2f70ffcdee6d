// Package config loads server configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. Validation rule
// values live here too, so the prohibited lists and bounds are explicit
// inputs to the validators instead of ambient settings.
type Config struct {
	Port      int
	DBPath    string
	MediaDir  string
	JWTSecret string
	BaseURL   string // absolute base for short links and media URLs

	MinCookTime int
	MaxCookTime int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() (Config, error) {
	// A missing .env is fine; it is a local-dev convenience only.
	_ = godotenv.Load()

	cfg := Config{
		Port:        8080,
		DBPath:      "data/foodgram.db",
		MediaDir:    "media",
		JWTSecret:   os.Getenv("JWT_SECRET"),
		BaseURL:     os.Getenv("BASE_URL"),
		MinCookTime: 1,
		MaxCookTime: 1440,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if v := os.Getenv("MIN_COOK_TIME"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid MIN_COOK_TIME %q: %w", v, err)
		}
		cfg.MinCookTime = n
	}
	if v := os.Getenv("MAX_COOK_TIME"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid MAX_COOK_TIME %q: %w", v, err)
		}
		cfg.MaxCookTime = n
	}

	return cfg, nil
}
