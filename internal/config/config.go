package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string // enables the Open-Meteo provider

	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchInterval controls how often watched cities are checked live.
	FetchInterval time.Duration `validate:"gt=0"`

	// WatchCities are compared against the baseline on every scheduler run.
	WatchCities []string `validate:"dive,required"`

	// SmoothingWindow is the moving average window in observations.
	SmoothingWindow int `validate:"min=1"`

	// DatasetPath is an optional CSV/TSV file loaded at startup.
	DatasetPath string

	// Live reading retention.
	LiveMaxHistory int           `validate:"min=0"` // max readings per city (0 = unlimited)
	LiveMaxAge     time.Duration `validate:"min=0"` // max age of readings (0 = unlimited)

	MaxUploadBytes int `validate:"min=1024"`

	Port            string        `validate:"required,numeric"`
	LogLevel        string        `validate:"oneof=debug info warn warning error"`
	LogFormat       string        `validate:"oneof=json text"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		WatchCities:       splitList(os.Getenv("WATCH_CITIES")),
		DatasetPath:       os.Getenv("DATASET_PATH"),
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenvDefault("LOG_FORMAT", "json")),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.LiveMaxAge, err = getenvDuration("LIVE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.SmoothingWindow, err = getenvInt("SMOOTHING_WINDOW", 30); err != nil {
		return nil, err
	}
	// Roughly 24h at 15-minute intervals.
	if cfg.LiveMaxHistory, err = getenvInt("LIVE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = getenvInt("MAX_UPLOAD_BYTES", 32<<20); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
