package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Empty(t, cfg.WatchCities)
	assert.Equal(t, 30, cfg.SmoothingWindow)
	assert.Equal(t, 96, cfg.LiveMaxHistory)
	assert.Equal(t, 24*time.Hour, cfg.LiveMaxAge)
	assert.Equal(t, 32<<20, cfg.MaxUploadBytes)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("WEATHERAPI_API_KEY", "wa-key")
	t.Setenv("GEOCODER_API_KEY", "geo-key")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FETCH_INTERVAL", "1h")
	t.Setenv("WATCH_CITIES", "Berlin, Moscow ,,Cairo")
	t.Setenv("SMOOTHING_WINDOW", "7")
	t.Setenv("DATASET_PATH", "/data/temperature_data.csv")
	t.Setenv("LIVE_MAX_HISTORY", "0")
	t.Setenv("LIVE_MAX_AGE", "2h")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "wa-key", cfg.WeatherAPIKey)
	assert.Equal(t, "geo-key", cfg.GeocoderAPIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Hour, cfg.FetchInterval)
	assert.Equal(t, []string{"Berlin", "Moscow", "Cairo"}, cfg.WatchCities)
	assert.Equal(t, 7, cfg.SmoothingWindow)
	assert.Equal(t, "/data/temperature_data.csv", cfg.DatasetPath)
	assert.Equal(t, 0, cfg.LiveMaxHistory)
	assert.Equal(t, 2*time.Hour, cfg.LiveMaxAge)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_INTERVAL")
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("SMOOTHING_WINDOW", "thirty")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMOOTHING_WINDOW")
}

func TestLoad_ZeroWindowRejected(t *testing.T) {
	t.Setenv("SMOOTHING_WINDOW", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SmoothingWindow")
}

func TestLoad_UnknownLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogFormat")
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTPTimeout")
}
