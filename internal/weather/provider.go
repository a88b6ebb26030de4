package weather

import (
	"context"
	"errors"
	"time"
)

// ErrCityNotFound is returned by providers that cannot resolve a city name.
var ErrCityNotFound = errors.New("city not found")

// ProviderReading is a single provider's current temperature for a city.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time
	TemperatureC float64
}

// Provider abstracts a current weather source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (ProviderReading, error)
}

// Snapshot is the aggregated current temperature of a city.
type Snapshot struct {
	City         string                 `json:"city"`
	Timestamp    time.Time              `json:"timestamp"` // always UTC
	TemperatureC float64                `json:"temperatureC"`
	Providers    []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes a reading used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperatureC"`
}
