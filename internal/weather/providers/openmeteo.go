package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-anomaly/internal/weather"
)

// GeocodeFunc resolves a city name to latitude and longitude.
type GeocodeFunc func(ctx context.Context, city string) (lat, lon float64, err error)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates, so cities go through a geocoder first.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	geocode GeocodeFunc
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider that geocodes cities with the Google
// Geocoding API using the given key.
func NewOpenMeteoProvider(client *http.Client, geocoderAPIKey string) *OpenMeteoProvider {
	return newOpenMeteoProvider(client, GoogleGeocoder(geocoderAPIKey))
}

func newOpenMeteoProvider(client *http.Client, geocode GeocodeFunc) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		geocode: geocode,
		httpCfg: defaultHTTPConfig(client),
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string) (weather.ProviderReading, error) {
	lat, lon, err := p.geocode(ctx, city)
	if err != nil {
		return weather.ProviderReading{}, fmt.Errorf("geocode %s: %w", city, err)
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", lat))
	values.Set("longitude", fmt.Sprintf("%f", lon))
	values.Set("current_weather", "true")

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// Open-Meteo reports ISO8601 without seconds in GMT, e.g. "2024-05-01T12:00".
	ts, err := time.Parse("2006-01-02T15:04", payload.CurrentWeather.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.CurrentWeather.Temperature,
	}, nil
}

// geocoderMu serializes access to the geocoder package's global API key.
var geocoderMu sync.Mutex

// GoogleGeocoder returns a GeocodeFunc backed by the Google Geocoding API.
// The underlying client has no context support; ctx is only checked up front.
func GoogleGeocoder(apiKey string) GeocodeFunc {
	return func(ctx context.Context, city string) (float64, float64, error) {
		if apiKey == "" {
			return 0, 0, fmt.Errorf("geocoder api key is not configured")
		}
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		geocoderMu.Lock()
		defer geocoderMu.Unlock()

		geocoder.ApiKey = apiKey
		loc, err := geocoder.Geocoding(geocoder.Address{City: city})
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %s: %v", weather.ErrCityNotFound, city, err)
		}
		return loc.Latitude, loc.Longitude, nil
	}
}
