package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/temperature-anomaly/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
// Cities are resolved with the direct geocoding API before the current
// weather lookup by coordinates.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	geoURL     string
	weatherURL string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:       "openweathermap",
		apiKey:     apiKey,
		geoURL:     "https://api.openweathermap.org/geo/1.0/direct",
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg:    defaultHTTPConfig(client),
		circuit:    newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	lat, lon, err := p.geocode(ctx, city)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.weatherURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Now().UTC()
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
	}, nil
}

func (p *OpenWeatherProvider) geocode(ctx context.Context, city string) (float64, float64, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	var places []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.geoURL+"?"+values.Encode(), &places); err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", city, err)
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", weather.ErrCityNotFound, city)
	}
	return places[0].Lat, places[0].Lon, nil
}
