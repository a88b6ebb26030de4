package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/temperature-anomaly/internal/observability"
)

var (
	// ErrNoProviders is returned when the service has nothing to query.
	ErrNoProviders = errors.New("no weather providers configured")

	// ErrNoReadings is returned when every provider failed for a city.
	ErrNoReadings = errors.New("no successful provider readings")
)

// Service fetches the current temperature of a city from all providers.
type Service struct {
	providers []Provider
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a new Service.
func NewService(providers []Provider, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		providers: providers,
		logger:    logger,
		metrics:   metrics,
	}
}

// Current queries all providers concurrently and aggregates the successful
// readings. Individual provider failures are logged and skipped.
func (s *Service) Current(ctx context.Context, city string) (Snapshot, error) {
	if len(s.providers) == 0 {
		return Snapshot{}, ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
		errs     []error
	)

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			r, err := p.Fetch(ctx, city)
			s.metrics.ProviderFetchDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.metrics.ProviderFetches.WithLabelValues(p.Name(), "error").Inc()
				s.logger.Warn("provider fetch failed", "provider", p.Name(), "city", city, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return
			}
			s.metrics.ProviderFetches.WithLabelValues(p.Name(), "success").Inc()
			readings = append(readings, r)
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		return Snapshot{}, fmt.Errorf("%w for %s: %w", ErrNoReadings, city, errors.Join(errs...))
	}

	// Provider goroutines finish in any order.
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].ProviderName < readings[j].ProviderName
	})

	snapshot := AggregateReadings(city, readings)
	s.logger.Debug("current temperature aggregated",
		"city", city,
		"temperature_c", snapshot.TemperatureC,
		"providers", len(readings),
	)
	return snapshot, nil
}

// CurrentTemperature returns the aggregated current temperature in Celsius.
func (s *Service) CurrentTemperature(ctx context.Context, city string) (float64, error) {
	snap, err := s.Current(ctx, city)
	if err != nil {
		return 0, err
	}
	return snap.TemperatureC, nil
}
