package climate

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// TemperatureSource supplies the current temperature of a city in Celsius.
type TemperatureSource interface {
	CurrentTemperature(ctx context.Context, city string) (float64, error)
}

// Comparator classifies current temperatures against the baseline of the
// season the current date falls in.
type Comparator struct {
	clock clockwork.Clock
}

// NewComparator creates a Comparator. A nil clock uses real time.
func NewComparator(clock clockwork.Clock) *Comparator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Comparator{clock: clock}
}

// CurrentSeason returns the season of the comparator's current date in UTC.
func (c *Comparator) CurrentSeason() Season {
	return SeasonForMonth(c.clock.Now().UTC().Month())
}

// Compare classifies temperature for city with the 2-sigma rule.
func (c *Comparator) Compare(table BaselineTable, city string, temperature float64) (LiveReading, error) {
	now := c.clock.Now().UTC()
	season := SeasonForMonth(now.Month())

	b, ok := table.Lookup(city, season)
	if !ok {
		return LiveReading{}, &UnknownCityOrPeriodError{City: city, Season: season}
	}

	return LiveReading{
		City:        city,
		Season:      season,
		Temperature: temperature,
		Anomaly:     IsAnomaly(temperature, b),
		Mean:        b.Mean,
		Std:         b.Std,
		CheckedAt:   now,
	}, nil
}

// CompareCities fetches the current temperature of every city concurrently and
// classifies each one. Cities without a baseline for the current season are
// rejected before any fetch. Results keep the order of cities.
func (c *Comparator) CompareCities(ctx context.Context, table BaselineTable, src TemperatureSource, cities []string) ([]LiveReading, error) {
	season := c.CurrentSeason()
	for _, city := range cities {
		if _, ok := table.Lookup(city, season); !ok {
			return nil, &UnknownCityOrPeriodError{City: city, Season: season}
		}
	}

	readings := make([]LiveReading, len(cities))
	g, ctx := errgroup.WithContext(ctx)
	for i, city := range cities {
		i, city := i, city
		g.Go(func() error {
			temp, err := src.CurrentTemperature(ctx, city)
			if err != nil {
				return fmt.Errorf("fetch current temperature for %s: %w", city, err)
			}
			r, err := c.Compare(table, city, temp)
			if err != nil {
				return err
			}
			readings[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return readings, nil
}
