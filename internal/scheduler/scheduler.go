package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/store"
)

// LiveChecker compares current temperatures against the loaded dataset.
type LiveChecker interface {
	CheckLive(ctx context.Context, cities []string) ([]climate.LiveReading, error)
}

// Scheduler periodically runs live checks for the watched cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   LiveChecker
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, checker LiveChecker, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		checker:   checker,
		cities:    cities,
		interval:  interval,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		s.logger.Info("scheduler: no watched cities configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if _, err := s.scheduler.Every(interval).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce checks every watched city. Cities are checked one by one so a city
// missing from the dataset does not hide the others.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("scheduler: running live check job", "cities", len(s.cities))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, city := range s.cities {
		_, err := s.checker.CheckLive(ctx, []string{city})
		switch {
		case errors.Is(err, store.ErrNoDataset):
			s.logger.Info("scheduler: no dataset loaded; skipping live checks")
			return
		case err != nil:
			s.logger.Warn("scheduler: live check failed", "city", city, "error", err)
		}
	}

	s.logger.Debug("scheduler: completed live check job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
