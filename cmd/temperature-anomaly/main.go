package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/temperature-anomaly/internal/analysis"
	httpapi "github.com/i474232898/temperature-anomaly/internal/api/http"
	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/config"
	"github.com/i474232898/temperature-anomaly/internal/observability"
	"github.com/i474232898/temperature-anomaly/internal/scheduler"
	"github.com/i474232898/temperature-anomaly/internal/store"
	"github.com/i474232898/temperature-anomaly/internal/weather"
	"github.com/i474232898/temperature-anomaly/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg)
	slog.SetDefault(log)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), enabled by their keys.
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	// Open-Meteo needs no key of its own, but geocoding goes through Google.
	if cfg.GeocoderAPIKey != "" {
		provs = append(provs, providers.NewOpenMeteoProvider(httpClient, cfg.GeocoderAPIKey))
	}

	var source climate.TemperatureSource
	if len(provs) > 0 {
		source = weather.NewService(provs, log, metrics)
	} else {
		log.Warn("no weather provider configured; live checks are disabled")
	}

	service := analysis.NewService(analysis.Deps{
		Datasets:   store.NewDatasetStore(clock),
		Live:       store.NewLiveStore(cfg.LiveMaxHistory, cfg.LiveMaxAge, clock),
		Source:     source,
		Comparator: climate.NewComparator(clock),
		Window:     cfg.SmoothingWindow,
		Logger:     log,
		Metrics:    metrics,
	})

	if cfg.DatasetPath != "" {
		if _, err := service.LoadFile(context.Background(), cfg.DatasetPath); err != nil {
			log.Error("failed to load startup dataset", "path", cfg.DatasetPath, "error", err)
			os.Exit(1)
		}
	}

	// Scheduler that periodically compares watched cities with their baseline.
	if source != nil {
		sched := scheduler.New(cfg.WatchCities, cfg.FetchInterval, service, log)
		if err := sched.Start(); err != nil {
			log.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "temperature-anomaly",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             cfg.MaxUploadBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":  "ok",
			"service": "temperature-anomaly",
		}
		if ds, err := service.Current(); err == nil {
			status["dataset"] = ds.ID
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("server started", "port", cfg.Port, "providers", len(provs), "watch_cities", len(cfg.WatchCities))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}
