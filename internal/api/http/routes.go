package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/temperature-anomaly/internal/analysis"
	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/ingest"
	"github.com/i474232898/temperature-anomaly/internal/store"
	"github.com/i474232898/temperature-anomaly/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *analysis.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/dataset", func(c *fiber.Ctx) error {
		r, format, err := uploadedDataset(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer r.Close()

		ds, err := service.Load(c.UserContext(), r, format)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(newDatasetResponse(ds))
	})

	v1.Get("/dataset", func(c *fiber.Ctx) error {
		ds, err := service.Current()
		if err != nil {
			return mapError(err)
		}
		return c.JSON(newDatasetResponse(ds))
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		ds, err := service.Current()
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"cities": newDatasetResponse(ds).Cities})
	})

	v1.Get("/cities/:city/observations", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filter := analysis.RowFilter{AnomaliesOnly: c.QueryBool("anomalies", false)}
		if raw := c.Query("season"); raw != "" {
			if filter.Season, err = climate.ParseSeason(raw); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		rows, err := service.CityRows(city, filter)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"city":         city,
			"observations": newObservationResponses(rows),
		})
	})

	v1.Get("/cities/:city/baselines", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rows, err := service.CityBaselines(city)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"city":      city,
			"baselines": newBaselineResponses(rows),
		})
	})

	v1.Get("/cities/:city/summary", func(c *fiber.Ctx) error {
		city, err := cityParam(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		summary, err := service.CitySummary(city)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"city":        city,
			"temperature": newSummaryResponse(summary),
		})
	})

	v1.Get("/live", func(c *fiber.Ctx) error {
		q := parseLiveQuery(c)
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := service.CheckLive(c.UserContext(), q.Cities)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"readings": newLiveResponses(readings)})
	})

	v1.Get("/live/latest", func(c *fiber.Ctx) error {
		q := cityQuery{City: strings.TrimSpace(c.Query("city"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.LatestLive(q.City)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(newLiveResponses([]climate.LiveReading{reading})[0])
	})

	v1.Get("/live/history", func(c *fiber.Ctx) error {
		q := cityQuery{City: strings.TrimSpace(c.Query("city"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := service.LiveHistory(q.City)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{
			"city":     q.City,
			"readings": newLiveResponses(readings),
		})
	})
}

// cityQuery holds the query parameter identifying a single city.
type cityQuery struct {
	City string `validate:"required"`
}

// liveQuery holds the cities of a live comparison, given as repeated or
// comma separated `city` parameters.
type liveQuery struct {
	Cities []string `validate:"required,min=1,max=10,dive,required"`
}

func parseLiveQuery(c *fiber.Ctx) liveQuery {
	var q liveQuery
	for _, raw := range c.Context().QueryArgs().PeekMulti("city") {
		for _, city := range strings.Split(string(raw), ",") {
			if city = strings.TrimSpace(city); city != "" {
				q.Cities = append(q.Cities, city)
			}
		}
	}
	return q
}

func cityParam(c *fiber.Ctx) (string, error) {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		return "", errors.New("invalid city")
	}
	q := cityQuery{City: strings.TrimSpace(city)}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return q.City, nil
}

// uploadedDataset accepts either a multipart "file" field or a raw request body.
func uploadedDataset(c *fiber.Ctx) (io.ReadCloser, ingest.Format, error) {
	format, err := ingest.ParseFormat(c.Query("format"))
	if err != nil {
		return nil, "", err
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", errors.New("multipart upload requires a \"file\" field")
		}
		if format == ingest.FormatAuto {
			format = analysis.FormatForName(fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		return f, format, nil
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, "", errors.New("request body is empty")
	}
	if format == ingest.FormatAuto && strings.Contains(c.Get(fiber.HeaderContentType), "tab-separated") {
		format = ingest.FormatTSV
	}
	// The body buffer is only valid for the request, Load finishes within it.
	return io.NopCloser(bytes.NewReader(body)), format, nil
}

// mapError translates service errors into HTTP errors.
func mapError(err error) error {
	switch {
	case errors.Is(err, climate.ErrMalformedDataset):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNoDataset):
		return fiber.NewError(fiber.StatusConflict, "no dataset loaded; upload one first")
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, climate.ErrUnknownCityOrPeriod):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, climate.ErrMissingBaseline):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrNoSource):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, weather.ErrNoReadings), errors.Is(err, weather.ErrNoProviders):
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch current temperature")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
