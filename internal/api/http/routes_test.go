package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/temperature-anomaly/internal/analysis"
	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/observability"
	"github.com/i474232898/temperature-anomaly/internal/store"
)

type staticSource map[string]float64

func (s staticSource) CurrentTemperature(_ context.Context, city string) (float64, error) {
	t, ok := s[city]
	if !ok {
		return 0, fmt.Errorf("no reading for %s", city)
	}
	return t, nil
}

func newTestApp(src climate.TemperatureSource) *fiber.App {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC))
	svc := analysis.NewService(analysis.Deps{
		Datasets:   store.NewDatasetStore(clock),
		Live:       store.NewLiveStore(10, 0, clock),
		Source:     src,
		Comparator: climate.NewComparator(clock),
		Window:     7,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:    observability.NewMetricsForTesting(),
	})

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

// berlinWinter is one winter of daily Berlin readings with a single spike.
func berlinWinter() string {
	var b strings.Builder
	b.WriteString("city,timestamp,temperature\n")
	start := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		temp := 2 + 0.5*math.Sin(float64(i))
		if i == 20 {
			temp += 12
		}
		fmt.Fprintf(&b, "Berlin,%s,%.3f\n", start.AddDate(0, 0, i).Format(time.DateOnly), temp)
	}
	return b.String()
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func upload(t *testing.T, app *fiber.App, csv string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", strings.NewReader(csv))
	req.Header.Set(fiber.HeaderContentType, "text/csv")
	status, body := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, string(body))
}

func TestQueriesBeforeUpload(t *testing.T) {
	app := newTestApp(nil)

	for _, path := range []string{
		"/api/v1/dataset",
		"/api/v1/cities",
		"/api/v1/cities/Berlin/observations",
		"/api/v1/live?city=Berlin",
	} {
		status, _ := do(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusConflict, status, path)
	}
}

func TestUploadAndQuery(t *testing.T) {
	app := newTestApp(nil)
	upload(t, app, berlinWinter())

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil))
	require.Equal(t, http.StatusOK, status)
	var ds datasetResponse
	require.NoError(t, json.Unmarshal(body, &ds))
	assert.Equal(t, 60, ds.Rows)
	assert.Equal(t, []string{"Berlin"}, ds.Cities)
	assert.NotEmpty(t, ds.ID)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/observations?anomalies=true", nil))
	require.Equal(t, http.StatusOK, status)
	var obs struct {
		City         string                `json:"city"`
		Observations []observationResponse `json:"observations"`
	}
	require.NoError(t, json.Unmarshal(body, &obs))
	require.Len(t, obs.Observations, 1)
	assert.Equal(t, "2023-12-21", obs.Observations[0].Timestamp.Format(time.DateOnly))
	assert.True(t, obs.Observations[0].Anomaly)
	require.NotNil(t, obs.Observations[0].MovingAvg)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/baselines", nil))
	require.Equal(t, http.StatusOK, status)
	var bl struct {
		Baselines []baselineResponse `json:"baselines"`
	}
	require.NoError(t, json.Unmarshal(body, &bl))
	require.Len(t, bl.Baselines, 1)
	assert.Equal(t, climate.SeasonWinter, bl.Baselines[0].Season)
	assert.Equal(t, 60, bl.Baselines[0].Count)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/summary", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"count":60`)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/observations?season=Winter", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &obs))
	assert.Len(t, obs.Observations, 60)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/observations?season=summer", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &obs))
	assert.Empty(t, obs.Observations)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin/observations?season=monsoon", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Lima/summary", nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadMultipartTSV(t *testing.T) {
	app := newTestApp(nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "temps.tsv")
	require.NoError(t, err)
	_, err = part.Write([]byte("city\ttimestamp\ttemperature\nNew York\t2024-07-01\t28.5\nNew York\t2024-07-02\t29.5\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, body := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/New%20York/baselines", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"season":"summer"`)
}

func TestUploadMalformed(t *testing.T) {
	app := newTestApp(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", strings.NewReader("city,temperature\nBerlin,3\n"))
	status, _ := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/dataset", nil)
	status, _ = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/dataset?format=xml", strings.NewReader(berlinWinter()))
	status, _ = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUndefinedStdIsNull(t *testing.T) {
	app := newTestApp(nil)
	upload(t, app, "city,timestamp,temperature\nSolo,2024-01-01,5\n")

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/cities/Solo/baselines", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"std":null`)
}

func TestLive(t *testing.T) {
	app := newTestApp(staticSource{"Berlin": 25})
	upload(t, app, berlinWinter())

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live?city=Berlin", nil))
	require.Equal(t, http.StatusOK, status, string(body))
	var live struct {
		Readings []liveResponse `json:"readings"`
	}
	require.NoError(t, json.Unmarshal(body, &live))
	require.Len(t, live.Readings, 1)
	assert.Equal(t, climate.SeasonWinter, live.Readings[0].Season)
	assert.True(t, live.Readings[0].Anomaly)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/history?city=Berlin", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &live))
	assert.Len(t, live.Readings, 1)

	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/latest?city=Berlin", nil))
	require.Equal(t, http.StatusOK, status)
	var latest liveResponse
	require.NoError(t, json.Unmarshal(body, &latest))
	assert.Equal(t, 25.0, latest.Temperature)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/latest?city=Cairo", nil))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live?city=Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/history?city=Atlantis", nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLiveCityValidation(t *testing.T) {
	app := newTestApp(staticSource{})
	upload(t, app, berlinWinter())

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	many := "/api/v1/live?city=" + strings.Repeat("Berlin,", 10) + "Berlin"
	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, many, nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/history", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live/latest", nil))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLiveWithoutSource(t *testing.T) {
	app := newTestApp(nil)
	upload(t, app, berlinWinter())

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/live?city=Berlin", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
