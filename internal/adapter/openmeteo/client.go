package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/observability"
)

// Site is the coordinate and timezone pair the archive is queried for.
type Site struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Client implements domain.ClimateSource using the Open-Meteo historical archive API.
type Client struct {
	site       Site
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo archive client for a single site.
func NewClient(baseURL string, site Site, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		site: site,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchDaily returns the daily mean temperature and precipitation for r.
func (c *Client) FetchDaily(ctx context.Context, r domain.DateRange) (domain.ClimateSeries, error) {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(c.site.Latitude, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(c.site.Longitude, 'f', -1, 64)},
		"daily":      {"temperature_2m_mean,precipitation_sum"},
		"timezone":   {c.site.Timezone},
		"start_date": {r.Start.Format(domain.DateLayout)},
		"end_date":   {r.End.Format(domain.DateLayout)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.ClimateSeries{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ClimateAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ClimateSeries{}, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ClimateSeries{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var archive response
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return domain.ClimateSeries{}, fmt.Errorf("decode response: %w", err)
	}

	series, err := archive.toSeries()
	if err != nil {
		return domain.ClimateSeries{}, err
	}
	c.logger.Debug("climate archive fetched",
		"start", params.Get("start_date"),
		"end", params.Get("end_date"),
		"days", len(series.Daily),
	)
	return series, nil
}

// Open-Meteo archive response types.

type response struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Elevation        float64 `json:"elevation"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Daily            daily   `json:"daily"`
}

type daily struct {
	Time             []string   `json:"time"`
	TemperatureMean  []*float64 `json:"temperature_2m_mean"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

func (r response) toSeries() (domain.ClimateSeries, error) {
	records := make([]domain.ClimateDailyRecord, 0, len(r.Daily.Time))
	for i, day := range r.Daily.Time {
		t, err := time.Parse(domain.DateLayout, day)
		if err != nil {
			return domain.ClimateSeries{}, fmt.Errorf("parse daily.time[%d] %q: %w", i, day, err)
		}
		records = append(records, domain.ClimateDailyRecord{
			DateID:          t,
			TemperatureMean: at(r.Daily.TemperatureMean, i),
			RainfallMM:      at(r.Daily.PrecipitationSum, i),
		})
	}

	return domain.ClimateSeries{
		Daily: records,
		Location: &domain.LocationMetadata{
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			Elevation:        r.Elevation,
			Timezone:         r.Timezone,
			UTCOffsetSeconds: r.UTCOffsetSeconds,
		},
	}, nil
}

// at tolerates value arrays shorter than the time axis.
func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
