package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mine-ops-etl/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var berau = Site{Latitude: 2.0167, Longitude: 117.3, Timezone: "Asia/Jakarta"}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, berau, 5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

const archiveBody = `{
  "latitude": 2.0,
  "longitude": 117.25,
  "elevation": 12.0,
  "timezone": "Asia/Jakarta",
  "utc_offset_seconds": 25200,
  "daily": {
    "time": ["2024-07-01", "2024-07-02", "2024-07-03"],
    "temperature_2m_mean": [27.1, null, 26.4],
    "precipitation_sum": [4.2, 0.0, null]
  }
}`

func TestClient_FetchDaily_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2.0167", q.Get("latitude"))
		assert.Equal(t, "117.3", q.Get("longitude"))
		assert.Equal(t, "temperature_2m_mean,precipitation_sum", q.Get("daily"))
		assert.Equal(t, "Asia/Jakarta", q.Get("timezone"))
		assert.Equal(t, "2024-07-01", q.Get("start_date"))
		assert.Equal(t, "2024-07-03", q.Get("end_date"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, archiveBody)
	}))
	defer srv.Close()

	series, err := testClient(srv.URL).FetchDaily(context.Background(), dateRange("2024-07-01", "2024-07-03"))
	require.NoError(t, err)

	require.Len(t, series.Daily, 3)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), series.Daily[0].DateID)
	require.NotNil(t, series.Daily[0].TemperatureMean)
	assert.InDelta(t, 27.1, *series.Daily[0].TemperatureMean, 1e-9)
	require.NotNil(t, series.Daily[0].RainfallMM)
	assert.InDelta(t, 4.2, *series.Daily[0].RainfallMM, 1e-9)

	assert.Nil(t, series.Daily[1].TemperatureMean, "null values stay absent")
	require.NotNil(t, series.Daily[1].RainfallMM)
	assert.Zero(t, *series.Daily[1].RainfallMM)
	assert.Nil(t, series.Daily[2].RainfallMM)

	require.NotNil(t, series.Location)
	assert.Equal(t, 2.0, series.Location.Latitude)
	assert.Equal(t, 117.25, series.Location.Longitude)
	assert.Equal(t, 12.0, series.Location.Elevation)
	assert.Equal(t, "Asia/Jakarta", series.Location.Timezone)
	assert.Equal(t, 25200, series.Location.UTCOffsetSeconds)
}

func TestClient_FetchDaily_ShortValueArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, `{"daily":{"time":["2024-07-01","2024-07-02"],"temperature_2m_mean":[25.0]}}`)
	}))
	defer srv.Close()

	series, err := testClient(srv.URL).FetchDaily(context.Background(), dateRange("2024-07-01", "2024-07-02"))
	require.NoError(t, err)
	require.Len(t, series.Daily, 2)
	assert.NotNil(t, series.Daily[0].TemperatureMean)
	assert.Nil(t, series.Daily[1].TemperatureMean)
	assert.Nil(t, series.Daily[0].RainfallMM)
}

func TestClient_FetchDaily_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":true,"reason":"Parameter 'start_date' is out of allowed range"}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchDaily(context.Background(), dateRange("2024-07-01", "2024-07-03"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestClient_FetchDaily_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchDaily(context.Background(), dateRange("2024-07-01", "2024-07-03"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_FetchDaily_InvalidDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"daily":{"time":["07/01/2024"]}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchDaily(context.Background(), dateRange("2024-07-01", "2024-07-01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily.time[0]")
}

func TestClient_FetchDaily_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, archiveBody)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).FetchDaily(ctx, dateRange("2024-07-01", "2024-07-03"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
