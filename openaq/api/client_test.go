package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneResultPayload = `{"results":[{"period":{"datetimeTo":{"local":"2024-01-20T12:00:00"}},"value":15.5}]}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key",
		WithBaseURL(server.URL),
		WithRetryPolicy(RetryPolicy{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		}),
	)
	require.NoError(t, err)

	return client
}

func TestNewClientMissingAPIKey(t *testing.T) {
	for _, key := range []string{"", "   ", "\t\n"} {
		_, err := NewClient(key)
		assert.ErrorIs(t, err, ErrMissingAPIKey, "key %q should be rejected", key)
	}
}

func TestFetchSensorHistory(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery url.Values

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotQuery = r.URL.Query()
		fmt.Fprint(w, oneResultPayload)
	}))

	measurements, err := client.FetchSensorHistory(context.Background(), 14152505, "pm25", 1)
	require.NoError(t, err)
	require.Len(t, measurements, 1)

	assert.Equal(t, 15.5, measurements[0].Value)
	assert.Equal(t, "pm25", measurements[0].Parameter)
	assert.Equal(t, "2024-01-20T12:00:00", measurements[0].Timestamp)
	assert.Equal(t, int64(14152505), measurements[0].SensorID)

	assert.Equal(t, "/sensors/14152505/measurements", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "1000", gotQuery.Get("limit"))
	assert.Equal(t, "datetime", gotQuery.Get("order_by"))
	assert.Equal(t, "desc", gotQuery.Get("sort_order"))
	assert.NotEmpty(t, gotQuery.Get("datetime_from"))
}

func TestFetchSensorHistoryNotFound(t *testing.T) {
	requests := 0

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "not found", http.StatusNotFound)
	}))

	measurements, err := client.FetchSensorHistory(context.Background(), 14152505, "pm25", 1)
	require.Error(t, err)
	assert.Empty(t, measurements)
	assert.Equal(t, 1, requests, "4xx responses must not be retried")
}

func TestFetchSensorHistoryRetriesTransientFailures(t *testing.T) {
	statuses := []int{http.StatusInternalServerError, http.StatusTooManyRequests}
	requests := 0

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests < len(statuses) {
			http.Error(w, "try again", statuses[requests])
			requests++
			return
		}
		requests++
		fmt.Fprint(w, oneResultPayload)
	}))

	measurements, err := client.FetchSensorHistory(context.Background(), 14152505, "pm25", 1)
	require.NoError(t, err)
	assert.Len(t, measurements, 1)
	assert.Equal(t, 3, requests, "expected two retried failures before success")
}

func TestFetchSensorHistoryRetryBudgetExhausted(t *testing.T) {
	requests := 0

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	measurements, err := client.FetchSensorHistory(context.Background(), 14152505, "pm25", 1)
	require.Error(t, err)
	assert.Empty(t, measurements)
	assert.Equal(t, 3, requests, "retry budget is MaxAttempts total attempts")
}

func TestFetchSensorHistoryMalformedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": "not an array"`)
	}))

	_, err := client.FetchSensorHistory(context.Background(), 14152505, "pm25", 1)
	require.Error(t, err)
}

func TestSearchLocations(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations", r.URL.Path)
		assert.Equal(t, "Katowice", r.URL.Query().Get("name"))
		fmt.Fprint(w, `{"results":[{"id":10510,"name":"Katowice-Kossutha"}]}`)
	}))

	locations, err := client.SearchLocations(context.Background(), "Katowice")
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, int64(10510), locations[0].ID)
	assert.Equal(t, "Katowice-Kossutha", locations[0].Name)
}

func TestFetchLocationSensors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations/10510/sensors", r.URL.Path)
		fmt.Fprint(w, `{"results":[{"id":14152505,"parameter":{"name":"pm25","displayName":"PM2.5","units":"µg/m³"},"latest":{"value":12.4}}]}`)
	}))

	sensors, err := client.FetchLocationSensors(context.Background(), 10510)
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.Equal(t, int64(14152505), sensors[0].ID)
	assert.Equal(t, "pm25", sensors[0].Parameter.Name)
	assert.Equal(t, 12.4, sensors[0].Latest.Value)
}
