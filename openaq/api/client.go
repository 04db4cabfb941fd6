package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"openaq-archiver/internal/models"
)

const (
	BASE_URL        = "https://api.openaq.org/v3"
	USER_AGENT      = "OpenAQ Archiver/1.0.0"
	REQUEST_TIMEOUT = 20 * time.Second
	PAGE_LIMIT      = 1000
)

// ErrMissingAPIKey is returned by NewClient when no credential was supplied.
var ErrMissingAPIKey = errors.New("missing OpenAQ API key")

// RetryPolicy bounds the automatic retry of transient transport failures.
// It is owned by the Client instance; there is no process-wide retry state.
type RetryPolicy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// Client talks to the OpenAQ v3 REST API. The embedded transport session is
// reused across calls within a run; it is not meant for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      RetryPolicy
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(client *Client) {
		client.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = timeout
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(client *Client) {
		client.retry = policy
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: REQUEST_TIMEOUT,
		},
		baseURL: BASE_URL,
		apiKey:  apiKey,
		retry:   DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (client *Client) log(level slog.Level, msg string, args ...any) {
	if client.logger != nil {
		client.logger.Log(context.Background(), level, msg, args...)
	}
}

// FetchSensorHistory retrieves all measurements for one sensor newer than
// now - days, ordered descending by time, capped at PAGE_LIMIT (one page,
// no pagination). Transient transport failures are retried per the client's
// RetryPolicy; the returned error is the caller's to contain.
func (client *Client) FetchSensorHistory(ctx context.Context, sensorID int64, label string, days int) ([]models.Measurement, error) {
	client.log(slog.LevelInfo, "Fetching sensor history", "parameter", label, "sensor_id", sensorID, "days", days)

	query := url.Values{}
	query.Set("datetime_from", time.Now().UTC().Add(-time.Duration(days)*24*time.Hour).Format("2006-01-02T15:04:05"))
	query.Set("limit", strconv.Itoa(PAGE_LIMIT))
	query.Set("order_by", "datetime")
	query.Set("sort_order", "desc")

	var payload measurementsResponse
	path := fmt.Sprintf("/sensors/%d/measurements", sensorID)
	if err := client.getJSON(ctx, path, query, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", label, err)
	}

	measurements := make([]models.Measurement, 0, len(payload.Results))
	for _, result := range payload.Results {
		if math.IsNaN(result.Value) || math.IsInf(result.Value, 0) {
			client.log(slog.LevelWarn, "Skipping non-finite value", "parameter", label, "sensor_id", sensorID)
			continue
		}

		measurements = append(measurements, models.Measurement{
			Timestamp: result.Period.DatetimeTo.Local,
			Value:     result.Value,
			Parameter: label,
			SensorID:  sensorID,
		})
	}

	client.log(slog.LevelDebug, "Sensor history fetched", "parameter", label, "records", len(measurements))

	return measurements, nil
}

// transientError marks a failure worth retrying: connection errors,
// rate limiting and server-side errors. Everything else is permanent.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func (client *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	attempts := client.retry.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = client.retry.InitialInterval
	policy.MaxInterval = client.retry.MaxInterval

	// MaxAttempts counts the first try; the backoff budget counts retries.
	return backoff.Retry(func() error {
		err := client.doRequest(ctx, path, query, out)
		if err == nil {
			return nil
		}

		var transient *transientError
		if errors.As(err, &transient) {
			client.log(slog.LevelWarn, "Retrying request", "path", path, "error", err)
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, attempts-1), ctx))
}

func (client *Client) doRequest(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("X-API-Key", client.apiKey)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", USER_AGENT)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return &transientError{fmt.Errorf("request failed: %w", err)}
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500 {
		io.Copy(io.Discard, response.Body)
		return &transientError{fmt.Errorf("server returned %s", response.Status)}
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return &transientError{fmt.Errorf("failed to read response body: %w", err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
