package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Upstream endpoints.
const (
	EndpointWeather  = "/weather"
	EndpointForecast = "/forecast"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 data API.
	DefaultBaseURL = "http://api.openweathermap.org/data/2.5"
	defaultTimeout = 10 * time.Second
	defaultUnits   = "imperial"
	maxErrorBody   = 512
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("openweathermap returned status %d", e.Status)
	}
	return fmt.Sprintf("openweathermap returned status %d: %s", e.Status, e.Body)
}

// Client issues requests against the OpenWeatherMap data API.
type Client struct {
	apiKey  string
	baseURL string
	units   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithUnits sets the unit system sent with every request.
func WithUnits(units string) Option {
	return func(c *Client) { c.units = units }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// NewClient constructs a Client with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   defaultUnits,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs one GET against endpoint with params plus appid and units,
// and returns the response body when it is a 2xx carrying valid JSON.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", endpoint, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error carries the full URL including appid.
		return nil, fmt.Errorf("GET %s: %w", endpoint, unwrapURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("GET %s: %w", endpoint, &StatusError{Status: resp.StatusCode, Body: string(body)})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decoding response from %s: invalid JSON", endpoint)
	}

	return json.RawMessage(body), nil
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
