package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/acrawford/weather-dashboard/internal/observability"
)

const (
	endpointCurrent  = "current"
	endpointForecast = "forecast"
	endpointGeocode  = "geocode"
)

// OpenWeatherProvider implements Provider against the OpenWeather data and
// geocoding APIs. Every call carries a fixed per-call timeout and passes
// through a shared circuit breaker; failures are classified into the sentinel
// taxonomy before being surfaced. No retries are performed here.
type OpenWeatherProvider struct {
	apiKey  string
	apiURL  string
	geoURL  string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider validates the credential and builds a provider.
// apiURL is the data API base (e.g. https://api.openweathermap.org/data/2.5),
// geoURL the geocoding base (e.g. https://api.openweathermap.org/geo/1.0).
func NewOpenWeatherProvider(apiKey, apiURL, geoURL string, timeout time.Duration) (*OpenWeatherProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		apiKey:  apiKey,
		apiURL:  apiURL,
		geoURL:  geoURL,
		timeout: timeout,
		breaker: cb,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// FetchCurrent retrieves raw current conditions for the coordinates.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, lat, lon float64) (CurrentPayload, error) {
	var payload CurrentPayload
	err := p.call(ctx, endpointCurrent, p.apiURL+"/weather", coordParams(lat, lon), &payload)
	return payload, err
}

// FetchForecast retrieves the raw 3-hour bucket series for the coordinates.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, lat, lon float64) (ForecastPayload, error) {
	var payload ForecastPayload
	err := p.call(ctx, endpointForecast, p.apiURL+"/forecast", coordParams(lat, lon), &payload)
	return payload, err
}

// Geocode resolves a free-text query to candidate locations. Results are
// never cached; limit is passed straight through to the upstream.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, query string, limit int) ([]GeoResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var results []GeoResult
	if err := p.call(ctx, endpointGeocode, p.geoURL+"/direct", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ValidateAPIKey issues a cheap upstream call to confirm the credential is
// accepted. Used by the health endpoint.
func (p *OpenWeatherProvider) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payload CurrentPayload
	err := p.call(ctx, endpointCurrent, p.apiURL+"/weather", coordParams(51.51, -0.13), &payload)
	if err != nil {
		return fmt.Errorf("validate API key: %w", err)
	}
	return nil
}

func coordParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return params
}

// call performs one upstream request and decodes the JSON response into out.
func (p *OpenWeatherProvider) call(ctx context.Context, endpoint, rawURL string, params url.Values, out interface{}) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := p.buildRequest(reqCtx, rawURL, params)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("build request: %w", err)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.client.Do(req)
	})
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.UpstreamCallDuration.WithLabelValues(endpoint, "error").Observe(duration)
		return classifyTransport(err)
	}
	resp := result.(*http.Response)
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.UpstreamCallDuration.WithLabelValues(endpoint, status).Observe(duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, upstreamMessage(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (p *OpenWeatherProvider) buildRequest(ctx context.Context, rawURL string, params url.Values) (*http.Request, error) {
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params.Set("appid", p.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// upstreamMessage extracts the error message OpenWeather includes in non-2xx
// bodies, when present.
func upstreamMessage(body []byte) string {
	var errBody struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil {
		return ""
	}
	return errBody.Message
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
