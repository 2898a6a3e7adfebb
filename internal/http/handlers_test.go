package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/acrawford/weather-dashboard/internal/gateway"
	"github.com/acrawford/weather-dashboard/internal/provider"
	"github.com/acrawford/weather-dashboard/internal/store"
)

type stubProvider struct {
	current     provider.CurrentPayload
	currentErr  error
	forecast    provider.ForecastPayload
	forecastErr error
	geo         []provider.GeoResult
	geoErr      error
	gotLimit    int
	// errLat, when non-zero, makes FetchCurrent and FetchForecast fail for
	// that latitude only.
	errLat float64
}

func (s *stubProvider) FetchCurrent(ctx context.Context, lat, lon float64) (provider.CurrentPayload, error) {
	if s.errLat != 0 && lat == s.errLat {
		return provider.CurrentPayload{}, provider.ErrUpstreamUnavailable
	}
	return s.current, s.currentErr
}

func (s *stubProvider) FetchForecast(ctx context.Context, lat, lon float64) (provider.ForecastPayload, error) {
	if s.errLat != 0 && lat == s.errLat {
		return provider.ForecastPayload{}, provider.ErrUpstreamUnavailable
	}
	return s.forecast, s.forecastErr
}

func (s *stubProvider) Geocode(ctx context.Context, query string, limit int) ([]provider.GeoResult, error) {
	s.gotLimit = limit
	return s.geo, s.geoErr
}

type stubChecker struct {
	err error
}

func (s *stubChecker) ValidateAPIKey(ctx context.Context) error { return s.err }

// newTestRouter builds a full router over an in-memory store, with no rate
// limiting and no usage log.
func newTestRouter(t *testing.T, p provider.Provider, checker CredentialChecker) (http.Handler, *store.CityRepository) {
	t.Helper()

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.InitializeSchema(db); err != nil {
		t.Fatalf("InitializeSchema() unexpected error: %v", err)
	}

	cities := store.NewCityRepository(db)
	gw := gateway.NewWeatherGateway(p, store.NewCacheStore(db), 30*time.Minute, 3*time.Hour)
	logger := zap.NewNop()
	h := NewHandler(gw, cities, checker, db.Ping, logger)
	return NewRouter(h, nil, logger, nil, 5*time.Second), cities
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in body, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func currentPayload() provider.CurrentPayload {
	var p provider.CurrentPayload
	p.Name = "London"
	p.Sys.Country = "GB"
	p.Coord.Lat = 51.51
	p.Coord.Lon = -0.13
	p.Main.Temp = 15.5
	p.Main.Humidity = 65
	p.Weather = append(p.Weather, struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}{Main: "Clouds", Description: "scattered clouds", Icon: "03d"})
	return p
}

func TestGetCurrentWeather_Success(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{current: currentPayload()}, nil)

	rec := doRequest(t, router, http.MethodGet, "/weather/current/51.51/-0.13", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("expected success envelope, got %v", body)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	loc, _ := data["location"].(map[string]interface{})
	if loc["name"] != "London" {
		t.Errorf("location name = %v, want London", loc["name"])
	}
}

// TestGetCurrentWeather_InvalidCoordinates verifies coordinate validation
// rejects bad path segments before any upstream or cache work happens.
func TestGetCurrentWeather_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"non-numeric latitude", "/weather/current/abc/-0.13"},
		{"non-numeric longitude", "/weather/current/51.51/xyz"},
		{"latitude above range", "/weather/current/90.01/-0.13"},
		{"latitude below range", "/weather/current/-91/-0.13"},
		{"longitude above range", "/weather/current/51.51/180.5"},
		{"longitude below range", "/weather/current/51.51/-181"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubProvider{current: currentPayload()}, nil)

			rec := doRequest(t, router, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if code := errorCode(t, decodeBody(t, rec)); code != "INVALID_COORDINATES" {
				t.Errorf("error code = %q, want INVALID_COORDINATES", code)
			}
		})
	}
}

// TestErrorStatusMapping verifies each classified upstream failure surfaces
// as its designated HTTP status and error code.
func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"location not found", provider.ErrLocationNotFound, http.StatusNotFound, "LOCATION_NOT_FOUND"},
		{"rate limited", provider.ErrRateLimited, http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED"},
		{"invalid API key", provider.ErrInvalidAPIKey, http.StatusBadGateway, "INVALID_API_KEY"},
		{"upstream unavailable", provider.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"},
		{"timeout", provider.ErrTimeout, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"network", provider.ErrNetwork, http.StatusServiceUnavailable, "UPSTREAM_UNREACHABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubProvider{currentErr: tt.err}, nil)

			rec := doRequest(t, router, http.MethodGet, "/weather/current/51.51/-0.13", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, decodeBody(t, rec)); code != tt.wantCode {
				t.Errorf("error code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestSearchLocations_Envelope(t *testing.T) {
	p := &stubProvider{geo: []provider.GeoResult{
		{Name: "Springfield", Lat: 39.8, Lon: -89.64, Country: "US", State: "Illinois"},
		{Name: "Springfield", Lat: 42.1, Lon: -72.59, Country: "US", State: "Massachusetts"},
	}}
	router, _ := newTestRouter(t, p, nil)

	rec := doRequest(t, router, http.MethodGet, "/weather/search/springfield", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("expected success envelope")
	}
	if body["query"] != "springfield" {
		t.Errorf("query = %v, want springfield", body["query"])
	}
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestSearchLocations_LimitClamped(t *testing.T) {
	p := &stubProvider{}
	router, _ := newTestRouter(t, p, nil)

	rec := doRequest(t, router, http.MethodGet, "/weather/search/paris?limit=50", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if p.gotLimit != maxSearchLimit {
		t.Errorf("upstream limit = %d, want %d", p.gotLimit, maxSearchLimit)
	}
}

func TestSearchLocations_InvalidLimit(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, nil)

	for _, limit := range []string{"abc", "0", "-3"} {
		rec := doRequest(t, router, http.MethodGet, "/weather/search/paris?limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want %d", limit, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestBatchWeather_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{not json`},
		{"missing cities", `{}`},
		{"empty cities", `{"cities": []}`},
		{"out of range coordinates", `{"cities": [{"id": 1, "lat": 95, "lon": 0}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubProvider{current: currentPayload()}, nil)

			rec := doRequest(t, router, http.MethodPost, "/weather/batch", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestBatchWeather_TooManyCities(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{current: currentPayload()}, nil)

	var cities []string
	for i := 0; i < maxBatchCities+1; i++ {
		cities = append(cities, `{"id": `+strconv.Itoa(i+1)+`, "lat": 10, "lon": 10}`)
	}
	body := `{"cities": [` + strings.Join(cities, ",") + `]}`

	rec := doRequest(t, router, http.MethodPost, "/weather/batch", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestBatchWeather_PartialFailure verifies one failing city is reported in
// its own slot while the others still succeed.
func TestBatchWeather_PartialFailure(t *testing.T) {
	p := &stubProvider{current: currentPayload(), errLat: 60.17}
	router, _ := newTestRouter(t, p, nil)

	body := `{"cities": [
		{"id": 1, "lat": 51.51, "lon": -0.13},
		{"id": 2, "lat": 60.17, "lon": 24.94}
	]}`

	rec := doRequest(t, router, http.MethodPost, "/weather/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data, _ := decodeBody(t, rec)["data"].(map[string]interface{})
	results, _ := data["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first, _ := results[0].(map[string]interface{})
	second, _ := results[1].(map[string]interface{})
	if first["success"] != true {
		t.Errorf("first city should succeed: %v", first)
	}
	if second["success"] != false {
		t.Errorf("second city should fail: %v", second)
	}
	if second["error"] == "" || second["error"] == nil {
		t.Errorf("failed city should carry an error message")
	}
}

func TestAddCity_AndDuplicate(t *testing.T) {
	router, _ := newTestRouter(t, &stubProvider{}, nil)
	body := `{"name": "London", "country": "GB", "lat": 51.51, "lon": -0.13}`

	rec := doRequest(t, router, http.MethodPost, "/cities", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first add: status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/cities", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate add: status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if code := errorCode(t, decodeBody(t, rec)); code != "CITY_EXISTS" {
		t.Errorf("error code = %q, want CITY_EXISTS", code)
	}
}

func TestAddCity_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{`},
		{"missing name", `{"country": "GB", "lat": 51.51, "lon": -0.13}`},
		{"missing country", `{"name": "London", "lat": 51.51, "lon": -0.13}`},
		{"latitude out of range", `{"name": "London", "country": "GB", "lat": 91, "lon": -0.13}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubProvider{}, nil)
			rec := doRequest(t, router, http.MethodPost, "/cities", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestListCities(t *testing.T) {
	router, cities := newTestRouter(t, &stubProvider{}, nil)

	if _, err := cities.Add(context.Background(), "London", "GB", 51.51, -0.13); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if _, err := cities.Add(context.Background(), "Paris", "FR", 48.85, 2.35); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	rec := doRequest(t, router, http.MethodGet, "/cities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	data, _ := decodeBody(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Errorf("got %d cities, want 2", len(data))
	}
}

func TestDeleteCity(t *testing.T) {
	router, cities := newTestRouter(t, &stubProvider{}, nil)

	rec := doRequest(t, router, http.MethodDelete, "/cities/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	city, err := cities.Add(context.Background(), "London", "GB", 51.51, -0.13)
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	rec = doRequest(t, router, http.MethodDelete, "/cities/"+strconv.FormatInt(city.ID, 10), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete existing: status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestCityWeather(t *testing.T) {
	router, cities := newTestRouter(t, &stubProvider{current: currentPayload()}, nil)

	rec := doRequest(t, router, http.MethodGet, "/cities/999/weather", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing city: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	city, err := cities.Add(context.Background(), "London", "GB", 51.51, -0.13)
	if err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	rec = doRequest(t, router, http.MethodGet, "/cities/"+strconv.FormatInt(city.ID, 10)+"/weather", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data, _ := decodeBody(t, rec)["data"].(map[string]interface{})
	if _, ok := data["city"]; !ok {
		t.Errorf("expected city in response, got %v", data)
	}
	if _, ok := data["weather"]; !ok {
		t.Errorf("expected weather in response, got %v", data)
	}
}

// TestCitiesWithWeather_InlineErrors verifies a per-city upstream failure is
// reported inline without failing the whole listing.
func TestCitiesWithWeather_InlineErrors(t *testing.T) {
	p := &stubProvider{current: currentPayload(), errLat: 60.17}
	router, cities := newTestRouter(t, p, nil)

	if _, err := cities.Add(context.Background(), "London", "GB", 51.51, -0.13); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}
	if _, err := cities.Add(context.Background(), "Helsinki", "FI", 60.17, 24.94); err != nil {
		t.Fatalf("Add() unexpected error: %v", err)
	}

	rec := doRequest(t, router, http.MethodGet, "/cities/with-weather", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	data, _ := decodeBody(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("got %d entries, want 2", len(data))
	}

	withWeather, withError := 0, 0
	for _, raw := range data {
		entry, _ := raw.(map[string]interface{})
		if _, ok := entry["weather"]; ok {
			withWeather++
		}
		if msg, ok := entry["error"].(string); ok && msg != "" {
			withError++
		}
	}
	if withWeather != 1 || withError != 1 {
		t.Errorf("got %d with weather and %d with error, want 1 and 1", withWeather, withError)
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		checker    CredentialChecker
		wantStatus int
		want       string
	}{
		{"healthy", &stubChecker{}, http.StatusOK, "healthy"},
		{"degraded credential", &stubChecker{err: provider.ErrInvalidAPIKey}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubProvider{}, tt.checker)

			rec := doRequest(t, router, http.MethodGet, "/health", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if body := decodeBody(t, rec); body["status"] != tt.want {
				t.Errorf("status = %v, want %q", body["status"], tt.want)
			}
		})
	}
}

