package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/acrawford/weather-dashboard/internal/gateway"
	"github.com/acrawford/weather-dashboard/internal/lifecycle"
	"github.com/acrawford/weather-dashboard/internal/models"
	"github.com/acrawford/weather-dashboard/internal/store"
	"github.com/acrawford/weather-dashboard/internal/validation"
)

// Search results are bounded by the upstream geocoder's cap.
const (
	defaultSearchLimit = 5
	maxSearchLimit     = 5
	maxBatchCities     = 10
)

// CredentialChecker confirms the upstream credential is accepted. Used by the
// health endpoint.
type CredentialChecker interface {
	ValidateAPIKey(ctx context.Context) error
}

// Handler holds dependencies for the weather and city endpoints.
type Handler struct {
	gateway   *gateway.WeatherGateway
	cities    *store.CityRepository
	checker   CredentialChecker
	cachePing func() error
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewHandler returns a new Handler. cachePing reports cache-store
// reachability for health checks; nil disables that check.
func NewHandler(gw *gateway.WeatherGateway, cities *store.CityRepository, checker CredentialChecker, cachePing func() error, logger *zap.Logger) *Handler {
	return &Handler{
		gateway:   gw,
		cities:    cities,
		checker:   checker,
		cachePing: cachePing,
		logger:    logger,
		validate:  validator.New(),
	}
}

// coordinates pulls and validates the {lat}/{lon} path segments. A false
// return means the error response has already been written.
func coordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	vars := mux.Vars(r)
	lat, lon, err := validation.ParseCoordinates(vars["lat"], vars["lon"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", err.Error())
		return 0, 0, false
	}
	return lat, lon, true
}

// GetCurrentWeather handles GET /weather/current/{lat}/{lon}.
func (h *Handler) GetCurrentWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordinates(w, r)
	if !ok {
		return
	}

	current, err := h.gateway.GetCurrent(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, current)
}

// GetForecast handles GET /weather/forecast/{lat}/{lon}.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordinates(w, r)
	if !ok {
		return
	}

	forecast, err := h.gateway.GetForecast(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, forecast)
}

// GetCompleteWeather handles GET /weather/complete/{lat}/{lon}.
func (h *Handler) GetCompleteWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordinates(w, r)
	if !ok {
		return
	}

	complete, err := h.gateway.GetComplete(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, complete)
}

// SearchLocations handles GET /weather/search/{query}?limit=N.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query, err := validation.ValidateQuery(mux.Vars(r)["query"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.gateway.SearchLocations(r.Context(), query, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    results,
		"query":   query,
		"count":   len(results),
	})
}

// batchRequest is the POST /weather/batch body.
type batchRequest struct {
	Cities []batchCity `json:"cities" validate:"required,min=1,max=10,dive"`
}

type batchCity struct {
	ID  int64   `json:"id" validate:"required"`
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

// batchResult is one per-city outcome in the batch response.
type batchResult struct {
	ID      int64                   `json:"id"`
	Success bool                    `json:"success"`
	Data    *models.CompleteWeather `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// BatchWeather handles POST /weather/batch: up to 10 cities fetched
// concurrently, each reported individually so one bad city never fails the
// rest.
func (h *Handler) BatchWeather(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "cities must contain between 1 and 10 entries with valid coordinates")
		return
	}

	results := make([]batchResult, len(req.Cities))
	var wg sync.WaitGroup
	for i, city := range req.Cities {
		wg.Add(1)
		go func(i int, city batchCity) {
			defer wg.Done()
			complete, err := h.gateway.GetComplete(r.Context(), city.Lat, city.Lon)
			if err != nil {
				_, _, message := errorStatus(err)
				results[i] = batchResult{ID: city.ID, Success: false, Error: message}
				return
			}
			results[i] = batchResult{ID: city.ID, Success: true, Data: &complete}
		}(i, city)
	}
	wg.Wait()

	writeData(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.Draining() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "shutting-down",
			"service":   "weather-dashboard",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)

	if h.checker != nil {
		if err := h.checker.ValidateAPIKey(r.Context()); err != nil {
			checks["weatherApi"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["weatherApi"] = "healthy"
		}
	}
	if h.cachePing != nil {
		if err := h.cachePing(); err != nil {
			checks["store"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["store"] = "healthy"
		}
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weather-dashboard",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
