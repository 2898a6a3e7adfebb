package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/acrawford/weather-dashboard/internal/provider"
	"github.com/acrawford/weather-dashboard/internal/store"
)

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes the standard success envelope {success: true, data: ...}.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// writeError writes the standard error envelope with code, message and the
// request's correlation ID when available.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID, _ = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// errorStatus maps a classified failure to an HTTP status, error code and
// client-facing message. Every upstream failure arrives here already
// classified into exactly one taxonomy sentinel.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrDuplicateCity):
		return http.StatusConflict, "CITY_EXISTS", "City already saved"
	case errors.Is(err, provider.ErrLocationNotFound):
		return http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found"
	case errors.Is(err, provider.ErrRateLimited):
		return http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED", "Rate limit exceeded"
	case errors.Is(err, provider.ErrInvalidAPIKey):
		return http.StatusBadGateway, "INVALID_API_KEY", "Invalid weather service credential"
	case errors.Is(err, provider.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Weather service temporarily unavailable"
	case errors.Is(err, provider.ErrTimeout):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Weather service request timed out"
	case errors.Is(err, provider.ErrNetwork):
		return http.StatusServiceUnavailable, "UPSTREAM_UNREACHABLE", "Unable to connect to weather service"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Unable to fetch weather data"
}

// writeServiceError maps a core failure onto the taxonomy and logs the
// underlying error at debug level.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorStatus(err)
	writeError(w, r, status, code, message)
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("request failed", zap.Error(err))
	}
}
