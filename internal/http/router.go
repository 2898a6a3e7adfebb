package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/acrawford/weather-dashboard/internal/observability"
	"github.com/acrawford/weather-dashboard/internal/store"
)

// NewRouter wires all routes and middleware. usage may be nil to disable the
// usage log (tests); limiter may be nil to disable rate limiting.
func NewRouter(h *Handler, usage *store.UsageRepository, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(RateLimitMiddleware(limiter))
	api.Use(TimeoutMiddleware(requestTimeout))
	if usage != nil {
		api.Use(UsageMiddleware(usage, logger))
	}

	api.HandleFunc("/weather/current/{lat}/{lon}", h.GetCurrentWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/forecast/{lat}/{lon}", h.GetForecast).Methods(http.MethodGet)
	api.HandleFunc("/weather/complete/{lat}/{lon}", h.GetCompleteWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/search/{query}", h.SearchLocations).Methods(http.MethodGet)
	api.HandleFunc("/weather/batch", h.BatchWeather).Methods(http.MethodPost)

	api.HandleFunc("/cities", h.ListCities).Methods(http.MethodGet)
	api.HandleFunc("/cities", h.AddCity).Methods(http.MethodPost)
	api.HandleFunc("/cities/with-weather", h.CitiesWithWeather).Methods(http.MethodGet)
	api.HandleFunc("/cities/{id:[0-9]+}", h.DeleteCity).Methods(http.MethodDelete)
	api.HandleFunc("/cities/{id:[0-9]+}/weather", h.CityWeather).Methods(http.MethodGet)

	return router
}
