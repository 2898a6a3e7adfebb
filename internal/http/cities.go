package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/acrawford/weather-dashboard/internal/models"
)

// addCityRequest is the POST /cities body.
type addCityRequest struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Country string  `json:"country" validate:"required,max=100"`
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lon     float64 `json:"lon" validate:"min=-180,max=180"`
}

// ListCities handles GET /cities.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.cities.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cities)
}

// AddCity handles POST /cities. A duplicate (name, country) pair is a 409.
func (h *Handler) AddCity(w http.ResponseWriter, r *http.Request) {
	var req addCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "name, country and valid coordinates are required")
		return
	}

	city, err := h.cities.Add(r.Context(), req.Name, req.Country, req.Lat, req.Lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, city)
}

// DeleteCity handles DELETE /cities/{id}. Zero rows removed is a 404; the
// registry itself treats a missing id as a non-error.
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "city id must be an integer")
		return
	}

	removed, err := h.cities.Remove(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if removed == 0 {
		writeError(w, r, http.StatusNotFound, "CITY_NOT_FOUND", "no city with that id")
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"removed": removed})
}

// cityWeather pairs a saved city with its current conditions; Error is set
// when the lookup for that city failed.
type cityWeather struct {
	City    models.UserCity           `json:"city"`
	Weather *models.NormalizedCurrent `json:"weather,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// CitiesWithWeather handles GET /cities/with-weather: every saved city with
// its current conditions, fetched concurrently. Per-city failures are
// reported inline so one upstream error never hides the rest of the list.
func (h *Handler) CitiesWithWeather(w http.ResponseWriter, r *http.Request) {
	cities, err := h.cities.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	results := make([]cityWeather, len(cities))
	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city models.UserCity) {
			defer wg.Done()
			current, err := h.gateway.GetCurrent(r.Context(), city.Lat, city.Lon)
			if err != nil {
				_, _, message := errorStatus(err)
				results[i] = cityWeather{City: city, Error: message}
				return
			}
			results[i] = cityWeather{City: city, Weather: &current}
		}(i, city)
	}
	wg.Wait()

	writeData(w, http.StatusOK, results)
}

// CityWeather handles GET /cities/{id}/weather: resolves the saved city to
// coordinates, then delegates to the combined lookup.
func (h *Handler) CityWeather(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "city id must be an integer")
		return
	}

	city, err := h.cities.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, r, http.StatusNotFound, "CITY_NOT_FOUND", "no city with that id")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	complete, err := h.gateway.GetComplete(r.Context(), city.Lat, city.Lon)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"city":    city,
		"weather": complete,
	})
}
