package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when a coordinate does not parse as a
// finite number.
var ErrInvalidCoordinate = errors.New("coordinate must be a finite number")

// ErrLatitudeOutOfRange is returned when latitude is outside [-90, 90].
var ErrLatitudeOutOfRange = errors.New("latitude must be between -90 and 90")

// ErrLongitudeOutOfRange is returned when longitude is outside [-180, 180].
var ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")

// ErrQueryEmpty is returned when a search query is empty after trimming.
var ErrQueryEmpty = errors.New("query is required")

// ParseCoordinates validates and parses a latitude/longitude pair from path
// segments. Both must parse as finite numbers; latitude is bounded to
// [-90, 90] and longitude to [-180, 180]. Runs at the HTTP boundary before
// any core logic.
func ParseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := parseFinite(latStr)
	if err != nil {
		return 0, 0, err
	}
	lon, err := parseFinite(lonStr)
	if err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 {
		return 0, 0, ErrLatitudeOutOfRange
	}
	if lon < -180 || lon > 180 {
		return 0, 0, ErrLongitudeOutOfRange
	}
	return lat, lon, nil
}

// ValidateQuery trims the search query and rejects empty input.
func ValidateQuery(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrQueryEmpty
	}
	return s, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}
