package gateway

import "fmt"

// LocationKey derives the cache fingerprint for a coordinate pair: both
// values rounded to 2 decimal places and concatenated. Coordinates within
// roughly a kilometre collide on purpose; that bucketing is the intended
// cache granularity.
func LocationKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
