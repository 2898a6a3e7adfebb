package models

// Location identifies the place a weather payload describes.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Condition is the weather condition triple as reported upstream.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Temperature holds integer-rounded Celsius readings.
type Temperature struct {
	Current   int `json:"current"`
	FeelsLike int `json:"feelsLike"`
	Min       int `json:"min"`
	Max       int `json:"max"`
}

// Details holds the secondary current-conditions readings. Visibility is in
// kilometres and nil when the upstream field is absent; wind speed is km/h.
type Details struct {
	Humidity      int  `json:"humidity"`
	Pressure      int  `json:"pressure"`
	Visibility    *int `json:"visibility"`
	WindSpeed     int  `json:"windSpeed"`
	WindDirection int  `json:"windDirection"`
	Cloudiness    int  `json:"cloudiness"`
}

// Sun holds sunrise and sunset as ISO-8601 UTC strings.
type Sun struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// NormalizedCurrent is the canonical current-conditions shape served to
// clients and stored in the cache, independent of the upstream format.
type NormalizedCurrent struct {
	Location    Location    `json:"location"`
	Weather     Condition   `json:"weather"`
	Temperature Temperature `json:"temperature"`
	Details     Details     `json:"details"`
	Sun         Sun         `json:"sun"`
	Timestamp   string      `json:"timestamp"`
}

// HourlySample is one raw 3-hour forecast bucket, kept verbatim inside a
// DaySummary so clients can render per-day detail.
type HourlySample struct {
	Timestamp   string    `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Weather     Condition `json:"weather"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`
}

// DayTemperature holds a day's integer-rounded temperature envelope.
type DayTemperature struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"`
}

// DayDetails holds integer-rounded daily means. WindSpeed is km/h.
type DayDetails struct {
	Humidity  int `json:"humidity"`
	Pressure  int `json:"pressure"`
	WindSpeed int `json:"windSpeed"`
}

// DaySummary aggregates one calendar date's forecast samples.
type DaySummary struct {
	Date        string         `json:"date"`
	Weather     Condition      `json:"weather"`
	Temperature DayTemperature `json:"temperature"`
	Details     DayDetails     `json:"details"`
	HourlyData  []HourlySample `json:"hourlyData"`
}

// NormalizedForecast is the canonical forecast shape: up to five DaySummary
// entries in first-encountered date order.
type NormalizedForecast struct {
	City     Location     `json:"city"`
	Forecast []DaySummary `json:"forecast"`
}

// CompleteWeather bundles both halves of a combined lookup.
type CompleteWeather struct {
	Current  NormalizedCurrent  `json:"current"`
	Forecast NormalizedForecast `json:"forecast"`
}

// LocationResult is one geocoding search hit.
type LocationResult struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	State       string  `json:"state,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}
