package provider

import "context"

// Provider is the narrow upstream surface the gateway depends on. Implementations
// return raw upstream payloads; normalization happens in the gateway layer so it
// is testable without network access.
type Provider interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (CurrentPayload, error)
	FetchForecast(ctx context.Context, lat, lon float64) (ForecastPayload, error)
	Geocode(ctx context.Context, query string, limit int) ([]GeoResult, error)
}

// CurrentPayload is the raw upstream current-conditions response. Temperatures
// are Celsius (metric units requested), wind m/s, visibility metres, times
// epoch seconds.
type CurrentPayload struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	// Visibility is a pointer so an absent field is distinguishable from 0 m.
	Visibility *float64 `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// ForecastPayload is the raw upstream 5-day/3-hour forecast response.
type ForecastPayload struct {
	List []ForecastItem `json:"list"`
	City struct {
		Name  string `json:"name"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Country string `json:"country"`
	} `json:"city"`
}

// ForecastItem is one raw 3-hour forecast bucket.
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure int     `json:"pressure"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// GeoResult is one raw geocoding hit.
type GeoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}
