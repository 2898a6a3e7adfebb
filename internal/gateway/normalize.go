package gateway

import (
	"math"
	"time"

	"github.com/acrawford/weather-dashboard/internal/forecast"
	"github.com/acrawford/weather-dashboard/internal/models"
	"github.com/acrawford/weather-dashboard/internal/provider"
)

// normalizeCurrent maps a raw upstream current-conditions payload into the
// canonical shape: integer Celsius, wind m/s -> km/h, visibility m -> km
// (nil when absent), epoch seconds -> ISO-8601 UTC.
func normalizeCurrent(p provider.CurrentPayload) models.NormalizedCurrent {
	var cond models.Condition
	if len(p.Weather) > 0 {
		cond = models.Condition{
			Main:        p.Weather[0].Main,
			Description: p.Weather[0].Description,
			Icon:        p.Weather[0].Icon,
		}
	}

	var visibility *int
	if p.Visibility != nil {
		km := roundInt(*p.Visibility / 1000)
		visibility = &km
	}

	return models.NormalizedCurrent{
		Location: models.Location{
			Name:    p.Name,
			Country: p.Sys.Country,
			Lat:     p.Coord.Lat,
			Lon:     p.Coord.Lon,
		},
		Weather: cond,
		Temperature: models.Temperature{
			Current:   roundInt(p.Main.Temp),
			FeelsLike: roundInt(p.Main.FeelsLike),
			Min:       roundInt(p.Main.TempMin),
			Max:       roundInt(p.Main.TempMax),
		},
		Details: models.Details{
			Humidity:      p.Main.Humidity,
			Pressure:      p.Main.Pressure,
			Visibility:    visibility,
			WindSpeed:     roundInt(p.Wind.Speed * 3.6),
			WindDirection: p.Wind.Deg,
			Cloudiness:    p.Clouds.All,
		},
		Sun: models.Sun{
			Sunrise: isoUTC(p.Sys.Sunrise),
			Sunset:  isoUTC(p.Sys.Sunset),
		},
		Timestamp: isoUTC(p.Dt),
	}
}

// normalizeForecast maps a raw forecast payload into the canonical shape,
// delegating the daily aggregation to the forecast package.
func normalizeForecast(p provider.ForecastPayload) models.NormalizedForecast {
	samples := make([]forecast.Sample, 0, len(p.List))
	for _, item := range p.List {
		s := forecast.Sample{
			Timestamp:   item.Dt,
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			Pressure:    item.Main.Pressure,
			WindSpeed:   item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			s.WeatherMain = item.Weather[0].Main
			s.WeatherDesc = item.Weather[0].Description
			s.WeatherIcon = item.Weather[0].Icon
		}
		samples = append(samples, s)
	}

	return models.NormalizedForecast{
		City: models.Location{
			Name:    p.City.Name,
			Country: p.City.Country,
			Lat:     p.City.Coord.Lat,
			Lon:     p.City.Coord.Lon,
		},
		Forecast: forecast.Aggregate(samples),
	}
}

// mapGeoResults builds the location-search display shape:
// "{name}{, state if present}, {country}".
func mapGeoResults(raw []provider.GeoResult) []models.LocationResult {
	results := make([]models.LocationResult, 0, len(raw))
	for _, g := range raw {
		display := g.Name
		if g.State != "" {
			display += ", " + g.State
		}
		display += ", " + g.Country
		results = append(results, models.LocationResult{
			Name:        g.Name,
			Country:     g.Country,
			State:       g.State,
			Lat:         g.Lat,
			Lon:         g.Lon,
			DisplayName: display,
		})
	}
	return results
}

// roundInt rounds half away from zero, matching the forecast aggregation.
func roundInt(v float64) int {
	return int(math.Round(v))
}

func isoUTC(epochSeconds int64) string {
	return time.Unix(epochSeconds, 0).UTC().Format(time.RFC3339)
}
