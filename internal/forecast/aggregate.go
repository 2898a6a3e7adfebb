// Package forecast turns a raw series of 3-hour weather samples into daily
// summaries: per-date temperature envelope, dominant condition and mean
// detail readings, plus the untouched hourly buckets for each date.
package forecast

import (
	"math"
	"time"

	"github.com/acrawford/weather-dashboard/internal/models"
)

// maxDays caps the output at the first five distinct calendar dates.
const maxDays = 5

// Sample is one raw upstream forecast bucket as the aggregator sees it.
// Temperature is Celsius, WindSpeed m/s, Timestamp epoch seconds UTC.
type Sample struct {
	Timestamp   int64
	Temperature float64
	WeatherMain string
	WeatherDesc string
	WeatherIcon string
	Humidity    int
	Pressure    int
	WindSpeed   float64
}

// dayGroup accumulates one calendar date's samples during the scan.
type dayGroup struct {
	date    string
	samples []Sample
}

// Aggregate groups samples by UTC calendar date and emits up to five
// DaySummary entries, one per distinct date in first-encountered order.
// Dates are deliberately not sorted: if the upstream ever produces
// out-of-order samples, the first five distinct dates win as encountered.
//
// All rounding here is round-half-away-from-zero (math.Round), so an average
// of 12.5 becomes 13 and -12.5 becomes -13.
func Aggregate(samples []Sample) []models.DaySummary {
	if len(samples) == 0 {
		return []models.DaySummary{}
	}

	groups := make([]*dayGroup, 0, maxDays+1)
	index := make(map[string]*dayGroup)
	for _, s := range samples {
		date := time.Unix(s.Timestamp, 0).UTC().Format("2006-01-02")
		g, ok := index[date]
		if !ok {
			g = &dayGroup{date: date}
			index[date] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, s)
	}

	if len(groups) > maxDays {
		groups = groups[:maxDays]
	}

	summaries := make([]models.DaySummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, summarize(g))
	}
	return summaries
}

// summarize computes one DaySummary from a date group.
func summarize(g *dayGroup) models.DaySummary {
	var (
		minTemp = g.samples[0].Temperature
		maxTemp = g.samples[0].Temperature

		sumTemp     float64
		sumHumidity float64
		sumPressure float64
		sumWind     float64
	)

	// Dominant condition: count per `main` tag during a single left-to-right
	// scan; a tag becomes dominant only when its count exceeds the running
	// max, so ties keep the first tag that reached the max count.
	counts := make(map[string]int)
	dominantCount := 0
	var dominant Sample

	hourly := make([]models.HourlySample, 0, len(g.samples))

	for i, s := range g.samples {
		if s.Temperature < minTemp {
			minTemp = s.Temperature
		}
		if s.Temperature > maxTemp {
			maxTemp = s.Temperature
		}
		sumTemp += s.Temperature
		sumHumidity += float64(s.Humidity)
		sumPressure += float64(s.Pressure)
		sumWind += s.WindSpeed * 3.6 // m/s -> km/h before averaging

		counts[s.WeatherMain]++
		if counts[s.WeatherMain] > dominantCount {
			dominantCount = counts[s.WeatherMain]
			dominant = firstWithMain(g.samples[:i+1], s.WeatherMain)
		}

		hourly = append(hourly, models.HourlySample{
			Timestamp:   time.Unix(s.Timestamp, 0).UTC().Format(time.RFC3339),
			Temperature: s.Temperature,
			Weather: models.Condition{
				Main:        s.WeatherMain,
				Description: s.WeatherDesc,
				Icon:        s.WeatherIcon,
			},
			Humidity:  s.Humidity,
			Pressure:  s.Pressure,
			WindSpeed: s.WindSpeed,
		})
	}

	n := float64(len(g.samples))

	return models.DaySummary{
		Date: g.date,
		Weather: models.Condition{
			Main:        dominant.WeatherMain,
			Description: dominant.WeatherDesc,
			Icon:        dominant.WeatherIcon,
		},
		Temperature: models.DayTemperature{
			Min: roundInt(minTemp),
			Max: roundInt(maxTemp),
			Avg: roundInt(sumTemp / n),
		},
		Details: models.DayDetails{
			Humidity:  roundInt(sumHumidity / n),
			Pressure:  roundInt(sumPressure / n),
			WindSpeed: roundInt(sumWind / n),
		},
		HourlyData: hourly,
	}
}

// firstWithMain returns the earliest sample in the scanned prefix carrying
// the given condition tag, so the dominant condition is represented by its
// first occurrence.
func firstWithMain(scanned []Sample, main string) Sample {
	for _, s := range scanned {
		if s.WeatherMain == main {
			return s
		}
	}
	return scanned[len(scanned)-1]
}

// roundInt rounds half away from zero.
func roundInt(v float64) int {
	return int(math.Round(v))
}
