// Package gateway orchestrates upstream weather lookups behind the location
// cache: single lookups read the cache but never write it; only the combined
// lookup populates a cache entry, so every location has at most one row.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/acrawford/weather-dashboard/internal/models"
	"github.com/acrawford/weather-dashboard/internal/observability"
	"github.com/acrawford/weather-dashboard/internal/provider"
	"github.com/acrawford/weather-dashboard/internal/store"
)

// Cache is the slice of the cache store the gateway needs.
type Cache interface {
	Get(ctx context.Context, key string) (*store.CacheEntry, error)
	Put(ctx context.Context, key string, currentJSON, forecastJSON []byte, expiresAt time.Time) error
}

// WeatherGateway applies the cache-first policy over the upstream provider
// and normalizes raw payloads into the canonical shapes.
type WeatherGateway struct {
	provider    provider.Provider
	cache       Cache
	currentTTL  time.Duration
	forecastTTL time.Duration

	// flight coalesces concurrent combined lookups for the same location so
	// a burst of misses produces a single upstream fan-out.
	flight singleflight.Group
}

// NewWeatherGateway creates a WeatherGateway. currentTTL governs the expiry
// of the combined cache entry; forecastTTL is configured alongside it but the
// shorter current-weather duration deliberately wins (one shared entry per
// location, forecast served slightly fresher than its own window requires).
func NewWeatherGateway(p provider.Provider, cache Cache, currentTTL, forecastTTL time.Duration) *WeatherGateway {
	return &WeatherGateway{
		provider:    p,
		cache:       cache,
		currentTTL:  currentTTL,
		forecastTTL: forecastTTL,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetCurrent returns current conditions for the coordinates, serving the
// cached copy when one exists. Cache misses fetch upstream but do not write
// back; GetComplete is the only cache writer.
func (g *WeatherGateway) GetCurrent(ctx context.Context, lat, lon float64) (models.NormalizedCurrent, error) {
	key := LocationKey(lat, lon)
	logger := loggerFromContext(ctx)

	if entry := g.lookup(ctx, key, "current"); entry != nil {
		var current models.NormalizedCurrent
		if err := json.Unmarshal(entry.CurrentJSON, &current); err == nil {
			if logger != nil {
				logger.Debug("cache hit", zap.String("key", key), zap.String("operation", "current"))
			}
			return current, nil
		}
	}

	raw, err := g.provider.FetchCurrent(ctx, lat, lon)
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues("current", string(provider.Categorize(err))).Inc()
		return models.NormalizedCurrent{}, fmt.Errorf("fetch current weather for %s: %w", key, err)
	}
	return normalizeCurrent(raw), nil
}

// GetForecast returns the 5-day forecast for the coordinates, serving the
// cached copy when one exists. Like GetCurrent, it never writes the cache.
func (g *WeatherGateway) GetForecast(ctx context.Context, lat, lon float64) (models.NormalizedForecast, error) {
	key := LocationKey(lat, lon)
	logger := loggerFromContext(ctx)

	if entry := g.lookup(ctx, key, "forecast"); entry != nil {
		var fc models.NormalizedForecast
		if err := json.Unmarshal(entry.ForecastJSON, &fc); err == nil {
			if logger != nil {
				logger.Debug("cache hit", zap.String("key", key), zap.String("operation", "forecast"))
			}
			return fc, nil
		}
	}

	raw, err := g.provider.FetchForecast(ctx, lat, lon)
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues("forecast", string(provider.Categorize(err))).Inc()
		return models.NormalizedForecast{}, fmt.Errorf("fetch forecast for %s: %w", key, err)
	}
	return normalizeForecast(raw), nil
}

// GetComplete returns both halves for the coordinates. On a miss it issues
// the two upstream calls concurrently with an all-or-nothing join: if either
// fails, the whole operation fails and nothing is cached. On success it
// writes the single combined entry, expiring after the current-weather TTL.
func (g *WeatherGateway) GetComplete(ctx context.Context, lat, lon float64) (models.CompleteWeather, error) {
	key := LocationKey(lat, lon)
	logger := loggerFromContext(ctx)

	if entry := g.lookup(ctx, key, "complete"); entry != nil {
		var complete models.CompleteWeather
		currentErr := json.Unmarshal(entry.CurrentJSON, &complete.Current)
		forecastErr := json.Unmarshal(entry.ForecastJSON, &complete.Forecast)
		if currentErr == nil && forecastErr == nil {
			if logger != nil {
				logger.Debug("cache hit", zap.String("key", key), zap.String("operation", "complete"))
			}
			return complete, nil
		}
	}

	v, err, _ := g.flight.Do(key, func() (interface{}, error) {
		return g.fetchAndStore(ctx, key, lat, lon)
	})
	if err != nil {
		return models.CompleteWeather{}, err
	}
	return v.(models.CompleteWeather), nil
}

// fetchAndStore issues the two upstream calls concurrently with an
// all-or-nothing join, then writes the single combined cache entry.
func (g *WeatherGateway) fetchAndStore(ctx context.Context, key string, lat, lon float64) (models.CompleteWeather, error) {
	var (
		rawCurrent  provider.CurrentPayload
		rawForecast provider.ForecastPayload
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rawCurrent, err = g.provider.FetchCurrent(groupCtx, lat, lon)
		if err != nil {
			observability.UpstreamErrorsTotal.WithLabelValues("current", string(provider.Categorize(err))).Inc()
		}
		return err
	})
	group.Go(func() error {
		var err error
		rawForecast, err = g.provider.FetchForecast(groupCtx, lat, lon)
		if err != nil {
			observability.UpstreamErrorsTotal.WithLabelValues("forecast", string(provider.Categorize(err))).Inc()
		}
		return err
	})
	if err := group.Wait(); err != nil {
		return models.CompleteWeather{}, fmt.Errorf("fetch complete weather for %s: %w", key, err)
	}

	complete := models.CompleteWeather{
		Current:  normalizeCurrent(rawCurrent),
		Forecast: normalizeForecast(rawForecast),
	}

	currentJSON, err := json.Marshal(complete.Current)
	if err != nil {
		return models.CompleteWeather{}, fmt.Errorf("encode current weather: %w", err)
	}
	forecastJSON, err := json.Marshal(complete.Forecast)
	if err != nil {
		return models.CompleteWeather{}, fmt.Errorf("encode forecast: %w", err)
	}

	expiresAt := time.Now().Add(g.currentTTL)
	if putErr := g.cache.Put(ctx, key, currentJSON, forecastJSON, expiresAt); putErr != nil {
		if logger := loggerFromContext(ctx); logger != nil {
			logger.Warn("cache put failed", zap.String("key", key), zap.Error(putErr))
		}
	}
	return complete, nil
}

// SearchLocations resolves a free-text query against the upstream geocoder.
// Geocoding results are never cached.
func (g *WeatherGateway) SearchLocations(ctx context.Context, query string, limit int) ([]models.LocationResult, error) {
	raw, err := g.provider.Geocode(ctx, query, limit)
	if err != nil {
		observability.UpstreamErrorsTotal.WithLabelValues("geocode", string(provider.Categorize(err))).Inc()
		return nil, fmt.Errorf("search locations %q: %w", query, err)
	}
	return mapGeoResults(raw), nil
}

// lookup reads the cache and records hit/miss metrics. Cache read failures
// count as misses; the cache is an optimization, never a correctness
// dependency.
func (g *WeatherGateway) lookup(ctx context.Context, key, operation string) *store.CacheEntry {
	entry, err := g.cache.Get(ctx, key)
	if err != nil {
		if logger := loggerFromContext(ctx); logger != nil {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		observability.CacheMissesTotal.WithLabelValues(operation).Inc()
		return nil
	}
	if entry == nil {
		observability.CacheMissesTotal.WithLabelValues(operation).Inc()
		return nil
	}
	observability.CacheHitsTotal.WithLabelValues(operation).Inc()
	return entry
}
