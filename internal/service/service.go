package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Apresh913/Weather-Wizard/internal/cache"
	"github.com/Apresh913/Weather-Wizard/internal/client"
	"github.com/Apresh913/Weather-Wizard/internal/models"
	"github.com/Apresh913/Weather-Wizard/internal/observability"
	"github.com/Apresh913/Weather-Wizard/internal/rules"
)

// Cache key prefixes, combined with the normalized city name.
const (
	currentKeyPrefix  = "current_weather:"
	forecastKeyPrefix = "forecast:"
	enhancedKeyPrefix = "enhanced_forecast:"
)

// WeatherService orchestrates weather data retrieval using the cache-aside
// pattern and feeds fetched data into the rule pipelines. All state is
// injected; nothing here is a singleton.
type WeatherService struct {
	client client.WeatherClient
	cache  cache.Cache
	now    func() time.Time
}

// NewWeatherService creates a WeatherService with the provided dependencies.
// The cache's TTL is fixed at its own construction.
func NewWeatherService(client client.WeatherClient, c cache.Cache) *WeatherService {
	return &WeatherService{
		client: client,
		cache:  c,
		now:    func() time.Time { return time.Now().UTC() },
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

// GetCurrent returns normalized current conditions for city, consulting the
// cache first and populating it after an upstream fetch.
func (s *WeatherService) GetCurrent(ctx context.Context, city string) (models.CurrentWeather, error) {
	key := normalizeCity(city)
	logger := loggerFromContext(ctx)

	var cached models.CurrentWeather
	if s.readCached(ctx, currentKeyPrefix+key, &cached) {
		if logger != nil {
			logger.Debug("cache hit", zap.String("key", currentKeyPrefix+key))
		}
		return cached, nil
	}

	data, err := s.client.GetCurrentWeather(ctx, key)
	if err != nil {
		return models.CurrentWeather{}, fmt.Errorf("fetch current weather for %s: %w", key, err)
	}
	s.writeCached(ctx, currentKeyPrefix+key, data)
	return data, nil
}

// GetForecast returns the normalized 3-hour forecast series for city,
// consulting the cache first.
func (s *WeatherService) GetForecast(ctx context.Context, city string) (models.Forecast, error) {
	key := normalizeCity(city)
	logger := loggerFromContext(ctx)

	var cached models.Forecast
	if s.readCached(ctx, forecastKeyPrefix+key, &cached) {
		if logger != nil {
			logger.Debug("cache hit", zap.String("key", forecastKeyPrefix+key))
		}
		return cached, nil
	}

	data, err := s.client.GetForecast(ctx, key)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("fetch forecast for %s: %w", key, err)
	}
	s.writeCached(ctx, forecastKeyPrefix+key, data)
	return data, nil
}

// GetEnhancedForecast returns the forecast with diurnal offsets and
// confidence scores applied. The enhanced series is cached under its own key,
// so confidence values may be up to one TTL stale.
func (s *WeatherService) GetEnhancedForecast(ctx context.Context, city string) (models.EnhancedForecast, error) {
	key := normalizeCity(city)
	logger := loggerFromContext(ctx)

	var cached models.EnhancedForecast
	if s.readCached(ctx, enhancedKeyPrefix+key, &cached) {
		if logger != nil {
			logger.Debug("cache hit", zap.String("key", enhancedKeyPrefix+key))
		}
		return cached, nil
	}

	forecast, err := s.GetForecast(ctx, city)
	if err != nil {
		return models.EnhancedForecast{}, err
	}

	enhanced := rules.Enhance(forecast, s.now())
	s.writeCached(ctx, enhancedKeyPrefix+key, enhanced)
	return enhanced, nil
}

// GetAlerts evaluates personalized alerts for city using the enhanced
// forecast (the adjusted temperatures feed the threshold rules) and the
// caller's sensitivity preferences.
func (s *WeatherService) GetAlerts(ctx context.Context, city string, prefs models.Preferences) ([]models.Alert, error) {
	enhanced, err := s.GetEnhancedForecast(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("generate alerts for %s: %w", normalizeCity(city), err)
	}

	current, err := s.GetCurrent(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("generate alerts for %s: %w", normalizeCity(city), err)
	}

	forecast := models.Forecast{City: enhanced.City, Entries: make([]models.ForecastEntry, 0, len(enhanced.Entries))}
	for _, e := range enhanced.Entries {
		forecast.Entries = append(forecast.Entries, e.ForecastEntry)
	}

	return rules.EvaluateAlerts(current, forecast, prefs), nil
}

// GetClothingRecommendations builds clothing suggestions for city from
// current conditions and the same-day forecast slots.
func (s *WeatherService) GetClothingRecommendations(ctx context.Context, city string) (models.ClothingRecommendations, error) {
	current, err := s.GetCurrent(ctx, city)
	if err != nil {
		return models.ClothingRecommendations{}, fmt.Errorf("clothing recommendations for %s: %w", normalizeCity(city), err)
	}

	forecast, err := s.GetForecast(ctx, city)
	if err != nil {
		return models.ClothingRecommendations{}, fmt.Errorf("clothing recommendations for %s: %w", normalizeCity(city), err)
	}

	return rules.RecommendClothing(current, forecast, s.now()), nil
}

// readCached loads and decodes a cached JSON value into out. Returns false on
// miss, cache error, or decode error; a corrupt entry is treated as a miss so
// the caller refetches.
func (s *WeatherService) readCached(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("decode").Inc()
		return false
	}
	observability.CacheHitsTotal.WithLabelValues(keyKind(key)).Inc()
	return true
}

// writeCached encodes and stores a value. Cache write failures are logged via
// metrics but never fail the request.
func (s *WeatherService) writeCached(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("encode").Inc()
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
	}
}

// keyKind maps a cache key to its metric label ("current_weather",
// "forecast", "enhanced_forecast").
func keyKind(key string) string {
	if idx := strings.IndexByte(key, ':'); idx > 0 {
		return key[:idx]
	}
	return "other"
}

// normalizeCity normalizes city names by trimming whitespace and lowercasing,
// so cache keys and upstream requests are consistent regardless of input
// format.
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
