// Package rules contains the heuristic pipelines layered on top of fetched
// weather data: forecast enhancement, alert evaluation, and clothing
// recommendations. Everything here is a pure function; fetching and caching
// live in the service layer.
package rules

import (
	"time"

	"github.com/Apresh913/Weather-Wizard/internal/models"
)

const (
	baseConfidence  = 0.95
	minConfidence   = 0.6
	confidenceDecay = 0.005 // per hour ahead
	daytimeOffset   = 0.5
	nighttimeOffset = -0.3
)

// Enhance applies a fixed diurnal temperature offset to every forecast
// interval and attaches a confidence score that decays with hours-ahead.
// Intervals already in the past score slightly above the base confidence;
// only the lower bound is clamped.
func Enhance(f models.Forecast, now time.Time) models.EnhancedForecast {
	out := models.EnhancedForecast{
		City:     f.City,
		Entries:  make([]models.EnhancedEntry, 0, len(f.Entries)),
		Enhanced: true,
	}
	for _, e := range f.Entries {
		adjusted := e
		confidence := baseConfidence
		if t, err := e.ParsedTime(); err == nil {
			offset := diurnalOffset(t.Hour())
			adjusted.Temperature += offset
			adjusted.FeelsLike += offset

			hoursAhead := t.Sub(now).Hours()
			confidence = baseConfidence - hoursAhead*confidenceDecay
			if confidence < minConfidence {
				confidence = minConfidence
			}
		}
		out.Entries = append(out.Entries, models.EnhancedEntry{
			ForecastEntry: adjusted,
			Confidence:    confidence,
		})
	}
	return out
}

// diurnalOffset returns the temperature correction for an hour of day:
// forecasts tend to run cold mid-day and warm at night.
func diurnalOffset(hour int) float64 {
	switch {
	case hour >= 10 && hour <= 16:
		return daytimeOffset
	case hour >= 22 || hour <= 4:
		return nighttimeOffset
	}
	return 0
}
