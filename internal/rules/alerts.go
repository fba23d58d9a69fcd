package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Apresh913/Weather-Wizard/internal/models"
)

// forecastAlertWindow is how many 3-hour forecast intervals are scanned for
// alerts: 16 intervals = the next 48 hours.
const forecastAlertWindow = 16

// sensitivityFloor disables a threshold rule when its sensitivity knob is
// turned down to 0.3 or below.
const sensitivityFloor = 0.3

// EvaluateAlerts derives severity-scored alerts from current conditions and
// the forecast, applying the user's sensitivity preferences. The result is
// filtered to severities at or above prefs.AlertThreshold and sorted
// descending by severity; equal severities keep generation order (current
// conditions first, then provider alerts, then forecast slots in time order).
func EvaluateAlerts(current models.CurrentWeather, forecast models.Forecast, prefs models.Preferences) []models.Alert {
	var alerts []models.Alert

	cond := strings.ToLower(current.WeatherMain)
	desc := strings.ToLower(current.WeatherDescription)
	alerts = appendSevereConditionAlerts(alerts, cond, desc, current.Temperature, current.WindSpeed, current.Humidity, "now")

	for _, pa := range current.ProviderAlerts {
		event := pa.Event
		if event == "" {
			event = "Severe weather"
		}
		alerts = append(alerts, models.Alert{
			Type:     "severe_alert",
			Time:     "now",
			Message:  fmt.Sprintf("WEATHER ALERT: %s. %s", event, pa.Description),
			Severity: 1.0,
		})
	}

	entries := forecast.Entries
	if len(entries) > forecastAlertWindow {
		entries = entries[:forecastAlertWindow]
	}
	for _, e := range entries {
		slot := e.DateTime
		fcond := strings.ToLower(e.WeatherMain)
		fdesc := strings.ToLower(e.WeatherDescription)
		alerts = appendSevereConditionAlerts(alerts, fcond, fdesc, e.Temperature, e.WindSpeed, e.Humidity, slot)

		if prefs.RainSensitivity > sensitivityFloor && e.Rain > 1.0*prefs.RainSensitivity {
			alerts = append(alerts, models.Alert{
				Type:     "rain",
				Time:     slot,
				Message:  fmt.Sprintf("Expected rainfall of %gmm at %s", e.Rain, slot),
				Severity: capSeverity(e.Rain / 10),
			})
		}

		if prefs.TempSensitivity > sensitivityFloor {
			switch {
			case e.Temperature > 30*prefs.TempSensitivity:
				alerts = append(alerts, models.Alert{
					Type:     "high_temp",
					Time:     slot,
					Message:  fmt.Sprintf("High temperature of %g°C (feels like %g°C) at %s", e.Temperature, e.FeelsLike, slot),
					Severity: capSeverity((e.Temperature - 25) / 15),
				})
			case e.Temperature < 5*prefs.TempSensitivity:
				alerts = append(alerts, models.Alert{
					Type:     "low_temp",
					Time:     slot,
					Message:  fmt.Sprintf("Low temperature of %g°C (feels like %g°C) at %s", e.Temperature, e.FeelsLike, slot),
					Severity: capSeverity((5 - e.Temperature) / 10),
				})
			}
		}

		if prefs.WindSensitivity > sensitivityFloor && e.WindSpeed > 10.0*prefs.WindSensitivity {
			alerts = append(alerts, models.Alert{
				Type:     "wind",
				Time:     slot,
				Message:  fmt.Sprintf("Strong winds of %g m/s at %s", e.WindSpeed, slot),
				Severity: capSeverity(e.WindSpeed / 20),
			})
		}
	}

	filtered := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Severity >= prefs.AlertThreshold {
			filtered = append(filtered, a)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Severity > filtered[j].Severity
	})
	return filtered
}

// appendSevereConditionAlerts adds fixed-severity alerts for severe weather
// detected in the condition text, independent of user sensitivities. cond and
// desc must already be lowercased.
func appendSevereConditionAlerts(alerts []models.Alert, cond, desc string, temp, wind float64, humidity int, slot string) []models.Alert {
	containsAny := func(terms ...string) bool {
		for _, term := range terms {
			if strings.Contains(cond, term) || strings.Contains(desc, term) {
				return true
			}
		}
		return false
	}

	if containsAny("thunderstorm", "storm", "thunder") {
		alerts = append(alerts, models.Alert{
			Type:     "severe_storm",
			Time:     slot,
			Message:  fmt.Sprintf("SEVERE WEATHER ALERT: Thunderstorm expected at %s. Take shelter and stay indoors.", slot),
			Severity: 1.0,
		})
	}

	if (strings.Contains(desc, "heavy") && containsAny("rain")) || strings.Contains(desc, "torrential") {
		alerts = append(alerts, models.Alert{
			Type:     "heavy_rain",
			Time:     slot,
			Message:  fmt.Sprintf("SEVERE WEATHER ALERT: Heavy rainfall expected at %s. Flooding possible, avoid travel if possible.", slot),
			Severity: 0.9,
		})
	}

	if temp > 35 && humidity > 60 {
		alerts = append(alerts, models.Alert{
			Type:     "heatwave",
			Time:     slot,
			Message:  fmt.Sprintf("SEVERE WEATHER ALERT: Extreme heat conditions at %s. Temperature %g°C with high humidity %d%%. Stay hydrated and avoid outdoor activities.", slot, temp, humidity),
			Severity: 0.95,
		})
	}

	if (containsAny("snow") && (strings.Contains(desc, "heavy") || wind > 10)) || strings.Contains(desc, "blizzard") {
		alerts = append(alerts, models.Alert{
			Type:     "winter_storm",
			Time:     slot,
			Message:  fmt.Sprintf("SEVERE WEATHER ALERT: Severe winter conditions at %s. Heavy snow and limited visibility. Avoid unnecessary travel.", slot),
			Severity: 0.95,
		})
	}

	if containsAny("hurricane", "typhoon", "cyclone") {
		alerts = append(alerts, models.Alert{
			Type:     "hurricane",
			Time:     slot,
			Message:  fmt.Sprintf("EMERGENCY WEATHER ALERT: Hurricane/cyclone conditions at %s. Seek immediate shelter and follow evacuation orders.", slot),
			Severity: 1.0,
		})
	}

	if strings.Contains(desc, "tornado") {
		alerts = append(alerts, models.Alert{
			Type:     "tornado",
			Time:     slot,
			Message:  fmt.Sprintf("EMERGENCY WEATHER ALERT: Tornado conditions at %s. Seek shelter immediately in a basement or interior room.", slot),
			Severity: 1.0,
		})
	}

	if temp < -15 {
		alerts = append(alerts, models.Alert{
			Type:     "extreme_cold",
			Time:     slot,
			Message:  fmt.Sprintf("SEVERE WEATHER ALERT: Extreme cold conditions at %s. Temperature %g°C. Risk of frostbite and hypothermia.", slot, temp),
			Severity: 0.9,
		})
	}

	return alerts
}

func capSeverity(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}
