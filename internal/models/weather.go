package models

import "time"

// ForecastTimeLayout is the timestamp format used by the upstream forecast
// endpoint (dt_txt, UTC).
const ForecastTimeLayout = "2006-01-02 15:04:05"

// CurrentWeather is the normalized current-conditions snapshot returned by
// the weather client. Immutable once returned.
type CurrentWeather struct {
	City               string          `json:"city"`
	Country            string          `json:"country"`
	Temperature        float64         `json:"temperature"`
	FeelsLike          float64         `json:"feels_like"`
	Humidity           int             `json:"humidity"`
	Pressure           int             `json:"pressure"`
	WindSpeed          float64         `json:"wind_speed"`
	WindDirection      int             `json:"wind_direction"`
	WeatherMain        string          `json:"weather_main"`
	WeatherDescription string          `json:"weather_description"`
	WeatherIcon        string          `json:"weather_icon"`
	Timestamp          int64           `json:"timestamp"`
	ProviderAlerts     []ProviderAlert `json:"alerts,omitempty"`
}

// ProviderAlert is a weather warning supplied verbatim by the upstream API.
type ProviderAlert struct {
	Event       string `json:"event"`
	Description string `json:"description"`
}

// CityInfo identifies the city a forecast belongs to.
type CityInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
}

// ForecastEntry is one 3-hour forecast interval.
type ForecastEntry struct {
	DateTime           string  `json:"date_time"`
	Time               string  `json:"time"`
	Timestamp          int64   `json:"timestamp"`
	Temperature        float64 `json:"temperature"`
	FeelsLike          float64 `json:"feels_like"`
	Humidity           int     `json:"humidity"`
	Pressure           int     `json:"pressure"`
	WindSpeed          float64 `json:"wind_speed"`
	WindDirection      int     `json:"wind_direction"`
	WeatherMain        string  `json:"weather_main"`
	WeatherDescription string  `json:"weather_description"`
	WeatherIcon        string  `json:"weather_icon"`
	Rain               float64 `json:"rain,omitempty"` // mm over the 3h interval
}

// ParsedTime parses the entry's DateTime field as UTC.
func (e ForecastEntry) ParsedTime() (time.Time, error) {
	return time.Parse(ForecastTimeLayout, e.DateTime)
}

// Forecast is the ordered 3-hour interval series for a city.
type Forecast struct {
	City    CityInfo        `json:"city"`
	Entries []ForecastEntry `json:"entries"`
}

// GroupedForecast is a forecast organized by calendar date for display.
// Map keys are yyyy-mm-dd and sort chronologically when marshaled.
type GroupedForecast struct {
	City CityInfo                   `json:"city"`
	Days map[string][]ForecastEntry `json:"days"`
}

// GroupByDay organizes the forecast entries by calendar date.
func (f Forecast) GroupByDay() GroupedForecast {
	days := make(map[string][]ForecastEntry)
	for _, e := range f.Entries {
		date := e.DateTime
		if len(date) >= 10 {
			date = date[:10]
		}
		days[date] = append(days[date], e)
	}
	return GroupedForecast{City: f.City, Days: days}
}

// EnhancedEntry is a forecast interval with heuristic adjustments applied
// and a confidence score attached.
type EnhancedEntry struct {
	ForecastEntry
	Confidence float64 `json:"confidence"`
}

// EnhancedForecast is the adjusted forecast series.
type EnhancedForecast struct {
	City     CityInfo        `json:"city"`
	Entries  []EnhancedEntry `json:"entries"`
	Enhanced bool            `json:"enhanced"`
}

// Alert is a severity-scored weather alert. Generated per request, never
// persisted.
type Alert struct {
	Type     string  `json:"type"`
	Time     string  `json:"time"`
	Message  string  `json:"message"`
	Severity float64 `json:"severity"`
}

// Preferences are the per-user sensitivity knobs for alert generation.
// All values are in [0,1].
type Preferences struct {
	RainSensitivity float64 `json:"rain_sensitivity"`
	TempSensitivity float64 `json:"temp_sensitivity"`
	WindSensitivity float64 `json:"wind_sensitivity"`
	AlertThreshold  float64 `json:"alert_threshold"`
}

// DefaultPreferences returns the knob defaults used when a request omits them.
func DefaultPreferences() Preferences {
	return Preferences{
		RainSensitivity: 0.5,
		TempSensitivity: 0.5,
		WindSensitivity: 0.5,
		AlertThreshold:  0.7,
	}
}

// Outfit is a clothing suggestion for one time slot.
type Outfit struct {
	Time        string   `json:"time"`
	Top         string   `json:"top"`
	Bottom      string   `json:"bottom"`
	Accessories []string `json:"accessories"`
	Umbrella    bool     `json:"umbrella"`
}

// ClothingRecommendations bundles the per-slot outfits and an explanation.
// Morning and Evening are present only when a same-day forecast slot exists
// and the slot is still ahead of the current time of day.
type ClothingRecommendations struct {
	Current     Outfit  `json:"current"`
	Morning     *Outfit `json:"morning,omitempty"`
	Evening     *Outfit `json:"evening,omitempty"`
	Explanation string  `json:"explanation"`
}
