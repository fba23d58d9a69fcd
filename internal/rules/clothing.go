package rules

import (
	"strings"
	"time"

	"github.com/Apresh913/Weather-Wizard/internal/models"
)

// RecommendClothing builds clothing suggestions for "now" plus, when a
// same-day forecast slot exists, "morning" (8-10h, shown before noon) and
// "evening" (18-20h, shown before 18:00). Forecast timestamps are UTC; pass
// now in the same zone the caller wants slot comparisons made in.
func RecommendClothing(current models.CurrentWeather, forecast models.Forecast, now time.Time) models.ClothingRecommendations {
	cond := strings.ToLower(current.WeatherMain)

	rec := models.ClothingRecommendations{
		Current: models.Outfit{
			Time:        "Now",
			Top:         recommendTop(current.Temperature, cond),
			Bottom:      recommendBottom(current.Temperature),
			Accessories: recommendAccessories(current.Temperature, cond, current.WindSpeed),
			Umbrella:    needsUmbrella(cond),
		},
		Explanation: buildExplanation(current.Temperature, cond, current.Humidity, current.WindSpeed),
	}

	morning, evening := sameDaySlots(forecast, now)

	if morning != nil && now.Hour() < 12 {
		mcond := strings.ToLower(morning.WeatherMain)
		rec.Morning = &models.Outfit{
			Time:        "Morning",
			Top:         recommendTop(morning.Temperature, mcond),
			Bottom:      recommendBottom(morning.Temperature),
			Accessories: recommendAccessories(morning.Temperature, mcond, morning.WindSpeed),
			Umbrella:    needsUmbrella(mcond),
		}
	}

	if evening != nil && now.Hour() < 18 {
		econd := strings.ToLower(evening.WeatherMain)
		rec.Evening = &models.Outfit{
			Time:        "Evening",
			Top:         recommendTop(evening.Temperature, econd),
			Bottom:      recommendBottom(evening.Temperature),
			Accessories: recommendAccessories(evening.Temperature, econd, evening.WindSpeed),
			Umbrella:    needsUmbrella(econd),
		}
	}

	return rec
}

func needsUmbrella(cond string) bool {
	return strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle")
}

// sameDaySlots returns the first forecast entries falling on now's calendar
// date in the 8-10h (morning) and 18-20h (evening) windows.
func sameDaySlots(forecast models.Forecast, now time.Time) (morning, evening *models.ForecastEntry) {
	for i := range forecast.Entries {
		e := &forecast.Entries[i]
		t, err := e.ParsedTime()
		if err != nil {
			continue
		}
		if t.Year() != now.Year() || t.YearDay() != now.YearDay() {
			continue
		}
		if morning == nil && t.Hour() >= 8 && t.Hour() <= 10 {
			morning = e
		}
		if evening == nil && t.Hour() >= 18 && t.Hour() <= 20 {
			evening = e
		}
	}
	return morning, evening
}

func recommendTop(temp float64, cond string) string {
	switch {
	case strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle"):
		switch {
		case temp > 25:
			return "Light waterproof jacket with a breathable t-shirt"
		case temp > 18:
			return "Waterproof raincoat with a cotton shirt"
		case temp > 10:
			return "Waterproof jacket with a warm sweater underneath"
		default:
			return "Insulated waterproof coat with thermal layer"
		}
	case strings.Contains(cond, "snow"):
		return "Insulated winter coat with thermal base layer"
	case strings.Contains(cond, "cloud"):
		switch {
		case temp > 28:
			return "Light cotton t-shirt or tank top"
		case temp > 22:
			return "Short-sleeve cotton shirt or light blouse"
		case temp > 15:
			return "Long-sleeve shirt with light cardigan or hoodie"
		case temp > 10:
			return "Sweater with light jacket or fleece"
		case temp > 5:
			return "Thick sweater with insulated jacket"
		default:
			return "Thermal base layer with heavy winter coat"
		}
	case strings.Contains(cond, "clear"):
		switch {
		case temp > 30:
			return "Loose, light cotton t-shirt or linen shirt"
		case temp > 25:
			return "Breathable cotton t-shirt or sleeveless top"
		case temp > 20:
			return "Light short-sleeve shirt or polo"
		case temp > 15:
			return "Long-sleeve cotton shirt or light sweater"
		case temp > 10:
			return "Medium-weight sweater or pullover"
		case temp > 5:
			return "Thick sweater with jacket or blazer"
		default:
			return "Thermal base layer with insulated winter coat"
		}
	default:
		switch {
		case temp > 25:
			return "Light cotton t-shirt or short-sleeve shirt"
		case temp > 18:
			return "Light long-sleeve shirt or blouse"
		case temp > 10:
			return "Sweater or fleece jacket"
		case temp > 5:
			return "Thick sweater with wind-resistant jacket"
		default:
			return "Multiple layers with winter coat"
		}
	}
}

func recommendBottom(temp float64) string {
	switch {
	case temp > 30:
		return "Light, breathable shorts or skirt"
	case temp > 25:
		return "Cotton shorts, skirt, or light chinos"
	case temp > 20:
		return "Lightweight pants, jeans, or capris"
	case temp > 15:
		return "Regular jeans, chinos, or casual pants"
	case temp > 10:
		return "Jeans or medium-weight pants"
	case temp > 5:
		return "Thick jeans or warm trousers"
	case temp > 0:
		return "Thermal-lined pants or jeans with thermals underneath"
	default:
		return "Insulated winter pants with thermal base layer"
	}
}

func recommendAccessories(temp float64, cond string, windSpeed float64) []string {
	accessories := make([]string, 0, 4)

	if temp < 12 {
		accessories = append(accessories, "Warm gloves or mittens")
	}
	if temp < 8 {
		accessories = append(accessories, "Thermal neck gaiter or scarf")
	}
	if temp < 5 {
		accessories = append(accessories, "Insulated beanie or winter hat")
	} else if temp > 28 {
		accessories = append(accessories, "Breathable hat or cap for sun protection")
	}

	if strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle") {
		accessories = append(accessories, "Compact umbrella")
		if temp < 15 {
			accessories = append(accessories, "Waterproof boots")
		} else {
			accessories = append(accessories, "Water-resistant footwear")
		}
	}

	if strings.Contains(cond, "snow") {
		accessories = append(accessories, "Insulated waterproof boots")
		accessories = append(accessories, "Thermal socks")
	}

	if (strings.Contains(cond, "clear") || strings.Contains(cond, "sun")) && temp > 20 {
		accessories = append(accessories, "UV-protective sunglasses")
		accessories = append(accessories, "SPF 30+ sunscreen")
		if temp > 28 {
			accessories = append(accessories, "Water bottle to stay hydrated")
		}
	}

	if windSpeed > 8 {
		if temp < 15 {
			accessories = append(accessories, "Wind-resistant face protection")
		}
		if temp < 10 {
			accessories = append(accessories, "Windproof gloves")
		} else {
			accessories = append(accessories, "Windbreaker or wind-resistant layer")
		}
	}

	return accessories
}

// buildExplanation concatenates condition-triggered sentences explaining the
// recommendation.
func buildExplanation(temp float64, cond string, humidity int, windSpeed float64) string {
	var b strings.Builder

	switch {
	case strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle"):
		if temp > 20 {
			b.WriteString("The warm rain means you'll want waterproof outer layers that are still breathable. ")
		} else {
			b.WriteString("Stay dry and warm with waterproof, insulated clothing. ")
		}
	case strings.Contains(cond, "snow"):
		b.WriteString("Protect against snow with waterproof, insulated layers. Focus on keeping extremities warm. ")
	case strings.Contains(cond, "clear"):
		if temp > 28 {
			b.WriteString("It's hot and sunny! Wear lightweight, breathable fabrics and protect against UV exposure. ")
		} else if temp > 20 {
			b.WriteString("Pleasant temperatures, but still protect against UV rays if you're outside for long periods. ")
		} else if temp < 5 {
			b.WriteString("Clear but very cold! Layering is essential with a windproof outer layer. ")
		}
	case strings.Contains(cond, "cloud"):
		if temp > 25 {
			b.WriteString("Overcast but warm. Light clothing is still appropriate. ")
		} else if temp < 10 {
			b.WriteString("Gray and cold - focus on insulation with a medium-weight outer layer. ")
		}
	}

	if windSpeed > 8 {
		b.WriteString("Secure any loose items of clothing due to strong winds. ")
	}

	if humidity > 80 && temp > 25 {
		b.WriteString("High humidity will make it feel hotter than it is - dress lighter than the temperature suggests. ")
	}

	if temp < 0 {
		b.WriteString("Risk of frostbite for exposed skin - cover up completely when outdoors. ")
	}

	return b.String()
}
