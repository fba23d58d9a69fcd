package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Apresh913/Weather-Wizard/internal/cache"
	"github.com/Apresh913/Weather-Wizard/internal/lifecycle"
	"github.com/Apresh913/Weather-Wizard/internal/models"
	"github.com/Apresh913/Weather-Wizard/internal/service"
)

// mockWeatherClient serves canned payloads for handler tests.
type mockWeatherClient struct {
	current     models.CurrentWeather
	forecast    models.Forecast
	currentErr  error
	forecastErr error
	keyErr      error
}

func (m *mockWeatherClient) GetCurrentWeather(ctx context.Context, city string) (models.CurrentWeather, error) {
	return m.current, m.currentErr
}

func (m *mockWeatherClient) GetForecast(ctx context.Context, city string) (models.Forecast, error) {
	return m.forecast, m.forecastErr
}

func (m *mockWeatherClient) ValidateAPIKey(ctx context.Context) error { return m.keyErr }

func newTestHandler(mc *mockWeatherClient) *Handler {
	svc := service.NewWeatherService(mc, cache.NewInMemoryCache(time.Minute))
	return NewHandler(svc, mc, zap.NewNop(), 100, nil)
}

func testWeather() models.CurrentWeather {
	return models.CurrentWeather{
		City:               "London",
		Country:            "GB",
		Temperature:        15.5,
		Humidity:           65,
		WeatherMain:        "Clouds",
		WeatherDescription: "scattered clouds",
	}
}

func testForecast() models.Forecast {
	return models.Forecast{
		City: models.CityInfo{Name: "London", Country: "GB"},
		Entries: []models.ForecastEntry{
			{DateTime: "2023-11-14 12:00:00", Time: "12:00:00", Temperature: 10.0, WeatherMain: "Clouds"},
			{DateTime: "2023-11-15 12:00:00", Time: "12:00:00", Temperature: 9.0, WeatherMain: "Rain"},
		},
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

// TestHandlers_MissingCity verifies every city-taking endpoint rejects a
// request without the parameter.
func TestHandlers_MissingCity(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{})

	endpoints := []struct {
		name    string
		handler http.HandlerFunc
		path    string
	}{
		{name: "current", handler: h.GetCurrentWeather, path: "/api/weather/current"},
		{name: "forecast", handler: h.GetForecast, path: "/api/weather/forecast"},
		{name: "all", handler: h.GetAllWeather, path: "/api/weather/all"},
		{name: "enhanced", handler: h.GetEnhancedForecast, path: "/api/weather/enhanced-forecast"},
		{name: "clothing", handler: h.GetClothingRecommendations, path: "/api/recommendations/clothing"},
	}

	for _, ep := range endpoints {
		t.Run(ep.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, ep.path, nil)
			rec := httptest.NewRecorder()
			ep.handler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != "City parameter is required" {
				t.Errorf("error = %q, want missing-city message", body["error"])
			}
		})
	}
}

// TestGetCurrentWeather_OK verifies the current conditions response.
func TestGetCurrentWeather_OK(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{current: testWeather()})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/current?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetCurrentWeather(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	body := decodeBody(t, rec)
	if body["city"] != "London" {
		t.Errorf("city = %v, want London", body["city"])
	}
	if body["temperature"] != 15.5 {
		t.Errorf("temperature = %v, want 15.5", body["temperature"])
	}
}

// TestGetCurrentWeather_UpstreamFailure verifies a 500 with an error body.
func TestGetCurrentWeather_UpstreamFailure(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{currentErr: errors.New("upstream status 502")})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/current?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetCurrentWeather(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	msg, ok := body["error"].(string)
	if !ok || msg == "" {
		t.Errorf("error = %v, want non-empty message", body["error"])
	}
}

// TestGetForecast_GroupedByDay verifies the forecast response groups
// intervals by calendar date.
func TestGetForecast_GroupedByDay(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{forecast: testForecast()})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/forecast?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetForecast(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		City models.CityInfo                   `json:"city"`
		Days map[string][]models.ForecastEntry `json:"days"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	if body.City.Name != "London" {
		t.Errorf("city = %+v, want London", body.City)
	}
	if len(body.Days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(body.Days))
	}
	if len(body.Days["2023-11-14"]) != 1 || len(body.Days["2023-11-15"]) != 1 {
		t.Errorf("days = %v, want one interval per date", body.Days)
	}
}

// TestGetAllWeather_OK verifies the combined response carries both sections.
func TestGetAllWeather_OK(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{current: testWeather(), forecast: testForecast()})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/all?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetAllWeather(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["current"]; !ok {
		t.Error("response missing current section")
	}
	if _, ok := body["forecast"]; !ok {
		t.Error("response missing forecast section")
	}
}

// TestGetEnhancedForecast_OK verifies confidence scores appear per interval.
func TestGetEnhancedForecast_OK(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{forecast: testForecast()})

	req := httptest.NewRequest(http.MethodGet, "/api/weather/enhanced-forecast?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetEnhancedForecast(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body models.EnhancedForecast
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	if !body.Enhanced {
		t.Error("enhanced = false, want true")
	}
	if len(body.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(body.Entries))
	}
	for _, e := range body.Entries {
		if e.Confidence <= 0 || e.Confidence > 1 {
			t.Errorf("confidence = %v, want (0, 1]", e.Confidence)
		}
	}
}

// TestPostAlerts_DefaultPreferences verifies omitted preference knobs fall
// back to defaults and the response wraps alerts in a named field.
func TestPostAlerts_DefaultPreferences(t *testing.T) {
	forecast := testForecast()
	forecast.Entries[0].WeatherMain = "Thunderstorm"
	h := newTestHandler(&mockWeatherClient{current: testWeather(), forecast: forecast})

	req := httptest.NewRequest(http.MethodPost, "/api/weather/alerts", strings.NewReader(`{"city": "London"}`))
	rec := httptest.NewRecorder()
	h.PostAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	if len(body.Alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1: %+v", len(body.Alerts), body.Alerts)
	}
	if body.Alerts[0].Type != "severe_storm" {
		t.Errorf("alert type = %q, want severe_storm", body.Alerts[0].Type)
	}
}

// TestPostAlerts_NoAlerts verifies calm conditions produce an empty array,
// not null.
func TestPostAlerts_NoAlerts(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{current: testWeather(), forecast: testForecast()})

	req := httptest.NewRequest(http.MethodPost, "/api/weather/alerts", strings.NewReader(`{"city": "London"}`))
	rec := httptest.NewRecorder()
	h.PostAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alerts":[]`) {
		t.Errorf("body = %s, want empty alerts array", rec.Body.String())
	}
}

// TestPostAlerts_CustomThreshold verifies a raised threshold filters alerts.
func TestPostAlerts_CustomThreshold(t *testing.T) {
	forecast := testForecast()
	forecast.Entries[0].WeatherDescription = "heavy rain" // severity 0.9
	h := newTestHandler(&mockWeatherClient{current: testWeather(), forecast: forecast})

	reqBody := `{"city": "London", "preferences": {"alert_threshold": 0.95}}`
	req := httptest.NewRequest(http.MethodPost, "/api/weather/alerts", strings.NewReader(reqBody))
	rec := httptest.NewRecorder()
	h.PostAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"alerts":[]`) {
		t.Errorf("body = %s, want alerts filtered by threshold 0.95", rec.Body.String())
	}
}

// TestPostAlerts_BadRequests verifies malformed bodies and missing city.
func TestPostAlerts_BadRequests(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "invalid JSON", body: "{not json", wantMsg: "Invalid JSON body"},
		{name: "missing city", body: `{"preferences": {}}`, wantMsg: "City parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/weather/alerts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.PostAlerts(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
		})
	}
}

// TestGetClothingRecommendations_OK verifies the outfit response shape.
func TestGetClothingRecommendations_OK(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{current: testWeather(), forecast: testForecast()})

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/clothing?city=London", nil)
	rec := httptest.NewRecorder()
	h.GetClothingRecommendations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body models.ClothingRecommendations
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	if body.Current.Top == "" || body.Current.Bottom == "" {
		t.Errorf("current outfit incomplete: %+v", body.Current)
	}
}

// TestIndex verifies the landing page is served as HTML.
func TestIndex(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty landing page body")
	}
}

// TestNotFound verifies the 404 handler's error body.
func TestNotFound(t *testing.T) {
	h := newTestHandler(&mockWeatherClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Not found" {
		t.Errorf("error = %q, want Not found", body["error"])
	}
}

// TestGetHealth covers healthy, degraded, and shutting-down states.
func TestGetHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := newTestHandler(&mockWeatherClient{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.GetHealth(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", body["status"])
		}
		if body["service"] != "weather-wizard" {
			t.Errorf("service = %v, want weather-wizard", body["service"])
		}
	})

	t.Run("degraded api key", func(t *testing.T) {
		h := newTestHandler(&mockWeatherClient{keyErr: errors.New("401")})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.GetHealth(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if body := decodeBody(t, rec); body["status"] != "degraded" {
			t.Errorf("status = %v, want degraded", body["status"])
		}
	})

	t.Run("degraded cache", func(t *testing.T) {
		mc := &mockWeatherClient{}
		svc := service.NewWeatherService(mc, cache.NewInMemoryCache(time.Minute))
		h := NewHandler(svc, mc, zap.NewNop(), 100, func() error { return errors.New("memcached down") })

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.GetHealth(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("shutting down", func(t *testing.T) {
		lifecycle.SetShuttingDown(true)
		defer lifecycle.SetShuttingDown(false)

		h := newTestHandler(&mockWeatherClient{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.GetHealth(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if body := decodeBody(t, rec); body["status"] != "shutting-down" {
			t.Errorf("status = %v, want shutting-down", body["status"])
		}
	})
}
