package http

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Apresh913/Weather-Wizard/internal/client"
	"github.com/Apresh913/Weather-Wizard/internal/lifecycle"
	"github.com/Apresh913/Weather-Wizard/internal/models"
	"github.com/Apresh913/Weather-Wizard/internal/service"
	"github.com/Apresh913/Weather-Wizard/internal/validation"
)

//go:embed index.html
var indexPage []byte

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService *service.WeatherService
	client         client.WeatherClient
	logger         *zap.Logger
	maxCityLength  int
	// cachePing, when set, is called by the health check to verify cache
	// reachability. Set when the backend is memcached.
	cachePing func() error
}

// NewHandler returns a new Handler.
func NewHandler(weatherService *service.WeatherService, client client.WeatherClient, logger *zap.Logger, maxCityLength int, cachePing func() error) *Handler {
	return &Handler{
		weatherService: weatherService,
		client:         client,
		logger:         logger,
		maxCityLength:  maxCityLength,
		cachePing:      cachePing,
	}
}

// Index handles GET /. Serves the static landing page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

// GetCurrentWeather handles GET /api/weather/current?city=X.
func (h *Handler) GetCurrentWeather(w http.ResponseWriter, r *http.Request) {
	city, ok := h.cityFromQuery(w, r)
	if !ok {
		return
	}

	current, err := h.weatherService.GetCurrent(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// GetForecast handles GET /api/weather/forecast?city=X. The forecast is
// returned grouped by calendar date.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	city, ok := h.cityFromQuery(w, r)
	if !ok {
		return
	}

	forecast, err := h.weatherService.GetForecast(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast.GroupByDay())
}

// GetAllWeather handles GET /api/weather/all?city=X, combining current
// conditions and the grouped forecast in one response.
func (h *Handler) GetAllWeather(w http.ResponseWriter, r *http.Request) {
	city, ok := h.cityFromQuery(w, r)
	if !ok {
		return
	}

	current, err := h.weatherService.GetCurrent(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	forecast, err := h.weatherService.GetForecast(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current":  current,
		"forecast": forecast.GroupByDay(),
	})
}

// GetEnhancedForecast handles GET /api/weather/enhanced-forecast?city=X.
func (h *Handler) GetEnhancedForecast(w http.ResponseWriter, r *http.Request) {
	city, ok := h.cityFromQuery(w, r)
	if !ok {
		return
	}

	enhanced, err := h.weatherService.GetEnhancedForecast(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enhanced)
}

// alertsRequest is the POST /api/weather/alerts body. Preference fields are
// pointers so omitted knobs fall back to their defaults.
type alertsRequest struct {
	City        string `json:"city"`
	Preferences struct {
		RainSensitivity *float64 `json:"rain_sensitivity"`
		TempSensitivity *float64 `json:"temp_sensitivity"`
		WindSensitivity *float64 `json:"wind_sensitivity"`
		AlertThreshold  *float64 `json:"alert_threshold"`
	} `json:"preferences"`
}

// PostAlerts handles POST /api/weather/alerts with body {city, preferences}.
func (h *Handler) PostAlerts(w http.ResponseWriter, r *http.Request) {
	var req alertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	city, err := validation.ValidateCity(req.City, h.maxCityLength)
	if err != nil {
		h.logValidationFailure(r, err)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prefs := models.DefaultPreferences()
	if v := req.Preferences.RainSensitivity; v != nil {
		prefs.RainSensitivity = *v
	}
	if v := req.Preferences.TempSensitivity; v != nil {
		prefs.TempSensitivity = *v
	}
	if v := req.Preferences.WindSensitivity; v != nil {
		prefs.WindSensitivity = *v
	}
	if v := req.Preferences.AlertThreshold; v != nil {
		prefs.AlertThreshold = *v
	}

	alerts, err := h.weatherService.GetAlerts(r.Context(), city, prefs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// GetClothingRecommendations handles GET /api/recommendations/clothing?city=X.
func (h *Handler) GetClothingRecommendations(w http.ResponseWriter, r *http.Request) {
	city, ok := h.cityFromQuery(w, r)
	if !ok {
		return
	}

	rec, err := h.weatherService.GetClothingRecommendations(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "shutting-down",
			"service":   "weather-wizard",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)

	if err := h.client.ValidateAPIKey(r.Context()); err != nil {
		checks["weatherApi"] = "unhealthy"
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["weatherApi"] = "healthy"
	}

	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weather-wizard",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the router's 404 handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if logger := loggerFromRequest(r); logger != nil {
		logger.Warn("not found", zap.String("path", r.URL.Path))
	}
	writeError(w, r, http.StatusNotFound, "Not found")
}

// cityFromQuery extracts and validates the city query parameter, writing a
// 400 response on failure.
func (h *Handler) cityFromQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	city, err := validation.ValidateCity(r.URL.Query().Get("city"), h.maxCityLength)
	if err != nil {
		h.logValidationFailure(r, err)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}
	return city, true
}

func (h *Handler) logValidationFailure(r *http.Request, err error) {
	if logger := loggerFromRequest(r); logger != nil {
		logger.Warn("request validation failed", zap.Error(err))
	}
}

func loggerFromRequest(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok {
		return logger
	}
	return nil
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": message} with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service failure to a 500 response. The error text
// already has secrets redacted by the client layer; validation errors never
// reach here.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if logger := loggerFromRequest(r); logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	writeError(w, r, http.StatusInternalServerError, err.Error())
}
