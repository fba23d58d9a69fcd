package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Apresh913/Weather-Wizard/internal/models"
	"github.com/Apresh913/Weather-Wizard/internal/observability"
)

// WeatherClient fetches normalized weather data from the upstream provider.
type WeatherClient interface {
	GetCurrentWeather(ctx context.Context, city string) (models.CurrentWeather, error)
	GetForecast(ctx context.Context, city string) (models.Forecast, error)
	ValidateAPIKey(ctx context.Context) error
}

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrCityNotFound  = errors.New("city not found")
	ErrUpstream      = errors.New("upstream failure")
)

// redactionMarker replaces any occurrence of the API key in error text
// before it is surfaced or logged.
const redactionMarker = "[REDACTED]"

// OpenWeatherClient calls the OpenWeatherMap API. One outbound call per
// operation; any failure is surfaced immediately with the API key redacted.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewOpenWeatherClient creates a client for the given API key and base URL
// (e.g. "https://api.openweathermap.org/data/2.5").
func NewOpenWeatherClient(apiKey, baseURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type weatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Weather []weatherCondition     `json:"weather"`
	Alerts  []models.ProviderAlert `json:"alerts"`
}

type forecastResponse struct {
	City struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
			Pressure  int     `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   int     `json:"deg"`
		} `json:"wind"`
		Weather []weatherCondition `json:"weather"`
		Rain    struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// GetCurrentWeather fetches and normalizes current conditions for city.
func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, city string) (models.CurrentWeather, error) {
	body, err := c.call(ctx, "weather", city)
	if err != nil {
		return models.CurrentWeather{}, err
	}

	var resp currentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.CurrentWeather{}, fmt.Errorf("%w: malformed current weather payload: %s", ErrUpstream, c.redact(err.Error()))
	}
	if len(resp.Weather) == 0 {
		return models.CurrentWeather{}, fmt.Errorf("%w: current weather payload missing conditions", ErrUpstream)
	}

	return models.CurrentWeather{
		City:               resp.Name,
		Country:            resp.Sys.Country,
		Temperature:        resp.Main.Temp,
		FeelsLike:          resp.Main.FeelsLike,
		Humidity:           resp.Main.Humidity,
		Pressure:           resp.Main.Pressure,
		WindSpeed:          resp.Wind.Speed,
		WindDirection:      resp.Wind.Deg,
		WeatherMain:        resp.Weather[0].Main,
		WeatherDescription: resp.Weather[0].Description,
		WeatherIcon:        resp.Weather[0].Icon,
		Timestamp:          resp.Dt,
		ProviderAlerts:     resp.Alerts,
	}, nil
}

// GetForecast fetches and normalizes the 3-hour interval forecast for city.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, city string) (models.Forecast, error) {
	body, err := c.call(ctx, "forecast", city)
	if err != nil {
		return models.Forecast{}, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Forecast{}, fmt.Errorf("%w: malformed forecast payload: %s", ErrUpstream, c.redact(err.Error()))
	}
	if len(resp.List) == 0 {
		return models.Forecast{}, fmt.Errorf("%w: forecast payload has no intervals", ErrUpstream)
	}

	forecast := models.Forecast{
		City: models.CityInfo{
			ID:       resp.City.ID,
			Name:     resp.City.Name,
			Country:  resp.City.Country,
			Timezone: resp.City.Timezone,
		},
		Entries: make([]models.ForecastEntry, 0, len(resp.List)),
	}
	for _, item := range resp.List {
		if len(item.Weather) == 0 {
			return models.Forecast{}, fmt.Errorf("%w: forecast interval missing conditions", ErrUpstream)
		}
		timeOfDay := item.DtTxt
		if idx := strings.IndexByte(item.DtTxt, ' '); idx >= 0 {
			timeOfDay = item.DtTxt[idx+1:]
		}
		forecast.Entries = append(forecast.Entries, models.ForecastEntry{
			DateTime:           item.DtTxt,
			Time:               timeOfDay,
			Timestamp:          item.Dt,
			Temperature:        item.Main.Temp,
			FeelsLike:          item.Main.FeelsLike,
			Humidity:           item.Main.Humidity,
			Pressure:           item.Main.Pressure,
			WindSpeed:          item.Wind.Speed,
			WindDirection:      item.Wind.Deg,
			WeatherMain:        item.Weather[0].Main,
			WeatherDescription: item.Weather[0].Description,
			WeatherIcon:        item.Weather[0].Icon,
			Rain:               item.Rain.ThreeHour,
		})
	}
	return forecast, nil
}

// call performs a single GET against baseURL/endpoint and returns the raw
// body on 2xx. Every error path passes through redact so the API key never
// appears in surfaced or logged text.
func (c *OpenWeatherClient) call(ctx context.Context, endpoint, city string) ([]byte, error) {
	start := time.Now()

	reqCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.buildRequest(reqCtx, endpoint, city)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%w: build request: %s", ErrUpstream, c.redact(err.Error()))
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.WeatherAPIDuration.WithLabelValues(endpoint, "error").Observe(duration)
		return nil, fmt.Errorf("%w: %s", ErrUpstream, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(endpoint, status).Observe(duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %s", ErrUpstream, c.redact(err.Error()))
	}

	if err := c.checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkStatus maps non-2xx responses to sentinel errors. Response body text
// is redacted and truncated before being embedded in the error.
func (c *OpenWeatherClient) checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	snippet := c.redact(truncate(string(body), 256))
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401: %s", ErrInvalidAPIKey, snippet)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrCityNotFound, snippet)
	}
	return fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, statusCode, snippet)
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, endpoint, city string) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// redact substitutes the API key with the redaction marker wherever the
// literal key value appears.
func (c *OpenWeatherClient) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, redactionMarker)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}

// ValidateAPIKey issues a lightweight request to verify the configured key.
// Used by the health endpoint.
func (c *OpenWeatherClient) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := c.buildRequest(ctx, "weather", "London")
	if err != nil {
		return fmt.Errorf("build validation request: %s", c.redact(err.Error()))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("validation request failed: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: API key is invalid or not activated", ErrInvalidAPIKey)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("validation failed: HTTP %d", resp.StatusCode)
	}

	return nil
}
