package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"weatherdash/internal/errorutil"
	"weatherdash/internal/logger"
)

const (
	// OpenWeather API base URL and endpoints
	DefaultBaseURL   = "https://api.openweathermap.org/data/2.5"
	weatherEndpoint  = "/weather"
	forecastEndpoint = "/forecast"

	// IconURLTemplate is filled with the icon code, e.g. "10d"
	IconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

	// Default timeout for API requests
	DefaultTimeout = 10 * time.Second

	// User-Agent for API requests
	userAgent = "Weatherdash/1.0"
)

var errEmptyBody = errors.New("response body is not a JSON object")

// WeatherClient handles OpenWeather API interactions. The API key travels
// with each query, so one client serves any number of keys.
type WeatherClient struct {
	client *resty.Client
}

// NewWeatherClient creates a new OpenWeather API client
func NewWeatherClient() *WeatherClient {
	// No retries: a single miss is surfaced to the caller immediately
	client := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(DefaultTimeout).
		SetRetryCount(0)

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		headers := make(map[string]string)
		for key, values := range req.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}
		logger.LogAPIRequest(req.Method, c.BaseURL+req.URL, headers)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.LogAPIResponse(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time().String(), len(resp.Body()))
		return nil
	})

	return &WeatherClient{client: client}
}

// SetTimeout configures the HTTP client timeout
func (w *WeatherClient) SetTimeout(timeout time.Duration) {
	w.client.SetTimeout(timeout)
}

// SetBaseURL points the client at another OpenWeather-compatible host
func (w *WeatherClient) SetBaseURL(baseURL string) {
	w.client.SetBaseURL(strings.TrimRight(baseURL, "/"))
}

// CurrentConditions is the normalized current weather for one city.
// Nil numeric fields mean the upstream payload did not carry the value.
type CurrentConditions struct {
	LocationName     string         `json:"location_name"`
	CountryCode      string         `json:"country_code"`
	Description      string         `json:"description"`
	Temperature      *float64       `json:"temperature,omitempty"`
	FeelsLike        *float64       `json:"feels_like,omitempty"`
	HumidityPct      *float64       `json:"humidity_pct,omitempty"`
	WindSpeed        *float64       `json:"wind_speed,omitempty"`
	WindDeg          *float64       `json:"wind_deg,omitempty"`
	PressureHPa      *float64       `json:"pressure_hpa,omitempty"`
	VisibilityMeters *float64       `json:"visibility_meters,omitempty"`
	CloudsPct        *float64       `json:"clouds_pct,omitempty"`
	SunriseEpoch     *int64         `json:"sunrise_epoch,omitempty"`
	SunsetEpoch      *int64         `json:"sunset_epoch,omitempty"`
	IconURL          string         `json:"icon_url,omitempty"`
	Units            Units          `json:"units"`
	Demo             bool           `json:"demo"`        // Served from the demo table
	RawPayload       map[string]any `json:"raw_payload"` // Full decoded body, for debugging
}

// weatherCondition represents weather condition details
type weatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// currentWeatherResponse represents the OpenWeather current weather API response
type currentWeatherResponse struct {
	Weather []weatherCondition `json:"weather"`
	Main    struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Pressure  *float64 `json:"pressure"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Visibility *float64 `json:"visibility"`
	Wind       struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

// IconURL builds the icon URL for an icon code, empty when there is no code
func IconURL(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return fmt.Sprintf(IconURLTemplate, code)
}

// FetchCurrent fetches current conditions for the query's city
func (w *WeatherClient) FetchCurrent(ctx context.Context, q WeatherQuery) Outcome[CurrentConditions] {
	complete := logger.LogOperationStart("weather_api_current", map[string]any{
		"endpoint": "weather",
		"city":     q.City,
		"units":    string(q.Units),
	})

	resp, netErr := w.get(ctx, weatherEndpoint, "current weather request", q, nil)
	if netErr != nil {
		complete(netErr)
		return Fail[CurrentConditions](&FetchError{
			Kind:    NetworkError,
			Message: fmt.Sprintf("Network error: %v", netErr.Cause()),
			Err:     netErr,
		})
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusUnauthorized:
		if demo, ok := lookupDemo(q); ok {
			logger.Warn("Authentication failed for %q, serving demo data", q.City)
			complete(nil)
			return Ok(demo)
		}
		fetchErr := &FetchError{
			Kind:       AuthError,
			StatusCode: status,
			Message: fmt.Sprintf("Authentication failed (401): %s. Check your OpenWeather API key, or try one of the demo cities: %s",
				strings.TrimRight(apiMessage(resp, "invalid API key"), "."), strings.Join(DemoCities(), ", ")),
		}
		complete(fetchErr)
		return Fail[CurrentConditions](fetchErr)

	case status == http.StatusNotFound:
		fetchErr := &FetchError{
			Kind:       NotFoundError,
			StatusCode: status,
			Message:    fmt.Sprintf("City not found: %q. Check the spelling or add a country code (e.g. \"Paris,FR\")", strings.TrimSpace(q.City)),
		}
		complete(fetchErr)
		return Fail[CurrentConditions](fetchErr)

	case status != http.StatusOK:
		fetchErr := &FetchError{
			Kind:       APIError,
			StatusCode: status,
			Message:    fmt.Sprintf("API error (%d): %s", status, apiMessage(resp, "")),
		}
		complete(fetchErr)
		return Fail[CurrentConditions](fetchErr)
	}

	conditions, err := decodeCurrent(resp.Body(), q.Units)
	if err != nil {
		fetchErr := &FetchError{
			Kind:       DecodeError,
			StatusCode: status,
			Message:    "Invalid JSON response from API",
			Err:        err,
		}
		complete(fetchErr)
		return Fail[CurrentConditions](fetchErr)
	}

	complete(nil)
	logger.Debug("Current weather received: location=%s, country=%s, description=%s",
		conditions.LocationName, conditions.CountryCode, conditions.Description)

	return Ok(conditions)
}

// decodeCurrent maps a current-weather body onto CurrentConditions
func decodeCurrent(body []byte, units Units) (CurrentConditions, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return CurrentConditions{}, err
	}
	if raw == nil {
		return CurrentConditions{}, errEmptyBody
	}

	var payload currentWeatherResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return CurrentConditions{}, err
	}

	var condition weatherCondition
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0]
	}

	return CurrentConditions{
		LocationName:     payload.Name,
		CountryCode:      payload.Sys.Country,
		Description:      condition.Description,
		Temperature:      payload.Main.Temp,
		FeelsLike:        payload.Main.FeelsLike,
		HumidityPct:      payload.Main.Humidity,
		WindSpeed:        payload.Wind.Speed,
		WindDeg:          payload.Wind.Deg,
		PressureHPa:      payload.Main.Pressure,
		VisibilityMeters: payload.Visibility,
		CloudsPct:        payload.Clouds.All,
		SunriseEpoch:     payload.Sys.Sunrise,
		SunsetEpoch:      payload.Sys.Sunset,
		IconURL:          IconURL(condition.Icon),
		Units:            units,
		RawPayload:       raw,
	}, nil
}

// get issues one GET against endpoint with the query parameters OpenWeather expects
func (w *WeatherClient) get(ctx context.Context, endpoint, operation string, q WeatherQuery, extra map[string]string) (*resty.Response, *errorutil.NetworkError) {
	params := map[string]string{
		"q":     strings.TrimSpace(q.City),
		"appid": q.APIKey,
		"units": string(q.Units),
	}
	for k, v := range extra {
		params[k] = v
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		netErr := errorutil.NewNetworkError(operation, w.client.BaseURL+endpoint, err)
		return nil, errorutil.LogNetworkError(logger.Get().Logger, netErr)
	}

	return resp, nil
}

// apiMessage extracts the OpenWeather error message, falling back to the raw body
func apiMessage(resp *resty.Response, fallback string) string {
	var apiError struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &apiError); err == nil && apiError.Message != "" {
		return apiError.Message
	}

	if body := strings.TrimSpace(string(resp.Body())); body != "" {
		return body
	}
	if fallback != "" {
		return fallback
	}
	return http.StatusText(resp.StatusCode())
}
