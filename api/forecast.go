package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"weatherdash/internal/logger"
)

const (
	// forecastSampleCount requests 5 days of 3-hourly samples
	forecastSampleCount = 40

	dayLayout = "2006-01-02"

	// Sentinel is displayed in place of a value the data did not carry
	Sentinel = "-"
)

// ForecastSample is one 3-hour reading from the forecast endpoint
type ForecastSample struct {
	Timestamp   int64 // Unix seconds
	Temperature *float64
	Description string
	HumidityPct *float64
	WindSpeed   *float64
	IconCode    string
}

// DailyForecast summarizes the samples that fall on one calendar day
type DailyForecast struct {
	Date        string   `json:"date"` // YYYY-MM-DD in the host's local time zone
	TempMin     *float64 `json:"temp_min,omitempty"`
	TempMax     *float64 `json:"temp_max,omitempty"`
	Description string   `json:"description"`
	HumidityPct *float64 `json:"humidity_pct,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
	IconURL     string   `json:"icon_url,omitempty"`
	Samples     int      `json:"samples"`
}

// forecastResponse represents the OpenWeather 5-day / 3-hour forecast response
type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Weather []weatherCondition `json:"weather"`
		Wind    struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// FetchForecast fetches the 5-day / 3-hour forecast and reduces it to daily
// summaries. Unlike FetchCurrent, a 401 here never falls back to demo data.
func (w *WeatherClient) FetchForecast(ctx context.Context, q WeatherQuery) Outcome[[]DailyForecast] {
	complete := logger.LogOperationStart("weather_api_forecast", map[string]any{
		"endpoint": "forecast",
		"city":     q.City,
		"units":    string(q.Units),
	})

	resp, netErr := w.get(ctx, forecastEndpoint, "forecast request", q, map[string]string{
		"cnt": strconv.Itoa(forecastSampleCount),
	})
	if netErr != nil {
		complete(netErr)
		return Fail[[]DailyForecast](&FetchError{
			Kind:    NetworkError,
			Message: fmt.Sprintf("Network error while fetching forecast: %v", netErr.Cause()),
			Err:     netErr,
		})
	}

	status := resp.StatusCode()
	var fetchErr *FetchError
	switch {
	case status == http.StatusUnauthorized:
		fetchErr = &FetchError{
			Kind:       AuthError,
			StatusCode: status,
			Message: fmt.Sprintf("Forecast authentication failed (401): %s. The forecast has no demo data; check your OpenWeather API key",
				strings.TrimRight(apiMessage(resp, "invalid API key"), ".")),
		}
	case status == http.StatusNotFound:
		fetchErr = &FetchError{
			Kind:       NotFoundError,
			StatusCode: status,
			Message:    fmt.Sprintf("City not found for forecast: %q", strings.TrimSpace(q.City)),
		}
	case status != http.StatusOK:
		fetchErr = &FetchError{
			Kind:       APIError,
			StatusCode: status,
			Message:    fmt.Sprintf("Forecast API error (%d): %s", status, apiMessage(resp, "")),
		}
	}
	if fetchErr != nil {
		complete(fetchErr)
		return Fail[[]DailyForecast](fetchErr)
	}

	samples, err := decodeForecast(resp.Body())
	if err != nil {
		fetchErr = &FetchError{
			Kind:       DecodeError,
			StatusCode: status,
			Message:    "Invalid JSON response from forecast API",
			Err:        err,
		}
		complete(fetchErr)
		return Fail[[]DailyForecast](fetchErr)
	}

	days := AggregateDaily(samples)

	complete(nil)
	logger.Debug("Forecast received: samples=%d, days=%d", len(samples), len(days))

	return Ok(days)
}

// decodeForecast flattens the forecast list into samples
func decodeForecast(body []byte) ([]ForecastSample, error) {
	var payload *forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errEmptyBody
	}

	samples := make([]ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		sample := ForecastSample{
			Timestamp:   item.Dt,
			Temperature: item.Main.Temp,
			HumidityPct: item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
		}
		if len(item.Weather) > 0 {
			sample.Description = item.Weather[0].Description
			sample.IconCode = item.Weather[0].Icon
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// AggregateDaily groups samples by calendar day and reduces each day.
//
// The day of a sample is its timestamp read in time.Local, so the host's time
// zone is an input to the result. Days come back sorted ascending.
func AggregateDaily(samples []ForecastSample) []DailyForecast {
	buckets := make(map[string][]ForecastSample)
	var days []string

	for _, s := range samples {
		day := time.Unix(s.Timestamp, 0).In(time.Local).Format(dayLayout)
		if _, seen := buckets[day]; !seen {
			days = append(days, day)
		}
		buckets[day] = append(buckets[day], s)
	}

	sort.Strings(days)

	result := make([]DailyForecast, 0, len(days))
	for _, day := range days {
		result = append(result, reduceDay(day, buckets[day]))
	}
	return result
}

// reduceDay summarizes one day's samples. Missing fields are skipped; a day
// without any temperature keeps nil min/max.
func reduceDay(day string, samples []ForecastSample) DailyForecast {
	daily := DailyForecast{
		Date:    day,
		Samples: len(samples),
	}
	if len(samples) > 0 {
		// First sample wins, not the most frequent description
		daily.Description = samples[0].Description
	}

	var temps, humidity, wind []float64
	for _, s := range samples {
		if s.Temperature != nil {
			temps = append(temps, *s.Temperature)
		}
		if s.HumidityPct != nil {
			humidity = append(humidity, *s.HumidityPct)
		}
		if s.WindSpeed != nil {
			wind = append(wind, *s.WindSpeed)
		}
		if daily.IconURL == "" && strings.TrimSpace(s.IconCode) != "" {
			daily.IconURL = IconURL(s.IconCode)
		}
	}

	if len(temps) > 0 {
		lo, hi := temps[0], temps[0]
		for _, t := range temps[1:] {
			lo = math.Min(lo, t)
			hi = math.Max(hi, t)
		}
		daily.TempMin = float64Ptr(roundTo(lo, 1))
		daily.TempMax = float64Ptr(roundTo(hi, 1))
	}
	if len(humidity) > 0 {
		daily.HumidityPct = float64Ptr(roundTo(mean(humidity), 0))
	}
	if len(wind) > 0 {
		daily.WindSpeed = float64Ptr(roundTo(mean(wind), 1))
	}

	return daily
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// roundTo rounds half away from zero to the given number of decimals
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func float64Ptr(v float64) *float64 {
	return &v
}

// FormatValue renders an optional measurement, Sentinel when absent
func FormatValue(v *float64, decimals int) string {
	if v == nil {
		return Sentinel
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}
