package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func localUnix(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local).Unix()
}

func ptr(v float64) *float64 {
	return &v
}

func TestAggregateDaily_SortedUniqueDays(t *testing.T) {
	// Deliberately out of order, spanning three local days
	samples := []ForecastSample{
		{Timestamp: localUnix(2024, time.March, 9, 3), Temperature: ptr(5)},
		{Timestamp: localUnix(2024, time.March, 7, 21), Temperature: ptr(8)},
		{Timestamp: localUnix(2024, time.March, 8, 0), Temperature: ptr(7)},
		{Timestamp: localUnix(2024, time.March, 7, 0), Temperature: ptr(6)},
		{Timestamp: localUnix(2024, time.March, 8, 23), Temperature: ptr(9)},
	}

	days := AggregateDaily(samples)

	expected := []string{"2024-03-07", "2024-03-08", "2024-03-09"}
	if len(days) != len(expected) {
		t.Fatalf("Expected %d days, got %d", len(expected), len(days))
	}
	for i, day := range days {
		if day.Date != expected[i] {
			t.Errorf("Day %d: expected %s, got %s", i, expected[i], day.Date)
		}
	}
	if days[0].Samples != 2 || days[1].Samples != 2 || days[2].Samples != 1 {
		t.Errorf("Unexpected sample counts %d/%d/%d", days[0].Samples, days[1].Samples, days[2].Samples)
	}
}

func TestAggregateDaily_Reduction(t *testing.T) {
	samples := []ForecastSample{
		{Timestamp: localUnix(2024, time.June, 1, 6), Temperature: ptr(10), HumidityPct: ptr(70), WindSpeed: ptr(2.0), Description: "light rain", IconCode: ""},
		{Timestamp: localUnix(2024, time.June, 1, 12), Temperature: ptr(14), HumidityPct: ptr(61), WindSpeed: ptr(3.5), Description: "clear sky", IconCode: "01d"},
		{Timestamp: localUnix(2024, time.June, 1, 18), Temperature: ptr(12), HumidityPct: ptr(64), WindSpeed: ptr(4.0), Description: "clear sky", IconCode: "02d"},
	}

	days := AggregateDaily(samples)
	if len(days) != 1 {
		t.Fatalf("Expected one day, got %d", len(days))
	}
	day := days[0]

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"min", FormatValue(day.TempMin, 1), "10.0"},
		{"max", FormatValue(day.TempMax, 1), "14.0"},
		{"humidity mean", FormatValue(day.HumidityPct, 0), "65"},
		{"wind mean", FormatValue(day.WindSpeed, 1), "3.2"},
		{"description from first sample", day.Description, "light rain"},
		{"icon from first non-empty code", day.IconURL, IconURL("01d")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, tt.got)
			}
		})
	}
}

func TestAggregateDaily_DayWithoutTemperatures(t *testing.T) {
	samples := []ForecastSample{
		{Timestamp: localUnix(2024, time.June, 1, 9), HumidityPct: ptr(50), Description: "haze"},
		{Timestamp: localUnix(2024, time.June, 1, 15), WindSpeed: ptr(1.5)},
		{Timestamp: localUnix(2024, time.June, 2, 9), Temperature: ptr(20.04), HumidityPct: ptr(40)},
		{Timestamp: localUnix(2024, time.June, 2, 15), Temperature: ptr(24.96)},
	}

	days := AggregateDaily(samples)
	if len(days) != 2 {
		t.Fatalf("Expected two days, got %d", len(days))
	}

	empty := days[0]
	if empty.TempMin != nil || empty.TempMax != nil {
		t.Errorf("Expected nil min/max, got %v/%v", empty.TempMin, empty.TempMax)
	}
	if FormatValue(empty.TempMin, 1) != Sentinel || FormatValue(empty.TempMax, 1) != Sentinel {
		t.Error("Expected sentinel rendering for a day without temperatures")
	}
	if FormatValue(empty.HumidityPct, 0) != "50" || FormatValue(empty.WindSpeed, 1) != "1.5" {
		t.Errorf("Expected other fields to aggregate, got humidity=%s wind=%s",
			FormatValue(empty.HumidityPct, 0), FormatValue(empty.WindSpeed, 1))
	}

	full := days[1]
	if FormatValue(full.TempMin, 1) != "20.0" || FormatValue(full.TempMax, 1) != "25.0" {
		t.Errorf("Expected 20.0/25.0, got %s/%s", FormatValue(full.TempMin, 1), FormatValue(full.TempMax, 1))
	}
	if full.WindSpeed != nil {
		t.Errorf("Expected nil wind, got %v", *full.WindSpeed)
	}
	if full.IconURL != "" {
		t.Errorf("Expected no icon, got %q", full.IconURL)
	}
}

func TestAggregateDaily_Empty(t *testing.T) {
	if days := AggregateDaily(nil); len(days) != 0 {
		t.Errorf("Expected no days, got %d", len(days))
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		expected float64
	}{
		{2.25, 1, 2.3},
		{-2.25, 1, -2.3},
		{64.5, 0, 65},
		{3.14159, 2, 3.14},
		{7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v_%d", tt.value, tt.decimals), func(t *testing.T) {
			if got := roundTo(tt.value, tt.decimals); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func forecastBody(count int) string {
	base := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.Local)
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ts := base.Add(time.Duration(i) * 3 * time.Hour).Unix()
		items = append(items, fmt.Sprintf(
			`{"dt": %d, "main": {"temp": %d, "humidity": 60}, "weather": [{"description": "cloudy", "icon": "03d"}], "wind": {"speed": 2}}`,
			ts, 10+i%8))
	}
	return fmt.Sprintf(`{"cod": "200", "cnt": %d, "list": [%s], "city": {"name": "Paris", "country": "FR"}}`,
		count, strings.Join(items, ","))
}

func TestFetchForecast_Success(t *testing.T) {
	client, fake := newFakeServer(t, http.StatusOK, forecastBody(40))

	outcome := client.FetchForecast(context.Background(), WeatherQuery{City: "Paris", APIKey: testAPIKey, Units: Imperial})
	days, err := outcome.Get()
	if err != nil {
		t.Fatalf("Expected Ok, got %v", err)
	}

	query := fake.lastQuery("/forecast")
	if query.Get("cnt") != "40" || query.Get("units") != "imperial" || query.Get("q") != "Paris" || query.Get("appid") != testAPIKey {
		t.Errorf("Unexpected query parameters: %v", query)
	}

	// 40 samples every 3 hours from local midnight cover exactly 5 days
	if len(days) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(days))
	}
	for _, day := range days {
		if day.Samples != 8 {
			t.Errorf("%s: expected 8 samples, got %d", day.Date, day.Samples)
		}
		if FormatValue(day.TempMin, 1) != "10.0" || FormatValue(day.TempMax, 1) != "17.0" {
			t.Errorf("%s: expected 10.0/17.0, got %s/%s", day.Date, FormatValue(day.TempMin, 1), FormatValue(day.TempMax, 1))
		}
	}
}

func TestFetchForecast_FewerSamples(t *testing.T) {
	client, _ := newFakeServer(t, http.StatusOK, forecastBody(3))

	outcome := client.FetchForecast(context.Background(), WeatherQuery{City: "Paris", APIKey: testAPIKey, Units: Metric})
	if !outcome.IsOk() {
		t.Fatalf("Expected Ok, got %q", outcome.Message())
	}
	if len(outcome.Value()) != 1 {
		t.Errorf("Expected one day, got %d", len(outcome.Value()))
	}
}

func TestFetchForecast_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		city     string
		kind     ErrorKind
		contains string
	}{
		{
			name:     "unauthorized demo city never falls back",
			status:   http.StatusUnauthorized,
			body:     `{"cod": 401, "message": "Invalid API key."}`,
			city:     "London",
			kind:     AuthError,
			contains: "Forecast authentication failed (401)",
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"cod": "404", "message": "city not found"}`,
			city:     "Atlantis",
			kind:     NotFoundError,
			contains: "City not found for forecast",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"message": "boom"}`,
			city:     "Paris",
			kind:     APIError,
			contains: "Forecast API error (500): boom",
		},
		{
			name:     "invalid JSON",
			status:   http.StatusOK,
			body:     `{"list": "nope"}`,
			city:     "Paris",
			kind:     DecodeError,
			contains: "Invalid JSON response from forecast API",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeServer(t, tt.status, tt.body)
			outcome := client.FetchForecast(context.Background(), WeatherQuery{City: tt.city, APIKey: "bad", Units: Metric})
			if outcome.IsOk() {
				t.Fatal("Expected failure")
			}
			if outcome.Err().Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, outcome.Err().Kind)
			}
			if !strings.Contains(outcome.Message(), tt.contains) {
				t.Errorf("Expected message containing %q, got %q", tt.contains, outcome.Message())
			}
		})
	}
}

func TestFetchForecast_Timeout(t *testing.T) {
	server := httptestSlowServer(t)

	client := NewWeatherClient()
	client.SetBaseURL(server)
	client.SetTimeout(50 * time.Millisecond)

	outcome := client.FetchForecast(context.Background(), WeatherQuery{City: "Slowtown", APIKey: testAPIKey, Units: Metric})
	if outcome.IsOk() {
		t.Fatal("Expected timeout failure")
	}
	if !strings.HasPrefix(outcome.Message(), "Network error while fetching forecast: ") {
		t.Errorf("Unexpected message %q", outcome.Message())
	}
}

// httptestSlowServer returns the URL of a server that never answers before the client gives up
func httptestSlowServer(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}
