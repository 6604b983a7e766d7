package dashboard

import (
	"context"
	"strings"

	"weatherdash/api"
	"weatherdash/internal/errorutil"
	"weatherdash/internal/logger"
)

// Dashboard runs lookups for sessions against a Fetcher, normally an *api.Memo
type Dashboard struct {
	fetcher api.Fetcher
	apiKey  string
}

// View is the result of one lookup. Forecast is nil when the session has the
// forecast turned off; otherwise current and forecast fail independently.
type View struct {
	Query    api.WeatherQuery
	Current  api.Outcome[api.CurrentConditions]
	Forecast *api.Outcome[[]api.DailyForecast]
}

// New creates a dashboard that sends apiKey with every query
func New(fetcher api.Fetcher, apiKey string) *Dashboard {
	return &Dashboard{
		fetcher: fetcher,
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// Lookup fetches the city for the session. The returned error is only a
// validation error; fetch failures live in the View outcomes.
func (d *Dashboard) Lookup(ctx context.Context, s *Session, city string) (View, error) {
	q := api.WeatherQuery{
		City:   strings.TrimSpace(city),
		APIKey: d.apiKey,
		Units:  s.Units,
	}
	if err := q.Validate(); err != nil {
		return View{}, err
	}

	if d.apiKey == "" && !api.IsDemoCity(q.City) {
		logger.Warn("No API key configured and %q has no demo data", q.City)
	}

	view := View{Query: q}

	view.Current = d.fetcher.FetchCurrent(ctx, q)
	if current, err := view.Current.Get(); err == nil {
		s.Record(q.City)
		s.Last = &current
	} else {
		logger.Info("Lookup failed for %q: %v", q.City, err)
	}

	if s.ShowForecast {
		forecast := d.fetcher.FetchForecast(ctx, q)
		if err := forecast.Err(); err != nil {
			errorutil.LogWarning(logger.Get().Logger, "forecast lookup", err,
				errorutil.QueryContext(q.City, string(q.Units))...)
		}
		view.Forecast = &forecast
	}

	return view, nil
}
