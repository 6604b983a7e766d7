package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"weatherdash/api"
)

var titleCaser = cases.Title(language.English)

// Title capitalizes each word of an OpenWeather description, "-" when empty
func Title(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return api.Sentinel
	}
	return titleCaser.String(description)
}

// withUnit renders an optional value followed by its unit
func withUnit(v *float64, decimals int, unit string) string {
	s := api.FormatValue(v, decimals)
	if v == nil || unit == "" {
		return s
	}
	if strings.HasPrefix(unit, "°") || unit == "%" {
		return s + unit
	}
	return s + " " + unit
}

// clock renders a Unix timestamp as local wall-clock time
func clock(epoch *int64) string {
	if epoch == nil {
		return api.Sentinel
	}
	return time.Unix(*epoch, 0).In(time.Local).Format("15:04")
}

// RenderCurrent formats current conditions as a text panel
func RenderCurrent(c api.CurrentConditions) string {
	var b strings.Builder

	temp := api.GetUnitSuffix("temperature", c.Units)

	header := c.LocationName
	if c.CountryCode != "" {
		header += ", " + c.CountryCode
	}
	if c.Demo {
		header += "  (demo data)"
	}
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("=", len([]rune(header))))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Condition:\t%s\n", Title(c.Description))
	fmt.Fprintf(tw, "Temperature:\t%s\n", withUnit(c.Temperature, 1, temp))
	fmt.Fprintf(tw, "Feels like:\t%s\n", withUnit(c.FeelsLike, 1, temp))
	fmt.Fprintf(tw, "Humidity:\t%s\n", withUnit(c.HumidityPct, 0, "%"))
	fmt.Fprintf(tw, "Wind:\t%s\n", api.DescribeWind(c.WindSpeed, c.WindDeg, c.Units))
	fmt.Fprintf(tw, "Pressure:\t%s\n", withUnit(c.PressureHPa, 0, api.GetUnitSuffix("pressure", c.Units)))
	fmt.Fprintf(tw, "Visibility:\t%s\n", withUnit(c.VisibilityMeters, 0, api.GetUnitSuffix("visibility", c.Units)))
	fmt.Fprintf(tw, "Clouds:\t%s\n", withUnit(c.CloudsPct, 0, "%"))
	fmt.Fprintf(tw, "Sunrise:\t%s\n", clock(c.SunriseEpoch))
	fmt.Fprintf(tw, "Sunset:\t%s\n", clock(c.SunsetEpoch))
	if c.IconURL != "" {
		fmt.Fprintf(tw, "Icon:\t%s\n", c.IconURL)
	}
	tw.Flush()

	return b.String()
}

// RenderForecast formats daily summaries as a table, one row per day
func RenderForecast(days []api.DailyForecast, units api.Units) string {
	if len(days) == 0 {
		return "No forecast data available.\n"
	}

	var b strings.Builder
	temp := api.GetUnitSuffix("temperature", units)
	wind := api.GetUnitSuffix("wind", units)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tLow\tHigh\tHumidity\tWind\tConditions")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Date,
			withUnit(d.TempMin, 1, temp),
			withUnit(d.TempMax, 1, temp),
			withUnit(d.HumidityPct, 0, "%"),
			withUnit(d.WindSpeed, 1, wind),
			Title(d.Description),
		)
	}
	tw.Flush()

	return b.String()
}

// RenderRaw pretty-prints the decoded API payload for debugging
func RenderRaw(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode raw payload: %w", err)
	}
	return string(data) + "\n", nil
}

// RenderView formats a whole lookup: current panel or its error, then the
// forecast table or its error when the forecast was requested
func RenderView(v View) string {
	var b strings.Builder

	if current, err := v.Current.Get(); err != nil {
		fmt.Fprintf(&b, "Error: %s\n", err)
	} else {
		b.WriteString(RenderCurrent(current))
	}

	if v.Forecast != nil {
		b.WriteString("\n5-day forecast\n")
		if days, err := v.Forecast.Get(); err != nil {
			fmt.Fprintf(&b, "Error: %s\n", err)
		} else {
			b.WriteString(RenderForecast(days, v.Query.Units))
		}
	}

	return b.String()
}
