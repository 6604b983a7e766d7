package api

// demoRecord is canned current weather, stored in metric units
type demoRecord struct {
	name        string
	country     string
	description string
	icon        string
	temp        float64
	feelsLike   float64
	humidity    float64
	windSpeed   float64
	windDeg     float64
	pressure    float64
	visibility  float64
	clouds      float64
}

// demoCities keeps the display order used in hints
var demoCities = []string{"London", "New York", "Tokyo"}

// demoRecords is keyed by the lower-cased, trimmed city name
var demoRecords = map[string]demoRecord{
	"london": {
		name: "London", country: "GB", description: "light rain", icon: "10d",
		temp: 12.3, feelsLike: 11.6, humidity: 82, windSpeed: 4.6, windDeg: 230,
		pressure: 1012, visibility: 9000, clouds: 75,
	},
	"new york": {
		name: "New York", country: "US", description: "clear sky", icon: "01d",
		temp: 18.4, feelsLike: 17.9, humidity: 56, windSpeed: 3.1, windDeg: 300,
		pressure: 1018, visibility: 10000, clouds: 5,
	},
	"tokyo": {
		name: "Tokyo", country: "JP", description: "few clouds", icon: "02d",
		temp: 21.7, feelsLike: 21.9, humidity: 64, windSpeed: 2.6, windDeg: 140,
		pressure: 1015, visibility: 10000, clouds: 20,
	},
}

// DemoCities returns the cities served when the API rejects the key
func DemoCities() []string {
	return append([]string(nil), demoCities...)
}

// IsDemoCity reports whether the city has a demo record
func IsDemoCity(city string) bool {
	_, ok := demoRecords[WeatherQuery{City: city}.DemoKey()]
	return ok
}

// lookupDemo builds the demo conditions for the query, converted to its units
func lookupDemo(q WeatherQuery) (CurrentConditions, bool) {
	rec, ok := demoRecords[q.DemoKey()]
	if !ok {
		return CurrentConditions{}, false
	}

	units := q.Units
	if units == "" {
		units = Metric
	}

	temp := roundTo(ConvertTemperature(rec.temp, Metric, units), 1)
	feelsLike := roundTo(ConvertTemperature(rec.feelsLike, Metric, units), 1)
	wind := roundTo(ConvertWindSpeed(rec.windSpeed, Metric, units), 1)

	return CurrentConditions{
		LocationName:     rec.name,
		CountryCode:      rec.country,
		Description:      rec.description,
		Temperature:      float64Ptr(temp),
		FeelsLike:        float64Ptr(feelsLike),
		HumidityPct:      float64Ptr(rec.humidity),
		WindSpeed:        float64Ptr(wind),
		WindDeg:          float64Ptr(rec.windDeg),
		PressureHPa:      float64Ptr(rec.pressure),
		VisibilityMeters: float64Ptr(rec.visibility),
		CloudsPct:        float64Ptr(rec.clouds),
		IconURL:          IconURL(rec.icon),
		Units:            units,
		Demo:             true,
		RawPayload: map[string]any{
			"demo":   true,
			"source": "demo-data",
			"city":   q.DemoKey(),
		},
	}, true
}
