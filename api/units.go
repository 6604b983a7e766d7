package api

import (
	"fmt"
	"math"
	"strings"
)

// ConvertTemperature converts temperature between metric (Celsius) and imperial (Fahrenheit)
func ConvertTemperature(temp float64, from, to Units) float64 {
	if from == to {
		return temp
	}
	if to == Imperial {
		return temp*9/5 + 32
	}
	return (temp - 32) * 5 / 9
}

// ConvertWindSpeed converts wind speed between m/s (metric) and mph (imperial)
func ConvertWindSpeed(speed float64, from, to Units) float64 {
	if from == to {
		return speed
	}
	if to == Imperial {
		return speed * 2.23694 // m/s to mph
	}
	return speed * 0.44704 // mph to m/s
}

// GetUnitSuffix returns the appropriate unit suffix for display
func GetUnitSuffix(measurement string, units Units) string {
	switch strings.ToLower(measurement) {
	case "temperature", "temp":
		if units == Imperial {
			return "°F"
		}
		return "°C"
	case "wind", "speed":
		if units == Imperial {
			return "mph"
		}
		return "m/s"
	case "pressure":
		return "hPa" // OpenWeather reports hPa for both unit systems
	case "visibility":
		return "m"
	default:
		return ""
	}
}

// DegreesToCardinal converts wind direction degrees to cardinal direction
func DegreesToCardinal(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return Sentinel
	}

	// Normalize degrees to the [0, 360) range, any sign or magnitude
	degrees = math.Mod(math.Mod(degrees, 360)+360, 360)

	directions := []string{
		"N", "NNE", "NE", "ENE",
		"E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW",
		"W", "WNW", "NW", "NNW",
	}

	// Each direction covers 22.5 degrees
	index := int((degrees+11.25)/22.5) % 16
	return directions[index]
}

// DescribeWind creates a human-readable wind description, e.g. "Gentle SW winds at 4.6 m/s"
func DescribeWind(speed, deg *float64, units Units) string {
	if speed == nil {
		return Sentinel
	}
	if *speed == 0 {
		return "Calm"
	}

	var speedDesc string
	switch {
	case *speed < 2:
		speedDesc = "Light"
	case *speed < 6:
		speedDesc = "Gentle"
	case *speed < 12:
		speedDesc = "Moderate"
	case *speed < 20:
		speedDesc = "Fresh"
	case *speed < 30:
		speedDesc = "Strong"
	default:
		speedDesc = "Very Strong"
	}

	suffix := GetUnitSuffix("wind", units)
	if deg == nil {
		return fmt.Sprintf("%s winds at %.1f %s", speedDesc, *speed, suffix)
	}
	return fmt.Sprintf("%s %s winds at %.1f %s", speedDesc, DegreesToCardinal(*deg), *speed, suffix)
}
