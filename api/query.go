package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Units selects the measurement system of a request
type Units string

const (
	Metric   Units = "metric"   // Celsius, m/s
	Imperial Units = "imperial" // Fahrenheit, mph
)

// ParseUnits converts user input into a Units value
func ParseUnits(s string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("units must be one of: metric, imperial, got '%s'", s)
	}
}

// WeatherQuery contains parameters for a single dashboard lookup
type WeatherQuery struct {
	City   string `validate:"required,max=100"`
	APIKey string // May be empty, the demo cities still work
	Units  Units  `validate:"required,oneof=metric imperial"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the query before it is sent. The fetchers assume a valid query.
func (q WeatherQuery) Validate() error {
	trimmed := q
	trimmed.City = strings.TrimSpace(q.City)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid query: %w", err)
	}

	var messages []string
	for _, fe := range fieldErrs {
		switch {
		case fe.Field() == "City" && fe.Tag() == "required":
			messages = append(messages, "please enter a city name")
		case fe.Field() == "City":
			messages = append(messages, fmt.Sprintf("city name is too long (max %s characters)", fe.Param()))
		case fe.Field() == "Units":
			messages = append(messages, fmt.Sprintf("units must be one of: metric, imperial, got '%v'", fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid query: %s", strings.Join(messages, "; "))
}

// DemoKey is the lookup key into the demo table: the lower-cased, trimmed city
func (q WeatherQuery) DemoKey() string {
	return strings.ToLower(strings.TrimSpace(q.City))
}

// memoKey identifies a query for the time-boxed memo
func (q WeatherQuery) memoKey() string {
	return q.DemoKey() + "|" + string(q.Units) + "|" + q.APIKey
}
