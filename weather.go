package skybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

type weatherReading struct {
	City      string
	TempC     float64
	Condition string
	Humidity  int
	WindKMH   int
}

// cityWeather is the simulated lookup table behind GetWeather. Order matters:
// the first match wins.
var cityWeather = []weatherReading{
	{City: "Seattle", TempC: 18, Condition: "Cloudy", Humidity: 75, WindKMH: 15},
	{City: "Tokyo", TempC: 22, Condition: "Sunny", Humidity: 60, WindKMH: 10},
	{City: "London", TempC: 12, Condition: "Rainy", Humidity: 85, WindKMH: 20},
	{City: "New York", TempC: 20, Condition: "Partly Cloudy", Humidity: 70, WindKMH: 12},
	{City: "Paris", TempC: 15, Condition: "Overcast", Humidity: 80, WindKMH: 8},
}

// defaultWeather is served when no known city matches. The caller's location
// string is echoed back so the response still names what was asked for.
var defaultWeather = weatherReading{TempC: 20, Condition: "Clear", Humidity: 65, WindKMH: 10}

// GetWeather returns simulated weather for a location as a JSON string.
// City matching is case-insensitive and bidirectional-substring, so both
// "tokyo" and "downtown Tokyo area" resolve to Tokyo. Unit defaults to
// celsius; anything other than "fahrenheit" is treated as celsius.
func GetWeather(ctx context.Context, args map[string]any) (string, error) {
	location := stringArg(args, "location")
	if location == "" {
		return "", fmt.Errorf("location is required")
	}
	unit := strings.ToLower(stringArg(args, "unit"))

	matchedCity := location
	reading := defaultWeather
	locationLower := strings.ToLower(location)
	for _, entry := range cityWeather {
		cityLower := strings.ToLower(entry.City)
		if strings.Contains(locationLower, cityLower) || strings.Contains(cityLower, locationLower) {
			matchedCity = entry.City
			reading = entry
			break
		}
	}

	temp := reading.TempC
	tempUnit := "celsius"
	if unit == "fahrenheit" {
		temp = temp*9/5 + 32
		tempUnit = "fahrenheit"
	}

	response := map[string]any{
		"location":         matchedCity,
		"temperature":      math.Round(temp*10) / 10,
		"temperature_unit": tempUnit,
		"condition":        reading.Condition,
		"humidity_percent": reading.Humidity,
		"wind_speed_kmh":   reading.WindKMH,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(response)
	if err != nil {
		return "", fmt.Errorf("encode weather response: %w", err)
	}
	return string(encoded), nil
}

// stringArg pulls a string field out of decoded tool-call arguments.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg pulls a numeric field out of decoded tool-call arguments. JSON
// numbers decode as float64.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
