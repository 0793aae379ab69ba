package openweather

import (
	"encoding/json"
	"fmt"
	"strconv"

	// Packages
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// CurrentWeather is the subset of current conditions reported to the caller
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
}

// currentResponse uses pointers so that absent fields can be told apart
// from zero values
type currentResponse struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description *string `json:"description"`
	} `json:"weather"`
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) parseCurrent(data []byte, loc Location, units string) outcome[string] {
	current, err := decodeCurrent(data)
	if err != nil {
		c.log.Warn("unable to parse current weather", zap.Stringer("location", loc), zap.Error(err))
		return failure[string](msgParseWeather, 0)
	}
	return success(current.render(loc, units))
}

func decodeCurrent(data []byte) (CurrentWeather, error) {
	var response currentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return CurrentWeather{}, err
	}
	switch {
	case response.Main == nil:
		return CurrentWeather{}, fmt.Errorf("missing main")
	case response.Main.Temp == nil:
		return CurrentWeather{}, fmt.Errorf("missing main.temp")
	case response.Main.FeelsLike == nil:
		return CurrentWeather{}, fmt.Errorf("missing main.feels_like")
	case response.Main.Humidity == nil:
		return CurrentWeather{}, fmt.Errorf("missing main.humidity")
	case len(response.Weather) == 0 || response.Weather[0].Description == nil:
		return CurrentWeather{}, fmt.Errorf("missing weather[0].description")
	}
	return CurrentWeather{
		Temperature: *response.Main.Temp,
		FeelsLike:   *response.Main.FeelsLike,
		Humidity:    *response.Main.Humidity,
		Description: *response.Weather[0].Description,
	}, nil
}

func (w CurrentWeather) render(loc Location, units string) string {
	symbol := unitSymbol(units)
	return fmt.Sprintf("Current weather in %s: %s%s (feels like %s%s), humidity %d%%, %s.",
		loc, formatTemperature(w.Temperature), symbol, formatTemperature(w.FeelsLike), symbol, w.Humidity, w.Description)
}

// unitSymbol returns the temperature symbol for the units the provider was asked for
func unitSymbol(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	default:
		return "°C"
	}
}

// formatTemperature renders the value as the provider sent it
func formatTemperature(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
