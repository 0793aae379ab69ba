package openweather

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	// Packages
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ForecastDay is the representative sample for one calendar day
type ForecastDay struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
}

type forecastResponse struct {
	List *[]forecastSample `json:"list"`
}

// forecastSample is one 3-hour entry; DateTime is "YYYY-MM-DD HH:MM:SS"
type forecastSample struct {
	DateTime string `json:"dt_txt"`
	Main     struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const noonHour = "12"

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) parseForecast(data []byte, loc Location, units string, days int) outcome[string] {
	forecast, err := decodeForecast(data, days)
	if err != nil {
		c.log.Warn("unable to parse forecast", zap.Stringer("location", loc), zap.Error(err))
		return failure[string](msgParseForecast, 0)
	}
	return success(renderForecast(forecast, loc, units))
}

func decodeForecast(data []byte, days int) ([]ForecastDay, error) {
	var response forecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	} else if response.List == nil {
		return nil, fmt.Errorf("missing list")
	}

	samples := bucketForecast(*response.List, days)
	result := make([]ForecastDay, 0, len(samples))
	for _, sample := range samples {
		if sample.Main.Temp == nil {
			return nil, fmt.Errorf("missing main.temp for %q", sample.DateTime)
		} else if len(sample.Weather) == 0 {
			return nil, fmt.Errorf("missing weather for %q", sample.DateTime)
		}
		result = append(result, ForecastDay{
			Date:        sample.DateTime[:10],
			Temperature: *sample.Main.Temp,
			Description: sample.Weather[0].Description,
		})
	}
	return result, nil
}

// bucketForecast keeps one sample per date, in date order, for at most
// days dates. The first sample seen for a date is kept unless a later
// sample for that date is at hour "12", which then replaces it.
func bucketForecast(samples []forecastSample, days int) []forecastSample {
	byDate := make(map[string]forecastSample, len(samples))
	for _, sample := range samples {
		if len(sample.DateTime) < 13 {
			continue
		}
		date, hour := sample.DateTime[:10], sample.DateTime[11:13]
		if _, exists := byDate[date]; !exists || hour == noonHour {
			byDate[date] = sample
		}
	}

	// YYYY-MM-DD sorts chronologically
	dates := slices.Sorted(maps.Keys(byDate))
	if len(dates) > days {
		dates = dates[:days]
	}
	result := make([]forecastSample, 0, len(dates))
	for _, date := range dates {
		result = append(result, byDate[date])
	}
	return result
}

func renderForecast(forecast []ForecastDay, loc Location, units string) string {
	if len(forecast) == 0 {
		return fmt.Sprintf("No forecast data available for %s.", loc)
	}

	var result strings.Builder
	symbol := unitSymbol(units)
	fmt.Fprintf(&result, "Forecast for %s:", loc)
	for _, day := range forecast {
		fmt.Fprintf(&result, "\n%s: %s%s, %s", day.Date, formatTemperature(day.Temperature), symbol, day.Description)
	}
	return result.String()
}
