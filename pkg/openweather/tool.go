package openweather

import (
	"context"
	"encoding/json"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	weather "github.com/mutablelogic/go-weather"
	tool "github.com/mutablelogic/go-weather/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type currentWeather struct {
	client *Client
}

type forecastWeather struct {
	client *Client
}

type alertsWeather struct {
	client *Client
}

var _ tool.Tool = (*currentWeather)(nil)
var _ tool.Tool = (*forecastWeather)(nil)
var _ tool.Tool = (*alertsWeather)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns the weather tools for use with agents
func NewTools(apikey string, opts ...Opt) ([]tool.Tool, error) {
	client, err := New(apikey, opts...)
	if err != nil {
		return nil, err
	}
	return client.Tools(), nil
}

// Tools returns the weather tools backed by this client
func (c *Client) Tools() []tool.Tool {
	return []tool.Tool{
		&currentWeather{client: c},
		&forecastWeather{client: c},
		&alertsWeather{client: c},
	}
}

///////////////////////////////////////////////////////////////////////////////
// CURRENT WEATHER

func (*currentWeather) Name() string {
	return "openweather_current"
}

func (*currentWeather) Description() string {
	return "Get current weather conditions for a city: temperature, feels-like temperature, humidity and a short description."
}

// Return the JSON schema for the tool input
func (*currentWeather) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[CurrentWeatherRequest](nil)
}

// Run the tool with the given input
func (t *currentWeather) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req CurrentWeatherRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	return t.client.CurrentWeather(ctx, &req)
}

///////////////////////////////////////////////////////////////////////////////
// FORECAST WEATHER

func (*forecastWeather) Name() string {
	return "openweather_forecast"
}

func (*forecastWeather) Description() string {
	return "Get a daily weather forecast for a city for 1 to 5 days, one line per day with temperature and description."
}

// Return the JSON schema for the tool input
func (*forecastWeather) Schema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[ForecastRequest](nil)
	if err != nil {
		return nil, err
	}

	// Out-of-range days are clamped, so only document the range and default
	if daysField, ok := schema.Properties["days"]; ok && daysField != nil {
		daysField.Default = json.RawMessage("3")
	}

	return schema, nil
}

// Run the tool with the given input
func (t *forecastWeather) Run(ctx context.Context, input json.RawMessage) (any, error) {
	req := ForecastRequest{Days: DefaultDays}
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	return t.client.Forecast(ctx, &req)
}

///////////////////////////////////////////////////////////////////////////////
// ALERTS WEATHER

func (*alertsWeather) Name() string {
	return "openweather_alerts"
}

func (*alertsWeather) Description() string {
	return "Get active severe weather alerts for a city, issued by national weather agencies. Requires a One Call API 3.0 subscription."
}

// Return the JSON schema for the tool input
func (*alertsWeather) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[AlertsRequest](nil)
}

// Run the tool with the given input
func (t *alertsWeather) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req AlertsRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	return t.client.Alerts(ctx, &req)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// decode unmarshals the tool input if provided. An empty city is not an
// error here: the operation reports it as text.
func decode(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, v); err != nil {
		return weather.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
	}
	return nil
}
