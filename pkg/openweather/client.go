/*
openweather implements a gateway to the OpenWeatherMap API, returning current
conditions, forecasts and severe weather alerts as plain text for agents.
https://openweathermap.org/api
*/
package openweather

import (
	"context"
	"net/http"
	"strings"
	"time"

	// Packages
	resty "github.com/go-resty/resty/v2"
	weather "github.com/mutablelogic/go-weather"
	trace "go.opentelemetry.io/otel/trace"
	noop "go.opentelemetry.io/otel/trace/noop"
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is safe for concurrent use. All configuration is fixed once New returns.
type Client struct {
	key       string
	endpoint  string
	units     string
	lang      string
	timeout   time.Duration
	transport http.RoundTripper
	log       *zap.Logger
	tracer    trace.Tracer
	http      *resty.Client
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultEndpoint = "https://api.openweathermap.org"
	DefaultUnits    = "metric"
	DefaultLanguage = "en"
	DefaultTimeout  = 10 * time.Second
	tracerName      = "github.com/mutablelogic/go-weather/pkg/openweather"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Create a new client. A missing API key is a configuration error.
func New(apiKey string, opts ...Opt) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, weather.ErrConfiguration.With("missing API key")
	}

	self := &Client{
		key:      apiKey,
		endpoint: DefaultEndpoint,
		units:    DefaultUnits,
		lang:     DefaultLanguage,
		timeout:  DefaultTimeout,
		log:      zap.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
	}
	if err := self.apply(opts...); err != nil {
		return nil, err
	}

	// No retries: a transient failure is reported, not repeated
	self.http = resty.New().
		SetTimeout(self.timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(newRestyLogger(self.log))
	if self.transport != nil {
		self.http.SetTransport(self.transport)
	}

	// Return success
	return self, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CurrentWeather returns the current conditions for a city. The error is
// non-nil only for configuration defects; every other outcome is in the text.
func (c *Client) CurrentWeather(ctx context.Context, req *CurrentWeatherRequest) (result string, err error) {
	if err := c.check(); err != nil {
		return "", err
	}
	defer c.recover(&result, opCurrent)

	loc, msg := req.location()
	if msg != "" {
		return msg, nil
	}
	units, lang := c.defaults(req.Units, req.Language)
	body := c.send(ctx, opCurrent, c.currentURL(loc, units, lang))
	return then(body, func(data []byte) outcome[string] {
		return c.parseCurrent(data, loc, units)
	}).text(), nil
}

// Forecast returns one line per day for up to five days. Days are clamped
// into the supported range rather than rejected.
func (c *Client) Forecast(ctx context.Context, req *ForecastRequest) (result string, err error) {
	if err := c.check(); err != nil {
		return "", err
	}
	defer c.recover(&result, opForecast)

	loc, msg := req.location()
	if msg != "" {
		return msg, nil
	}
	days := clampDays(req.Days)
	units, lang := c.defaults(req.Units, req.Language)
	body := c.send(ctx, opForecast, c.forecastURL(loc, units, lang))
	return then(body, func(data []byte) outcome[string] {
		return c.parseForecast(data, loc, units, days)
	}).text(), nil
}

// Alerts resolves the city to coordinates and then returns the active
// severe weather alerts for them.
func (c *Client) Alerts(ctx context.Context, req *AlertsRequest) (result string, err error) {
	if err := c.check(); err != nil {
		return "", err
	}
	defer c.recover(&result, opAlerts)

	loc, msg := req.location()
	if msg != "" {
		return msg, nil
	}
	units, lang := c.defaults(req.Units, req.Language)
	place := c.geocode(ctx, loc, units, lang)
	return then(place, func(place GeocodeResult) outcome[string] {
		body := c.send(ctx, opAlerts, c.alertsURL(place, units, lang))
		return then(body, func(data []byte) outcome[string] {
			return c.parseAlerts(data, place)
		})
	}).text(), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) check() error {
	if c == nil || c.key == "" || c.http == nil {
		return weather.ErrConfiguration.With("missing API key")
	}
	return nil
}

// recover turns a panic anywhere in an operation into the generic message
func (c *Client) recover(result *string, op operation) {
	if r := recover(); r != nil {
		c.log.Error("recovered from panic", zap.Stringer("operation", op), zap.Any("panic", r))
		*result = msgUnexpected
	}
}
