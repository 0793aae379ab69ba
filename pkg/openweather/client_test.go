package openweather_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	weather "github.com/mutablelogic/go-weather"
	openweather "github.com/mutablelogic/go-weather/pkg/openweather"
	assert "github.com/stretchr/testify/assert"
	mock "github.com/stretchr/testify/mock"
	require "github.com/stretchr/testify/require"
	zap "go.uber.org/zap"
	observer "go.uber.org/zap/zaptest/observer"
)

///////////////////////////////////////////////////////////////////////////////
// PROVIDER

const (
	testKey = "SECRET123"

	londonCurrent  = `{"coord":{"lon":-0.13,"lat":51.51},"weather":[{"id":500,"main":"Rain","description":"light rain"}],"main":{"temp":15.2,"feels_like":14.1,"humidity":72,"pressure":1012},"name":"London","cod":200}`
	londonGeocode  = `[{"name":"London","lat":51.5073219,"lon":-0.1276474,"country":"GB","state":"England"}]`
	londonNoAlerts = `{"lat":51.5073,"lon":-0.1276,"timezone":"Europe/London","timezone_offset":3600}`
	londonAlerts   = `{"lat":51.5073,"lon":-0.1276,"alerts":[{"sender_name":"Met Office","event":"Yellow wind warning","start":1694880000,"end":1694966400,"description":"Strong winds expected.","tags":["Wind"]}]}`
)

type response struct {
	status int
	body   string
}

// provider fakes the upstream API, answering by path and recording every request
type provider struct {
	sync.Mutex
	responses map[string]response
	requests  []*url.URL
}

func newProvider(t *testing.T, responses map[string]response) (*provider, *httptest.Server) {
	t.Helper()
	p := &provider{responses: responses}
	server := httptest.NewServer(p)
	t.Cleanup(server.Close)
	return p, server
}

func (p *provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.Lock()
	p.requests = append(p.requests, r.URL)
	resp, exists := p.responses[r.URL.Path]
	p.Unlock()

	if !exists {
		resp = response{http.StatusInternalServerError, "unexpected path " + r.URL.Path}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	io.WriteString(w, resp.body)
}

func (p *provider) Requests() []*url.URL {
	p.Lock()
	defer p.Unlock()
	return append([]*url.URL(nil), p.requests...)
}

func (p *provider) Paths() []string {
	var result []string
	for _, u := range p.Requests() {
		result = append(result, u.Path)
	}
	return result
}

func newClient(t *testing.T, endpoint string, opts ...openweather.Opt) *openweather.Client {
	t.Helper()
	client, err := openweather.New(testKey, append([]openweather.Opt{openweather.OptEndpoint(endpoint)}, opts...)...)
	require.NoError(t, err)
	return client
}

// roundTripper is a mock transport for failures a real server cannot produce
type roundTripper struct {
	mock.Mock
}

func (m *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: configuration

func Test_client_001(t *testing.T) {
	assert := assert.New(t)

	_, err := openweather.New("")
	assert.ErrorIs(err, weather.ErrConfiguration)
	_, err = openweather.New("   ")
	assert.ErrorIs(err, weather.ErrConfiguration)

	client, err := openweather.New(testKey)
	assert.NoError(err)
	assert.NotNil(client)
}

func Test_client_002(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// A client that was never constructed reports a configuration error
	for _, client := range []*openweather.Client{nil, {}} {
		_, err := client.CurrentWeather(ctx, &openweather.CurrentWeatherRequest{City: "London"})
		assert.ErrorIs(err, weather.ErrConfiguration)
		_, err = client.Forecast(ctx, &openweather.ForecastRequest{City: "London"})
		assert.ErrorIs(err, weather.ErrConfiguration)
		_, err = client.Alerts(ctx, &openweather.AlertsRequest{City: "London"})
		assert.ErrorIs(err, weather.ErrConfiguration)
	}
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: validation

func Test_client_003(t *testing.T) {
	p, server := newProvider(t, nil)
	client := newClient(t, server.URL)
	ctx := context.Background()

	for _, city := range []string{"", "   ", "\t"} {
		text, err := client.CurrentWeather(ctx, &openweather.CurrentWeatherRequest{City: city, CountryCode: "GB"})
		assert.NoError(t, err)
		assert.Equal(t, "City must not be empty.", text)

		text, err = client.Forecast(ctx, &openweather.ForecastRequest{City: city, Days: 3})
		assert.NoError(t, err)
		assert.Equal(t, "City must not be empty.", text)

		text, err = client.Alerts(ctx, &openweather.AlertsRequest{City: city})
		assert.NoError(t, err)
		assert.Equal(t, "City must not be empty.", text)
	}

	text, err := client.CurrentWeather(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, "City must not be empty.", text)

	// No provider call was made
	assert.Empty(t, p.Requests())
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: current weather

func Test_current_001(t *testing.T) {
	p, server := newProvider(t, map[string]response{
		"/data/2.5/weather": {http.StatusOK, londonCurrent},
	})
	client := newClient(t, server.URL)

	text, err := client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: " London ", CountryCode: "GB"})
	require.NoError(t, err)
	assert.Equal(t, "Current weather in London,GB: 15.2°C (feels like 14.1°C), humidity 72%, light rain.", text)

	requests := p.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, url.Values{
		"q":     {"London,GB"},
		"appid": {testKey},
		"units": {"metric"},
		"lang":  {"en"},
	}, requests[0].Query())
}

func Test_current_002(t *testing.T) {
	p, server := newProvider(t, map[string]response{
		"/data/2.5/weather": {http.StatusOK, londonCurrent},
	})

	// Configured units and language apply when the call leaves them empty
	client := newClient(t, server.URL, openweather.OptUnits("imperial"), openweather.OptLanguage("fr"))
	text, err := client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
	require.NoError(t, err)
	assert.Equal(t, "Current weather in London: 15.2°F (feels like 14.1°F), humidity 72%, light rain.", text)

	// Per-call values take precedence
	text, err = client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London", Units: "standard", Language: "de"})
	require.NoError(t, err)
	assert.Contains(t, text, "15.2K")

	requests := p.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "imperial", requests[0].Query().Get("units"))
	assert.Equal(t, "fr", requests[0].Query().Get("lang"))
	assert.Equal(t, "standard", requests[1].Query().Get("units"))
	assert.Equal(t, "de", requests[1].Query().Get("lang"))
}

func Test_current_003(t *testing.T) {
	tests := []struct {
		name   string
		resp   response
		expect string
	}{
		{"not found", response{404, `{"cod":"404","message":"city not found"}`}, "City not found. Check the city name and country code."},
		{"not found in body", response{400, `{"cod":"400","message":"city not found"}`}, "City not found. Check the city name and country code."},
		{"unauthorized", response{401, `{"cod":401,"message":"Invalid API key"}`}, "API key invalid or missing."},
		{"forbidden", response{403, ``}, "API key invalid or missing."},
		{"rate limited", response{429, `{"cod":429}`}, "Rate limit exceeded, try again later."},
		{"server error", response{503, `upstream down`}, "Error 503: upstream down"},
		{"not json", response{200, `<html>`}, "Unable to parse weather data."},
		{"missing field", response{200, `{"main":{"temp":1,"humidity":2},"weather":[{"description":"x"}]}`}, "Unable to parse weather data."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newProvider(t, map[string]response{"/data/2.5/weather": tt.resp})
			text, err := newClient(t, server.URL).CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
			assert.NoError(t, err)
			assert.Equal(t, tt.expect, text)
		})
	}
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: forecast

func forecastBody(dates ...string) string {
	entries := make([]string, 0, len(dates))
	for _, dt := range dates {
		entries = append(entries, fmt.Sprintf(`{"main":{"temp":10.5},"weather":[{"description":"clear sky"}],"dt_txt":%q}`, dt))
	}
	return fmt.Sprintf(`{"cod":"200","cnt":%d,"list":[%s]}`, len(dates), strings.Join(entries, ","))
}

func Test_forecast_001(t *testing.T) {
	body := forecastBody(
		"2024-03-01 09:00:00", "2024-03-01 12:00:00",
		"2024-03-02 00:00:00", "2024-03-03 00:00:00",
		"2024-03-04 00:00:00", "2024-03-05 00:00:00",
		"2024-03-06 00:00:00", "2024-03-07 00:00:00",
	)
	_, server := newProvider(t, map[string]response{"/data/2.5/forecast": {200, body}})
	client := newClient(t, server.URL)

	lines := func(days int) int {
		text, err := client.Forecast(context.Background(), &openweather.ForecastRequest{City: "Oslo", Days: days})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(text, "Forecast for Oslo:"), text)
		return strings.Count(text, "\n")
	}

	// Out-of-range values are clamped, never rejected
	assert.Equal(t, 1, lines(-3))
	assert.Equal(t, 1, lines(0))
	assert.Equal(t, 1, lines(1))
	assert.Equal(t, 3, lines(3))
	assert.Equal(t, 5, lines(5))
	assert.Equal(t, 5, lines(6))
	assert.Equal(t, 5, lines(100))
}

func Test_forecast_002(t *testing.T) {
	p, server := newProvider(t, map[string]response{"/data/2.5/forecast": {200, `{"list":[
		{"dt_txt":"2024-03-01 21:00:00","main":{"temp":3},"weather":[{"description":"fog"}]}
	]}`}})
	client := newClient(t, server.URL)

	text, err := client.Forecast(context.Background(), &openweather.ForecastRequest{City: "Oslo", CountryCode: "NO", Days: 3})
	require.NoError(t, err)
	assert.Equal(t, "Forecast for Oslo,NO:\n2024-03-01: 3°C, fog", text)

	requests := p.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/data/2.5/forecast", requests[0].Path)
	assert.Equal(t, "Oslo,NO", requests[0].Query().Get("q"))
	assert.False(t, requests[0].Query().Has("cnt"))
}

func Test_forecast_003(t *testing.T) {
	tests := []struct {
		name   string
		resp   response
		expect string
	}{
		{"not found", response{404, `{"cod":"404","message":"city not found"}`}, "City not found. Check the city name and country code."},
		{"unauthorized", response{401, ``}, "API key invalid or missing."},
		{"rate limited", response{429, ``}, "Rate limit exceeded, try again later."},
		{"missing list", response{200, `{"cod":"200"}`}, "Unable to parse forecast data."},
		{"empty list", response{200, `{"list":[]}`}, "No forecast data available for Oslo."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newProvider(t, map[string]response{"/data/2.5/forecast": tt.resp})
			text, err := newClient(t, server.URL).Forecast(context.Background(), &openweather.ForecastRequest{City: "Oslo", Days: 3})
			assert.NoError(t, err)
			assert.Equal(t, tt.expect, text)
		})
	}
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: alerts

func Test_alerts_001(t *testing.T) {
	p, server := newProvider(t, map[string]response{
		"/geo/1.0/direct":   {200, londonGeocode},
		"/data/3.0/onecall": {200, londonNoAlerts},
	})
	client := newClient(t, server.URL)

	// The resolved name comes from the provider, not the caller
	text, err := client.Alerts(context.Background(), &openweather.AlertsRequest{City: "london"})
	require.NoError(t, err)
	assert.Equal(t, "No active alerts for London,GB.", text)

	requests := p.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "london", requests[0].Query().Get("q"))
	assert.Equal(t, "1", requests[0].Query().Get("limit"))
	assert.Equal(t, "51.5073219", requests[1].Query().Get("lat"))
	assert.Equal(t, "-0.1276474", requests[1].Query().Get("lon"))
	assert.Equal(t, "current,minutely,hourly,daily", requests[1].Query().Get("exclude"))
	assert.Equal(t, testKey, requests[1].Query().Get("appid"))
}

func Test_alerts_002(t *testing.T) {
	_, server := newProvider(t, map[string]response{
		"/geo/1.0/direct":   {200, londonGeocode},
		"/data/3.0/onecall": {200, londonAlerts},
	})
	text, err := newClient(t, server.URL).Alerts(context.Background(), &openweather.AlertsRequest{City: "London", CountryCode: "GB"})
	require.NoError(t, err)
	assert.Equal(t, "Active alerts for London,GB:\n\nYellow wind warning (Met Office)\nFrom: 2023-09-16 16:00 UTC\nUntil: 2023-09-17 16:00 UTC\nStrong winds expected.", text)
}

func Test_alerts_003(t *testing.T) {
	tests := []struct {
		name    string
		geocode response
		onecall response
		expect  string
		paths   []string
	}{
		{"geocode empty", response{200, `[]`}, response{200, londonNoAlerts}, "City not found. Check the city name and country code.", []string{"/geo/1.0/direct"}},
		{"geocode not found", response{404, ``}, response{200, londonNoAlerts}, "City not found. Check the city name and country code.", []string{"/geo/1.0/direct"}},
		{"geocode unusable", response{200, `{"name":"London"}`}, response{200, londonNoAlerts}, "Unable to resolve location.", []string{"/geo/1.0/direct"}},
		{"geocode no coordinates", response{200, `[{"name":"London"}]`}, response{200, londonNoAlerts}, "Unable to resolve location.", []string{"/geo/1.0/direct"}},
		{"geocode unauthorized", response{401, ``}, response{200, londonNoAlerts}, "API key invalid or missing.", []string{"/geo/1.0/direct"}},
		{"onecall unauthorized", response{200, londonGeocode}, response{401, `{"cod":401}`}, "Access denied: the alerts endpoint requires a One Call API 3.0 subscription, or the API key is invalid.", []string{"/geo/1.0/direct", "/data/3.0/onecall"}},
		{"onecall forbidden", response{200, londonGeocode}, response{403, ``}, "Access denied: the alerts endpoint requires a One Call API 3.0 subscription, or the API key is invalid.", []string{"/geo/1.0/direct", "/data/3.0/onecall"}},
		{"onecall rate limited", response{200, londonGeocode}, response{429, ``}, "Rate limit exceeded, try again later.", []string{"/geo/1.0/direct", "/data/3.0/onecall"}},
		{"onecall not json", response{200, londonGeocode}, response{200, `oops`}, "Unable to parse alerts data.", []string{"/geo/1.0/direct", "/data/3.0/onecall"}},
		{"onecall malformed alerts", response{200, londonGeocode}, response{200, `{"alerts":"none"}`}, "No active alerts for London,GB.", []string{"/geo/1.0/direct", "/data/3.0/onecall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, server := newProvider(t, map[string]response{
				"/geo/1.0/direct":   tt.geocode,
				"/data/3.0/onecall": tt.onecall,
			})
			text, err := newClient(t, server.URL).Alerts(context.Background(), &openweather.AlertsRequest{City: "London"})
			assert.NoError(t, err)
			assert.Equal(t, tt.expect, text)
			assert.Equal(t, tt.paths, p.Paths())
		})
	}
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: transport failures

func Test_transport_001(t *testing.T) {
	// A slow provider exceeds the configured timeout
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, openweather.OptTimeout(50*time.Millisecond))
	text, err := client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Provider timeout, try again.", text)
}

func Test_transport_002(t *testing.T) {
	// A cancelled deadline on the context is also a timeout
	_, server := newProvider(t, map[string]response{"/data/2.5/weather": {200, londonCurrent}})
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	text, err := newClient(t, server.URL).CurrentWeather(ctx, &openweather.CurrentWeatherRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Provider timeout, try again.", text)
}

func Test_transport_003(t *testing.T) {
	// Connection refused
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := newClient(t, endpoint)
	text, err := client.Forecast(context.Background(), &openweather.ForecastRequest{City: "London", Days: 3})
	assert.NoError(t, err)
	assert.Equal(t, "Network error contacting the weather provider.", text)

	text, err = client.Alerts(context.Background(), &openweather.AlertsRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Network error contacting the weather provider.", text)
}

func Test_transport_004(t *testing.T) {
	transport := new(roundTripper)
	transport.On("RoundTrip", mock.Anything).Return(nil, &net.DNSError{Err: "no such host", Name: "api.example", IsNotFound: true}).Once()
	transport.On("RoundTrip", mock.Anything).Return(nil, errors.New("boom")).Once()

	client := newClient(t, "http://api.example", openweather.OptTransport(transport))

	text, err := client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Network error contacting the weather provider.", text)

	text, err = client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Unexpected error contacting the weather provider.", text)

	transport.AssertNumberOfCalls(t, "RoundTrip", 2)
}

func Test_transport_005(t *testing.T) {
	// A panic in the transport is recovered into the generic message
	transport := new(roundTripper)
	transport.On("RoundTrip", mock.Anything).Run(func(mock.Arguments) {
		panic("transport exploded")
	})

	client := newClient(t, "http://api.example", openweather.OptTransport(transport))
	text, err := client.Alerts(context.Background(), &openweather.AlertsRequest{City: "London"})
	assert.NoError(t, err)
	assert.Equal(t, "Unexpected error contacting the weather provider.", text)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS: logging

func Test_logging_001(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client := newClient(t, endpoint, openweather.OptLogger(zap.New(core)))
	_, err := client.CurrentWeather(context.Background(), &openweather.CurrentWeatherRequest{City: "London"})
	require.NoError(t, err)
	require.NotZero(t, logs.Len())

	// The key never reaches the log, but the masked parameter does
	var masked bool
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, testKey)
		for key, value := range entry.ContextMap() {
			if s, ok := value.(string); ok {
				assert.NotContains(t, s, testKey, key)
				masked = masked || strings.Contains(s, "appid=***")
			}
		}
	}
	assert.True(t, masked)
}
