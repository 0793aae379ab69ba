package openweather

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Location is a city with an optional country code
type Location struct {
	City        string
	CountryCode string
}

// CurrentWeatherRequest defines the input for the current weather query
type CurrentWeatherRequest struct {
	City        string `json:"city" jsonschema:"City name (e.g., 'London')"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"ISO 3166 country code (e.g., 'GB')"`
	Units       string `json:"units,omitempty" jsonschema:"Units of measurement: metric, imperial or standard"`
	Language    string `json:"lang,omitempty" jsonschema:"Language code for descriptions (e.g., 'en', 'fr', 'es')"`
}

// ForecastRequest defines the input for the daily forecast query
type ForecastRequest struct {
	City        string `json:"city" jsonschema:"City name (e.g., 'London')"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"ISO 3166 country code (e.g., 'GB')"`
	Days        int    `json:"days,omitempty" jsonschema:"Number of days to forecast (1-5, default 3)"`
	Units       string `json:"units,omitempty" jsonschema:"Units of measurement: metric, imperial or standard"`
	Language    string `json:"lang,omitempty" jsonschema:"Language code for descriptions (e.g., 'en', 'fr', 'es')"`
}

// AlertsRequest defines the input for the severe weather alerts query
type AlertsRequest struct {
	City        string `json:"city" jsonschema:"City name (e.g., 'London')"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"ISO 3166 country code (e.g., 'GB')"`
	Units       string `json:"units,omitempty" jsonschema:"Units of measurement: metric, imperial or standard"`
	Language    string `json:"lang,omitempty" jsonschema:"Language code for descriptions (e.g., 'en', 'fr', 'es')"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	MinDays     = 1
	MaxDays     = 5
	DefaultDays = 3
)

const (
	pathCurrent  = "/data/2.5/weather"
	pathForecast = "/data/2.5/forecast"
	pathGeocode  = "/geo/1.0/direct"
	pathOneCall  = "/data/3.0/onecall"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewLocation trims both parts and returns false when the city is empty
func NewLocation(city, countryCode string) (Location, bool) {
	loc := Location{
		City:        strings.TrimSpace(city),
		CountryCode: strings.TrimSpace(countryCode),
	}
	return loc, loc.City != ""
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (l Location) String() string {
	if l.CountryCode == "" {
		return l.City
	}
	return l.City + "," + l.CountryCode
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (r *CurrentWeatherRequest) location() (Location, string) {
	if r == nil {
		return Location{}, msgEmptyCity
	}
	return validLocation(r.City, r.CountryCode)
}

func (r *ForecastRequest) location() (Location, string) {
	if r == nil {
		return Location{}, msgEmptyCity
	}
	return validLocation(r.City, r.CountryCode)
}

func (r *AlertsRequest) location() (Location, string) {
	if r == nil {
		return Location{}, msgEmptyCity
	}
	return validLocation(r.City, r.CountryCode)
}

func validLocation(city, countryCode string) (Location, string) {
	if loc, ok := NewLocation(city, countryCode); !ok {
		return Location{}, msgEmptyCity
	} else {
		return loc, ""
	}
}

// clampDays keeps the forecast horizon within the range the provider covers
func clampDays(days int) int {
	return min(max(days, MinDays), MaxDays)
}

// defaults applies the per-call value, then the configured value
func (c *Client) defaults(units, lang string) (string, string) {
	if units = strings.TrimSpace(units); units == "" {
		units = c.units
	}
	if lang = strings.TrimSpace(lang); lang == "" {
		lang = c.lang
	}
	return units, lang
}

func (c *Client) currentURL(loc Location, units, lang string) string {
	return c.url(pathCurrent, url.Values{"q": {loc.String()}}, units, lang)
}

func (c *Client) forecastURL(loc Location, units, lang string) string {
	return c.url(pathForecast, url.Values{"q": {loc.String()}}, units, lang)
}

func (c *Client) geocodeURL(loc Location, units, lang string) string {
	return c.url(pathGeocode, url.Values{"q": {loc.String()}, "limit": {"1"}}, units, lang)
}

func (c *Client) alertsURL(place GeocodeResult, units, lang string) string {
	return c.url(pathOneCall, url.Values{
		"lat":     {formatCoordinate(place.Latitude)},
		"lon":     {formatCoordinate(place.Longitude)},
		"exclude": {"current,minutely,hourly,daily"},
	}, units, lang)
}

// url returns an absolute URL with the key, units and language set
func (c *Client) url(path string, query url.Values, units, lang string) string {
	query.Set("appid", c.key)
	query.Set("units", units)
	query.Set("lang", lang)
	return fmt.Sprint(c.endpoint, path, "?", query.Encode())
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
