package openweather

import (
	"fmt"
	"net/http"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	msgEmptyCity        = "City must not be empty."
	msgCityNotFound     = "City not found. Check the city name and country code."
	msgAccessDenied     = "Access denied: the alerts endpoint requires a One Call API 3.0 subscription, or the API key is invalid."
	msgInvalidKey       = "API key invalid or missing."
	msgRateLimited      = "Rate limit exceeded, try again later."
	msgTimeout          = "Provider timeout, try again."
	msgNetwork          = "Network error contacting the weather provider."
	msgUnexpected       = "Unexpected error contacting the weather provider."
	msgParseWeather     = "Unable to parse weather data."
	msgParseForecast    = "Unable to parse forecast data."
	msgParseAlerts      = "Unable to parse alerts data."
	msgUnresolved       = "Unable to resolve location."
	msgNoAlertsTemplate = "No active alerts for %s."
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// normalize maps a non-success provider response to a user-facing message.
// The hint only matters for 401 and 403, where the One Call endpoint needs
// a separate subscription.
func normalize(status int, body string, hint operation) string {
	switch {
	case status == http.StatusNotFound, strings.Contains(strings.ToLower(body), "city not found"):
		return msgCityNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		if hint == opAlerts {
			return msgAccessDenied
		}
		return msgInvalidKey
	case status == http.StatusTooManyRequests:
		return msgRateLimited
	default:
		return fmt.Sprintf("Error %d: %s", status, body)
	}
}
