package openweather

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// Packages
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Alert is a severe weather warning issued for a location. Start and End
// are zero when the provider did not report them.
type Alert struct {
	Sender      string    `json:"sender"`
	Event       string    `json:"event"`
	Start       time.Time `json:"start,omitzero"`
	End         time.Time `json:"end,omitzero"`
	Description string    `json:"description"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	alertTimeFormat = "2006-01-02 15:04 UTC"
	alertTimeAbsent = "unknown"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) parseAlerts(data []byte, place GeocodeResult) outcome[string] {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		c.log.Warn("unable to parse alerts", zap.String("location", place.ResolvedName), zap.Error(err))
		return failure[string](msgParseAlerts, 0)
	}
	if _, ok := document.(map[string]any); !ok {
		c.log.Warn("unable to parse alerts", zap.String("location", place.ResolvedName), zap.String("error", "not an object"))
		return failure[string](msgParseAlerts, 0)
	}
	return success(renderAlerts(decodeAlerts(asFields(document)), place.ResolvedName))
}

// decodeAlerts never fails: malformed entries yield empty fields
func decodeAlerts(document fields) []Alert {
	entries, _ := document.Slice("alerts")
	result := make([]Alert, 0, len(entries))
	for _, entry := range entries {
		f := asFields(entry)
		result = append(result, Alert{
			Sender:      f.String("sender_name"),
			Event:       f.String("event"),
			Start:       unixTime(f.Int64("start")),
			End:         unixTime(f.Int64("end")),
			Description: f.String("description"),
		})
	}
	return result
}

func renderAlerts(alerts []Alert, name string) string {
	if len(alerts) == 0 {
		return fmt.Sprintf(msgNoAlertsTemplate, name)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active alerts for %s:", name)
	for _, alert := range alerts {
		fmt.Fprintf(&result, "\n\n%s (%s)\nFrom: %s\nUntil: %s\n%s",
			alert.Event, alert.Sender, formatAlertTime(alert.Start), formatAlertTime(alert.End), strings.TrimSpace(alert.Description))
	}
	return result.String()
}

func unixTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func formatAlertTime(t time.Time) string {
	if t.IsZero() {
		return alertTimeAbsent
	}
	return t.UTC().Format(alertTimeFormat)
}
