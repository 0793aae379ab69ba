package openweather

import (
	"context"
	"encoding/json"

	// Packages
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// GeocodeResult is the provider's best match for a location, with the
// name and country as the provider spells them
type GeocodeResult struct {
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`
	ResolvedName string  `json:"name"`
}

type geocodeCandidate struct {
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// geocode resolves a location to coordinates. An empty array is reported as
// city not found, and anything else unusable (including null) is unresolved.
func (c *Client) geocode(ctx context.Context, loc Location, units, lang string) outcome[GeocodeResult] {
	body := c.send(ctx, opGeocode, c.geocodeURL(loc, units, lang))
	return then(body, func(data []byte) outcome[GeocodeResult] {
		return c.parseGeocode(data, loc)
	})
}

func (c *Client) parseGeocode(data []byte, loc Location) outcome[GeocodeResult] {
	var candidates []geocodeCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		c.log.Warn("unable to parse geocoding response", zap.Stringer("location", loc), zap.Error(err))
		return failure[GeocodeResult](msgUnresolved, 0)
	}
	if candidates == nil {
		c.log.Warn("empty geocoding response", zap.Stringer("location", loc))
		return failure[GeocodeResult](msgUnresolved, 0)
	} else if len(candidates) == 0 {
		return failure[GeocodeResult](msgCityNotFound, 0)
	}

	first := candidates[0]
	if first.Lat == nil || first.Lon == nil || first.Name == "" {
		c.log.Warn("incomplete geocoding candidate", zap.Stringer("location", loc))
		return failure[GeocodeResult](msgUnresolved, 0)
	}
	return success(GeocodeResult{
		Latitude:     *first.Lat,
		Longitude:    *first.Lon,
		ResolvedName: Location{City: first.Name, CountryCode: first.Country}.String(),
	})
}
