package openweather

import (
	"encoding/json"
	"math"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// fields gives typed access to a decoded JSON object, returning the zero
// value when a key is absent or holds another type
type fields map[string]any

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// asFields returns an empty set of fields when v is not a JSON object
func asFields(v any) fields {
	if m, ok := v.(map[string]any); ok {
		return fields(m)
	}
	return fields{}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (f fields) String(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func (f fields) Int64(key string) int64 {
	switch v := f[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if n, err := v.Float64(); err == nil {
			return int64(n)
		}
	}
	return 0
}

func (f fields) Float64(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return n
		}
	}
	return 0
}

func (f fields) Slice(key string) ([]any, bool) {
	v, ok := f[key].([]any)
	return v, ok
}
