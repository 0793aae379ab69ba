package openweather

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	// Packages
	weather "github.com/mutablelogic/go-weather"
	trace "go.opentelemetry.io/otel/trace"
	zap "go.uber.org/zap"
)

/////////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*Client) error

/////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func (c *Client) apply(opts ...Opt) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptEndpoint sets the provider base URL. An empty value keeps the default.
func OptEndpoint(value string) Opt {
	return func(c *Client) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		if u, err := url.Parse(value); err != nil || u.Scheme == "" || u.Host == "" {
			return weather.ErrBadParameter.Withf("invalid endpoint %q", value)
		}
		c.endpoint = strings.TrimSuffix(value, "/")
		return nil
	}
}

// OptUnits sets the configured units (metric, imperial or standard).
// An empty value keeps the default.
func OptUnits(value string) Opt {
	return func(c *Client) error {
		if value = strings.TrimSpace(value); value != "" {
			c.units = value
		}
		return nil
	}
}

// OptLanguage sets the configured language for descriptions.
// An empty value keeps the default.
func OptLanguage(value string) Opt {
	return func(c *Client) error {
		if value = strings.TrimSpace(value); value != "" {
			c.lang = value
		}
		return nil
	}
}

// OptTimeout sets the timeout applied to each provider call
func OptTimeout(value time.Duration) Opt {
	return func(c *Client) error {
		if value < 0 {
			return weather.ErrBadParameter.Withf("invalid timeout %v", value)
		} else if value > 0 {
			c.timeout = value
		}
		return nil
	}
}

// OptLogger sets the logger. Request URLs are always redacted before logging.
func OptLogger(value *zap.Logger) Opt {
	return func(c *Client) error {
		if value != nil {
			c.log = value
		}
		return nil
	}
}

// OptTracer sets the tracer used to open a span per provider call
func OptTracer(value trace.Tracer) Opt {
	return func(c *Client) error {
		if value != nil {
			c.tracer = value
		}
		return nil
	}
}

// OptTransport replaces the HTTP round tripper
func OptTransport(value http.RoundTripper) Opt {
	return func(c *Client) error {
		c.transport = value
		return nil
	}
}
