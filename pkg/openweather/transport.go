package openweather

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	// Packages
	resty "github.com/go-resty/resty/v2"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// restyLogger adapts zap to resty, redacting any URL in the message
type restyLogger struct {
	log *zap.SugaredLogger
}

var _ resty.Logger = (*restyLogger)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	keyParam = "appid="
	keyMask  = "***"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newRestyLogger(log *zap.Logger) *restyLogger {
	return &restyLogger{log: log.Sugar()}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// send issues a single GET and returns the body of a 2xx response. Every
// other condition, including a non-2xx status, becomes a failure message.
func (c *Client) send(ctx context.Context, op operation, rawurl string) (result outcome[[]byte]) {
	redacted := RedactURL(rawurl)

	// Otel span
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "openweather."+op.String(),
		attribute.String("operation", op.String()),
		attribute.String("url", redacted),
	)
	defer func() { endSpan(result.err()) }()

	now := time.Now()
	response, err := c.http.R().SetContext(ctx).Get(rawurl)
	if err != nil {
		message := transportMessage(err)
		c.log.Warn("provider request failed",
			zap.Stringer("operation", op),
			zap.String("url", redacted),
			zap.String("error", RedactURL(err.Error())),
			zap.String("result", message),
		)
		return failure[[]byte](message, 0)
	}

	status, body := response.StatusCode(), response.Body()
	c.log.Debug("provider response",
		zap.Stringer("operation", op),
		zap.String("url", redacted),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(now)),
	)
	if !response.IsSuccess() {
		return failure[[]byte](normalize(status, string(body), op), status)
	}

	// Return success
	return success(body)
}

// transportMessage classifies an error from the HTTP client
func transportMessage(err error) string {
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return msgTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		return msgNetwork
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return msgNetwork
	default:
		return msgUnexpected
	}
}

// RedactURL masks the value of the API key parameter, leaving everything
// from the next '&' onwards unchanged
func RedactURL(value string) string {
	var result strings.Builder
	for {
		i := strings.Index(value, keyParam)
		if i < 0 {
			result.WriteString(value)
			break
		}
		result.WriteString(value[:i+len(keyParam)])
		result.WriteString(keyMask)
		value = value[i+len(keyParam):]
		if j := strings.IndexAny(value, "&\" "); j >= 0 {
			value = value[j:]
		} else {
			value = ""
		}
	}
	return result.String()
}

///////////////////////////////////////////////////////////////////////////////
// RESTY LOGGER

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(RedactURL(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(RedactURL(fmt.Sprintf(format, v...)))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(RedactURL(fmt.Sprintf(format, v...)))
}
