package tool

import (
	// Packages
	zap "go.uber.org/zap"
)

/////////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*Toolkit) error

/////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func (tk *Toolkit) apply(opts ...Opt) error {
	for _, opt := range opts {
		if err := opt(tk); err != nil {
			return err
		}
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithTools registers tools with the toolkit
func WithTools(tools ...Tool) Opt {
	return func(tk *Toolkit) error {
		return tk.Register(tools...)
	}
}

// WithLogger sets the logger for tool calls. Each call is logged with
// its own call_id.
func WithLogger(v *zap.Logger) Opt {
	return func(tk *Toolkit) error {
		if v != nil {
			tk.log = v
		}
		return nil
	}
}
