package mcp

import (
	// Packages
	weather "github.com/mutablelogic/go-weather"
	tool "github.com/mutablelogic/go-weather/pkg/tool"
	zap "go.uber.org/zap"
)

/////////////////////////////////////////////////////////////////////////////////
// TYPES

type Opt func(*Server) error

/////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func (server *Server) apply(opts ...Opt) error {
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return err
		}
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithToolKit sets the tools which the server exposes
func WithToolKit(v *tool.Toolkit) Opt {
	return func(server *Server) error {
		if v == nil {
			return weather.ErrBadParameter.With("toolkit cannot be nil")
		}
		server.toolkit = v
		return nil
	}
}

func WithLogger(v *zap.Logger) Opt {
	return func(server *Server) error {
		if v != nil {
			server.log = v
		}
		return nil
	}
}

// WithInstructions sets the usage hint returned to clients on initialize
func WithInstructions(v string) Opt {
	return func(server *Server) error {
		server.instructions = v
		return nil
	}
}
