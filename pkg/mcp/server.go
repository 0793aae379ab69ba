// Implements an MCP server which exposes a toolkit to agents, based on the
// MCP tools protocol:
// https://modelcontextprotocol.io/specification/2025-06-18/server/tools
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	// Packages
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	weather "github.com/mutablelogic/go-weather"
	tool "github.com/mutablelogic/go-weather/pkg/tool"
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////
// TYPES

type Server struct {
	name         string
	version      string
	instructions string
	toolkit      *tool.Toolkit
	log          *zap.Logger
	server       *sdk.Server
}

///////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Create a new MCP server with the given name and version. Every tool in
// the toolkit is registered with the server.
func New(name, version string, opts ...Opt) (*Server, error) {
	self := &Server{
		name:    name,
		version: version,
		log:     zap.NewNop(),
	}
	if err := self.apply(opts...); err != nil {
		return nil, err
	}

	self.server = sdk.NewServer(&sdk.Implementation{
		Name:    self.name,
		Version: self.version,
	}, &sdk.ServerOptions{
		Instructions: self.instructions,
	})

	// Register the tools
	if self.toolkit != nil {
		for _, t := range self.toolkit.Tools() {
			schema := self.toolkit.Schema(t.Name())
			if schema == nil {
				return nil, weather.ErrInternalServerError.Withf("schema for %q is missing", t.Name())
			}
			self.server.AddTool(&sdk.Tool{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: schema,
			}, self.handler(t.Name()))
		}
	}

	// Return success
	return self, nil
}

///////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run the server on the transport until the client disconnects or the
// context is done
func (server *Server) Run(ctx context.Context, transport sdk.Transport) error {
	server.log.Info("mcp server started", zap.String("name", server.name), zap.String("version", server.version))
	defer server.log.Info("mcp server stopped")
	if err := server.server.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Implements an MCP server with standard input and output,
// and run in the foreground until the context is done.
func (server *Server) RunStdio(ctx context.Context) error {
	return server.Run(ctx, &sdk.StdioTransport{})
}

// Connect a single session on the transport and return without blocking
func (server *Server) Connect(ctx context.Context, transport sdk.Transport) (*sdk.ServerSession, error) {
	return server.server.Connect(ctx, transport, nil)
}

///////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// handler runs a tool through the toolkit, which validates and logs the
// call. Failures are returned as tool errors for the agent rather than
// protocol errors.
func (server *Server) handler(name string) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		result, err := server.toolkit.Run(ctx, name, args)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(result)
	}
}

func textResult(result any) (*sdk.CallToolResult, error) {
	var text string
	switch v := result.(type) {
	case string:
		text = v
	case nil:
		text = ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return errorResult(err), nil
		}
		text = string(data)
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}, nil
}

func errorResult(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
	}
}
