package main

import (
	"strings"

	// Packages
	mcp "github.com/mutablelogic/go-weather/pkg/mcp"
	version "github.com/mutablelogic/go-weather/pkg/version"
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type MCPCommands struct {
	Server MCPServerCommand `cmd:"" name:"mcp" help:"Start an MCP server on stdin and stdout." group:"SERVER"`
}

type MCPServerCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const instructions = "Weather tools backed by OpenWeatherMap. Every tool takes a city and an optional ISO 3166 country code. Results, including errors such as an unknown city, are returned as text."

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *MCPServerCommand) Run(ctx *Globals) error {
	// Create toolkit with tools
	toolkit, err := ctx.Toolkit()
	if err != nil {
		return err
	}

	// Log tools that will be exposed via MCP
	var toolNames []string
	for _, t := range toolkit.Tools() {
		toolNames = append(toolNames, t.Name())
	}
	ctx.log.Info("starting mcp server", zap.String("tools", strings.Join(toolNames, ", ")))

	// Create MCP server
	server, err := mcp.New(ctx.execName, version.Version(),
		mcp.WithToolKit(toolkit),
		mcp.WithLogger(ctx.log),
		mcp.WithInstructions(instructions),
	)
	if err != nil {
		return err
	}

	// Run the server on stdio
	return server.RunStdio(ctx.ctx)
}
