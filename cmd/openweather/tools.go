package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	weather "github.com/mutablelogic/go-weather"
	openweather "github.com/mutablelogic/go-weather/pkg/openweather"
	tool "github.com/mutablelogic/go-weather/pkg/tool"
	version "github.com/mutablelogic/go-weather/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ToolCommands struct {
	ListTools ListToolsCommand `cmd:"" name:"tools" help:"List available tools." group:"TOOL"`
	CallTool  CallToolCommand  `cmd:"" name:"call" help:"Call a tool through an MCP server subprocess." group:"TOOL"`
}

type ListToolsCommand struct {
	JSON bool `name:"json" help:"Output as JSON, with input schemas"`
}

type CallToolCommand struct {
	Name string            `arg:"" name:"name" help:"Tool name"`
	Args map[string]string `name:"arg" short:"a" placeholder:"KEY=VALUE" help:"Tool argument, typed from the tool input schema"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ListToolsCommand) Run(ctx *Globals) error {
	toolkit, err := describeTools()
	if err != nil {
		return err
	}

	if cmd.JSON {
		type toolInfo struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Schema      any    `json:"input_schema,omitempty"`
		}
		var output []toolInfo
		for _, item := range toolkit.Tools() {
			output = append(output, toolInfo{
				Name:        item.Name(),
				Description: item.Description(),
				Schema:      toolkit.Schema(item.Name()),
			})
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		for _, item := range toolkit.Tools() {
			fmt.Printf("%-25s %s\n", item.Name(), item.Description())
		}
	}

	return nil
}

// Run spawns this executable as an MCP server and calls one tool on it
func (cmd *CallToolCommand) Run(ctx *Globals) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	// Arguments are typed from the tool schema
	toolkit, err := describeTools()
	if err != nil {
		return err
	}
	args := toolArguments(toolkit.Schema(cmd.Name), cmd.Args)

	// Flags and environment are passed on so the server sees the same
	// configuration
	server := exec.CommandContext(ctx.ctx, exe, append(ctx.Flags(), "mcp")...)
	server.Env = ctx.Environ()
	server.Stderr = os.Stderr

	// Connect
	client := sdk.NewClient(&sdk.Implementation{
		Name:    ctx.execName + "-client",
		Version: version.Version(),
	}, nil)
	session, err := client.Connect(ctx.ctx, &sdk.CommandTransport{Command: server}, nil)
	if err != nil {
		return err
	}
	defer session.Close()

	// Call the tool
	result, err := session.CallTool(ctx.ctx, &sdk.CallToolParams{
		Name:      cmd.Name,
		Arguments: args,
	})
	if err != nil {
		return err
	}

	// Print the text
	var text []string
	for _, content := range result.Content {
		if v, ok := content.(*sdk.TextContent); ok {
			text = append(text, v.Text)
		}
	}
	if result.IsError {
		return weather.ErrBadParameter.With(strings.Join(text, "\n"))
	}
	fmt.Println(strings.Join(text, "\n"))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// describeTools returns the weather tools for their names and schemas.
// No API key is needed to describe them.
func describeTools() (*tool.Toolkit, error) {
	tools, err := openweather.NewTools("-")
	if err != nil {
		return nil, err
	}
	return tool.NewToolkit(tool.WithTools(tools...))
}

// toolArguments converts values for integer, number and boolean schema
// properties. Everything else, and values which do not parse, stay strings.
func toolArguments(schema *jsonschema.Schema, args map[string]string) map[string]any {
	result := make(map[string]any, len(args))
	for key, value := range args {
		result[key] = value
		if schema == nil || schema.Properties[key] == nil {
			continue
		}
		switch schema.Properties[key].Type {
		case "integer":
			if n, err := strconv.Atoi(value); err == nil {
				result[key] = n
			}
		case "number":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				result[key] = f
			}
		case "boolean":
			if b, err := strconv.ParseBool(value); err == nil {
				result[key] = b
			}
		}
	}
	return result
}
