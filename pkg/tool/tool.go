package tool

import (
	"context"
	"encoding/json"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Tool is an operation which an agent can call by name, with JSON input
// described by a schema. A nil schema accepts any input.
type Tool interface {
	Name() string
	Description() string
	Schema() (*jsonschema.Schema, error)

	// Run the tool with the input, which is empty when the caller sent none
	Run(ctx context.Context, input json.RawMessage) (any, error)
}
