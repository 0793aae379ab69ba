package tool

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"time"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	uuid "github.com/google/uuid"
	weather "github.com/mutablelogic/go-weather"
	types "github.com/mutablelogic/go-server/pkg/types"
	zap "go.uber.org/zap"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Toolkit holds tools by name, with their schemas resolved once when the
// tool is registered
type Toolkit struct {
	log   *zap.Logger
	tools map[string]*entry
}

type entry struct {
	Tool
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewToolkit returns a toolkit with the options applied. Returns an error
// if a tool cannot be registered.
func NewToolkit(opts ...Opt) (*Toolkit, error) {
	tk := &Toolkit{
		log:   zap.NewNop(),
		tools: make(map[string]*entry),
	}
	if err := tk.apply(opts...); err != nil {
		return nil, err
	}
	return tk, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Register adds tools to the toolkit. A tool is rejected when it is nil,
// its name is not an identifier or is already taken, or its schema cannot
// be resolved.
func (tk *Toolkit) Register(tools ...Tool) error {
	for _, item := range tools {
		if item == nil {
			return weather.ErrBadParameter.With("tool cannot be nil")
		}
		name := item.Name()
		if !types.IsIdentifier(name) {
			return weather.ErrBadParameter.Withf("invalid tool name: %q", name)
		}
		if _, exists := tk.tools[name]; exists {
			return weather.ErrBadParameter.Withf("duplicate tool name: %q", name)
		}
		e, err := newEntry(item)
		if err != nil {
			return err
		}
		tk.tools[name] = e
	}
	return nil
}

// Tools returns the tools sorted by name
func (tk *Toolkit) Tools() []Tool {
	result := make([]Tool, 0, len(tk.tools))
	for _, name := range slices.Sorted(maps.Keys(tk.tools)) {
		result = append(result, tk.tools[name].Tool)
	}
	return result
}

// Lookup returns a tool by name, or nil
func (tk *Toolkit) Lookup(name string) Tool {
	if e, exists := tk.tools[name]; exists {
		return e.Tool
	}
	return nil
}

// Schema returns the input schema captured when the tool was registered,
// or nil if the tool does not exist or has no schema
func (tk *Toolkit) Schema(name string) *jsonschema.Schema {
	if e, exists := tk.tools[name]; exists {
		return e.schema
	}
	return nil
}

// Run validates the input against the tool schema and runs the tool. The
// input may be json.RawMessage, []byte, nil or any value which marshals
// to JSON. Every call is logged with a call_id and its duration.
func (tk *Toolkit) Run(ctx context.Context, name string, input any) (any, error) {
	e, exists := tk.tools[name]
	if !exists {
		return nil, weather.ErrNotFound.Withf("tool not found: %q", name)
	}
	log := tk.log.With(zap.String("tool", name), zap.String("call_id", uuid.NewString()))

	raw, err := rawInput(input)
	if err == nil {
		err = e.validate(raw)
	}
	if err != nil {
		log.Warn("tool input rejected", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	log.Debug("tool call")
	result, err := e.Run(ctx, raw)
	if err != nil {
		log.Error("tool call failed", zap.Duration("duration", time.Since(now)), zap.Error(err))
		return nil, err
	}
	fields := []zap.Field{zap.Duration("duration", time.Since(now))}
	if text, ok := result.(string); ok {
		fields = append(fields, zap.Int("length", len(text)))
	}
	log.Debug("tool result", fields...)
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func newEntry(item Tool) (*entry, error) {
	schema, err := item.Schema()
	if err != nil {
		return nil, weather.ErrBadParameter.Withf("schema for %q: %v", item.Name(), err)
	}
	e := &entry{Tool: item, schema: schema}
	if schema != nil {
		if e.resolved, err = schema.Resolve(nil); err != nil {
			return nil, weather.ErrBadParameter.Withf("schema for %q: %v", item.Name(), err)
		}
	}
	return e, nil
}

// validate checks non-empty input against the resolved schema
func (e *entry) validate(input json.RawMessage) error {
	if e.resolved == nil || len(input) == 0 {
		return nil
	}
	var value map[string]any
	if err := json.Unmarshal(input, &value); err != nil {
		return weather.ErrBadParameter.Withf("input for %q is not an object: %v", e.Name(), err)
	}
	if err := e.resolved.Validate(value); err != nil {
		return weather.ErrBadParameter.Withf("input for %q: %v", e.Name(), err)
	}
	return nil
}

func rawInput(input any) (json.RawMessage, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, weather.ErrBadParameter.Withf("failed to marshal input: %v", err)
		}
		return data, nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (tk *Toolkit) String() string {
	return types.Stringify(slices.Sorted(maps.Keys(tk.tools)))
}
