// Package tools exposes the temporal engine as named tools with JSON
// arguments and JSON-serializable results. It is shared by every transport:
// MCP over stdio, HTTP and the REPL.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appLog "datetimeday/internal/log"
	"datetimeday/internal/temporal"
)

const tracerName = "datetimeday/internal/tools"

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrorResult is the uniform failure payload: callers tell it apart from a
// successful result by the presence of the "error" key.
type ErrorResult struct {
	Error string `json:"error"`
}

// Descriptor is the public description of a tool, as listed to clients.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type handlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is a registered tool.
type Tool struct {
	name        string
	description string
	rawSchema   json.RawMessage
	schema      *jsonschema.Schema
	paramTypes  map[string]string
	handler     handlerFunc
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// ParamType returns the JSON type of the named argument ("string",
// "integer", ...), or "" if the tool has no such argument.
func (t *Tool) ParamType(name string) string { return t.paramTypes[name] }

// Params returns the argument names in sorted order.
func (t *Tool) Params() []string {
	out := make([]string, 0, len(t.paramTypes))
	for k := range t.paramTypes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Descriptor returns the listing entry for t.
func (t *Tool) Descriptor() Descriptor {
	return Descriptor{Name: t.name, Description: t.description, InputSchema: t.rawSchema}
}

// Registry holds the tools in registration order.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
	tracer trace.Tracer
}

// NewRegistry registers the five calendar tools backed by engine.
func NewRegistry(engine *temporal.Engine) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Tool),
		tracer: otel.Tracer(tracerName),
	}
	for _, def := range definitions(engine) {
		if err := r.register(def); err != nil {
			return nil, fmt.Errorf("register %s: %w", def.name, err)
		}
	}
	return r, nil
}

type definition struct {
	name        string
	description string
	schema      string
	handler     handlerFunc
}

func (r *Registry) register(def definition) error {
	if _, dup := r.byName[def.name]; dup {
		return errors.New("duplicate tool name")
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(def.schema)))
	if err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}
	url := def.name + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var shape struct {
		Properties map[string]struct {
			Type any `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal([]byte(def.schema), &shape); err != nil {
		return err
	}
	params := make(map[string]string, len(shape.Properties))
	for name, p := range shape.Properties {
		params[name] = primaryType(p.Type)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(def.schema)); err != nil {
		return err
	}

	t := &Tool{
		name:        def.name,
		description: def.description,
		rawSchema:   compact.Bytes(),
		schema:      sch,
		paramTypes:  params,
		handler:     def.handler,
	}
	r.tools = append(r.tools, t)
	r.byName[t.name] = t
	return nil
}

// primaryType picks the first non-null type of a schema "type" keyword.
func primaryType(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case []any:
		for _, e := range tv {
			if s, ok := e.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return append([]*Tool(nil), r.tools...)
}

// List returns descriptors for every tool.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Descriptor())
	}
	return out
}

// Call runs the named tool. The returned value is either the tool's result
// payload or an ErrorResult; the error is non-nil only for ErrUnknownTool.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (result any, err error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	ctx, span := r.tracer.Start(ctx, "tools.call",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("tool.name", name)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			appLog.Error("tool panicked", fmt.Errorf("%v", p), "tool", name)
			span.SetStatus(codes.Error, "panic")
			result, err = ErrorResult{Error: "internal error"}, nil
		}
	}()

	payload, callErr := t.invoke(ctx, args)
	if callErr != nil {
		msg := callErr.Error()
		kind := "arguments"
		if te, ok := temporal.AsToolError(callErr); ok {
			kind = te.Kind.String()
		}
		span.SetAttributes(attribute.String("tool.error_kind", kind))
		span.SetStatus(codes.Error, msg)
		appLog.Debug("tool returned error", "tool", name, "kind", kind, "error", msg)
		return ErrorResult{Error: msg}, nil
	}

	appLog.Debug("tool call completed", "tool", name, "duration", time.Since(start))
	return payload, nil
}

func (t *Tool) invoke(ctx context.Context, args json.RawMessage) (any, error) {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = json.RawMessage("{}")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %v", err)
	}
	if err := t.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid arguments: %s", validationSummary(err))
	}
	return t.handler(ctx, args)
}

// validationSummary flattens a multi-line schema validation error into one
// line, dropping the header that names the schema URL.
func validationSummary(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	parts := make([]string, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i == 0 && len(lines) > 1 && strings.HasPrefix(line, "jsonschema") {
			continue
		}
		line = strings.TrimPrefix(line, "- ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "; ")
}

// decode unmarshals validated arguments into v.
func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}
