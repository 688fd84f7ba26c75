package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appLog "datetimeday/internal/log"
	"datetimeday/internal/tools"
)

// ServerName is reported in the initialize result.
const ServerName = "mcp-datetimeday"

// Server dispatches JSON-RPC messages to a tool registry. It holds no
// per-session state and is safe for concurrent use.
type Server struct {
	registry *tools.Registry
	version  string
	tracer   trace.Tracer
}

// NewServer returns a Server exposing registry. version is reported to
// clients in serverInfo.
func NewServer(registry *tools.Registry, version string) *Server {
	return &Server{
		registry: registry,
		version:  version,
		tracer:   otel.Tracer("datetimeday/internal/mcp"),
	}
}

// Handle processes one JSON-RPC message and returns the encoded reply.
// The boolean is false when the message was a notification and nothing
// should be written back.
func (s *Server) Handle(ctx context.Context, msg []byte) ([]byte, bool) {
	msg = bytes.TrimSpace(msg)

	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		if !json.Valid(msg) {
			appLog.Warn("rejecting malformed message", "error", err)
			return encode(errorResponse(nil, CodeParseError, "Parse error"))
		}
		return encode(errorResponse(nil, CodeInvalidRequest, "Invalid Request"))
	}
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		return encode(errorResponse(req.ID, CodeInvalidRequest, "Invalid Request"))
	}

	ctx, span := s.tracer.Start(ctx, "mcp.handle",
		trace.WithAttributes(attribute.String("rpc.method", req.Method)),
	)
	defer span.End()

	result, rpcErr := s.dispatch(ctx, &req)
	if req.IsNotification() {
		return nil, false
	}
	if rpcErr != nil {
		span.SetStatus(codes.Error, rpcErr.Message)
		return encode(Response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: rpcErr})
	}

	raw, err := json.Marshal(result)
	if err != nil {
		appLog.Error("encode result failed", err, "method", req.Method)
		return encode(errorResponse(req.ID, CodeInternalError, "Internal error"))
	}
	return encode(Response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: raw})
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *Error) {
	appLog.Debug("mcp request", "method", req.Method, "id", string(req.ID))

	switch req.Method {
	case "initialize":
		return initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities: map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			ServerInfo: serverInfo{Name: ServerName, Version: s.version},
		}, nil
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return map[string]any{"tools": s.registry.List()}, nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	}

	if strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}
	return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p toolsCallParams
	if len(params) == 0 {
		return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: missing tool name"}
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("Invalid params: %v", err)}
	}
	if p.Name == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: missing tool name"}
	}

	out, err := s.registry.Call(ctx, p.Name, p.Arguments)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			return nil, &Error{Code: CodeInvalidParams, Message: "Unknown tool: " + p.Name}
		}
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	text, err := json.Marshal(out)
	if err != nil {
		appLog.Error("encode tool result failed", err, "tool", p.Name)
		return nil, &Error{Code: CodeInternalError, Message: "Internal error"}
	}
	return toolsCallResult{
		Content: []contentItem{{
			Type:     "text",
			Text:     string(text),
			MimeType: "application/json",
		}},
		StructuredContent: text,
	}, nil
}

func errorResponse(id json.RawMessage, code int, msg string) Response {
	return Response{JSONRPC: jsonrpcVersion, ID: id, Error: &Error{Code: code, Message: msg}}
}

func encode(resp Response) ([]byte, bool) {
	b, err := json.Marshal(resp)
	if err != nil {
		appLog.Error("encode response failed", err)
		return nil, false
	}
	return b, true
}
