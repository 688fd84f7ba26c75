package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datetimeday/internal/clock"
	"datetimeday/internal/temporal"
	"datetimeday/internal/tools"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	engine, err := temporal.NewEngine(temporal.WithClock(clock.Fixed(now)), temporal.WithLocalZone("UTC"))
	require.NoError(t, err)
	reg, err := tools.NewRegistry(engine)
	require.NoError(t, err)
	return NewServer(reg, "test")
}

type decodedResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func handle(t *testing.T, s *Server, msg string) decodedResponse {
	t.Helper()
	out, ok := s.Handle(context.Background(), []byte(msg))
	require.True(t, ok, "expected a reply to %s", msg)
	var resp decodedResponse
	require.NoError(t, json.Unmarshal(out, &resp), string(out))
	assert.Equal(t, "2.0", resp.JSONRPC)
	return resp
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"c","version":"1"}}}`)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `1`, string(resp.ID))

	var got initializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	assert.Equal(t, ProtocolVersion, got.ProtocolVersion)
	assert.Equal(t, serverInfo{Name: ServerName, Version: "test"}, got.ServerInfo)
	assert.Contains(t, got.Capabilities, "tools")
}

func TestNotificationsGetNoReply(t *testing.T) {
	s := newTestServer(t)

	for _, msg := range []string{
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":3}}`,
		`{"jsonrpc":"2.0","method":"no/such/method"}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"get_datetime"}}`,
	} {
		out, ok := s.Handle(context.Background(), []byte(msg))
		assert.False(t, ok, msg)
		assert.Nil(t, out, msg)
	}
}

func TestPing(t *testing.T) {
	resp := handle(t, newTestServer(t), `{"jsonrpc":"2.0","id":"abc","method":"ping"}`)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `"abc"`, string(resp.ID))
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestToolsList(t *testing.T) {
	resp := handle(t, newTestServer(t), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var got struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	require.Len(t, got.Tools, 5)
	assert.Equal(t, "get_datetime", got.Tools[0].Name)
	assert.Equal(t, "get_week_year", got.Tools[4].Name)
	for _, tool := range got.Tools {
		assert.True(t, json.Valid(tool.InputSchema), tool.Name)
	}
}

func decodeCallResult(t *testing.T, resp decodedResponse) (toolsCallResult, map[string]any) {
	t.Helper()
	require.Nil(t, resp.Error)
	var res toolsCallResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "application/json", res.Content[0].MimeType)
	assert.JSONEq(t, res.Content[0].Text, string(res.StructuredContent))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &payload))
	return res, payload
}

func TestToolsCall(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"days_in_month","arguments":{"year":2024,"month":2}}}`)
	res, payload := decodeCallResult(t, resp)
	assert.False(t, res.IsError)
	assert.Equal(t, float64(29), payload["days_in_month"])
	assert.Equal(t, "February", payload["month_name"])
}

func TestToolsCallErrorMappingIsNotAnRPCError(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"convert_time","arguments":{"time_str":"2025-01-15 10:00:00","from_tz":"Mars/Base","to_tz":"UTC"}}}`)
	res, payload := decodeCallResult(t, resp)
	assert.False(t, res.IsError)
	assert.Equal(t, map[string]any{"error": "Invalid timezone: Mars/Base"}, payload)
}

func TestToolsCallWithoutArguments(t *testing.T) {
	resp := handle(t, newTestServer(t), `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"get_week_year"}}`)
	_, payload := decodeCallResult(t, resp)
	assert.Equal(t, "2025-01-15", payload["date"])
}

func TestProtocolErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		msg  string
		code int
		id   string
	}{
		{"parse error", `{"jsonrpc":"2.0",`, CodeParseError, "null"},
		{"batch", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, CodeInvalidRequest, "null"},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, CodeInvalidRequest, "1"},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, CodeInvalidRequest, "1"},
		{"unknown method", `{"jsonrpc":"2.0","id":7,"method":"resources/list"}`, CodeMethodNotFound, "7"},
		{"unknown tool", `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"get_weather"}}`, CodeInvalidParams, "8"},
		{"missing params", `{"jsonrpc":"2.0","id":9,"method":"tools/call"}`, CodeInvalidParams, "9"},
		{"bad params", `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":[1,2]}`, CodeInvalidParams, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(t, s, tt.msg)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			assert.JSONEq(t, tt.id, string(resp.ID))
			assert.Empty(t, resp.Result)
		})
	}
}

func TestErrorString(t *testing.T) {
	var nilErr *Error
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "mcp error -32601: Method not found: x", (&Error{Code: CodeMethodNotFound, Message: "Method not found: x"}).Error())
}
