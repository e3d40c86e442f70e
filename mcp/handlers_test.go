package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/parinfer/mcp/tools"
	"github.com/oxhq/parinfer/mcp/types"
)

func TestHandleInitialize(t *testing.T) {
	tests := []struct {
		name        string
		params      any
		expectError bool
	}{
		{
			name: "valid_initialization",
			params: map[string]any{
				"protocolVersion": ProtocolVersion,
				"capabilities":    map[string]any{},
				"clientInfo": map[string]any{
					"name":    "test-client",
					"version": "1.0.0",
				},
			},
		},
		{
			name: "no_params",
		},
		{
			name:        "invalid_params",
			params:      "not an object",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := createTestServer(t)
			resp := dispatch(t, server, request(1, "initialize", tt.params))

			if tt.expectError {
				require.NotNil(t, resp.Error)
				assert.Equal(t, InvalidParams, resp.Error.Code)
				assert.False(t, server.session.Initialized())
				return
			}

			result := resultMap(t, resp)
			assert.Equal(t, ProtocolVersion, result["protocolVersion"])
			info := result["serverInfo"].(map[string]any)
			assert.Equal(t, "parinfer", info["name"])
			assert.Equal(t, "dev", info["version"])

			caps := result["capabilities"].(map[string]any)
			assert.Contains(t, caps, "tools")
			assert.Contains(t, caps, "logging")
			assert.NotContains(t, caps, "resources")
			assert.True(t, server.session.Initialized())
		})
	}
}

func TestHandleInitialize_RecordsClient(t *testing.T) {
	server, _ := createTestServer(t)
	dispatch(t, server, request(1, "initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"clientInfo":      map[string]any{"name": "kak"},
	}))
	assert.Equal(t, "2025-03-26", server.session.ProtocolVersion())
	assert.Equal(t, "kak", server.session.ClientName())
}

func TestHandlePing(t *testing.T) {
	server, _ := createTestServer(t)
	resp := dispatch(t, server, request("p", "ping", nil))
	assert.Equal(t, map[string]any{}, resultMap(t, resp))
	assert.Equal(t, "p", resp.ID)
}

func TestHandleListTools(t *testing.T) {
	server, _ := createTestServer(t)
	result := resultMap(t, dispatch(t, server, request(1, "tools/list", nil)))

	list, ok := result["tools"].([]any)
	require.True(t, ok, "tools should be a list")

	var names []string
	for _, item := range list {
		def := item.(map[string]any)
		names = append(names, def["name"].(string))
		assert.NotEmpty(t, def["description"])
		schema := def["inputSchema"].(map[string]any)
		assert.Equal(t, "object", schema["type"])
	}
	assert.Equal(t, []string{"parinfer_process", "parinfer_format", "parinfer_format_files", "parinfer_changes"}, names)
}

func TestMethodNotFound(t *testing.T) {
	server, _ := createTestServer(t)
	resp := dispatch(t, server, request(1, "resources/list", nil))
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)
	assert.Equal(t, "Method not found: resources/list", resp.Error.Message)
}

func TestHandleCallTool_Process(t *testing.T) {
	server, _ := createTestServer(t)
	resp := dispatch(t, server, request(1, "tools/call", map[string]any{
		"name": "parinfer_process",
		"arguments": map[string]any{
			"mode": "indent",
			"text": "(defn foo\n  [a b]\n  ret",
		},
	}))

	result := resultMap(t, resp)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "(defn foo\n  [a b]\n  ret)", content[0].(map[string]any)["text"])
	assert.NotContains(t, result, "isError")

	structured := result["structuredContent"].(map[string]any)
	assert.Equal(t, true, structured["success"])
}

func TestHandleCallTool_EngineFailureIsToolError(t *testing.T) {
	server, _ := createTestServer(t)
	result := resultMap(t, dispatch(t, server, request(1, "tools/call", map[string]any{
		"name":      "parinfer_process",
		"arguments": map[string]any{"mode": "paren", "text": "(foo"},
	})))

	assert.Equal(t, true, result["isError"])
	structured := result["structuredContent"].(map[string]any)
	errObj := structured["error"].(map[string]any)
	assert.Equal(t, "unclosed-paren", errObj["name"])
}

func TestHandleCallTool_DocumentSession(t *testing.T) {
	server, _ := createTestServer(t)
	call := func(text string, cursorX, cursorLine int) map[string]any {
		return resultMap(t, dispatch(t, server, request(1, "tools/call", map[string]any{
			"name": "parinfer_process",
			"arguments": map[string]any{
				"mode":       "smart",
				"text":       text,
				"document":   "scratch.clj",
				"cursorX":    cursorX,
				"cursorLine": cursorLine,
			},
		})))
	}

	first := call("(foo bar)", 9, 0)
	assert.NotContains(t, first, "isError")

	snap, err := server.Store().LoadSnapshot(context.Background(), "scratch.clj")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "(foo bar)", snap.Text)
	assert.Equal(t, 1, snap.Hits)

	call("(foo bar)", 9, 0)
	snap, err = server.Store().LoadSnapshot(context.Background(), "scratch.clj")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Hits)
}

func TestHandleCallTool_UnknownTool(t *testing.T) {
	server, _ := createTestServer(t)
	resp := dispatch(t, server, request(1, "tools/call", map[string]any{"name": "nope"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
	assert.Equal(t, "Tool not found: nope", resp.Error.Message)
}

func TestHandleCallTool_InvalidParams(t *testing.T) {
	server, _ := createTestServer(t)
	msg := request(1, "tools/call", nil)
	msg.Params = json.RawMessage(`[1,2]`)
	resp := dispatch(t, server, msg)
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
}

func TestHandleCallToolWithMCPError(t *testing.T) {
	server, _ := createTestServer(t)
	resp := dispatch(t, server, request(1, "tools/call", map[string]any{
		"name":      "parinfer_process",
		"arguments": map[string]any{"text": "(a)", "language": "cobol"},
	}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, LanguageNotFound, resp.Error.Code)
}

func TestHandleCallToolWithGenericError(t *testing.T) {
	server, _ := createTestServer(t)
	server.Tools().Register(tools.NewTool("failing").
		WithDescription("always fails").
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			return nil, errors.New("disk on fire")
		}).
		Build())

	resp := dispatch(t, server, request(1, "tools/call", map[string]any{"name": "failing"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, InternalError, resp.Error.Code)
	assert.Equal(t, "disk on fire", resp.Error.Message)
}

func TestHandleCallToolRecoversPanic(t *testing.T) {
	server, _ := createTestServer(t)
	server.Tools().Register(tools.NewTool("panicky").
		WithDescription("panics").
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			panic("unreachable state")
		}).
		Build())

	resp := dispatch(t, server, request(1, "tools/call", map[string]any{"name": "panicky"}))
	require.NotNil(t, resp.Error)
	assert.Equal(t, InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unreachable state")
}

func TestHandleCallToolProgressToken(t *testing.T) {
	server, out := createTestServer(t)
	server.Tools().Register(tools.NewTool("slow").
		WithDescription("reports progress").
		WithHandler(func(ctx context.Context, params json.RawMessage) (any, error) {
			server.ReportProgress(ctx, 1, 2, "halfway")
			return types.TextResult("done", nil, false), nil
		}).
		Build())

	dispatch(t, server, request(1, "tools/call", map[string]any{"name": "slow"}))
	assert.Empty(t, framesWithMethod(t, out, "notifications/progress"), "no token, no progress")

	dispatch(t, server, request(2, "tools/call", map[string]any{
		"name":  "slow",
		"_meta": map[string]any{"progressToken": "tok-1"},
	}))
	progress := framesWithMethod(t, out, "notifications/progress")
	require.Len(t, progress, 1)
	params := progress[0]["params"].(map[string]any)
	assert.Equal(t, "tok-1", params["progressToken"])
	assert.Equal(t, float64(1), params["progress"])
	assert.Equal(t, float64(2), params["total"])
	assert.Equal(t, "halfway", params["message"])
}

func TestNotificationsAreAccepted(t *testing.T) {
	server, _ := createTestServer(t)
	ctx := context.Background()
	for _, method := range []string{"notifications/initialized", "initialized", "notifications/cancelled"} {
		assert.NoError(t, server.router.DispatchNotification(ctx, RequestMessage{JSONRPC: JSONRPCVersion, Method: method}))
	}
	assert.Error(t, server.router.DispatchNotification(ctx, RequestMessage{JSONRPC: JSONRPCVersion, Method: "notifications/unknown"}))
}
