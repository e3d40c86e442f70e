package mcp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSetLoggingLevel(t *testing.T) {
	tests := []struct {
		name      string
		params    json.RawMessage
		wantCode  int
		wantLevel LogLevel
	}{
		{"debug", mustMarshal(map[string]any{"level": "debug"}), 0, LogLevelDebug},
		{"error", mustMarshal(map[string]any{"level": "error"}), 0, LogLevelError},
		{"unknown level", mustMarshal(map[string]any{"level": "loud"}), InvalidParams, LogLevelInfo},
		{"malformed", json.RawMessage(`"debug"`), InvalidParams, LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := createTestServer(t)
			msg := request(1, "logging/setLevel", nil)
			msg.Params = tt.params
			resp := dispatch(t, server, msg)

			if tt.wantCode != 0 {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			} else {
				assert.Nil(t, resp.Error)
			}
			assert.Equal(t, tt.wantLevel, server.session.LoggingLevel())
		})
	}
}

func TestLog_RespectsThreshold(t *testing.T) {
	server, out := createTestServer(t)

	server.Log("debug", "hidden", nil)
	assert.Empty(t, framesWithMethod(t, out, "notifications/message"))

	server.Log("warning", "shown", map[string]any{"file": "a.clj"})
	msgs := framesWithMethod(t, out, "notifications/message")
	require.Len(t, msgs, 1)

	params := msgs[0]["params"].(map[string]any)
	assert.Equal(t, "warning", params["level"])
	assert.Equal(t, "parinfer", params["logger"])
	data := params["data"].(map[string]any)
	assert.Equal(t, "shown", data["message"])
	assert.Equal(t, "a.clj", data["file"])
	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)

	server.session.SetLoggingLevel(LogLevelDebug)
	server.Log("debug", "now visible", nil)
	assert.Len(t, framesWithMethod(t, out, "notifications/message"), 2)
}

func TestLog_DoesNotMutateCallerData(t *testing.T) {
	server, _ := createTestServer(t)
	data := map[string]any{"k": "v"}
	server.Log("error", "msg", data)
	assert.Equal(t, map[string]any{"k": "v"}, data)
}

func TestLog_UnknownLevelIsInfo(t *testing.T) {
	server, out := createTestServer(t)
	server.Log("chatty", "hello", nil)
	msgs := framesWithMethod(t, out, "notifications/message")
	require.Len(t, msgs, 1)
	assert.Equal(t, "info", msgs[0]["params"].(map[string]any)["level"])
}

func TestSendProgressNotification(t *testing.T) {
	server, out := createTestServer(t)
	server.sendProgressNotification(float64(9), 3, 0, "")

	progress := framesWithMethod(t, out, "notifications/progress")
	require.Len(t, progress, 1)
	params := progress[0]["params"].(map[string]any)
	assert.Equal(t, float64(9), params["progressToken"])
	assert.Equal(t, float64(3), params["progress"])
	assert.NotContains(t, params, "total")
	assert.NotContains(t, params, "message")
}

func TestShouldEmitLog(t *testing.T) {
	tests := []struct {
		min, level LogLevel
		want       bool
	}{
		{LogLevelDebug, LogLevelDebug, true},
		{LogLevelInfo, LogLevelDebug, false},
		{LogLevelInfo, LogLevelNotice, true},
		{LogLevelError, LogLevelWarning, false},
		{LogLevelError, LogLevelEmergency, true},
		{"bogus", LogLevelInfo, true},
		{LogLevelWarning, "bogus", false},
	}
	for _, tt := range tests {
		if got := shouldEmitLog(tt.min, tt.level); got != tt.want {
			t.Errorf("shouldEmitLog(%s, %s) = %v, want %v", tt.min, tt.level, got, tt.want)
		}
	}
}
