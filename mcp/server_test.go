package mcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/parinfer/internal/config"
)

func TestNewServer(t *testing.T) {
	server, _ := createTestServer(t)

	assert.NotNil(t, server.Store(), "in-memory store by default")
	assert.NotNil(t, server.FileProcessor())
	assert.NotNil(t, server.Tools())
	assert.NotNil(t, server.Settings())
	assert.True(t, strings.HasPrefix(server.SessionID(), "ses_"))
}

func TestNewServer_FileDatabase(t *testing.T) {
	settings := config.Default()
	settings.DB = filepath.Join(t.TempDir(), "nested", "snap.db")

	cfg := DefaultConfig()
	cfg.Settings = settings
	cfg.LogWriter = io.Discard

	server, err := NewServer(cfg, strings.NewReader(""), io.Discard)
	require.NoError(t, err)
	assert.FileExists(t, settings.DB)
	assert.NoError(t, server.Close())
}

func TestNewServer_DatabaseConnectionFailed(t *testing.T) {
	settings := config.Default()
	settings.DB = "http://127.0.0.1:1/unreachable"

	cfg := DefaultConfig()
	cfg.Settings = settings
	cfg.LogWriter = io.Discard

	_, err := NewServer(cfg, strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestNewServer_NilSettings(t *testing.T) {
	server, err := NewServer(Config{LogWriter: io.Discard}, strings.NewReader(""), io.Discard)
	require.NoError(t, err)
	defer server.Close()
	assert.Equal(t, "smart", server.Settings().Mode)
}

func TestServerStart_EOF(t *testing.T) {
	server, out := createTestServer(t)
	assert.NoError(t, server.Start(context.Background()))
	assert.Empty(t, out.String())
}

func TestServerStart_Session(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"t"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"parinfer_process","arguments":{"mode":"indent","text":"(foo\n  bar"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	server, out := createTestServerWithInput(t, input)
	require.NoError(t, server.Start(context.Background()))

	responses := frames(t, out)
	require.Len(t, responses, 3, "the notification gets no response")
	assert.Equal(t, float64(1), responses[0]["id"])
	assert.Equal(t, float64(2), responses[1]["id"])
	assert.Equal(t, float64(3), responses[2]["id"])

	result := responses[1]["result"].(map[string]any)
	content := result["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "(foo\n  bar)", content["text"])
}

func TestServerStart_InvalidJSON(t *testing.T) {
	input := "{not json}\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	server, out := createTestServerWithInput(t, input)
	require.NoError(t, server.Start(context.Background()))

	responses := frames(t, out)
	require.Len(t, responses, 2, "a bad line must not stop the loop")

	errObj := responses[0]["error"].(map[string]any)
	assert.Equal(t, float64(ParseError), errObj["code"])
	assert.Nil(t, responses[0]["id"])
	assert.Equal(t, float64(1), responses[1]["id"])
}

func TestServerStart_WrongVersion(t *testing.T) {
	server, out := createTestServerWithInput(t, `{"jsonrpc":"1.0","id":5,"method":"ping"}`)
	require.NoError(t, server.Start(context.Background()))

	responses := frames(t, out)
	require.Len(t, responses, 1)
	errObj := responses[0]["error"].(map[string]any)
	assert.Equal(t, float64(InvalidRequest), errObj["code"])
}

func TestServerStart_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	cfg := DefaultConfig()
	cfg.LogWriter = io.Discard
	server, err := NewServer(cfg, pr, &bytes.Buffer{})
	require.NoError(t, err)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}

func TestServerDebugLogging(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.LogWriter = &logs

	server, err := NewServer(cfg, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), io.Discard)
	require.NoError(t, err)
	defer server.Close()
	require.NoError(t, server.Start(context.Background()))

	assert.Contains(t, logs.String(), "[DEBUG] Session created: ses_")
	assert.Contains(t, logs.String(), "[DEBUG] Received:")
}

type brokenPipe struct{}

func (brokenPipe) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestServerStart_WriteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.Debug = true
	cfg.LogWriter = &logs

	server, err := NewServer(cfg, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), brokenPipe{})
	require.NoError(t, err)
	defer server.Close()
	require.NoError(t, server.Start(context.Background()))

	assert.Contains(t, logs.String(), "[DEBUG] Failed to write frame: broken pipe")
}

func TestReportProgress_WithoutToken(t *testing.T) {
	server, out := createTestServer(t)
	server.ReportProgress(context.Background(), 1, 1, "done")
	assert.Empty(t, out.String())

	server.ReportProgress(withProgressToken(context.Background(), "t"), 1, 1, "done")
	assert.Len(t, framesWithMethod(t, out, "notifications/progress"), 1)
}

func TestServerClose(t *testing.T) {
	server, _ := createTestServer(t)
	assert.NoError(t, server.Close())
}
