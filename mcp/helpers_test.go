package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func createTestServer(t *testing.T) (*StdioServer, *bytes.Buffer) {
	t.Helper()
	return createTestServerWithInput(t, "")
}

func createTestServerWithInput(t *testing.T, input string) (*StdioServer, *bytes.Buffer) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.LogWriter = io.Discard

	out := &bytes.Buffer{}
	server, err := NewServer(cfg, strings.NewReader(input), out)
	if err != nil {
		t.Fatalf("failed to create test server: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server, out
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func request(id any, method string, params any) RequestMessage {
	msg := RequestMessage{JSONRPC: JSONRPCVersion, ID: id, Method: method}
	if params != nil {
		msg.Params = mustMarshal(params)
	}
	return msg
}

func dispatch(t *testing.T, s *StdioServer, msg RequestMessage) ResponseMessage {
	t.Helper()
	return s.router.DispatchRequest(context.Background(), msg)
}

// resultMap round-trips a result through JSON so assertions see what the
// client would.
func resultMap(t *testing.T, resp ResponseMessage) map[string]any {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	var out map[string]any
	if err := json.Unmarshal(mustMarshal(resp.Result), &out); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return out
}

// frames splits written output into decoded JSON objects.
func frames(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var frame map[string]any
		if err := json.Unmarshal(line, &frame); err != nil {
			t.Fatalf("invalid frame %q: %v", line, err)
		}
		out = append(out, frame)
	}
	return out
}

func framesWithMethod(t *testing.T, buf *bytes.Buffer, method string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, frame := range frames(t, buf) {
		if frame["method"] == method {
			out = append(out, frame)
		}
	}
	return out
}
