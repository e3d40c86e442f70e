package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCommand(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"parinfer_format","arguments":{"text":"(a\nb)","mode":"paren"}}}`,
	}, "\n") + "\n"

	res := execute(t, input, nil, "mcp")
	require.Equal(t, 0, res.code, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)

	var init map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &init))
	info := init["result"].(map[string]any)["serverInfo"].(map[string]any)
	assert.Equal(t, "parinfer", info["name"])
	assert.Equal(t, "dev", info["version"])

	var call map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &call))
	structured := call["result"].(map[string]any)["structuredContent"].(map[string]any)
	assert.Equal(t, "(a\n b)", structured["text"])
	assert.Equal(t, true, structured["changed"])
}

func TestMCPCommand_RejectsArgs(t *testing.T) {
	res := execute(t, "", nil, "mcp", "extra")
	assert.Equal(t, 1, res.code)
}
