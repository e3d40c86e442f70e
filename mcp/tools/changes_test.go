package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/mcp/types"
)

func TestChangesTool(t *testing.T) {
	tool := NewChangesTool(newMockServer(t))

	result, err := tool.handle(context.Background(), createTestParams(map[string]any{
		"prevText": "(a b)",
		"text":     "(a xb)",
	}))
	require.NoError(t, err)

	res := toolResult(t, result)
	changes := res.StructuredContent.(ChangesResult)
	assert.True(t, changes.Changed)
	assert.Equal(t, []core.Change{{X: 3, LineNo: 0, OldText: "", NewText: "x"}}, changes.Changes)
	assert.Equal(t, `Line 1, column 4: "" -> "x"`, res.Content[0].Text)

	result, err = tool.handle(context.Background(), createTestParams(map[string]any{
		"prevText": "(a)",
		"text":     "(a)",
	}))
	require.NoError(t, err)
	same := toolResult(t, result).StructuredContent.(ChangesResult)
	assert.False(t, same.Changed)
	assert.Empty(t, same.Changes)

	_, err = tool.handle(context.Background(), createTestParams(map[string]any{"text": "(a)"}))
	assertCode(t, err, types.InvalidParams)
}
