package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/mcp/types"
)

// ChangesTool computes the single edit between two texts, in the shape the
// engine accepts as options.changes.
type ChangesTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewChangesTool creates the parinfer_changes tool
func NewChangesTool(server types.ServerInterface) *ChangesTool {
	tool := &ChangesTool{server: server}

	tool.BaseTool = &BaseTool{
		name:        "parinfer_changes",
		description: "Compute the single changed span between a previous and a current text, as an engine change {lineNo, x, oldText, newText}.",
		inputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prevText": map[string]any{"type": "string", "description": "Text before the edit"},
				"text":     CommonSchemas.Text,
			},
			"required": []string{"prevText", "text"},
		},
		handler: tool.handle,
	}

	return tool
}

// ChangesResult is the structured result of parinfer_changes.
type ChangesResult struct {
	Changed bool          `json:"changed"`
	Changes []core.Change `json:"changes"`
}

func (t *ChangesTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	var args struct {
		PrevText *string `json:"prevText"`
		Text     *string `json:"text"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, types.WrapError(types.InvalidParams, "Invalid changes parameters", err)
	}
	if args.PrevText == nil || args.Text == nil {
		return nil, types.NewMCPError(types.InvalidParams, "prevText and text are required", nil)
	}

	change, ok := core.ComputeTextChange(*args.PrevText, *args.Text)
	if !ok {
		return types.TextResult("Texts are identical", ChangesResult{Changes: []core.Change{}}, false), nil
	}

	text := fmt.Sprintf("Line %d, column %d: %q -> %q", change.LineNo+1, change.X+1, change.OldText, change.NewText)
	return types.TextResult(text, ChangesResult{Changed: true, Changes: []core.Change{change}}, false), nil
}
