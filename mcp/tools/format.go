package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oxhq/parinfer/core"
	"github.com/oxhq/parinfer/internal/bridge"
	"github.com/oxhq/parinfer/internal/diff"
	"github.com/oxhq/parinfer/mcp/types"
)

// FormatTool corrects a snippet and reports what changed as a diff.
type FormatTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewFormatTool creates the parinfer_format tool
func NewFormatTool(server types.ServerInterface) *FormatTool {
	tool := &FormatTool{server: server}

	tool.BaseTool = &BaseTool{
		name: "parinfer_format",
		description: "Correct Lisp text and return the result with a unified diff. " +
			"Defaults to paren mode, which re-indents without touching parens.",
		inputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":     CommonSchemas.Text,
				"mode":     CommonSchemas.Mode,
				"language": CommonSchemas.Language,
				"path":     CommonSchemas.Path,
				"context": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"description": "Lines of diff context",
				},
			},
			"required": []string{"text"},
		},
		handler: tool.handle,
	}

	return tool
}

// FormatResult is the structured result of parinfer_format.
type FormatResult struct {
	Text         string      `json:"text"`
	Success      bool        `json:"success"`
	Changed      bool        `json:"changed"`
	Diff         string      `json:"diff,omitempty"`
	LinesAdded   int         `json:"linesAdded"`
	LinesRemoved int         `json:"linesRemoved"`
	Error        *core.Error `json:"error,omitempty"`
}

func (t *FormatTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	var args struct {
		Text     *string `json:"text"`
		Mode     string  `json:"mode,omitempty"`
		Language string  `json:"language,omitempty"`
		Path     string  `json:"path,omitempty"`
		Context  *int    `json:"context,omitempty"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, types.WrapError(types.InvalidParams, "Invalid format parameters", err)
	}

	settings := t.server.Settings()
	req, err := buildRequest(settings, &requestArgs{
		Mode:     args.Mode,
		Text:     args.Text,
		Language: args.Language,
		Path:     args.Path,
	}, settings.FmtModeValue())
	if err != nil {
		return nil, err
	}

	answer := bridge.Process(req)
	if !answer.Success {
		return types.TextResult(describeError(answer.Error), FormatResult{
			Text:  req.Text,
			Error: answer.Error,
		}, true), nil
	}

	result := FormatResult{
		Text:    answer.Text,
		Success: true,
		Changed: answer.Text != req.Text,
	}
	if !result.Changed {
		return types.TextResult("No changes needed", result, false), nil
	}

	diffContext := diff.DefaultContext
	if args.Context != nil {
		diffContext = *args.Context
	}
	result.Diff = diff.Unified(req.Text, answer.Text, args.Path, diffContext)
	result.LinesAdded, result.LinesRemoved = diff.Stat(req.Text, answer.Text)

	text := fmt.Sprintf("Corrected %s mode (+%d -%d):\n\n%s", req.Mode, result.LinesAdded, result.LinesRemoved, result.Diff)
	return types.TextResult(text, result, false), nil
}
