package tools

import (
	"context"
	"encoding/json"

	"github.com/oxhq/parinfer/internal/bridge"
	"github.com/oxhq/parinfer/mcp/types"
)

// ProcessTool runs one engine request, optionally continuing an editor
// session stored under a document key.
type ProcessTool struct {
	*BaseTool
	server types.ServerInterface
}

// NewProcessTool creates the parinfer_process tool
func NewProcessTool(server types.ServerInterface) *ProcessTool {
	tool := &ProcessTool{server: server}

	tool.BaseTool = &BaseTool{
		name: "parinfer_process",
		description: "Infer parens from indentation (indent), indentation from parens (paren), " +
			"or both around the cursor (smart). Returns the full answer: text, cursor, " +
			"tab stops, paren trails and, with returnParens, the paren tree.",
		inputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"mode":               CommonSchemas.Mode,
				"text":               CommonSchemas.Text,
				"language":           CommonSchemas.Language,
				"path":               CommonSchemas.Path,
				"document":           CommonSchemas.Document,
				"options":            CommonSchemas.Options,
				"cursorX":            cursorSchema("Cursor column"),
				"cursorLine":         cursorSchema("Cursor line (0-based)"),
				"prevCursorX":        cursorSchema("Cursor column before the edit"),
				"prevCursorLine":     cursorSchema("Cursor line before the edit"),
				"selectionStartLine": cursorSchema("First line of the selection"),
				"prevText":           map[string]any{"type": "string", "description": "Text before the edit; the single changed span is derived from it"},
				"changes":            CommonSchemas.Changes,
				"forceBalance":       map[string]any{"type": "boolean"},
				"partialResult":      map[string]any{"type": "boolean"},
				"returnParens":       map[string]any{"type": "boolean"},
			},
			"required": []string{"text"},
		},
		handler: tool.handle,
	}

	return tool
}

func (t *ProcessTool) handle(ctx context.Context, params json.RawMessage) (any, error) {
	var args struct {
		requestArgs
		Document string `json:"document,omitempty"`
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, types.WrapError(types.InvalidParams, "Invalid process parameters", err)
	}

	settings := t.server.Settings()
	req, err := buildRequest(settings, &args.requestArgs, settings.ModeValue())
	if err != nil {
		return nil, err
	}

	store := t.server.Store()
	if args.Document != "" && store != nil {
		applied, err := store.PrepareRequest(ctx, args.Document, &req)
		if err != nil {
			return nil, types.WrapError(types.DatabaseError, "Failed to load document snapshot", err)
		}
		if applied {
			t.server.Log("debug", "Using stored snapshot", map[string]any{"document": args.Document})
		}
	}

	if err := isCancelled(ctx); err != nil {
		return nil, err
	}

	answer := bridge.Process(req)

	if args.Document != "" && store != nil {
		language := languageOf(settings, &args.requestArgs)
		if err := store.RememberAnswer(ctx, args.Document, language, req, answer); err != nil {
			return nil, types.WrapError(types.DatabaseError, "Failed to store document snapshot", err)
		}
	}

	if !answer.Success {
		t.server.Log("info", "Processing failed", map[string]any{
			"error":  answer.Error.Name,
			"lineNo": answer.Error.LineNo,
			"x":      answer.Error.X,
		})
		return types.TextResult(describeError(answer.Error), answer, true), nil
	}
	return types.TextResult(answer.Text, answer, false), nil
}
