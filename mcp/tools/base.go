package tools

import (
	"context"
	"encoding/json"

	"github.com/oxhq/parinfer/mcp/types"
)

// BaseTool provides common tool functionality
type BaseTool struct {
	name        string
	description string
	inputSchema map[string]any
	handler     types.ToolHandler
}

// Name returns the tool name
func (t *BaseTool) Name() string {
	return t.name
}

// Description returns the tool description
func (t *BaseTool) Description() string {
	return t.description
}

// InputSchema returns the tool's input schema
func (t *BaseTool) InputSchema() map[string]any {
	return t.inputSchema
}

// Handler returns the tool's handler function
func (t *BaseTool) Handler() types.ToolHandler {
	return t.handler
}

// ToolBuilder helps construct tools with fluent interface
type ToolBuilder struct {
	tool *BaseTool
}

// NewTool creates a new tool builder
func NewTool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool: &BaseTool{
			name:        name,
			inputSchema: make(map[string]any),
		},
	}
}

// WithDescription sets the tool description
func (b *ToolBuilder) WithDescription(desc string) *ToolBuilder {
	b.tool.description = desc
	return b
}

// WithInputSchema sets the input schema
func (b *ToolBuilder) WithInputSchema(schema map[string]any) *ToolBuilder {
	b.tool.inputSchema = schema
	return b
}

// WithHandler sets the handler function
func (b *ToolBuilder) WithHandler(handler types.ToolHandler) *ToolBuilder {
	b.tool.handler = handler
	return b
}

// Build returns the constructed tool
func (b *ToolBuilder) Build() types.Tool {
	return b.tool
}

func cursorSchema(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     0,
		"description": description,
	}
}

// CommonSchemas provides reusable schema definitions
var CommonSchemas = struct {
	Text     map[string]any
	Mode     map[string]any
	Language map[string]any
	Path     map[string]any
	Document map[string]any
	Options  map[string]any
	Changes  map[string]any
	Patterns map[string]any
}{
	Text: map[string]any{
		"type":        "string",
		"description": "Lisp source text",
	},
	Mode: map[string]any{
		"type":        "string",
		"enum":        []string{"indent", "paren", "smart", "i", "p", "s"},
		"description": "indent: parens follow indentation; paren: indentation follows parens; smart: indent mode that preserves structure around the cursor",
	},
	Language: map[string]any{
		"type":        "string",
		"enum":        []string{"clojure", "janet", "lisp", "racket", "guile", "scheme", "hy", "fennel"},
		"description": "Dialect preset for comment and string syntax",
	},
	Path: map[string]any{
		"type":        "string",
		"description": "File path; its extension selects the dialect when no language is given",
	},
	Document: map[string]any{
		"type":        "string",
		"description": "Editor document key; the previous text and cursor stored under it are used to infer the edit",
	},
	Options: map[string]any{
		"type":        "object",
		"description": "Full engine options (cursorX, cursorLine, changes, commentChar, lispBlockComments, ...). Replaces the dialect preset when given.",
	},
	Changes: map[string]any{
		"type":        "array",
		"description": "Edits since the previous call, against the previous text",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"lineNo":  map[string]any{"type": "integer"},
				"x":       map[string]any{"type": "integer"},
				"oldText": map[string]any{"type": "string"},
				"newText": map[string]any{"type": "string"},
			},
			"required": []string{"lineNo", "x", "oldText", "newText"},
		},
	},
	Patterns: map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	},
}

// ParseParams is a helper to unmarshal parameters with proper error handling
func ParseParams[T any](params json.RawMessage) (*T, error) {
	var result T
	if len(params) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func notifyProgress(ctx context.Context, server types.ServerInterface, progress, total float64, message string) {
	if server == nil {
		return
	}
	server.ReportProgress(ctx, progress, total, message)
}

func isCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
