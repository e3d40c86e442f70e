// Package types provides shared types and interfaces for MCP components.
// It keeps the tools package free of a dependency on the server.
package types

import (
	"context"
	"encoding/json"

	"github.com/oxhq/parinfer/batch"
	"github.com/oxhq/parinfer/db"
	"github.com/oxhq/parinfer/internal/config"
)

// ServerInterface defines what tools need from the server.
type ServerInterface interface {
	Settings() *config.Config
	Store() *db.Store
	FileProcessor() *batch.FileProcessor
	SessionID() string
	ReportProgress(ctx context.Context, progress, total float64, message string)
	Log(level, message string, data map[string]any)
}

// ToolHandler represents a function that handles a tool call.
type ToolHandler func(ctx context.Context, params json.RawMessage) (any, error)

// Component represents a registrable MCP component.
type Component interface {
	Name() string
	Description() string
}

// Tool represents an executable tool with handler.
type Tool interface {
	Component
	Handler() ToolHandler
	InputSchema() map[string]any
}

// DefaultJSONSchemaURI represents the canonical JSON Schema reference.
const DefaultJSONSchemaURI = "https://json-schema.org/draft/2020-12/schema"

// NormalizeSchema clones the provided schema and injects required defaults.
func NormalizeSchema(schema map[string]any) map[string]any {
	cloned := cloneSchemaMap(schema)
	if cloned == nil {
		cloned = map[string]any{}
	}
	if _, ok := cloned["type"]; !ok {
		cloned["type"] = "object"
	}
	if _, ok := cloned["$schema"]; !ok {
		cloned["$schema"] = DefaultJSONSchemaURI
	}
	return cloned
}

func cloneSchemaMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}
	result := make(map[string]any, len(source))
	for key, value := range source {
		result[key] = cloneSchemaValue(value)
	}
	return result
}

func cloneSchemaValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneSchemaMap(typed)
	case []any:
		result := make([]any, len(typed))
		for i, v := range typed {
			result[i] = cloneSchemaValue(v)
		}
		return result
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// ToolDefinition is the tool metadata exposed to clients.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

// Error codes shared by the server and the tools.
const (
	// JSON-RPC 2.0
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	// Domain errors (10xxx range)
	LanguageNotFound = 10001
	ProcessFailed    = 10004
	DatabaseError    = 10008
	ValidationFailed = 10010
	FileSystemError  = 10011
)

// MCPError represents a structured error for the MCP protocol.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return e.Message
}

// NewMCPError creates an MCP error with optional data.
func NewMCPError(code int, message string, data any) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// WrapError wraps err with an MCP error code.
func WrapError(code int, message string, err error) *MCPError {
	if err == nil {
		return NewMCPError(code, message, nil)
	}
	return NewMCPError(code, message, map[string]any{"error": err.Error()})
}

// ContentBlock represents a unit of content returned by a tool.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallToolResult models the standard MCP response payload for tool calls.
type CallToolResult struct {
	Content           []ContentBlock `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError,omitempty"`
}

// TextResult builds a single-block result.
func TextResult(text string, structured any, isError bool) CallToolResult {
	return CallToolResult{
		Content:           []ContentBlock{{Type: "text", Text: text}},
		StructuredContent: structured,
		IsError:           isError,
	}
}
