package mcp

import "github.com/oxhq/parinfer/mcp/types"

// Error codes following JSON-RPC 2.0 plus the domain codes tools return.
const (
	ParseError     = types.ParseError
	InvalidRequest = types.InvalidRequest
	MethodNotFound = types.MethodNotFound
	InvalidParams  = types.InvalidParams
	InternalError  = types.InternalError

	LanguageNotFound = types.LanguageNotFound
	ProcessFailed    = types.ProcessFailed
	DatabaseError    = types.DatabaseError
	ValidationFailed = types.ValidationFailed
	FileSystemError  = types.FileSystemError
)

// MCPError is the structured error tools return.
type MCPError = types.MCPError

// NewMCPError creates a new MCP error with optional data
func NewMCPError(code int, message string, data ...any) *MCPError {
	var extra any
	if len(data) > 0 {
		extra = data[0]
	}
	return types.NewMCPError(code, message, extra)
}

// WrapError wraps a regular error into an MCP error
func WrapError(code int, message string, err error) *MCPError {
	return types.WrapError(code, message, err)
}

// ErrorResponseWithData creates a JSON-RPC error response with additional data
func ErrorResponseWithData(id any, code int, message string, data any) ResponseMessage {
	resp := ErrorResponse(id, code, message)
	resp.Error.Data = data
	return resp
}
