package mcp

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only protocol version the server speaks.
const JSONRPCVersion = "2.0"

// ProtocolVersion is the MCP revision advertised during initialize.
const ProtocolVersion = "2024-11-05"

// Meta is the optional `_meta` object a client may attach to params.
type Meta map[string]any

// ProgressToken returns `_meta.progressToken` if present. Tokens may be
// strings or numbers.
func (m Meta) ProgressToken() (any, bool) {
	if m == nil {
		return nil, false
	}
	switch token := m["progressToken"].(type) {
	case string:
		return token, token != ""
	case float64:
		return token, true
	}
	return nil, false
}

// RequestMessage represents a JSON-RPC 2.0 request. A nil ID marks a
// notification.
type RequestMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the client expects no response.
func (r RequestMessage) IsNotification() bool {
	return r.ID == nil
}

// NotificationMessage is a server-to-client notification.
type NotificationMessage struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// ResponseMessage represents a JSON-RPC 2.0 response to a request.
type ResponseMessage struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      any          `json:"id"`
	Result  any          `json:"result,omitempty"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ErrorObject represents a JSON-RPC 2.0 error payload.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewNotification builds a notification envelope.
func NewNotification(method string, params any) NotificationMessage {
	return NotificationMessage{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
}

// SuccessResponse builds a success response with the provided result payload.
func SuccessResponse(id, result any) ResponseMessage {
	return ResponseMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// ErrorResponse builds a response containing the supplied error object.
func ErrorResponse(id any, code int, message string, data ...any) ResponseMessage {
	var extra any
	if len(data) > 0 {
		extra = data[0]
	}
	return ResponseMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
			Data:    extra,
		},
	}
}

// ensureVersion validates that a decoded message has the expected jsonrpc value.
func ensureVersion(v string) error {
	if v == JSONRPCVersion {
		return nil
	}
	if v == "" {
		return fmt.Errorf("missing jsonrpc version")
	}
	return fmt.Errorf("unsupported jsonrpc version: %s", v)
}
