package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

func (s *StdioServer) registerHandlers() {
	s.router.RegisterRequest("initialize", s.handleInitialize)
	s.router.RegisterRequest("ping", s.handlePing)
	s.router.RegisterRequest("tools/list", s.handleListTools)
	s.router.RegisterRequest("tools/call", s.handleCallTool)
	s.router.RegisterRequest("logging/setLevel", s.handleSetLoggingLevel)

	s.router.RegisterNotification("notifications/initialized", s.handleInitialized)
	s.router.RegisterNotification("initialized", s.handleInitialized)
	s.router.RegisterNotification("notifications/cancelled", func(ctx context.Context, msg RequestMessage) error {
		// Requests run to completion in order, so there is nothing to cancel.
		return nil
	})
}

// handleInitialize handles the MCP initialization handshake
func (s *StdioServer) handleInitialize(ctx context.Context, req RequestMessage) ResponseMessage {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo"`
	}

	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, InvalidParams, "Invalid initialize parameters")
		}
		s.debugLog("Client: %s v%s, Protocol: %s",
			params.ClientInfo.Name,
			params.ClientInfo.Version,
			params.ProtocolVersion)
	}
	s.session.MarkInitialized(params.ProtocolVersion, params.ClientInfo.Name)

	return SuccessResponse(req.ID, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools":   map[string]any{"listChanged": false},
			"logging": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "parinfer",
			"version": s.config.Version,
		},
		"instructions": "Use parinfer_process to keep parens and indentation in sync while editing Lisp code. " +
			"Pass a document name to let the server remember the previous text between calls.",
	})
}

// handleInitialized confirms initialization complete
func (s *StdioServer) handleInitialized(ctx context.Context, req RequestMessage) error {
	s.debugLog("Initialization complete")
	return nil
}

// handlePing responds to keepalive pings
func (s *StdioServer) handlePing(ctx context.Context, req RequestMessage) ResponseMessage {
	return SuccessResponse(req.ID, map[string]any{})
}

// handleListTools returns available tools to the client
func (s *StdioServer) handleListTools(ctx context.Context, req RequestMessage) ResponseMessage {
	return SuccessResponse(req.ID, map[string]any{
		"tools": s.tools.Definitions(),
	})
}

// handleCallTool executes a specific tool
func (s *StdioServer) handleCallTool(ctx context.Context, req RequestMessage) (resp ResponseMessage) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
		Meta      Meta            `json:"_meta"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid params structure")
	}
	if _, ok := s.tools.Get(params.Name); !ok {
		return ErrorResponse(req.ID, InvalidParams, fmt.Sprintf("Tool not found: %s", params.Name))
	}

	if token, ok := params.Meta.ProgressToken(); ok {
		ctx = withProgressToken(ctx, token)
	}

	defer func() {
		if r := recover(); r != nil {
			s.debugLog("Tool %s panicked: %v", params.Name, r)
			resp = ErrorResponse(req.ID, InternalError, fmt.Sprintf("tool %s failed: %v", params.Name, r))
		}
	}()

	s.debugLog("Calling tool: %s", params.Name)
	result, err := s.tools.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		var mcpErr *MCPError
		if errors.As(err, &mcpErr) {
			return ErrorResponseWithData(req.ID, mcpErr.Code, mcpErr.Message, mcpErr.Data)
		}
		return ErrorResponse(req.ID, InternalError, err.Error())
	}

	return SuccessResponse(req.ID, result)
}
