package mcp

import (
	"context"
	"encoding/json"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel string

const (
	LogLevelDebug     LogLevel = "debug"
	LogLevelInfo      LogLevel = "info"
	LogLevelNotice    LogLevel = "notice"
	LogLevelWarning   LogLevel = "warning"
	LogLevelError     LogLevel = "error"
	LogLevelCritical  LogLevel = "critical"
	LogLevelAlert     LogLevel = "alert"
	LogLevelEmergency LogLevel = "emergency"
)

var logLevelRank = map[LogLevel]int{
	LogLevelDebug:     0,
	LogLevelInfo:      1,
	LogLevelNotice:    2,
	LogLevelWarning:   3,
	LogLevelError:     4,
	LogLevelCritical:  5,
	LogLevelAlert:     6,
	LogLevelEmergency: 7,
}

// Valid reports whether l is one of the syslog levels MCP defines.
func (l LogLevel) Valid() bool {
	_, ok := logLevelRank[l]
	return ok
}

// LogData represents structured data for a log message
type LogData map[string]any

// LogMessage is the payload of a notifications/message notification.
type LogMessage struct {
	Level  LogLevel `json:"level"`
	Data   LogData  `json:"data,omitempty"`
	Logger string   `json:"logger,omitempty"`
}

// handleSetLoggingLevel handles logging/setLevel.
func (s *StdioServer) handleSetLoggingLevel(ctx context.Context, req RequestMessage) ResponseMessage {
	var params struct {
		Level LogLevel `json:"level"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, InvalidParams, "Invalid logging level parameters")
	}
	if !params.Level.Valid() {
		return ErrorResponse(req.ID, InvalidParams, "Unknown logging level: "+string(params.Level))
	}

	s.session.SetLoggingLevel(params.Level)
	s.debugLog("Logging level set to: %s", params.Level)

	return SuccessResponse(req.ID, map[string]any{})
}

// Log sends a notifications/message to the client when level passes the
// session threshold. Unknown levels are treated as info.
func (s *StdioServer) Log(level, message string, data map[string]any) {
	lvl := LogLevel(level)
	if !lvl.Valid() {
		lvl = LogLevelInfo
	}
	s.sendLogNotification(lvl, message, data)
}

// sendLogNotification sends a log message notification to the client
func (s *StdioServer) sendLogNotification(level LogLevel, message string, data LogData) {
	if !shouldEmitLog(s.session.LoggingLevel(), level) {
		return
	}

	payload := make(LogData, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["message"] = message
	payload["timestamp"] = time.Now().Format(time.RFC3339)

	s.emitNotification("notifications/message", LogMessage{
		Level:  level,
		Data:   payload,
		Logger: "parinfer",
	})
}

// sendProgressNotification sends a progress notification for long-running operations
func (s *StdioServer) sendProgressNotification(progressToken any, progress, total float64, message string) {
	params := map[string]any{
		"progressToken": progressToken,
		"progress":      progress,
	}
	if total > 0 {
		params["total"] = total
	}
	if message != "" {
		params["message"] = message
	}

	s.emitNotification("notifications/progress", params)
}

func shouldEmitLog(min LogLevel, level LogLevel) bool {
	minRank, ok := logLevelRank[min]
	if !ok {
		minRank = logLevelRank[LogLevelInfo]
	}
	levelRank, ok := logLevelRank[level]
	if !ok {
		levelRank = logLevelRank[LogLevelInfo]
	}
	return levelRank >= minRank
}

func (s *StdioServer) emitNotification(method string, params any) {
	data, err := json.Marshal(NewNotification(method, params))
	if err != nil {
		s.debugLog("Failed to marshal notification %s: %v", method, err)
		return
	}
	s.writeFrame(data)
}
