package mcp

import "sync"

// SessionState captures negotiated protocol details and client preferences
// for the active connection.
type SessionState struct {
	mu              sync.RWMutex
	initialized     bool
	protocolVersion string
	clientName      string
	loggingLevel    LogLevel
}

// NewSessionState returns a session state that logs at info and above.
func NewSessionState() *SessionState {
	return &SessionState{loggingLevel: LogLevelInfo}
}

// MarkInitialized records the handshake.
func (s *SessionState) MarkInitialized(protocolVersion, clientName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.protocolVersion = protocolVersion
	s.clientName = clientName
}

// Initialized reports whether the handshake has completed.
func (s *SessionState) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// ProtocolVersion returns the version the client asked for.
func (s *SessionState) ProtocolVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocolVersion
}

// ClientName returns the client's self-reported name.
func (s *SessionState) ClientName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientName
}

// SetLoggingLevel stores the requested minimum logging level.
func (s *SessionState) SetLoggingLevel(level LogLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggingLevel = level
}

// LoggingLevel returns the currently configured minimum logging level.
func (s *SessionState) LoggingLevel() LogLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggingLevel
}
