package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/oxhq/parinfer/batch"
	"github.com/oxhq/parinfer/db"
	"github.com/oxhq/parinfer/internal/config"
	"github.com/oxhq/parinfer/mcp/tools"
)

// StdioServer speaks newline-delimited JSON-RPC over a reader/writer pair,
// normally stdin and stdout.
type StdioServer struct {
	config Config

	store     *db.Store
	processor *batch.FileProcessor

	reader  *bufio.Reader
	writer  *bufio.Writer
	writeMu sync.Mutex

	router    *Router
	tools     *tools.Registry
	session   *SessionState
	sessionID string

	// Debug logging
	debugLog func(format string, args ...any)
}

// NewStdioServer creates a new MCP server that communicates over stdio
func NewStdioServer(cfg Config) (*StdioServer, error) {
	return NewServer(cfg, os.Stdin, os.Stdout)
}

// NewServer creates a server bound to the given streams.
func NewServer(cfg Config, in io.Reader, out io.Writer) (*StdioServer, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.LogWriter == nil {
		cfg.LogWriter = os.Stderr
	}
	if cfg.Settings.Debug {
		cfg.Debug = true
	}

	s := &StdioServer{
		config:    cfg,
		reader:    bufio.NewReader(in),
		writer:    bufio.NewWriter(out),
		router:    NewRouter(),
		session:   NewSessionState(),
		sessionID: generateSessionID(),
	}

	if cfg.Debug {
		s.debugLog = func(format string, args ...any) {
			fmt.Fprintf(cfg.LogWriter, "[DEBUG] "+format+"\n", args...)
		}
	} else {
		s.debugLog = func(format string, args ...any) {}
	}

	database, err := db.ConnectWithToken(cfg.databaseURL(), cfg.libsqlToken(), cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.store = db.NewStore(database)

	s.processor = batch.NewFileProcessor(cfg.Settings.Fmt.Workers, batch.DefaultAtomicConfig())
	s.processor.SetDebugLog(s.debugLog)

	s.tools = tools.NewRegistry(s)
	s.registerHandlers()

	s.debugLog("Session created: %s", s.sessionID)
	return s, nil
}

// Start reads one JSON-RPC message per line until the input ends or ctx is
// cancelled. Requests are answered in order.
func (s *StdioServer) Start(ctx context.Context) error {
	s.debugLog("MCP server started, session: %s", s.sessionID)

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := s.reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					readErr <- ctx.Err()
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if errors.Is(err, io.EOF) {
					s.debugLog("EOF received, shutting down gracefully")
					return nil
				}
				return fmt.Errorf("failed to read request: %w", err)
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *StdioServer) handleLine(ctx context.Context, line []byte) {
	s.debugLog("Received: %s", truncate(string(bytes.TrimSpace(line)), 200))

	var req RequestMessage
	if err := json.Unmarshal(line, &req); err != nil {
		errMsg := fmt.Sprintf("JSON decode error: %v", err)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			errMsg = fmt.Sprintf("JSON syntax error at position %d: %v", syntaxErr.Offset, err)
		}
		s.debugLog("%s", errMsg)
		s.sendResponse(ErrorResponse(nil, ParseError, errMsg))
		return
	}

	if req.IsNotification() {
		if err := s.router.DispatchNotification(ctx, req); err != nil {
			s.debugLog("Notification %s: %v", req.Method, err)
		}
		return
	}

	s.sendResponse(s.router.DispatchRequest(ctx, req))
}

// sendResponse writes a response frame.
func (s *StdioServer) sendResponse(resp ResponseMessage) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.debugLog("Failed to marshal response: %v", err)
		data, _ = json.Marshal(ErrorResponse(resp.ID, InternalError, "failed to encode result"))
	}
	s.debugLog("Sending: %s", truncate(string(data), 200))
	s.writeFrame(data)
}

func (s *StdioServer) writeFrame(data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	// bufio.Writer errors are sticky, so Flush also reports a failed Write.
	s.writer.Write(data)
	s.writer.WriteByte('\n')
	if err := s.writer.Flush(); err != nil {
		s.debugLog("Failed to write frame: %v", err)
	}
}

// Settings implements types.ServerInterface.
func (s *StdioServer) Settings() *config.Config { return s.config.Settings }

// Store implements types.ServerInterface.
func (s *StdioServer) Store() *db.Store { return s.store }

// FileProcessor implements types.ServerInterface.
func (s *StdioServer) FileProcessor() *batch.FileProcessor { return s.processor }

// SessionID implements types.ServerInterface.
func (s *StdioServer) SessionID() string { return s.sessionID }

// ReportProgress emits notifications/progress when the current call carries
// a progress token.
func (s *StdioServer) ReportProgress(ctx context.Context, progress, total float64, message string) {
	token, ok := progressTokenFromContext(ctx)
	if !ok {
		return
	}
	s.sendProgressNotification(token, progress, total, message)
}

// Tools exposes the registry so callers can add tools before Start.
func (s *StdioServer) Tools() *tools.Registry { return s.tools }

// Close cleans up resources
func (s *StdioServer) Close() error {
	if s.processor != nil {
		s.processor.Cleanup()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
