// Package lspserver implements a Language Server Protocol server for vcoder.
//
// The server owns one workspace session. Document sync notifications become
// session operations, diagnostics and completions come from the configured
// providers, and every provider result passes through the session's
// correlator before it reaches the client.
//
// Transport: stdio (--stdio).
// Protocol: LSP 3.16 types via go.lsp.dev/protocol, JSON-RPC via go.lsp.dev/jsonrpc2.
package lspserver

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/vcoder/internal/assistant"
	"github.com/tinovyatkin/vcoder/internal/provider"
	"github.com/tinovyatkin/vcoder/internal/version"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const serverName = "vcoder"

// Custom methods for editor state that LSP has no notion of.
const (
	MethodDidChangeActive = "vcoder/didChangeActive"
	MethodDidMoveCursor   = "vcoder/didMoveCursor"
	MethodWorkspaceState  = "vcoder/workspaceState"
)

// Options configure a Server. Nil providers fall back to the canned ones.
type Options struct {
	Diagnostics provider.DiagnosticsProvider
	Completion  provider.CompletionProvider
	Generator   assistant.ResponseProvider
	Chat        assistant.ResponseProvider
	Logger      *logrus.Entry
}

// Server is the vcoder LSP server.
//
// Messages are handled in the order they are read. mu serializes access to
// the session between the read loop and provider goroutines.
type Server struct {
	conn jsonrpc2.Conn
	log  *logrus.Entry

	mu         sync.Mutex
	session    *workspace.Session
	correlator *workspace.Correlator

	diagnostics provider.DiagnosticsProvider
	completion  provider.CompletionProvider
	generator   assistant.ResponseProvider
	chat        assistant.ResponseProvider

	// ctx scopes provider calls; it is canceled when the connection ends.
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New creates a new LSP server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "lsp")

	s := &Server{
		log:         log,
		diagnostics: opts.Diagnostics,
		completion:  opts.Completion,
		generator:   opts.Generator,
		chat:        opts.Chat,
	}
	if s.diagnostics == nil {
		s.diagnostics = provider.CannedDiagnostics{}
	}
	if s.completion == nil {
		s.completion = provider.CannedCompletions{}
	}
	if s.generator == nil {
		s.generator = assistant.CodeGenerator{}
	}
	if s.chat == nil {
		s.chat = &assistant.Chat{}
	}
	s.session = workspace.NewSession(workspace.WithLogger(log))
	s.log = log.WithField("session", s.session.ID())
	s.correlator = workspace.NewCorrelator(s.session)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// RunStdio starts the LSP server on stdin/stdout.
// It blocks until the connection is closed or the context is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Serve(ctx, stdioReadWriteCloser{})
}

// Serve runs the server over rwc until the connection is closed or ctx is
// cancelled. In-flight provider calls are cancelled and awaited on return.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.attach(ctx, conn)
	defer s.Wait()

	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.Done():
		return conn.Err()
	}
}

// attach binds s to conn and starts reading messages. Each message is handled
// on the read loop; handlers that wait on providers reply from their own
// goroutine so later messages are not held up.
func (s *Server) attach(ctx context.Context, conn jsonrpc2.Conn) {
	s.conn = conn
	s.ctx, s.cancel = context.WithCancel(ctx)
	conn.Go(ctx, s.handle)
}

// Wait cancels outstanding provider calls and waits for them to finish.
func (s *Server) Wait() {
	s.cancel()
	s.inflight.Wait()
}

// goAsync runs fn on its own goroutine under the server context.
func (s *Server) goAsync(fn func(ctx context.Context)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		fn(s.ctx)
	}()
}

// handle dispatches incoming JSON-RPC messages to the appropriate handler.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.log.WithField("method", req.Method()).Trace("lsp: message")

	switch req.Method() {
	// Lifecycle
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		return s.conn.Close()
	case protocol.MethodSetTrace:
		return reply(ctx, nil, nil)

	// Document sync
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(ctx, reply, req)

	// Language features
	case protocol.MethodTextDocumentCompletion:
		return s.handleCompletion(ctx, reply, req)

	// Editor state
	case MethodDidChangeActive:
		return s.handleDidChangeActive(ctx, reply, req)
	case MethodDidMoveCursor:
		return s.handleDidMoveCursor(ctx, reply, req)
	case MethodWorkspaceState:
		return s.handleWorkspaceState(ctx, reply, req)

	// Workspace
	case protocol.MethodWorkspaceExecuteCommand:
		return s.handleExecuteCommand(ctx, reply, req)
	case protocol.MethodWorkspaceDidChangeConfiguration:
		return reply(ctx, nil, nil)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// handleInitialize responds to the initialize request with server capabilities.
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.log.Infof("lsp: initialize from %s", clientInfoString(params.ClientInfo))

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{commandGenerateCode, commandChat},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.Version(),
		},
	}

	return reply(ctx, result, nil)
}

// replyParseError sends a JSON-RPC parse error.
func replyParseError(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.ParseError, "invalid params: %v", err))
}

// clientInfoString formats client info for logging.
func clientInfoString(info *protocol.ClientInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

// stdioReadWriteCloser wraps stdin/stdout as an io.ReadWriteCloser for JSON-RPC.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
