package lspserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/vcoder/internal/provider"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const waitTimeout = 5 * time.Second

// testPipe creates an in-memory connected pair of jsonrpc2 connections.
// Returns (clientConn, serverConn).
func testPipe(t *testing.T) (jsonrpc2.Conn, jsonrpc2.Conn) {
	t.Helper()

	client, server := duplex()
	clientConn := jsonrpc2.NewConn(jsonrpc2.NewStream(client))
	serverConn := jsonrpc2.NewConn(jsonrpc2.NewStream(server))

	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	return clientConn, serverConn
}

// testClient is the client side of a server under test.
type testClient struct {
	conn        jsonrpc2.Conn
	server      *Server
	hook        *test.Hook
	diagnostics chan *protocol.PublishDiagnosticsParams
}

func startServer(t *testing.T, opts Options) *testClient {
	t.Helper()
	ctx := context.Background()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts.Logger = logrus.NewEntry(logger)

	clientConn, serverConn := testPipe(t)
	s := New(opts)
	s.attach(ctx, serverConn)
	t.Cleanup(s.Wait)

	tc := &testClient{
		conn:        clientConn,
		server:      s,
		hook:        hook,
		diagnostics: make(chan *protocol.PublishDiagnosticsParams, 16),
	}
	clientConn.Go(ctx, func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() == protocol.MethodTextDocumentPublishDiagnostics {
			var params protocol.PublishDiagnosticsParams
			if err := json.Unmarshal(req.Params(), &params); err == nil {
				tc.diagnostics <- &params
			}
			return reply(ctx, nil, nil)
		}
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	})

	var result protocol.InitializeResult
	_, err := clientConn.Call(ctx, protocol.MethodInitialize, &protocol.InitializeParams{}, &result)
	require.NoError(t, err)
	return tc
}

func (tc *testClient) notify(t *testing.T, method string, params any) {
	t.Helper()
	require.NoError(t, tc.conn.Notify(context.Background(), method, params))
}

func (tc *testClient) call(t *testing.T, method string, params, result any) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	_, err := tc.conn.Call(ctx, method, params, result)
	return err
}

func (tc *testClient) open(t *testing.T, uri protocol.DocumentURI, text string) {
	t.Helper()
	tc.notify(t, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "javascript", Version: 1, Text: text},
	})
}

func (tc *testClient) change(t *testing.T, uri protocol.DocumentURI, version int32, text string) {
	t.Helper()
	tc.notify(t, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	})
}

func (tc *testClient) state(t *testing.T) WorkspaceState {
	t.Helper()
	var st WorkspaceState
	require.NoError(t, tc.call(t, MethodWorkspaceState, nil, &st))
	return st
}

func (tc *testClient) waitDiagnostics(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-tc.diagnostics:
		return d
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func (tc *testClient) complete(t *testing.T, uri protocol.DocumentURI, line, char uint32) protocol.CompletionList {
	t.Helper()
	var list protocol.CompletionList
	require.NoError(t, tc.call(t, protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: char},
		},
	}, &list))
	return list
}

// gate blocks provider calls per input text until released.
type gate struct {
	started chan string
	release map[string]chan struct{}
}

func newGate(texts ...string) *gate {
	g := &gate{started: make(chan string, len(texts)), release: make(map[string]chan struct{})}
	for _, text := range texts {
		g.release[text] = make(chan struct{})
	}
	return g
}

func (g *gate) wait(ctx context.Context, text string) error {
	g.started <- text
	select {
	case <-g.release[text]:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) open(text string) { close(g.release[text]) }

const twelveLines = "line 1\nline 2\nline 3\nline 4\nline 5 is longer\nline 6\nline 7\nline 8 has a temp\nline 9\nline 10\nline 11\nline 12"

func TestInitializeHandshake(t *testing.T) {
	ctx := context.Background()
	clientConn, serverConn := testPipe(t)

	s := New(Options{})
	s.attach(ctx, serverConn)
	t.Cleanup(s.Wait)
	clientConn.Go(ctx, jsonrpc2.MethodNotFoundHandler)

	var result protocol.InitializeResult
	_, err := clientConn.Call(ctx, protocol.MethodInitialize, &protocol.InitializeParams{
		ClientInfo: &protocol.ClientInfo{
			Name:    "test-client",
			Version: "1.0.0",
		},
	}, &result)
	require.NoError(t, err)

	assert.Equal(t, serverName, result.ServerInfo.Name)
	assert.NotEmpty(t, result.ServerInfo.Version)
	require.NotNil(t, result.Capabilities.CompletionProvider)
	require.NotNil(t, result.Capabilities.ExecuteCommandProvider)
	assert.Equal(t, []string{commandGenerateCode, commandChat}, result.Capabilities.ExecuteCommandProvider.Commands)
}

func TestDiagnosticsOnOpen(t *testing.T) {
	tc := startServer(t, Options{})

	uri := protocol.DocumentURI("file:///tmp/app/src/App.js")
	tc.open(t, uri, twelveLines)

	diag := tc.waitDiagnostics(t)
	assert.Equal(t, uri, diag.URI)
	require.Len(t, diag.Diagnostics, 3)

	first := diag.Diagnostics[0]
	assert.Equal(t, "Missing semicolon", first.Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, first.Severity)
	assert.Equal(t, protocol.Position{Line: 4, Character: 9}, first.Range.Start)
	assert.Equal(t, "vcoder", first.Source)
}

func TestDiagnosticsClearedOnClose(t *testing.T) {
	tc := startServer(t, Options{})

	uri := protocol.DocumentURI("file:///tmp/app/src/App.js")
	tc.open(t, uri, twelveLines)
	require.NotEmpty(t, tc.waitDiagnostics(t).Diagnostics)

	tc.notify(t, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})

	diag := tc.waitDiagnostics(t)
	assert.Equal(t, uri, diag.URI)
	assert.Empty(t, diag.Diagnostics, "expected empty diagnostics after close")
	assert.Empty(t, tc.state(t).Documents)
}

func TestSupersededDiagnosticsAreNotPublished(t *testing.T) {
	g := newGate("v1", "v2")
	tc := startServer(t, Options{
		Diagnostics: provider.DiagnosticsFunc(func(ctx context.Context, text string) ([]workspace.Diagnostic, error) {
			if err := g.wait(ctx, text); err != nil {
				return nil, err
			}
			return []workspace.Diagnostic{{Line: 1, Column: 1, Message: text, Severity: workspace.SeverityInfo}}, nil
		}),
	})

	uri := protocol.DocumentURI("file:///tmp/a.js")
	tc.open(t, uri, "v1")
	<-g.started
	tc.change(t, uri, 2, "v2")
	<-g.started

	g.open("v1")
	require.Eventually(t, func() bool {
		for _, e := range tc.hook.AllEntries() {
			if e.Message == "workspace: discarding stale result" {
				return true
			}
		}
		return false
	}, waitTimeout, 10*time.Millisecond)

	g.open("v2")
	diag := tc.waitDiagnostics(t)
	require.Len(t, diag.Diagnostics, 1)
	assert.Equal(t, "v2", diag.Diagnostics[0].Message)
}

func TestCompletion(t *testing.T) {
	tc := startServer(t, Options{})

	uri := protocol.DocumentURI("file:///tmp/a.js")
	tc.open(t, uri, "const x = use")

	list := tc.complete(t, uri, 0, 13)
	assert.False(t, list.IsIncomplete)
	labels := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		labels = append(labels, it.Label)
	}
	assert.Equal(t, []string{"useState", "useEffect"}, labels)

	st := tc.state(t)
	require.Len(t, st.Documents, 1)
	assert.Equal(t, workspace.Position{Line: 1, Column: 14}, st.Documents[0].Cursor, "the request position becomes the cursor")
}

func TestCompletionForUnknownDocument(t *testing.T) {
	tc := startServer(t, Options{})

	list := tc.complete(t, "file:///tmp/never-opened.js", 0, 0)
	assert.True(t, list.IsIncomplete)
	assert.Empty(t, list.Items)
}

func TestCompletionDiscardedAfterFocusChange(t *testing.T) {
	g := newGate("a")
	tc := startServer(t, Options{
		Completion: provider.CompletionFunc(func(ctx context.Context, text string, _ workspace.Position) ([]workspace.Completion, error) {
			if err := g.wait(ctx, text); err != nil {
				return nil, err
			}
			return []workspace.Completion{{Text: "console.log"}}, nil
		}),
	})

	a := protocol.DocumentURI("file:///tmp/a.js")
	b := protocol.DocumentURI("file:///tmp/b.js")
	tc.open(t, a, "a")
	tc.open(t, b, "b")

	done := make(chan protocol.CompletionList, 1)
	go func() {
		var list protocol.CompletionList
		_, _ = tc.conn.Call(context.Background(), protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: a},
			},
		}, &list)
		done <- list
	}()
	<-g.started

	tc.notify(t, MethodDidChangeActive, &DidChangeActiveParams{URI: b})
	require.Equal(t, b, tc.state(t).Active)

	g.open("a")
	select {
	case list := <-done:
		assert.True(t, list.IsIncomplete)
		assert.Empty(t, list.Items)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for completion reply")
	}
}

func TestEditorStateMethods(t *testing.T) {
	tc := startServer(t, Options{Diagnostics: provider.DiagnosticsFunc(func(context.Context, string) ([]workspace.Diagnostic, error) {
		return nil, nil
	})})

	a := protocol.DocumentURI("file:///tmp/a.js")
	b := protocol.DocumentURI("file:///tmp/b.md")
	tc.open(t, a, "ab\ncde\nf")
	tc.open(t, b, "# title")

	tc.notify(t, MethodDidChangeActive, &DidChangeActiveParams{URI: a})
	tc.notify(t, MethodDidMoveCursor, &DidMoveCursorParams{URI: a, Offset: 5})
	tc.notify(t, MethodDidMoveCursor, &DidMoveCursorParams{URI: b, Offset: 3})
	tc.change(t, b, 2, "# changed")

	st := tc.state(t)
	assert.Equal(t, a, st.Active)
	assert.Equal(t, 1, st.Unsaved)
	require.Len(t, st.Documents, 2)

	assert.Equal(t, DocumentState{
		URI:      a,
		Language: "JavaScript",
		Cursor:   workspace.Position{Line: 2, Column: 3},
	}, st.Documents[0])
	assert.Equal(t, DocumentState{
		URI:      b,
		Language: "Markdown",
		Modified: true,
		Cursor:   workspace.Position{Line: 1, Column: 1},
	}, st.Documents[1])
}

func TestGenerateCode(t *testing.T) {
	tc := startServer(t, Options{})

	uri := protocol.DocumentURI("file:///tmp/a.js")
	tc.open(t, uri, "old\ncontent")

	var result GenerateCodeResult
	require.NoError(t, tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   commandGenerateCode,
		Arguments: []any{"validar email"},
	}, &result))

	assert.NotEmpty(t, result.Message)
	assert.NotEmpty(t, result.Steps)
	require.NotNil(t, result.Edit)
	edits := result.Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, protocol.Range{End: protocol.Position{Line: 1, Character: 7}}, edits[0].Range)
	assert.True(t, strings.HasPrefix(edits[0].NewText, "// Función para validar emails"))

	assert.False(t, tc.state(t).Documents[0].Modified, "the edit is applied by the client")
}

func TestExecuteCommandErrors(t *testing.T) {
	tc := startServer(t, Options{})

	err := tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   commandGenerateCode,
		Arguments: []any{"counter"},
	}, nil)
	require.ErrorContains(t, err, "no active document")

	err = tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{Command: commandChat}, nil)
	require.ErrorContains(t, err, "requires a string argument")

	err = tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   "vcoder.unknown",
		Arguments: []any{"x"},
	}, nil)
	require.ErrorContains(t, err, "unknown command")

	err = tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   commandChat,
		Arguments: []any{"   "},
	}, nil)
	require.ErrorContains(t, err, "empty message")
}

func TestChat(t *testing.T) {
	tc := startServer(t, Options{})

	var result ChatResult
	require.NoError(t, tc.call(t, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   commandChat,
		Arguments: []any{"hello"},
	}, &result))
	assert.NotEmpty(t, result.Reply)
}

func TestMethodNotFound(t *testing.T) {
	tc := startServer(t, Options{})
	assert.Error(t, tc.call(t, "custom/nonExistentMethod", nil, nil))
}

func TestSeverityConversion(t *testing.T) {
	assert.Equal(t, protocol.DiagnosticSeverityError, severityToLSP(workspace.SeverityError))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, severityToLSP(workspace.SeverityWarning))
	assert.Equal(t, protocol.DiagnosticSeverityInformation, severityToLSP(workspace.SeverityInfo))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, severityToLSP("hint"))
}

func TestDiagnosticRange(t *testing.T) {
	got := diagnosticRange("", workspace.Diagnostic{Line: 8, Column: 15})
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 7, Character: 14},
		End:   protocol.Position{Line: 7, Character: 1014},
	}, got)

	got = diagnosticRange("", workspace.Diagnostic{})
	assert.Equal(t, protocol.Position{}, got.Start)

	got = diagnosticRange("😀😀x", workspace.Diagnostic{Line: 1, Column: 3})
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, got.Start, "characters count UTF-16 units")
}

func TestPositionConversionCountsUTF16Units(t *testing.T) {
	text := "ab\n😀x\r\nñy"

	tests := []struct {
		pos workspace.Position
		lsp protocol.Position
	}{
		{pos: workspace.Position{Line: 1, Column: 1}, lsp: protocol.Position{Line: 0, Character: 0}},
		{pos: workspace.Position{Line: 1, Column: 3}, lsp: protocol.Position{Line: 0, Character: 2}},
		{pos: workspace.Position{Line: 2, Column: 2}, lsp: protocol.Position{Line: 1, Character: 2}},
		{pos: workspace.Position{Line: 2, Column: 3}, lsp: protocol.Position{Line: 1, Character: 3}},
		{pos: workspace.Position{Line: 3, Column: 2}, lsp: protocol.Position{Line: 2, Character: 1}},
		{pos: workspace.Position{Line: 3, Column: 3}, lsp: protocol.Position{Line: 2, Character: 2}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.lsp, toLSPPosition(text, tt.pos), "to %v", tt.pos)
		assert.Equal(t, tt.pos, fromLSPPosition(text, tt.lsp), "from %v", tt.lsp)
	}

	assert.Equal(t, workspace.Position{Line: 2, Column: 2}, fromLSPPosition(text, protocol.Position{Line: 1, Character: 1}),
		"a character inside a surrogate pair rounds up")
	assert.Equal(t, workspace.Position{Line: 9, Column: 5}, fromLSPPosition(text, protocol.Position{Line: 8, Character: 4}),
		"lines past the end are left for the session to clamp")
}

func TestCompletionOnSurrogatePairLine(t *testing.T) {
	var got workspace.Position
	tc := startServer(t, Options{
		Completion: provider.CompletionFunc(func(_ context.Context, _ string, pos workspace.Position) ([]workspace.Completion, error) {
			got = pos
			return []workspace.Completion{{Text: "x"}}, nil
		}),
	})

	uri := protocol.DocumentURI("file:///tmp/emoji.js")
	tc.open(t, uri, "😀x")

	list := tc.complete(t, uri, 0, 3)
	require.Len(t, list.Items, 1)
	assert.Equal(t, workspace.Position{Line: 1, Column: 3}, got, "the provider sees rune columns")

	st := tc.state(t)
	require.Len(t, st.Documents, 1)
	assert.Equal(t, workspace.Position{Line: 1, Column: 3}, st.Documents[0].Cursor)
}

func TestFailedProvidersSettleRequests(t *testing.T) {
	tc := startServer(t, Options{
		Diagnostics: provider.DiagnosticsFunc(func(context.Context, string) ([]workspace.Diagnostic, error) {
			return nil, assert.AnError
		}),
		Completion: provider.CompletionFunc(func(context.Context, string, workspace.Position) ([]workspace.Completion, error) {
			return nil, assert.AnError
		}),
	})

	uri := protocol.DocumentURI("file:///tmp/a.js")
	tc.open(t, uri, "cons")
	list := tc.complete(t, uri, 0, 4)
	assert.Empty(t, list.Items)

	require.Eventually(t, func() bool {
		tc.server.mu.Lock()
		defer tc.server.mu.Unlock()
		return tc.server.correlator.Pending() == 0
	}, waitTimeout, 10*time.Millisecond)
}

func TestURIToPath(t *testing.T) {
	assert.Equal(t, "/tmp/App.js", uriToPath("file:///tmp/App.js"))
	assert.Equal(t, "untitled:Untitled-1", uriToPath("untitled:Untitled-1"))
}
