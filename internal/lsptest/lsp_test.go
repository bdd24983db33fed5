// Package lsptest implements black-box protocol tests for the vcoder LSP server.
//
// Each test launches vcoder lsp --stdio as a real subprocess and communicates
// over Content-Length-framed JSON-RPC on stdin/stdout.
package lsptest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

const sampleApp = "// Welcome to VSCode Clone\nimport React from \"react\";\n\nfunction App() {\n  return (\n    <div className=\"App\">\n      <h1>Hello World!</h1>\n    </div>\n  );\n}\n\nexport default App;"

func TestLSP_Initialize(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	result := ts.initialize(t)

	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "vcoder", result.ServerInfo.Name)
	assert.NotEmpty(t, result.ServerInfo.Version)

	caps := result.Capabilities
	sync, ok := caps.TextDocumentSync.(map[string]any)
	require.True(t, ok, "text document sync is sent as options")
	assert.Equal(t, true, sync["openClose"])
	assert.Equal(t, float64(protocol.TextDocumentSyncKindFull), sync["change"])
	require.NotNil(t, caps.CompletionProvider)
	assert.Equal(t, []string{"."}, caps.CompletionProvider.TriggerCharacters)
	require.NotNil(t, caps.ExecuteCommandProvider)
	assert.Equal(t, []string{"vcoder.generateCode", "vcoder.chat"}, caps.ExecuteCommandProvider.Commands)
}

func TestLSP_ShutdownExit(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	// Shutdown should succeed without error.
	ts.shutdown(t)

	// After exit notification, the subprocess should terminate.
	exited := make(chan error, 1)
	go func() { exited <- ts.cmd.Wait() }()

	select {
	case <-exited:
		// Process exited (exit code may be non-zero due to jsonrpc2 handler teardown).
	case <-time.After(5 * time.Second):
		t.Fatal("server process did not exit after shutdown+exit")
	}
}

func TestLSP_DiagnosticsOnDidOpen(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	uri := protocol.DocumentURI("file:///tmp/test-didopen/src/App.js")
	ts.openDocument(t, uri, sampleApp)

	diag := ts.waitDiagnostics(t)
	assert.Equal(t, uri, diag.URI)

	messages := make([]string, 0, len(diag.Diagnostics))
	for _, d := range diag.Diagnostics {
		messages = append(messages, d.Message)
	}
	assert.Equal(t, []string{
		"Missing semicolon",
		`Unused variable "temp"`,
		"Consider using const instead of let",
	}, messages)
}

func TestLSP_DiagnosticsUpdatedOnDidChange(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	uri := protocol.DocumentURI("file:///tmp/test-didchange/src/App.js")

	ts.openDocument(t, uri, sampleApp)
	diag1 := ts.waitDiagnostics(t)
	require.Len(t, diag1.Diagnostics, 3)

	// Shorter content leaves only the findings whose lines still exist.
	ts.changeDocument(t, uri, 2, "line 1\nline 2\nline 3\nline 4\nline 5 is here")
	diag2 := ts.waitDiagnostics(t)
	require.Len(t, diag2.Diagnostics, 1)
	assert.Equal(t, "Missing semicolon", diag2.Diagnostics[0].Message)
}

func TestLSP_DiagnosticsClearedOnClose(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	uri := protocol.DocumentURI("file:///tmp/test-didclose/src/App.js")

	ts.openDocument(t, uri, sampleApp)
	diag1 := ts.waitDiagnostics(t)
	require.NotEmpty(t, diag1.Diagnostics)

	// Close the document → server should publish empty diagnostics.
	ts.closeDocument(t, uri)
	diag2 := ts.waitDiagnostics(t)
	assert.Equal(t, uri, diag2.URI)
	assert.Empty(t, diag2.Diagnostics, "expected empty diagnostics after close")
}

func TestLSP_Completion(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	uri := protocol.DocumentURI("file:///tmp/test-completion/src/App.js")
	ts.openDocument(t, uri, "function App() {\n  cons\n}")
	ts.waitDiagnostics(t)

	list := ts.complete(t, uri, protocol.Position{Line: 1, Character: 6})
	require.Len(t, list.Items, 1)
	assert.Equal(t, "console.log", list.Items[0].Label)
}

func TestLSP_WorkspaceState(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	a := protocol.DocumentURI("file:///tmp/test-state/a.js")
	b := protocol.DocumentURI("file:///tmp/test-state/b.css")
	ts.openDocument(t, a, "a")
	ts.openDocument(t, b, "b")
	ts.changeDocument(t, a, 2, "aa")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var state struct {
		Active    string `json:"active"`
		Unsaved   int    `json:"unsaved"`
		Documents []struct {
			URI      string `json:"uri"`
			Language string `json:"language"`
		} `json:"documents"`
	}
	_, err := ts.conn.Call(ctx, "vcoder/workspaceState", nil, &state)
	require.NoError(t, err)

	assert.Equal(t, string(b), state.Active)
	assert.Equal(t, 1, state.Unsaved)
	require.Len(t, state.Documents, 2)
	assert.Equal(t, "CSS", state.Documents[1].Language)
}

func TestLSP_GenerateCode(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	uri := protocol.DocumentURI("file:///tmp/test-generate/api.js")
	ts.openDocument(t, uri, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	_, err := ts.conn.Call(ctx, protocol.MethodWorkspaceExecuteCommand, &protocol.ExecuteCommandParams{
		Command:   "vcoder.generateCode",
		Arguments: []any{"fetch data from an api"},
	}, &raw)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "fetchData")
}

func TestLSP_MethodNotFound(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t)
	ts.initialize(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := ts.conn.Call(ctx, "custom/nonExistentMethod", nil, nil)
	assert.Error(t, err, "unknown method should return an error")
}
