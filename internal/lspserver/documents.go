package lspserver

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/tinovyatkin/vcoder/internal/language"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

// DidChangeActiveParams is the payload of vcoder/didChangeActive.
type DidChangeActiveParams struct {
	URI protocol.DocumentURI `json:"uri"`
}

// DidMoveCursorParams is the payload of vcoder/didMoveCursor. Offset counts
// characters from the start of the document.
type DidMoveCursorParams struct {
	URI    protocol.DocumentURI `json:"uri"`
	Offset int                  `json:"offset"`
}

// DocumentState describes one open document in a WorkspaceState.
type DocumentState struct {
	URI         protocol.DocumentURI `json:"uri"`
	Language    string               `json:"language"`
	Modified    bool                 `json:"modified"`
	Cursor      workspace.Position   `json:"cursor"`
	Diagnostics int                  `json:"diagnostics"`
}

// WorkspaceState is the result of vcoder/workspaceState.
type WorkspaceState struct {
	Session    string               `json:"session"`
	Documents  []DocumentState      `json:"documents"`
	Active     protocol.DocumentURI `json:"active,omitempty"`
	Generation uint64               `json:"generation"`
	Unsaved    int                  `json:"unsaved"`
}

// handleDidOpen handles textDocument/didOpen by opening the document in the
// session and requesting diagnostics for it.
func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	path := string(params.TextDocument.URI)

	s.mu.Lock()
	s.session.Open(path, params.TextDocument.Text)
	s.scheduleDiagnostics(path)
	s.mu.Unlock()

	return reply(ctx, nil, nil)
}

// handleDidChange handles textDocument/didChange by replacing the content and
// requesting fresh diagnostics.
func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	path := string(params.TextDocument.URI)

	// With full sync, the last change carries the full text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.UpdateContent(path, text); err != nil {
		s.log.WithError(err).Warn("lsp: didChange")
		return reply(ctx, nil, nil)
	}
	s.scheduleDiagnostics(path)
	return reply(ctx, nil, nil)
}

// handleDidClose handles textDocument/didClose by closing the document and
// clearing its diagnostics.
func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	path := string(params.TextDocument.URI)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Close(path); err != nil {
		s.log.WithError(err).Warn("lsp: didClose")
		return reply(ctx, nil, nil)
	}
	s.publishDiagnostics(ctx, path, "", nil)
	return reply(ctx, nil, nil)
}

// handleDidChangeActive handles vcoder/didChangeActive.
func (s *Server) handleDidChangeActive(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeActiveParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.SetActive(string(params.URI)); err != nil {
		s.log.WithError(err).Warn("lsp: didChangeActive")
	}
	return reply(ctx, nil, nil)
}

// handleDidMoveCursor handles vcoder/didMoveCursor. Moves reported for a
// document other than the active one are ignored.
func (s *Server) handleDidMoveCursor(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidMoveCursorParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.State().IsActive(string(params.URI)) {
		s.log.WithField("uri", params.URI).Debug("lsp: cursor move for inactive document ignored")
		return reply(ctx, nil, nil)
	}
	if err := s.session.MoveCursor(params.Offset); err != nil {
		s.log.WithError(err).Warn("lsp: didMoveCursor")
	}
	return reply(ctx, nil, nil)
}

// handleWorkspaceState replies with a snapshot of the session.
func (s *Server) handleWorkspaceState(ctx context.Context, reply jsonrpc2.Replier, _ jsonrpc2.Request) error {
	s.mu.Lock()
	st := s.session.State()
	s.mu.Unlock()

	return reply(ctx, snapshot(s.session.ID(), st), nil)
}

func snapshot(id string, st workspace.State) WorkspaceState {
	docs := st.Documents()
	out := WorkspaceState{
		Session:    id,
		Documents:  make([]DocumentState, 0, len(docs)),
		Active:     protocol.DocumentURI(st.ActivePath()),
		Generation: st.Generation(),
		Unsaved:    len(st.Dirty()),
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, DocumentState{
			URI:         protocol.DocumentURI(d.Path),
			Language:    language.Name(uriToPath(d.Path)),
			Modified:    d.Modified,
			Cursor:      d.Cursor,
			Diagnostics: len(st.Diagnostics(d.Path)),
		})
	}
	return out
}

// uriToPath converts a file:// URI to a local file path. Other URIs are
// returned unchanged.
func uriToPath(docURI string) string {
	if !strings.HasPrefix(docURI, uri.FileScheme+"://") {
		return docURI
	}
	u, err := uri.Parse(docURI)
	if err != nil {
		return strings.TrimPrefix(docURI, "file://")
	}
	return u.Filename()
}
