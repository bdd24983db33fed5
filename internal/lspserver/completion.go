package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/vcoder/internal/workspace"
)

// handleCompletion handles textDocument/completion. The requested document
// becomes active with its cursor at the request position, then the provider
// runs off the read loop. If the session moved on before the provider
// returned, the reply is an empty incomplete list.
func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	path := string(params.TextDocument.URI)

	s.mu.Lock()
	doc, _ := s.session.State().Lookup(path)
	tok, text, err := s.issueCompletion(path, fromLSPPosition(doc.Content, params.Position))
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Warn("lsp: completion")
		return reply(ctx, emptyCompletionList(), nil)
	}

	s.goAsync(func(pctx context.Context) {
		items, err := s.completion.Complete(pctx, text, tok.Position)
		if err != nil {
			if pctx.Err() == nil {
				s.log.WithError(err).WithField("uri", path).Warn("lsp: completion provider failed")
			}
			s.mu.Lock()
			s.correlator.Abandon(tok)
			s.mu.Unlock()
			_ = reply(ctx, emptyCompletionList(), nil)
			return
		}

		s.mu.Lock()
		accepted := s.correlator.AcceptCompletions(tok, items)
		s.mu.Unlock()

		if !accepted {
			_ = reply(ctx, emptyCompletionList(), nil)
			return
		}
		_ = reply(ctx, convertCompletions(items), nil)
	})
	return nil
}

// issueCompletion focuses path at pos and issues a completion token. The
// caller holds s.mu.
func (s *Server) issueCompletion(path string, pos workspace.Position) (workspace.Token, string, error) {
	st := s.session.State()
	if _, ok := st.Lookup(path); !ok {
		return workspace.Token{}, "", &workspace.UnknownPathError{Op: "completion", Path: path}
	}
	if !st.IsActive(path) {
		if err := s.session.SetActive(path); err != nil {
			return workspace.Token{}, "", err
		}
	}
	if err := s.session.SetCursor(pos); err != nil {
		return workspace.Token{}, "", err
	}
	tok, err := s.correlator.Issue(workspace.KindCompletion, path)
	if err != nil {
		return workspace.Token{}, "", err
	}
	doc, _ := s.session.State().Lookup(path)
	return tok, doc.Content, nil
}

func emptyCompletionList() *protocol.CompletionList {
	return &protocol.CompletionList{IsIncomplete: true, Items: []protocol.CompletionItem{}}
}

// convertCompletions converts workspace completions to an LSP completion list.
func convertCompletions(items []workspace.Completion) *protocol.CompletionList {
	out := &protocol.CompletionList{Items: make([]protocol.CompletionItem, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, protocol.CompletionItem{
			Label:  it.Text,
			Detail: it.Detail,
			Kind:   protocol.CompletionItemKindSnippet,
		})
	}
	return out
}
