package lspserver

import (
	"context"
	"encoding/json"
	"errors"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/vcoder/internal/assistant"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const (
	commandGenerateCode = "vcoder.generateCode"
	commandChat         = "vcoder.chat"
)

// GenerateCodeResult is the result of vcoder.generateCode. Applying Edit
// replaces the active document with the generated code.
type GenerateCodeResult struct {
	Message string                  `json:"message"`
	Steps   []string                `json:"steps"`
	Edit    *protocol.WorkspaceEdit `json:"edit"`
}

// ChatResult is the result of vcoder.chat.
type ChatResult struct {
	Reply string `json:"reply"`
}

// handleExecuteCommand dispatches workspace/executeCommand requests.
func (s *Server) handleExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	input, ok := stringArgument(params.Arguments)
	if !ok {
		return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%s requires a string argument", params.Command))
	}

	switch params.Command {
	case commandGenerateCode:
		return s.executeGenerateCode(ctx, reply, input)
	case commandChat:
		return s.executeChat(ctx, reply, input)
	default:
		return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidParams, "unknown command: %s", params.Command))
	}
}

// executeGenerateCode generates code for the prompt and replies with an edit
// that replaces the active document. The session itself changes only when the
// client applies the edit and reports it through didChange.
func (s *Server) executeGenerateCode(ctx context.Context, reply jsonrpc2.Replier, prompt string) error {
	s.mu.Lock()
	_, ok := s.session.State().Active()
	s.mu.Unlock()
	if !ok {
		return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidRequest, "%s: %v", commandGenerateCode, workspace.ErrNoActiveDocument))
	}

	s.goAsync(func(pctx context.Context) {
		resp, err := s.generator.Respond(pctx, prompt)
		if err != nil {
			_ = reply(ctx, nil, commandError(commandGenerateCode, err))
			return
		}

		s.mu.Lock()
		doc, ok := s.session.State().Active()
		s.mu.Unlock()
		if !ok {
			_ = reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidRequest, "%s: %v", commandGenerateCode, workspace.ErrNoActiveDocument))
			return
		}

		_ = reply(ctx, GenerateCodeResult{
			Message: resp.Text,
			Steps:   resp.Steps,
			Edit:    replaceDocumentEdit(doc, resp.Code),
		}, nil)
	})
	return nil
}

// executeChat replies with the assistant's answer to message.
func (s *Server) executeChat(ctx context.Context, reply jsonrpc2.Replier, message string) error {
	s.goAsync(func(pctx context.Context) {
		resp, err := s.chat.Respond(pctx, message)
		if err != nil {
			_ = reply(ctx, nil, commandError(commandChat, err))
			return
		}
		_ = reply(ctx, ChatResult{Reply: resp.Text}, nil)
	})
	return nil
}

// replaceDocumentEdit returns an edit replacing all of doc's content.
func replaceDocumentEdit(doc workspace.Document, text string) *protocol.WorkspaceEdit {
	end := workspace.OffsetToPosition(doc.Content, len([]rune(doc.Content)))
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{
			protocol.DocumentURI(doc.Path): {{
				Range: protocol.Range{
					Start: protocol.Position{},
					End:   toLSPPosition(doc.Content, end),
				},
				NewText: text,
			}},
		},
	}
}

func commandError(command string, err error) error {
	if errors.Is(err, assistant.ErrEmptyInput) {
		return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%s: %v", command, err)
	}
	return jsonrpc2.Errorf(jsonrpc2.InternalError, "%s: %v", command, err)
}

// stringArgument returns the first command argument as a string.
func stringArgument(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}
