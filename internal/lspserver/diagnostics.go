package lspserver

import (
	"context"
	"unicode/utf16"

	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/vcoder/internal/workspace"
)

// scheduleDiagnostics asks the diagnostics provider about path's current
// content. The caller holds s.mu.
func (s *Server) scheduleDiagnostics(path string) {
	tok, err := s.correlator.Issue(workspace.KindDiagnostics, path)
	if err != nil {
		s.log.WithError(err).Warn("lsp: diagnostics")
		return
	}
	doc, _ := s.session.State().Lookup(path)
	text := doc.Content

	s.goAsync(func(ctx context.Context) {
		diags, err := s.diagnostics.Analyze(ctx, text)
		if err != nil {
			if ctx.Err() == nil {
				s.log.WithError(err).WithField("uri", path).Warn("lsp: diagnostics provider failed")
			}
			s.mu.Lock()
			s.correlator.Abandon(tok)
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.correlator.AcceptDiagnostics(tok, diags) {
			st := s.session.State()
			doc, _ := st.Lookup(path)
			s.publishDiagnostics(ctx, path, doc.Content, st.Diagnostics(path))
		}
	})
}

// publishDiagnostics sends diags for docURI, whose content is text, to the
// client. The caller holds s.mu so that publications reach the client in
// session order.
func (s *Server) publishDiagnostics(ctx context.Context, docURI, text string, diags []workspace.Diagnostic) {
	if err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: convertDiagnostics(text, diags),
	}); err != nil {
		s.log.WithError(err).Warn("lsp: failed to publish diagnostics")
	}
}

// convertDiagnostics converts workspace diagnostics on text to LSP diagnostics.
func convertDiagnostics(text string, diags []workspace.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		source := d.Source
		if source == "" {
			source = serverName
		}
		out = append(out, protocol.Diagnostic{
			Range:    diagnosticRange(text, d),
			Severity: severityToLSP(d.Severity),
			Source:   source,
			Message:  d.Message,
		})
	}
	return out
}

// diagnosticRange converts a diagnostic's 1-based position to an LSP Range.
// Diagnostics mark a point; the range extends to the end of the line to make
// it visible.
func diagnosticRange(text string, d workspace.Diagnostic) protocol.Range {
	start := toLSPPosition(text, workspace.Position{Line: d.Line, Column: d.Column})
	end := start
	end.Character = start.Character + 1000 // Clients clamp to the actual line length.
	return protocol.Range{Start: start, End: end}
}

// severityToLSP converts a workspace Severity to an LSP DiagnosticSeverity.
func severityToLSP(s workspace.Severity) protocol.DiagnosticSeverity {
	switch s {
	case workspace.SeverityError:
		return protocol.DiagnosticSeverityError
	case workspace.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case workspace.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

// toLSPPosition converts a 1-based rune position in text to a 0-based LSP
// position, whose character counts UTF-16 code units.
func toLSPPosition(text string, p workspace.Position) protocol.Position {
	runes := lineRunes(text, p.Line)
	units := 0
	for i := range max(p.Column-1, 0) {
		if i >= len(runes) {
			units++
			continue
		}
		units += utf16.RuneLen(runes[i])
	}
	return protocol.Position{Line: clampUint32(p.Line - 1), Character: clampUint32(units)}
}

// fromLSPPosition converts a 0-based LSP position on text to a 1-based rune
// position. A character inside a surrogate pair rounds up to the next rune.
func fromLSPPosition(text string, p protocol.Position) workspace.Position {
	line := int(p.Line) + 1
	runes := lineRunes(text, line)
	units := int(p.Character)
	col := 0
	for col < len(runes) && units > 0 {
		units -= utf16.RuneLen(runes[col])
		col++
	}
	return workspace.Position{Line: line, Column: col + max(units, 0) + 1}
}

// lineRunes returns the runes of the 1-based line n, or nil when text has no
// such line.
func lineRunes(text string, n int) []rune {
	if n < 1 || n > workspace.LineCount(text) {
		return nil
	}
	return []rune(workspace.Line(text, n))
}

// clampUint32 safely converts an int to uint32, clamping negative values to 0.
func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v) //nolint:gosec // line/column numbers are well within uint32 range
}
