package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinovyatkin/vcoder/internal/provider"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

func (m Model) editorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	doc, ok := m.session.State().Active()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Complete):
		return m, m.complete()
	case key.Matches(msg, m.keys.Left):
		m.moveBy(doc, -1)
	case key.Matches(msg, m.keys.Right):
		m.moveBy(doc, 1)
	case key.Matches(msg, m.keys.Up):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line - 1, Column: doc.Cursor.Column})
	case key.Matches(msg, m.keys.Down):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line + 1, Column: doc.Cursor.Column})
	case key.Matches(msg, m.keys.PageUp):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line - m.editorHeight(), Column: doc.Cursor.Column})
	case key.Matches(msg, m.keys.PageDown):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line + m.editorHeight(), Column: doc.Cursor.Column})
	case key.Matches(msg, m.keys.Home):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line, Column: 1})
	case key.Matches(msg, m.keys.End):
		m.setCursor(workspace.Position{Line: doc.Cursor.Line, Column: int(^uint(0) >> 1)})
	case key.Matches(msg, m.keys.Backspace):
		return m, m.backspace(doc)
	case key.Matches(msg, m.keys.Newline):
		return m, m.insert(doc, "\n")
	case msg.Type == tea.KeySpace:
		return m, m.insert(doc, " ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return m, m.insert(doc, string(msg.Runes))
	}
	return m, nil
}

func (m *Model) moveBy(doc workspace.Document, delta int) {
	off := workspace.PositionToOffset(doc.Content, doc.Cursor)
	if err := m.session.MoveCursor(workspace.StepOffset(doc.Content, off, delta)); err != nil {
		m.log.WithError(err).Debug("ui: move cursor")
	}
}

func (m *Model) setCursor(pos workspace.Position) {
	pos.Line = max(pos.Line, 1)
	if err := m.session.SetCursor(pos); err != nil {
		m.log.WithError(err).Debug("ui: set cursor")
	}
}

// insert puts s at the cursor of doc and moves the cursor past it.
func (m *Model) insert(doc workspace.Document, s string) tea.Cmd {
	off := workspace.PositionToOffset(doc.Content, doc.Cursor)
	return m.replace(doc, off, off, s)
}

func (m *Model) backspace(doc workspace.Document) tea.Cmd {
	off := workspace.PositionToOffset(doc.Content, doc.Cursor)
	if off == 0 {
		return nil
	}
	return m.replace(doc, workspace.StepOffset(doc.Content, off, -1), off, "")
}

// replace swaps the runes [start, end) of doc for s, leaves the cursor after
// s and starts analyzing the new content.
func (m *Model) replace(doc workspace.Document, start, end int, s string) tea.Cmd {
	runes := []rune(doc.Content)
	content := string(runes[:start]) + s + string(runes[end:])
	if err := m.session.UpdateContent(doc.Path, content); err != nil {
		m.log.WithError(err).Warn("ui: update content")
		return nil
	}
	if err := m.session.MoveCursor(start + len([]rune(s))); err != nil {
		m.log.WithError(err).Debug("ui: move cursor")
	}
	return m.analyze(doc.Path)
}

// acceptItem replaces the word before the cursor with the selected completion.
func (m Model) acceptItem() (tea.Model, tea.Cmd) {
	m.popup = false
	list, ok := m.completions()
	doc, active := m.session.State().Active()
	if !ok || !active || m.selected >= len(list.Items) {
		return m, nil
	}
	item := list.Items[m.selected]
	word := provider.WordBefore(doc.Content, doc.Cursor)
	end := workspace.PositionToOffset(doc.Content, doc.Cursor)
	return m, m.replace(doc, end-len([]rune(word)), end, item.Text)
}
