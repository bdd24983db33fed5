package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinovyatkin/vcoder/internal/language"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const welcome = "Select a file in the explorer to start editing"

// View implements tea.Model.
func (m Model) View() string {
	bodyHeight := max(m.height-panelHeight-2-3, 3)
	mainWidth := max(m.width-explorerWidth-4, 20)

	left := m.pane(focusExplorer).Width(explorerWidth).Height(bodyHeight).
		Render(m.explorerView(bodyHeight))
	right := m.pane(focusEditor).Width(mainWidth).Height(bodyHeight).
		Render(m.tabsView() + "\n" + m.editorView(mainWidth))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	bottom := m.pane(focusTerminal).Width(m.width - 2).Height(panelHeight).
		Render(m.panelView())

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		bottom,
		m.statusView(),
		m.help.View(m.keys),
	)
}

func (m Model) pane(f focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.FocusedPane
	}
	return m.styles.Pane
}

func (m Model) explorerView(height int) string {
	lines := []string{m.styles.Title.Render("EXPLORER")}
	rows := m.explorer.rows()
	top := max(m.explorer.selected-height+2, 0)
	for i := top; i < len(rows) && len(lines) < height; i++ {
		r := rows[i]
		name := r.node.Name
		if r.node.IsDir() {
			marker := "▾ "
			if m.explorer.collapsed[r.node.Path] {
				marker = "▸ "
			}
			name = m.styles.Folder.Render(marker + name)
		} else {
			name = "  " + name
		}
		line := strings.Repeat("  ", r.depth) + name
		if i == m.explorer.selected && m.focus == focusExplorer {
			line = m.styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) tabsView() string {
	st := m.session.State()
	if st.Len() == 0 {
		return m.styles.Muted.Render("No open files")
	}
	tabs := make([]string, 0, st.Len())
	for _, d := range st.Documents() {
		label := path.Base(d.Path)
		if d.Modified {
			label += " ●"
		}
		if st.IsActive(d.Path) {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
			continue
		}
		tabs = append(tabs, m.styles.Tab.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) editorHeight() int {
	return max(m.height-panelHeight-2-3-3, 1)
}

func (m Model) editorView(width int) string {
	doc, ok := m.session.State().Active()
	if !ok {
		return m.styles.Muted.Render(welcome)
	}

	lines := strings.Split(strings.ReplaceAll(doc.Content, "\r\n", "\n"), "\n")
	height := m.editorHeight()
	top := max(doc.Cursor.Line-height, 0)
	gutter := len(fmt.Sprint(len(lines)))

	var out []string
	for i := top; i < len(lines) && len(out) < height; i++ {
		text := lines[i]
		if i+1 == doc.Cursor.Line {
			text = m.withCursor(text, doc.Cursor.Column)
		}
		num := m.styles.Gutter.Render(fmt.Sprintf("%*d ", gutter, i+1))
		out = append(out, lipgloss.NewStyle().MaxWidth(width).Render(num+text))

		if i+1 == doc.Cursor.Line && m.popup {
			out = append(out, m.popupLines(gutter+1+doc.Cursor.Column-1)...)
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) withCursor(line string, col int) string {
	runes := []rune(line)
	i := min(max(col-1, 0), len(runes))
	under := " "
	rest := ""
	if i < len(runes) {
		under = string(runes[i])
		rest = string(runes[i+1:])
	}
	if m.focus != focusEditor {
		return string(runes[:i]) + under + rest
	}
	return string(runes[:i]) + m.styles.Cursor.Render(under) + rest
}

func (m Model) popupLines(indent int) []string {
	list, ok := m.completions()
	if !ok {
		return nil
	}
	pad := strings.Repeat(" ", indent)
	lines := make([]string, 0, len(list.Items))
	for i, it := range list.Items {
		label := fmt.Sprintf("%-14s", it.Text)
		if i == m.selected {
			label = m.styles.PopupItem.Render(label)
		} else {
			label = m.styles.Popup.Render(label)
		}
		lines = append(lines, pad+label+" "+m.styles.PopupDetail.Render(it.Detail))
	}
	return lines
}

func (m Model) panelView() string {
	if m.panel == panelTerminal {
		return m.terminalView()
	}
	return m.problemsView()
}

func (m Model) problemsView() string {
	st := m.session.State()
	var diags []workspace.Diagnostic
	doc, ok := st.Active()
	if ok {
		diags = st.Diagnostics(doc.Path)
	}
	lines := []string{m.styles.Title.Render(fmt.Sprintf("PROBLEMS (%d)", len(diags)))}
	if ok && len(diags) == 0 {
		lines = append(lines, m.styles.Muted.Render("No problems have been detected in the workspace."))
	}
	for _, d := range diags {
		lines = append(lines, fmt.Sprintf("%s %d:%d %s", m.severityIcon(d.Severity), d.Line, d.Column, d.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) severityIcon(s workspace.Severity) string {
	switch s {
	case workspace.SeverityError:
		return m.styles.Error.Render("✖")
	case workspace.SeverityWarning:
		return m.styles.Warning.Render("⚠")
	default:
		return m.styles.Info.Render("ℹ")
	}
}

func (m Model) terminalView() string {
	lines := m.term.History().Lines()
	if keep := panelHeight - 2; len(lines) > keep {
		lines = lines[len(lines)-keep:]
	}
	lines = append([]string{m.styles.Title.Render("TERMINAL")}, lines...)
	return strings.Join(append(lines, m.input.View()), "\n")
}

func (m Model) statusView() string {
	st := m.session.State()
	var parts []string
	if doc, ok := st.Active(); ok {
		parts = append(parts, doc.Cursor.String(), language.Name(doc.Path))
	}
	if n := len(st.Dirty()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unsaved", n))
	}
	switch {
	case m.message != "":
		parts = append(parts, m.message)
	case m.activity.last.Op != "":
		parts = append(parts, fmt.Sprintf("%s %s", m.activity.last.Op, m.activity.last.Path))
	}
	return m.styles.StatusBar.Width(m.width).Render(" " + strings.Join(parts, "  |  "))
}
