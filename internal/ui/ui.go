// Package ui is the terminal workbench: a project explorer, editor tabs, a
// status bar and a bottom panel with problems or the terminal.
//
// The model owns one workspace session. Key presses become session
// operations; diagnostics and completions run as commands and their results
// pass through the session's correlator when they come back.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/vcoder/internal/fstree"
	"github.com/tinovyatkin/vcoder/internal/provider"
	"github.com/tinovyatkin/vcoder/internal/terminal"
	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	explorerWidth = 30
	panelHeight   = 8
)

type focus int

const (
	focusExplorer focus = iota
	focusEditor
	focusTerminal
)

type panel int

const (
	panelProblems panel = iota
	panelTerminal
)

// Options configure a Model. Nil providers fall back to the canned ones.
type Options struct {
	Tree        *fstree.Tree
	Diagnostics provider.DiagnosticsProvider
	Completion  provider.CompletionProvider
	Terminal    *terminal.Terminal
	Styles      *Styles
	Logger      *logrus.Entry

	// Context scopes provider calls.
	Context context.Context
}

// TreeMsg replaces the explorer tree, as after a file system change.
type TreeMsg struct {
	Tree *fstree.Tree
}

// diagnosticsMsg carries a diagnostics provider result.
type diagnosticsMsg struct {
	token workspace.Token
	diags []workspace.Diagnostic
	err   error
}

// completionMsg carries a completion provider result.
type completionMsg struct {
	token workspace.Token
	items []workspace.Completion
	err   error
}

// activity records the last session change for the status bar.
type activity struct {
	last workspace.Change
}

// Model is the Bubble Tea model of the workbench.
type Model struct {
	ctx        context.Context
	log        *logrus.Entry
	session    *workspace.Session
	correlator *workspace.Correlator

	diagnostics provider.DiagnosticsProvider
	completion  provider.CompletionProvider
	term        *terminal.Terminal

	keys   KeyMap
	styles Styles
	help   help.Model
	input  textinput.Model

	explorer explorer
	activity *activity
	focus    focus
	panel    panel
	popup    bool
	selected int
	message  string

	width, height int
}

// New creates the workbench model with an empty session.
func New(opts Options) (Model, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "ui")

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	term := opts.Terminal
	if term == nil {
		var err error
		if term, err = terminal.New(terminal.DefaultScrollback); err != nil {
			return Model{}, err
		}
	}

	styles := NewStyles(true)
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	input := textinput.New()
	input.Prompt = "$ "
	input.Placeholder = "type a command"

	session := workspace.NewSession(workspace.WithLogger(log))
	act := &activity{}
	session.Subscribe(func(c workspace.Change) { act.last = c })

	m := Model{
		ctx:         ctx,
		log:         log.WithField("session", session.ID()),
		session:     session,
		correlator:  workspace.NewCorrelator(session),
		diagnostics: opts.Diagnostics,
		completion:  opts.Completion,
		term:        term,
		keys:        DefaultKeyMap(),
		styles:      styles,
		help:        help.New(),
		input:       input,
		explorer:    newExplorer(opts.Tree),
		activity:    act,
		focus:       focusExplorer,
		width:       defaultWidth,
		height:      defaultHeight,
	}
	if m.diagnostics == nil {
		m.diagnostics = provider.CannedDiagnostics{}
	}
	if m.completion == nil {
		m.completion = provider.CannedCompletions{}
	}
	return m, nil
}

// Session returns the model's workspace session.
func (m Model) Session() *workspace.Session { return m.session }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-explorerWidth-8, 10)
		return m, nil

	case TreeMsg:
		m.explorer.replace(msg.Tree)
		return m, nil

	case diagnosticsMsg:
		m.acceptDiagnostics(msg)
		return m, nil

	case completionMsg:
		m.acceptCompletions(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Terminal):
		return m.toggleTerminal()
	}

	if m.popup {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selected = max(m.selected-1, 0)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if list, ok := m.completions(); ok {
				m.selected = min(m.selected+1, len(list.Items)-1)
			}
			return m, nil
		case key.Matches(msg, m.keys.Accept):
			return m.acceptItem()
		case key.Matches(msg, m.keys.Dismiss):
			m.popup = false
			return m, nil
		}
		m.popup = false
	}

	switch {
	case key.Matches(msg, m.keys.FocusNext):
		m.focusNext()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.CloseTab):
		m.closeActive()
		return m, nil
	}

	switch m.focus {
	case focusExplorer:
		return m.explorerKey(msg)
	case focusTerminal:
		return m.terminalKey(msg)
	default:
		return m.editorKey(msg)
	}
}

func (m Model) explorerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.explorer.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.explorer.move(1)
	case key.Matches(msg, m.keys.Open):
		n, ok := m.explorer.current()
		if !ok {
			return m, nil
		}
		if n.IsDir() {
			m.explorer.toggle(n)
			return m, nil
		}
		return m, m.openFile(n)
	}
	return m, nil
}

func (m Model) terminalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.setFocus(focusEditor)
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.term.Submit(m.input.Value())
		m.input.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleTerminal() (tea.Model, tea.Cmd) {
	if m.panel == panelTerminal {
		m.panel = panelProblems
		m.setFocus(focusEditor)
		return *m, nil
	}
	m.panel = panelTerminal
	m.setFocus(focusTerminal)
	return *m, textinput.Blink
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusTerminal {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) focusNext() {
	switch m.focus {
	case focusExplorer:
		m.setFocus(focusEditor)
	case focusEditor:
		if m.panel == panelTerminal {
			m.setFocus(focusTerminal)
			return
		}
		m.setFocus(focusExplorer)
	default:
		m.setFocus(focusExplorer)
	}
}

// openFile opens n in a tab and starts analyzing it.
func (m *Model) openFile(n *fstree.Node) tea.Cmd {
	m.session.Open(n.Path, n.Content)
	m.setFocus(focusEditor)
	return m.analyze(n.Path)
}

func (m *Model) cycleTab(delta int) {
	st := m.session.State()
	if st.Len() < 2 {
		return
	}
	paths := st.Paths()
	next := (st.ActiveIndex() + delta + len(paths)) % len(paths)
	if err := m.session.SetActive(paths[next]); err != nil {
		m.log.WithError(err).Warn("ui: switch tab")
	}
}

func (m *Model) closeActive() {
	doc, ok := m.session.State().Active()
	if !ok {
		return
	}
	if err := m.session.Close(doc.Path); err != nil {
		m.log.WithError(err).Warn("ui: close tab")
	}
	if m.session.State().Len() == 0 && m.focus == focusEditor {
		m.setFocus(focusExplorer)
	}
}

// analyze issues a diagnostics request for path and returns the command that
// runs the provider.
func (m *Model) analyze(path string) tea.Cmd {
	tok, err := m.correlator.Issue(workspace.KindDiagnostics, path)
	if err != nil {
		m.log.WithError(err).Warn("ui: diagnostics")
		return nil
	}
	doc, _ := m.session.State().Lookup(path)
	ctx, p, text := m.ctx, m.diagnostics, doc.Content
	return func() tea.Msg {
		diags, err := p.Analyze(ctx, text)
		return diagnosticsMsg{token: tok, diags: diags, err: err}
	}
}

// complete issues a completion request at the active cursor.
func (m *Model) complete() tea.Cmd {
	doc, ok := m.session.State().Active()
	if !ok {
		return nil
	}
	tok, err := m.correlator.Issue(workspace.KindCompletion, doc.Path)
	if err != nil {
		m.log.WithError(err).Warn("ui: completion")
		return nil
	}
	ctx, p, text := m.ctx, m.completion, doc.Content
	return func() tea.Msg {
		items, err := p.Complete(ctx, text, tok.Position)
		return completionMsg{token: tok, items: items, err: err}
	}
}

func (m *Model) acceptDiagnostics(msg diagnosticsMsg) {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("path", msg.token.Path).Warn("ui: diagnostics provider failed")
		m.correlator.Abandon(msg.token)
		return
	}
	m.correlator.AcceptDiagnostics(msg.token, msg.diags)
}

func (m *Model) acceptCompletions(msg completionMsg) {
	if msg.err != nil {
		m.log.WithError(msg.err).WithField("path", msg.token.Path).Warn("ui: completion provider failed")
		m.correlator.Abandon(msg.token)
		return
	}
	if !m.correlator.AcceptCompletions(msg.token, msg.items) {
		return
	}
	if len(msg.items) == 0 {
		m.message = "No suggestions"
		return
	}
	m.popup = true
	m.selected = 0
}

// completions returns the accepted list for the active document.
func (m Model) completions() (workspace.CompletionList, bool) {
	st := m.session.State()
	list, ok := st.Completions()
	if !ok || !st.IsActive(list.Path) || len(list.Items) == 0 {
		return workspace.CompletionList{}, false
	}
	return list, true
}
