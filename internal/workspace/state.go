package workspace

import (
	"maps"
	"slices"
)

// State is an immutable snapshot of a workspace session.
//
// Every transition method returns a new State and leaves its receiver untouched,
// so a State handed to a renderer stays valid while the session moves on.
// The zero value is an empty workspace.
type State struct {
	docs        []Document
	active      string
	hasActive   bool
	generation  uint64
	diagnostics map[string][]Diagnostic
	completions *CompletionList
}

// Len returns the number of open documents.
func (s State) Len() int { return len(s.docs) }

// Documents returns the open documents in insertion order.
func (s State) Documents() []Document { return slices.Clone(s.docs) }

// Paths returns the open paths in insertion order.
func (s State) Paths() []string {
	paths := make([]string, len(s.docs))
	for i, d := range s.docs {
		paths[i] = d.Path
	}
	return paths
}

// Lookup returns the open document for path.
func (s State) Lookup(path string) (Document, bool) {
	if i := s.index(path); i >= 0 {
		return s.docs[i], true
	}
	return Document{}, false
}

// Active returns the active document. ok is false when nothing is open.
func (s State) Active() (doc Document, ok bool) {
	if !s.hasActive {
		return Document{}, false
	}
	return s.Lookup(s.active)
}

// ActivePath returns the active path, or "" when nothing is open. The empty
// string is also a valid path; use Active or IsActive to tell them apart.
func (s State) ActivePath() string { return s.active }

// IsActive reports whether path is the active document.
func (s State) IsActive(path string) bool { return s.hasActive && s.active == path }

// ActiveIndex returns the tab index of the active document, or -1.
func (s State) ActiveIndex() int {
	if !s.hasActive {
		return -1
	}
	return s.index(s.active)
}

// Cursor returns the active document's cursor.
func (s State) Cursor() (Position, bool) {
	doc, ok := s.Active()
	if !ok {
		return Position{}, false
	}
	return doc.Cursor, true
}

// Generation returns the counter that invalidates in-flight requests.
func (s State) Generation() uint64 { return s.generation }

// Diagnostics returns the last accepted diagnostics for path.
func (s State) Diagnostics(path string) []Diagnostic {
	return slices.Clone(s.diagnostics[path])
}

// Completions returns the accepted completion list, if any.
func (s State) Completions() (CompletionList, bool) {
	if s.completions == nil {
		return CompletionList{}, false
	}
	return *s.completions.clone(), true
}

// Dirty returns the paths of modified documents in insertion order.
func (s State) Dirty() []string {
	var paths []string
	for _, d := range s.docs {
		if d.Modified {
			paths = append(paths, d.Path)
		}
	}
	return paths
}

// OpenOption customizes Open.
type OpenOption func(*openOptions)

type openOptions struct {
	cursor *Position
}

// WithCursor places the cursor at pos (clamped to the content) instead of the origin.
func WithCursor(pos Position) OpenOption {
	return func(o *openOptions) { o.cursor = &pos }
}

// Open makes path the active document, appending a new clean document when path
// is not open yet. An already open document keeps its content. The cursor is reset
// to the origin unless WithCursor is given.
func (s State) Open(path, content string, opts ...OpenOption) State {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	next := s.clone()
	next.generation++
	next.completions = nil

	i := next.index(path)
	if i < 0 {
		next.docs = append(next.docs, Document{
			Path:     path,
			Content:  content,
			revision: next.generation,
		})
		i = len(next.docs) - 1
	}

	doc := &next.docs[i]
	doc.Cursor = Origin
	if o.cursor != nil {
		doc.Cursor = ClampPosition(doc.Content, *o.cursor)
	}
	next.active = path
	next.hasActive = true
	return next
}

// Close removes path. Closing the active document activates the right-most
// remaining one with its cursor at the origin.
func (s State) Close(path string) (State, error) {
	i := s.index(path)
	if i < 0 {
		return s, unknownPath("close", path)
	}

	next := s.clone()
	next.docs = slices.Delete(next.docs, i, i+1)
	delete(next.diagnostics, path)
	if next.completions != nil && next.completions.Path == path {
		next.completions = nil
	}

	if !next.IsActive(path) {
		return next, nil
	}

	next.generation++
	next.completions = nil
	if len(next.docs) == 0 {
		next.active = ""
		next.hasActive = false
		return next, nil
	}
	last := &next.docs[len(next.docs)-1]
	last.Cursor = Origin
	next.active = last.Path
	return next, nil
}

// SetActive focuses path, keeping its last cursor.
func (s State) SetActive(path string) (State, error) {
	if s.index(path) < 0 {
		return s, unknownPath("set active", path)
	}
	if s.IsActive(path) {
		return s, nil
	}

	next := s.clone()
	next.active = path
	next.hasActive = true
	next.generation++
	next.completions = nil
	return next, nil
}

// UpdateContent replaces the content of path and marks it modified, even when the
// content is unchanged. The document's cursor is clamped to the new content.
func (s State) UpdateContent(path, content string) (State, error) {
	i := s.index(path)
	if i < 0 {
		return s, unknownPath("update", path)
	}

	next := s.clone()
	next.generation++

	doc := &next.docs[i]
	doc.Content = content
	doc.Modified = true
	doc.revision = next.generation
	doc.Cursor = ClampPosition(content, doc.Cursor)

	if next.completions != nil && next.completions.Path == path {
		next.completions = nil
	}
	return next, nil
}

// MoveCursor places the active document's cursor at the rune offset.
func (s State) MoveCursor(offset int) (State, error) {
	i := s.ActiveIndex()
	if i < 0 {
		return s, ErrNoActiveDocument
	}
	next := s.clone()
	doc := &next.docs[i]
	doc.Cursor = OffsetToPosition(doc.Content, offset)
	return next, nil
}

// SetCursor places the active document's cursor at pos, clamped to its content.
func (s State) SetCursor(pos Position) (State, error) {
	i := s.ActiveIndex()
	if i < 0 {
		return s, ErrNoActiveDocument
	}
	next := s.clone()
	doc := &next.docs[i]
	doc.Cursor = ClampPosition(doc.Content, pos)
	return next, nil
}

func (s State) withDiagnostics(path string, diags []Diagnostic) State {
	next := s.clone()
	next.diagnostics[path] = slices.Clone(diags)
	return next
}

func (s State) withCompletions(list CompletionList) State {
	next := s.clone()
	next.completions = list.clone()
	return next
}

func (s State) index(path string) int {
	return slices.IndexFunc(s.docs, func(d Document) bool { return d.Path == path })
}

// clone copies everything a transition may write to.
func (s State) clone() State {
	c := s
	c.docs = slices.Clone(s.docs)
	c.diagnostics = maps.Clone(s.diagnostics)
	if c.diagnostics == nil {
		c.diagnostics = make(map[string][]Diagnostic)
	}
	c.completions = s.completions.clone()
	return c
}
