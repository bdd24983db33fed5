// Package workspace models the editor workspace: the open documents, which one
// is active, per-document cursors, and the correlation of asynchronous
// diagnostics and completion results with a session that may have moved on.
//
// State transitions are pure methods on State. Session wraps the current State
// for a single serialized owner (a UI event loop or a server holding a lock)
// and notifies subscribers after every change. Nothing in this package locks.
package workspace

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Op names the operation that produced a Change.
type Op string

const (
	OpOpen        Op = "open"
	OpClose       Op = "close"
	OpSetActive   Op = "set-active"
	OpUpdate      Op = "update"
	OpMoveCursor  Op = "move-cursor"
	OpDiagnostics Op = "diagnostics"
	OpCompletions Op = "completions"
)

// Change is delivered to subscribers after a successful transition.
type Change struct {
	Op    Op
	Path  string
	State State
}

// Listener receives session changes. It runs synchronously on the owner's
// goroutine and must not call back into the session.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Session owns the current State of one workspace.
type Session struct {
	id        string
	state     State
	listeners []subscription
	nextID    int
	log       *logrus.Entry
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for transition and discard messages.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) { s.log = log }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current snapshot.
func (s *Session) State() State { return s.state }

// Subscribe registers fn for every subsequent change and returns a function
// that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
	}
}

// Open opens path (or focuses it when already open). See State.Open.
func (s *Session) Open(path, content string, opts ...OpenOption) {
	s.commit(OpOpen, path, s.state.Open(path, content, opts...))
}

// Close closes path. See State.Close.
func (s *Session) Close(path string) error {
	next, err := s.state.Close(path)
	if err != nil {
		return err
	}
	s.commit(OpClose, path, next)
	return nil
}

// SetActive focuses an open path. See State.SetActive.
func (s *Session) SetActive(path string) error {
	next, err := s.state.SetActive(path)
	if err != nil {
		return err
	}
	s.commit(OpSetActive, path, next)
	return nil
}

// UpdateContent replaces the content of an open path. See State.UpdateContent.
func (s *Session) UpdateContent(path, content string) error {
	next, err := s.state.UpdateContent(path, content)
	if err != nil {
		return err
	}
	s.commit(OpUpdate, path, next)
	return nil
}

// MoveCursor moves the active cursor to a rune offset. See State.MoveCursor.
func (s *Session) MoveCursor(offset int) error {
	next, err := s.state.MoveCursor(offset)
	if err != nil {
		return err
	}
	s.commit(OpMoveCursor, next.active, next)
	return nil
}

// SetCursor moves the active cursor to pos. See State.SetCursor.
func (s *Session) SetCursor(pos Position) error {
	next, err := s.state.SetCursor(pos)
	if err != nil {
		return err
	}
	s.commit(OpMoveCursor, next.active, next)
	return nil
}

func (s *Session) commit(op Op, path string, next State) {
	s.state = next
	s.log.WithFields(logrus.Fields{
		"op":         op,
		"path":       path,
		"active":     next.active,
		"generation": next.generation,
	}).Trace("workspace: transition")

	change := Change{Op: op, Path: path, State: next}
	for _, sub := range slices.Clone(s.listeners) {
		sub.fn(change)
	}
}
