package workspace

import (
	"github.com/sirupsen/logrus"
)

// Kind is the kind of asynchronous request a Token stands for.
type Kind uint8

const (
	KindDiagnostics Kind = iota
	KindCompletion
)

func (k Kind) String() string {
	switch k {
	case KindDiagnostics:
		return "diagnostics"
	case KindCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Token tags an outbound provider request with the session context it was
// issued in. Results are validated against it before they are applied.
type Token struct {
	Kind       Kind
	Path       string
	Generation uint64

	// Position is the cursor the completion was requested at.
	Position Position

	seq uint64
}

type pendingKey struct {
	kind Kind
	path string
}

// Correlator issues request tokens for a Session and applies provider results
// only while they still describe the session.
//
// Like Session, a Correlator belongs to the session's single owner.
type Correlator struct {
	session *Session
	seq     uint64
	latest  map[pendingKey]uint64
}

// NewCorrelator returns a correlator bound to s. Requests pending against a
// path are forgotten when the path is closed.
func NewCorrelator(s *Session) *Correlator {
	c := &Correlator{
		session: s,
		latest:  make(map[pendingKey]uint64),
	}
	s.Subscribe(func(ch Change) {
		if ch.Op == OpClose {
			c.forget(ch.Path)
		}
	})
	return c
}

// Issue returns a token for a new request of kind against path. It supersedes
// any earlier token of the same kind for the same path.
func (c *Correlator) Issue(kind Kind, path string) (Token, error) {
	st := c.session.State()
	doc, ok := st.Lookup(path)
	if !ok {
		return Token{}, unknownPath("issue "+kind.String(), path)
	}

	c.seq++
	tok := Token{
		Kind:       kind,
		Path:       path,
		Generation: st.Generation(),
		seq:        c.seq,
	}
	if kind == KindCompletion {
		tok.Position = doc.Cursor
	}
	c.latest[pendingKey{kind: kind, path: path}] = tok.seq
	return tok, nil
}

// Pending returns the number of outstanding requests.
func (c *Correlator) Pending() int { return len(c.latest) }

// Abandon settles tok without a result, for a request whose provider failed.
// It is a no-op when tok has already been superseded.
func (c *Correlator) Abandon(tok Token) {
	key := pendingKey{kind: tok.Kind, path: tok.Path}
	if c.latest[key] == tok.seq {
		delete(c.latest, key)
	}
}

func (c *Correlator) forget(path string) {
	delete(c.latest, pendingKey{kind: KindDiagnostics, path: path})
	delete(c.latest, pendingKey{kind: KindCompletion, path: path})
}

// AcceptDiagnostics applies diags for tok.Path unless the result is stale.
// Diagnostics apply whether or not the path is active; they are stale once the
// path's content changed, the path was closed, or a newer request was issued.
func (c *Correlator) AcceptDiagnostics(tok Token, diags []Diagnostic) bool {
	if reason := c.check(tok, KindDiagnostics); reason != "" {
		c.discard(tok, reason)
		return false
	}
	st := c.session.State()
	doc, ok := st.Lookup(tok.Path)
	switch {
	case !ok:
		c.discard(tok, "document closed")
		return false
	case doc.revision > tok.Generation:
		c.discard(tok, "content changed")
		return false
	}

	c.session.commit(OpDiagnostics, tok.Path, st.withDiagnostics(tok.Path, diags))
	return true
}

// AcceptCompletions applies items unless the result is stale. Completions only
// apply to the active document and only while the session generation is the
// one the request was issued at.
func (c *Correlator) AcceptCompletions(tok Token, items []Completion) bool {
	if reason := c.check(tok, KindCompletion); reason != "" {
		c.discard(tok, reason)
		return false
	}
	st := c.session.State()
	switch {
	case !st.IsActive(tok.Path):
		c.discard(tok, "document no longer active")
		return false
	case st.Generation() != tok.Generation:
		c.discard(tok, "session moved on")
		return false
	}

	c.session.commit(OpCompletions, tok.Path, st.withCompletions(CompletionList{
		Path:     tok.Path,
		Position: tok.Position,
		Items:    items,
	}))
	return true
}

// check settles tok against the pending table and returns a discard reason, or
// "" when tok is the latest request of its kind for its path.
func (c *Correlator) check(tok Token, kind Kind) string {
	if tok.Kind != kind {
		return "wrong kind"
	}
	key := pendingKey{kind: tok.Kind, path: tok.Path}
	latest, ok := c.latest[key]
	if !ok {
		if _, open := c.session.State().Lookup(tok.Path); !open {
			return "document closed"
		}
		return "superseded"
	}
	if latest != tok.seq {
		return "superseded"
	}
	delete(c.latest, key)
	return ""
}

func (c *Correlator) discard(tok Token, reason string) {
	entry := c.session.log.WithFields(logrus.Fields{
		"kind":       tok.Kind,
		"path":       tok.Path,
		"generation": tok.Generation,
		"reason":     reason,
	})
	if tok.Kind == KindDiagnostics {
		entry.Debug("workspace: discarding stale result")
		return
	}
	entry.Trace("workspace: discarding stale result")
}
