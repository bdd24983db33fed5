package workspace

import "slices"

// Document is one open file in a session.
type Document struct {
	// Path identifies the document and is unique within a session.
	Path string

	// Content is the full current text.
	Content string

	// Modified becomes true on the first content update and never reverts.
	Modified bool

	// Cursor is the last known cursor of this document.
	Cursor Position

	// revision is the session generation at which Content was last set.
	revision uint64
}

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a problem reported against a document.
type Diagnostic struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"`
}

// Completion is one completion suggestion.
type Completion struct {
	Text   string `json:"text"`
	Detail string `json:"detail"`
}

// CompletionList is an accepted set of completions bound to the document and
// position it was computed for.
type CompletionList struct {
	Path     string
	Position Position
	Items    []Completion
}

func (l *CompletionList) clone() *CompletionList {
	if l == nil {
		return nil
	}
	c := *l
	c.Items = slices.Clone(l.Items)
	return &c
}
