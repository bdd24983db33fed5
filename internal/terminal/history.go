package terminal

import (
	"fmt"
	"strings"

	"github.com/armon/circbuf"
)

// DefaultScrollback is the history size used when none is configured.
const DefaultScrollback = 64 * 1024

// History is a terminal transcript that keeps only the most recent bytes.
type History struct {
	buf *circbuf.Buffer
}

// NewHistory returns a history holding at most size bytes.
func NewHistory(size int64) (*History, error) {
	if size <= 0 {
		size = DefaultScrollback
	}
	buf, err := circbuf.NewBuffer(size)
	if err != nil {
		return nil, fmt.Errorf("scrollback buffer: %w", err)
	}
	return &History{buf: buf}, nil
}

func (h *History) Write(p []byte) (int, error) { return h.buf.Write(p) }

// String returns the retained transcript.
func (h *History) String() string { return h.buf.String() }

// Lines returns the retained transcript split into lines. A line cut by the
// scrollback limit is dropped.
func (h *History) Lines() []string {
	s := h.buf.String()
	if s == "" {
		return nil
	}
	if h.buf.TotalWritten() > h.buf.Size() {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Reset empties the history.
func (h *History) Reset() { h.buf.Reset() }

// Terminal runs command lines and records them with their output.
type Terminal struct {
	history *History
}

// New returns a terminal whose history holds scrollback bytes and starts with
// the banner.
func New(scrollback int64) (*Terminal, error) {
	h, err := NewHistory(scrollback)
	if err != nil {
		return nil, err
	}
	if _, err := h.Write([]byte(Banner)); err != nil {
		return nil, err
	}
	return &Terminal{history: h}, nil
}

// Submit runs line and appends it and its output to the history.
func (t *Terminal) Submit(line string) Result {
	res := Run(line)
	if res.Clear {
		t.history.Reset()
		return res
	}
	fmt.Fprintf(t.history, "$ %s\n", line)
	if res.Output != "" {
		fmt.Fprintf(t.history, "%s\n", res.Output)
	}
	return res
}

// History returns the terminal's transcript.
func (t *Terminal) History() *History { return t.history }
