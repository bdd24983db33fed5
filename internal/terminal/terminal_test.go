package terminal

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want []string
	}{
		{line: "ls", want: []string{"ls"}},
		{line: "  npm    start ", want: []string{"npm", "start"}},
		{line: `git commit -m "first commit"`, want: []string{"git", "commit", "-m", "first commit"}},
		{line: `'git' "status"`, want: []string{"git", "status"}},
		{line: "ls; pwd", want: []string{"ls"}},
		{line: "echo $HOME", want: []string{"echo", "$HOME"}},
		{line: "echo $(", want: []string{"echo", "$("}},
		{line: "   ", want: nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fields(tt.line), tt.line)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	res := Run("pwd")
	assert.True(t, res.Found)
	assert.Equal(t, "/workspace/my-app", res.Output)

	res = Run("git   add .")
	assert.Equal(t, "Files staged for commit", res.Output)

	res = Run(`git commit -m 'wip'`)
	assert.True(t, res.Found)
	assert.Equal(t, "Commit created successfully", res.Output)

	res = Run(" rm -rf / ")
	assert.False(t, res.Found)
	assert.Equal(t, "Command not found: rm -rf /", res.Output)

	assert.Equal(t, Result{}, Run(""))
	assert.Equal(t, Result{Found: true, Clear: true}, Run(" clear "))
}

func TestTerminalTranscript(t *testing.T) {
	t.Parallel()

	term, err := New(0)
	require.NoError(t, err)
	for _, line := range []string{"help", "ls", "pwd", "npm install", "npm start", "git status", "git add .", `git commit -m "init"`, "make", ""} {
		term.Submit(line)
	}
	snaps.MatchSnapshot(t, term.History().String())
}

func TestTerminalClear(t *testing.T) {
	t.Parallel()

	term, err := New(0)
	require.NoError(t, err)
	term.Submit("ls")
	term.Submit("clear")
	assert.Empty(t, term.History().String())
	assert.Nil(t, term.History().Lines())

	term.Submit("pwd")
	assert.Equal(t, []string{"$ pwd", "/workspace/my-app"}, term.History().Lines())
}

func TestHistoryKeepsMostRecent(t *testing.T) {
	t.Parallel()

	h, err := NewHistory(16)
	require.NoError(t, err)
	_, _ = h.Write([]byte("first line\nsecond\nthird\n"))

	assert.Len(t, h.String(), 16)
	assert.True(t, strings.HasSuffix(h.String(), "third\n"))
	assert.Equal(t, []string{"second", "third"}, h.Lines())
}
