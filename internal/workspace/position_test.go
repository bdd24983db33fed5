package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetToPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		offset int
		want   Position
	}{
		{name: "start", text: "ab\ncde\nf", offset: 0, want: Position{1, 1}},
		{name: "second_line_start", text: "ab\ncde\nf", offset: 3, want: Position{2, 1}},
		{name: "end_of_text", text: "ab\ncde\nf", offset: 8, want: Position{3, 2}},
		{name: "before_newline", text: "ab\ncde\nf", offset: 2, want: Position{1, 3}},
		{name: "empty_text", text: "", offset: 0, want: Position{1, 1}},
		{name: "trailing_newline", text: "ab\n", offset: 3, want: Position{2, 1}},
		{name: "negative_clamps", text: "abc", offset: -4, want: Position{1, 1}},
		{name: "past_end_clamps", text: "abc", offset: 99, want: Position{1, 4}},
		{name: "crlf_next_line", text: "ab\r\ncd", offset: 4, want: Position{2, 1}},
		{name: "inside_crlf", text: "ab\r\ncd", offset: 3, want: Position{1, 3}},
		{name: "lone_cr", text: "ab\rcd", offset: 4, want: Position{2, 2}},
		{name: "runes_not_bytes", text: "añb\nü", offset: 5, want: Position{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OffsetToPosition(tt.text, tt.offset))
		})
	}
}

func TestPositionToOffsetRoundTrip(t *testing.T) {
	t.Parallel()

	texts := []string{"", "ab\ncde\nf", "x\r\ny\rz\n", "añb\nü\n\n"}
	for _, text := range texts {
		n := len([]rune(text))
		for off := 0; off <= n; off++ {
			pos := OffsetToPosition(text, off)
			back := PositionToOffset(text, pos)
			// Offsets inside a CRLF pair map to the end of the line.
			if back != off {
				assert.Equal(t, pos, OffsetToPosition(text, back), "text %q offset %d", text, off)
				continue
			}
			assert.Equal(t, off, back, "text %q offset %d", text, off)
		}
	}
}

func TestClampPosition(t *testing.T) {
	t.Parallel()

	text := "ab\ncde\nf"
	assert.Equal(t, Position{1, 1}, ClampPosition(text, Position{0, 0}))
	assert.Equal(t, Position{3, 2}, ClampPosition(text, Position{9, 9}))
	assert.Equal(t, Position{2, 4}, ClampPosition(text, Position{2, 40}))
	assert.Equal(t, Position{1, 1}, ClampPosition("", Position{3, 3}))
}

func TestStepOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		offset int
		delta  int
		want   int
	}{
		{name: "right", text: "abc", offset: 0, delta: 1, want: 1},
		{name: "left", text: "abc", offset: 2, delta: -1, want: 1},
		{name: "right_over_crlf", text: "a\r\nb", offset: 1, delta: 1, want: 3},
		{name: "left_over_crlf", text: "a\r\nb", offset: 3, delta: -1, want: 1},
		{name: "right_over_lf", text: "a\nb", offset: 1, delta: 1, want: 2},
		{name: "right_over_lone_cr", text: "a\rb", offset: 1, delta: 1, want: 2},
		{name: "several", text: "a\r\nb", offset: 0, delta: 2, want: 3},
		{name: "inside_crlf_right", text: "a\r\nb", offset: 2, delta: 1, want: 3},
		{name: "clamps_low", text: "a\r\nb", offset: 4, delta: -9, want: 0},
		{name: "clamps_high", text: "ab", offset: 1, delta: 5, want: 2},
		{name: "runes", text: "ñü", offset: 0, delta: 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StepOffset(tt.text, tt.offset, tt.delta))
		})
	}
}

func TestLine(t *testing.T) {
	t.Parallel()

	text := "ab\r\n😀x\nlast"
	assert.Equal(t, "ab", Line(text, 1))
	assert.Equal(t, "😀x", Line(text, 2))
	assert.Equal(t, "last", Line(text, 3))
	assert.Equal(t, "last", Line(text, 9), "past the end clamps to the last line")
	assert.Equal(t, "ab", Line(text, 0))
	assert.Empty(t, Line("", 1))
}

func TestLineCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, LineCount(""))
	assert.Equal(t, 3, LineCount("ab\ncde\nf"))
	assert.Equal(t, 2, LineCount("a\r\n"))
	assert.Equal(t, 3, LineCount("a\r\rb"))
}

func TestPositionString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Ln 3, Col 14", Position{Line: 3, Column: 14}.String())
}
