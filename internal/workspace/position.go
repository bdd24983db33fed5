package workspace

import "fmt"

// Position is a cursor location in a document.
// Both Line and Column are 1-based; Column counts runes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Origin is the first position of every document.
var Origin = Position{Line: 1, Column: 1}

// String formats the position the way the status bar shows it.
func (p Position) String() string {
	return fmt.Sprintf("Ln %d, Col %d", p.Line, p.Column)
}

// lineSpan is one line of text in rune offsets: [start, end) excludes the line break.
type lineSpan struct {
	start int
	end   int
}

// splitSpans breaks text into lines. "\n", "\r\n" and a lone "\r" each end a line.
// There is always at least one span.
func splitSpans(runes []rune) []lineSpan {
	spans := make([]lineSpan, 0, 8)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\n':
			spans = append(spans, lineSpan{start: start, end: i})
			start = i + 1
		case '\r':
			spans = append(spans, lineSpan{start: start, end: i})
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(spans, lineSpan{start: start, end: len(runes)})
}

// LineCount returns the number of lines in text. Empty text has one line.
func LineCount(text string) int {
	return len(splitSpans([]rune(text)))
}

// OffsetToPosition converts a rune offset into a Position.
//
// Offsets outside [0, len(text)] are clamped. An offset that falls between the
// "\r" and "\n" of a CRLF pair resolves to the end of that line.
func OffsetToPosition(text string, offset int) Position {
	runes := []rune(text)
	offset = clamp(offset, 0, len(runes))

	spans := splitSpans(runes)
	for i, sp := range spans {
		last := i == len(spans)-1
		if last || offset < spans[i+1].start {
			col := min(offset, sp.end) - sp.start
			return Position{Line: i + 1, Column: col + 1}
		}
	}
	// unreachable: the last span always matches
	return Origin
}

// PositionToOffset converts a Position back into a rune offset.
// The position is clamped to the text first.
func PositionToOffset(text string, pos Position) int {
	spans := splitSpans([]rune(text))
	pos = clampToSpans(spans, pos)
	return spans[pos.Line-1].start + pos.Column - 1
}

// StepOffset moves the rune offset by delta characters, treating a CRLF pair as
// a single character. The result stays within [0, len(text)].
func StepOffset(text string, offset, delta int) int {
	runes := []rune(text)
	offset = clamp(offset, 0, len(runes))
	for ; delta > 0 && offset < len(runes); delta-- {
		if runes[offset] == '\r' && offset+1 < len(runes) && runes[offset+1] == '\n' {
			offset++
		}
		offset++
	}
	for ; delta < 0 && offset > 0; delta++ {
		if runes[offset-1] == '\n' && offset > 1 && runes[offset-2] == '\r' {
			offset--
		}
		offset--
	}
	return offset
}

// Line returns the text of the 1-based line n without its line break.
// n is clamped to the lines of text.
func Line(text string, n int) string {
	runes := []rune(text)
	spans := splitSpans(runes)
	sp := spans[clamp(n, 1, len(spans))-1]
	return string(runes[sp.start:sp.end])
}

// ClampPosition moves pos to the nearest valid position in text.
func ClampPosition(text string, pos Position) Position {
	return clampToSpans(splitSpans([]rune(text)), pos)
}

func clampToSpans(spans []lineSpan, pos Position) Position {
	line := clamp(pos.Line, 1, len(spans))
	sp := spans[line-1]
	col := clamp(pos.Column, 1, sp.end-sp.start+1)
	return Position{Line: line, Column: col}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
