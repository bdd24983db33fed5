package provider

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const cannedSource = "vcoder"

// cannedFindings are reported for every document, wherever the line exists.
var cannedFindings = []workspace.Diagnostic{
	{Line: 5, Column: 10, Message: "Missing semicolon", Severity: workspace.SeverityError, Source: cannedSource},
	{Line: 8, Column: 15, Message: `Unused variable "temp"`, Severity: workspace.SeverityWarning, Source: cannedSource},
	{Line: 12, Column: 5, Message: "Consider using const instead of let", Severity: workspace.SeverityInfo, Source: cannedSource},
}

var cannedCompletions = []workspace.Completion{
	{Text: "console.log", Detail: "Console logging function"},
	{Text: "useState", Detail: "React Hook for state management"},
	{Text: "useEffect", Detail: "React Hook for side effects"},
	{Text: "className", Detail: "CSS class attribute"},
	{Text: "onClick", Detail: "Click event handler"},
}

// CannedDiagnostics reports a fixed set of findings after a simulated delay.
type CannedDiagnostics struct {
	Delay time.Duration
}

// Analyze returns the canned findings whose line exists in text.
func (p CannedDiagnostics) Analyze(ctx context.Context, text string) ([]workspace.Diagnostic, error) {
	if err := sleep(ctx, p.Delay); err != nil {
		return nil, err
	}
	lines := workspace.LineCount(text)
	var diags []workspace.Diagnostic
	for _, d := range cannedFindings {
		if d.Line <= lines {
			diags = append(diags, d)
		}
	}
	return diags, nil
}

// CannedCompletions suggests a fixed vocabulary after a simulated delay.
type CannedCompletions struct {
	Delay time.Duration
}

// Complete returns the vocabulary entries that start with the identifier left
// of pos, ignoring case. With no identifier there, everything is returned.
func (p CannedCompletions) Complete(ctx context.Context, text string, pos workspace.Position) ([]workspace.Completion, error) {
	if err := sleep(ctx, p.Delay); err != nil {
		return nil, err
	}
	prefix := strings.ToLower(WordBefore(text, pos))
	if prefix == "" {
		return slices.Clone(cannedCompletions), nil
	}
	var items []workspace.Completion
	for _, c := range cannedCompletions {
		if strings.HasPrefix(strings.ToLower(c.Text), prefix) {
			items = append(items, c)
		}
	}
	return items, nil
}

// WordBefore returns the identifier (letters, digits, '_', '$', '.') that ends at pos.
func WordBefore(text string, pos workspace.Position) string {
	runes := []rune(text)
	end := workspace.PositionToOffset(text, pos)
	start := end
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '.'
}
