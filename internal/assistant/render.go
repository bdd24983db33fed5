package assistant

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown formats r as a markdown document: the message, the progress steps
// as a list, and the code in a fenced block.
func Markdown(r Response) string {
	var sb strings.Builder
	sb.WriteString(r.Text)
	sb.WriteString("\n")
	if len(r.Steps) > 0 {
		sb.WriteString("\n")
		for _, s := range r.Steps {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}
	if r.Code != "" {
		sb.WriteString("\n```javascript\n")
		sb.WriteString(r.Code)
		sb.WriteString("\n```\n")
	}
	return sb.String()
}

// Render renders r for a terminal of the given width. An empty style picks
// one from the terminal background; "notty" renders without ANSI escapes.
func Render(r Response, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(r))
	if err != nil {
		return "", fmt.Errorf("render response: %w", err)
	}
	return out, nil
}
