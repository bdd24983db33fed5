// Package language names the language of a file for display.
package language

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is the name used when no language is recognized.
const PlainText = "Plain Text"

// names covers the project's own file types with the labels the status bar
// has always used. Everything else is named by chroma's lexer registry.
var names = map[string]string{
	".js":   "JavaScript",
	".jsx":  "JavaScript React",
	".ts":   "TypeScript",
	".tsx":  "TypeScript React",
	".css":  "CSS",
	".html": "HTML",
	".json": "JSON",
	".md":   "Markdown",
}

// Name returns the display name of the language of the file at p.
func Name(p string) string {
	if n, ok := names[strings.ToLower(path.Ext(p))]; ok {
		return n
	}
	if l := lexers.Match(path.Base(p)); l != nil {
		return l.Config().Name
	}
	return PlainText
}
