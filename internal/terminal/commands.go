// Package terminal implements the mock terminal: a static command table, a
// shell-aware command line normalizer, and a bounded scrollback history.
package terminal

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Banner is written to a new terminal's history.
const Banner = "Welcome to VSCode Clone Terminal\nType \"help\" for available commands\n"

var commands = map[string]string{
	"help":        "Available commands: ls, pwd, clear, npm, git, help",
	"ls":          "src/  public/  package.json  README.md",
	"pwd":         "/workspace/my-app",
	"npm start":   "Starting development server...",
	"npm install": "Installing dependencies...",
	"git status":  "On branch main\nChanges not staged for commit:\n  modified: src/App.js",
	"git add .":   "Files staged for commit",
}

// prefixCommands match when the command line starts with their words.
var prefixCommands = []struct {
	words  []string
	output string
}{
	{words: []string{"git", "commit", "-m"}, output: "Commit created successfully"},
}

// Result is the outcome of running one command line.
type Result struct {
	// Output is the text to show, empty for blank input and clear.
	Output string

	// Found reports whether the command is in the table.
	Found bool

	// Clear is set for the clear command.
	Clear bool
}

// Run looks up line in the command table.
func Run(line string) Result {
	words := Fields(line)
	if len(words) == 0 {
		return Result{}
	}
	if len(words) == 1 && words[0] == "clear" {
		return Result{Found: true, Clear: true}
	}
	if out, ok := commands[strings.Join(words, " ")]; ok {
		return Result{Output: out, Found: true}
	}
	for _, pc := range prefixCommands {
		if hasPrefix(words, pc.words) {
			return Result{Output: pc.output, Found: true}
		}
	}
	return Result{Output: "Command not found: " + strings.TrimSpace(line)}
}

func hasPrefix(words, prefix []string) bool {
	if len(words) < len(prefix) {
		return false
	}
	for i, w := range prefix {
		if words[i] != w {
			return false
		}
	}
	return true
}

// Fields splits a command line into words the way a shell would, removing
// quotes. Only the first simple command is considered. Lines that do not parse
// fall back to whitespace splitting.
func Fields(line string) []string {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)
	prog, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return strings.Fields(line)
	}

	var words []string
	syntax.Walk(prog, func(node syntax.Node) bool {
		if words != nil {
			return false
		}
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			words = make([]string, 0, len(call.Args))
			for _, w := range call.Args {
				words = append(words, unquote(w))
			}
			return false
		}
		return true
	})
	return words
}

// unquote returns the literal value of w with quoting removed. Expansions are
// kept in their source form.
func unquote(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, ok := inner.(*syntax.Lit); ok {
					sb.WriteString(lit.Value)
					continue
				}
				printPart(&sb, inner)
			}
		default:
			printPart(&sb, part)
		}
	}
	return sb.String()
}

func printPart(sb *strings.Builder, node syntax.Node) {
	_ = syntax.NewPrinter().Print(sb, node)
}
