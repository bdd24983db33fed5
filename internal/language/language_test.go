package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"src/App.js":           "JavaScript",
		"src/App.JSX":          "JavaScript React",
		"index.tsx":            "TypeScript React",
		"public/index.html":    "HTML",
		"package.json":         "JSON",
		"README.md":            "Markdown",
		"main.go":              "Go",
		"Dockerfile":           "Docker",
		"notes":                PlainText,
		"archive.unknownextxx": PlainText,
	}
	for p, want := range tests {
		assert.Equal(t, want, Name(p), p)
	}
}
