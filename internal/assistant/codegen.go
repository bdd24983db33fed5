package assistant

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"
)

//go:embed snippets/*.js
var snippetFS embed.FS

// Steps are the progress messages shown while code is being generated.
var Steps = []string{
	"Analizando tu solicitud...",
	"Estructurando el código...",
	"Generando funciones principales...",
	"Añadiendo validaciones...",
	"Optimizando el código...",
	"Añadiendo comentarios explicativos...",
	"¡Código generado exitosamente!",
}

const generatedMessage = "✅ ¡Código generado! He creado el código que solicitaste. " +
	"¿Necesitas alguna modificación o explicación?"

// template is one keyword-selected snippet. The first template whose keywords
// appear in the request wins.
type template struct {
	name     string
	keywords []string
}

var templates = []template{
	{name: "email", keywords: []string{"email", "validar"}},
	{name: "counter", keywords: []string{"contador", "counter", "react"}},
	{name: "api", keywords: []string{"api", "fetch", "peticion"}},
}

// CodeGenerator returns canned code chosen by keywords in the request.
type CodeGenerator struct {
	Delay time.Duration
}

// Respond returns the snippet for input together with the progress steps.
func (g CodeGenerator) Respond(ctx context.Context, input string) (Response, error) {
	if strings.TrimSpace(input) == "" {
		return Response{}, ErrEmptyInput
	}
	if err := wait(ctx, g.Delay); err != nil {
		return Response{}, err
	}
	code, err := Snippet(Select(input))
	if err != nil {
		return Response{}, err
	}
	return Response{
		Text:  generatedMessage,
		Code:  code,
		Steps: append([]string(nil), Steps...),
	}, nil
}

// Select returns the snippet name for a request.
func Select(request string) string {
	lower := strings.ToLower(request)
	for _, t := range templates {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.name
			}
		}
	}
	return "default"
}

// Snippet returns the code of a named snippet.
func Snippet(name string) (string, error) {
	b, err := snippetFS.ReadFile("snippets/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("snippet %q: %w", name, err)
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}
