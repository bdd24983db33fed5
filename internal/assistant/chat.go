package assistant

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

// ErrEmptyInput is returned for blank messages.
var ErrEmptyInput = errors.New("empty message")

// Locale selects a reply table.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

var replies = map[Locale][]string{
	LocaleEnglish: {
		"I'm VCoder AI, your intelligent coding assistant. How can I help you today?",
		"That's an interesting question! Let me help you with that.",
		"I can assist you with coding, debugging, architecture, and development best practices.",
		"Great question! Here's what I would recommend...",
		"I'd be happy to help you implement that feature.",
		"Let me break that down for you step by step.",
		"That's a common challenge in development. Here's how to approach it...",
		"I can help you optimize that code. Let me suggest some improvements.",
	},
	LocaleSpanish: {
		"¡Excelente pregunta! Puedo ayudarte con eso. Como VCoder AI, estoy aquí para asistirte con cualquier desafío de programación.",
		"Entiendo tu consulta. Déjame explicarte paso a paso cómo abordar este problema de desarrollo.",
		"¡Perfecto! Esa es una práctica muy importante en el desarrollo. Te recomiendo seguir estos enfoques...",
		"Gran pregunta. En mi experiencia como asistente de código, he visto que la mejor manera es...",
		"Eso es algo que muchos desarrolladores se preguntan. La clave está en...",
		"¡Me encanta esa pregunta! Es fundamental entender estos conceptos para escribir mejor código.",
	},
}

// Chat replies with canned messages in rotation.
type Chat struct {
	Locale Locale
	Delay  time.Duration

	next atomic.Uint64
}

// Respond returns the next canned reply.
func (c *Chat) Respond(ctx context.Context, input string) (Response, error) {
	if strings.TrimSpace(input) == "" {
		return Response{}, ErrEmptyInput
	}
	if err := wait(ctx, c.Delay); err != nil {
		return Response{}, err
	}
	table, ok := replies[c.Locale]
	if !ok {
		table = replies[LocaleEnglish]
	}
	i := c.next.Add(1) - 1
	return Response{Text: table[i%uint64(len(table))]}, nil
}
