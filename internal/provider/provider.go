// Package provider defines the diagnostics and completion contracts consumed by
// the workspace front ends, along with the canned implementations vcoder ships.
//
// Providers are called off the owner's event loop and may take arbitrarily long;
// their results are correlated with the session by workspace.Correlator.
package provider

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tinovyatkin/vcoder/internal/workspace"
)

// DiagnosticsProvider analyzes a document's text.
type DiagnosticsProvider interface {
	Analyze(ctx context.Context, text string) ([]workspace.Diagnostic, error)
}

// CompletionProvider suggests completions at a position.
type CompletionProvider interface {
	Complete(ctx context.Context, text string, pos workspace.Position) ([]workspace.Completion, error)
}

// DiagnosticsFunc adapts a function to DiagnosticsProvider.
type DiagnosticsFunc func(ctx context.Context, text string) ([]workspace.Diagnostic, error)

// Analyze calls f.
func (f DiagnosticsFunc) Analyze(ctx context.Context, text string) ([]workspace.Diagnostic, error) {
	return f(ctx, text)
}

// CompletionFunc adapts a function to CompletionProvider.
type CompletionFunc func(ctx context.Context, text string, pos workspace.Position) ([]workspace.Completion, error)

// Complete calls f.
func (f CompletionFunc) Complete(ctx context.Context, text string, pos workspace.Position) ([]workspace.Completion, error) {
	return f(ctx, text, pos)
}

// Combine runs all providers concurrently and merges their findings, ordered by
// position. The first provider error cancels the others and is returned.
func Combine(providers ...DiagnosticsProvider) DiagnosticsProvider {
	return DiagnosticsFunc(func(ctx context.Context, text string) ([]workspace.Diagnostic, error) {
		results := make([][]workspace.Diagnostic, len(providers))
		g, ctx := errgroup.WithContext(ctx)
		for i, p := range providers {
			g.Go(func() error {
				diags, err := p.Analyze(ctx, text)
				results[i] = diags
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		merged := slices.Concat(results...)
		slices.SortStableFunc(merged, func(a, b workspace.Diagnostic) int {
			return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Column, b.Column))
		})
		return merged, nil
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
