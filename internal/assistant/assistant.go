// Package assistant provides the canned "AI" panels: chat replies and code
// generation. Replies are selected from fixed tables; there is no inference.
package assistant

import (
	"context"
	"time"
)

// Response is what a ResponseProvider produces for one input.
type Response struct {
	// Text is the message shown to the user.
	Text string

	// Code is generated source, if any.
	Code string

	// Steps are progress messages shown while the response is being produced.
	Steps []string
}

// ResponseProvider answers one user input.
type ResponseProvider interface {
	Respond(ctx context.Context, input string) (Response, error)
}

// wait simulates the typing delay, returning early when ctx is done.
func wait(ctx context.Context, d time.Duration) error {
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
