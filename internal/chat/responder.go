package chat

import (
	"context"

	"github.com/navyasetu/varunnetra/internal/respond"
)

// Responder selects the assistant's reply for an utterance.
// The in-process rule table and the gRPC client both implement it.
type Responder interface {
	Respond(ctx context.Context, utterance, language string) (respond.Match, error)
}

// LocalResponder answers from an in-process rule table.
type LocalResponder struct {
	table *respond.Table
}

// NewLocalResponder wraps table. A nil table means the built-in one.
func NewLocalResponder(table *respond.Table) *LocalResponder {
	if table == nil {
		table = respond.Default()
	}
	return &LocalResponder{table: table}
}

// Respond never fails.
func (r *LocalResponder) Respond(_ context.Context, utterance, language string) (respond.Match, error) {
	return r.table.Match(utterance, language), nil
}

var _ Responder = (*LocalResponder)(nil)
