package pipeline

import (
	"context"

	"lectern/internal/queue"
)

// Handler performs the work of a single stage on one lecture item. The
// handler mutates the item's path fields; the runner owns status
// transitions and persistence.
type Handler interface {
	Execute(ctx context.Context, item *queue.Item) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, item *queue.Item) error

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, item *queue.Item) error {
	return f(ctx, item)
}

// Stage binds a queue transition to the handler that performs it. Items
// in the Ready status are moved to InFlight while the handler runs, then
// to Done on success. An interrupted run leaves items InFlight, which the
// next run rolls back to Ready before processing.
type Stage struct {
	Name     string
	Ready    queue.Status
	InFlight queue.Status
	Done     queue.Status
	Handler  Handler
}
