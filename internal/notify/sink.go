package notify

import "context"

// Sink is a delivery target able to send a titled message at one of two
// priorities. A sink may be referenced by several subscriptions; the registry
// serializes sends per sink, so implementations do not need to be safe for
// concurrent invocation.
type Sink interface {
	SendNormal(ctx context.Context, title, message string) error
	SendUrgent(ctx context.Context, title, message string) error
}
