// Package eventbus defines the contract for publishing ledger events.
package eventbus

import (
	"context"

	"github.com/zezva802/Banking-system/pkg/domain/events"
)

// HandlerFunc handles one event delivered by an in-process bus.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes finalized ledger events. Emit is called after the money
// movement has committed, so implementations must not assume they can veto it.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
}

// Subscriber is implemented by buses that dispatch to in-process handlers.
type Subscriber interface {
	Register(eventType events.EventType, handler HandlerFunc)
}
