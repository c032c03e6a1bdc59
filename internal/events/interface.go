package events

import (
	"context"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// Notifier fans a change out to the connections that care about it.
// Implementations must not block on slow receivers.
type Notifier interface {
	// NotifyGroup delivers to every connection joined to scopeID except the
	// listed ones and returns how many received it.
	NotifyGroup(scopeID types.ID, name EventName, payload any, except ...types.ConnID) int

	// NotifyUser delivers to every connection of userID.
	NotifyUser(userID types.UserID, name EventName, payload any) int
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) NotifyGroup(types.ID, EventName, any, ...types.ConnID) int { return 0 }
func (Discard) NotifyUser(types.UserID, EventName, any) int { return 0 }

// Invoker sends one request over a hub and waits for its result.
// *Client is the realtime implementation.
type Invoker interface {
	Invoke(ctx context.Context, method string, args, result any) error
}
