package models

import (
	"time"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// Board is the top-level container. It holds no ordering state of its own;
// column order is derived entirely from the column chain.
type Board struct {
	ID       types.ID
	Title    string
	OwnerID  types.UserID
	IsPublic bool
	// PublicLevel applies to users without a personal grant when IsPublic is set.
	PublicLevel *AccessLevel
	CreatedAt   time.Time
}
