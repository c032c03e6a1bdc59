// Package services holds what the per-family mutation coordinators share.
package services

import "github.com/thenoetrevino/boardsync/internal/types"

// Caller identifies who invoked an operation and over which connection.
// ConnID is excluded from the resulting notifications; it may be empty for
// callers that are not realtime connections.
type Caller struct {
	UserID types.UserID
	ConnID types.ConnID
}

// Except returns the exclusion list for notifications caused by c.
func (c Caller) Except() []types.ConnID {
	if c.ConnID == "" {
		return nil
	}
	return []types.ConnID{c.ConnID}
}
