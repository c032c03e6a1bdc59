// Package access is the boundary to permission computation. The core only
// asks for a caller's level on a board and compares it on the ordered scale.
package access

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Resolver returns the caller's level on a board, or nil when the caller
// has none.
type Resolver interface {
	GetAccess(ctx context.Context, userID types.UserID, boardID types.ID) (*models.AccessLevel, error)
}

// Minimums per operation kind.
const (
	ReadLevel  = models.AccessReader
	WriteLevel = models.AccessEditor
	AdminLevel = models.AccessOwner
)

// Require fails with models.ErrForbidden unless level reaches min.
func Require(level *models.AccessLevel, min models.AccessLevel) error {
	if level == nil {
		return fmt.Errorf("%w: no access, %s required", models.ErrForbidden, min)
	}
	if !level.AtLeast(min) {
		return fmt.Errorf("%w: %s access, %s required", models.ErrForbidden, *level, min)
	}
	return nil
}

// Check resolves userID's level on boardID and requires min.
func Check(ctx context.Context, r Resolver, userID types.UserID, boardID types.ID, min models.AccessLevel) error {
	level, err := r.GetAccess(ctx, userID, boardID)
	if err != nil {
		return err
	}
	return Require(level, min)
}

// Static is a fixed in-memory Resolver keyed by user then board.
type Static map[types.UserID]map[types.ID]models.AccessLevel

func (s Static) GetAccess(_ context.Context, userID types.UserID, boardID types.ID) (*models.AccessLevel, error) {
	level, ok := s[userID][boardID]
	if !ok {
		return nil, nil
	}
	return &level, nil
}
