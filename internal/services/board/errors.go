package board

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
)

// Board-related errors
var (
	ErrEmptyTitle     = fmt.Errorf("%w: title cannot be empty", models.ErrInvalidArgument)
	ErrInvalidBoardID = fmt.Errorf("%w: board id is required", models.ErrInvalidArgument)
	ErrInvalidUserID  = fmt.Errorf("%w: user id is required", models.ErrInvalidArgument)
	ErrOwnerGrant     = fmt.Errorf("%w: the owner's level cannot be changed", models.ErrInvalidArgument)
)
