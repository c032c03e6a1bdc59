package column

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
)

// MaxTitleLength bounds column titles.
const MaxTitleLength = 50

// Column-related errors
var (
	// Validation errors
	ErrEmptyTitle      = fmt.Errorf("%w: title cannot be empty", models.ErrInvalidArgument)
	ErrTitleTooLong    = fmt.Errorf("%w: title cannot exceed %d characters", models.ErrInvalidArgument, MaxTitleLength)
	ErrInvalidColumnID = fmt.Errorf("%w: column id is required", models.ErrInvalidArgument)
	ErrInvalidBoardID  = fmt.Errorf("%w: board id is required", models.ErrInvalidArgument)
)
