package card

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// Card-related errors
var (
	// Validation errors
	ErrEmptyTitle         = fmt.Errorf("%w: title cannot be empty", models.ErrInvalidArgument)
	ErrTitleTooLong       = fmt.Errorf("%w: title cannot exceed %d characters", models.ErrInvalidArgument, MaxTitleLength)
	ErrDescriptionTooLong = fmt.Errorf("%w: description cannot exceed %d characters", models.ErrInvalidArgument, MaxDescriptionLength)
	ErrInvalidCardID      = fmt.Errorf("%w: card id is required", models.ErrInvalidArgument)
	ErrInvalidColumnID    = fmt.Errorf("%w: column id is required", models.ErrInvalidArgument)

	// Business logic errors
	ErrCrossBoardMove = fmt.Errorf("%w: cards cannot move between boards", models.ErrInvalidArgument)
)
