package comment

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
)

const (
	MaxBodyLength     = 4000
	MaxFileNameLength = 255
	MaxPageSize       = 100
)

// Comment-related errors
var (
	ErrEmptyBody       = fmt.Errorf("%w: comment cannot be empty", models.ErrInvalidArgument)
	ErrBodyTooLong     = fmt.Errorf("%w: comment cannot exceed %d characters", models.ErrInvalidArgument, MaxBodyLength)
	ErrInvalidCardID   = fmt.Errorf("%w: card id is required", models.ErrInvalidArgument)
	ErrInvalidID       = fmt.Errorf("%w: comment id is required", models.ErrInvalidArgument)
	ErrBadPage         = fmt.Errorf("%w: limit must be between 0 and %d and offset not negative", models.ErrInvalidArgument, MaxPageSize)
	ErrEmptyFileName   = fmt.Errorf("%w: file name cannot be empty", models.ErrInvalidArgument)
	ErrFileNameTooLong = fmt.Errorf("%w: file name cannot exceed %d characters", models.ErrInvalidArgument, MaxFileNameLength)
)
