package models

import (
	"time"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// Comment is a note on a card. Comments are strictly owned by their card
// and disappear with it.
type Comment struct {
	ID        types.ID
	CardID    types.ID
	AuthorID  types.UserID
	Body      string
	CreatedAt time.Time
}

// Attachment records a file attached to a card. The file bytes live
// elsewhere; only the record is cascaded here.
type Attachment struct {
	ID       types.ID
	CardID   types.ID
	FileName string
}
