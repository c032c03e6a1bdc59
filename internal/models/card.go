package models

import (
	"time"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// Card is a single task card. Cards in one column form a doubly linked
// list through PrevID and NextID, exactly like columns on a board.
type Card struct {
	ID          types.ID
	ColumnID    types.ID
	Title       string
	Description string
	PrevID      *types.ID
	NextID      *types.ID
	CreatedAt   time.Time
}

func (c *Card) LinkID() types.ID     { return c.ID }
func (c *Card) LinkPrev() *types.ID  { return c.PrevID }
func (c *Card) LinkNext() *types.ID  { return c.NextID }
func (c *Card) Container() types.ID { return c.ColumnID }
