package models

import "github.com/thenoetrevino/boardsync/internal/types"

// Column is one list on a board (e.g. "Todo", "In Progress", "Done").
// Columns on a board form a doubly linked list through PrevID and NextID.
type Column struct {
	ID      types.ID
	BoardID types.ID
	Title   string
	PrevID  *types.ID // nil for the head
	NextID  *types.ID // nil for the tail
}

func (c *Column) LinkID() types.ID     { return c.ID }
func (c *Column) LinkPrev() *types.ID  { return c.PrevID }
func (c *Column) LinkNext() *types.ID  { return c.NextID }
func (c *Column) Container() types.ID { return c.BoardID }
