package splice

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Board mirrors a whole board: the column order plus one card list per column.
type Board struct {
	columns *List
	cards   map[types.ID]*List
}

func NewBoard() *Board {
	return &Board{
		columns: NewList(),
		cards:   make(map[types.ID]*List),
	}
}

// Columns returns the column order.
func (b *Board) Columns() []types.ID {
	return b.columns.IDs()
}

// Cards returns the card order of a column, nil if the column is unknown.
func (b *Board) Cards(columnID types.ID) []types.ID {
	l, ok := b.cards[columnID]
	if !ok {
		return nil
	}
	return l.IDs()
}

// SetColumn replaces the card order of columnID, adding the column at the
// tail if it is new.
func (b *Board) SetColumn(columnID types.ID, cardIDs []types.ID) {
	if !b.columns.Contains(columnID) {
		b.columns.Append(columnID)
	}
	b.cards[columnID] = NewList(cardIDs...)
}

func (b *Board) AddColumn(columnID types.ID) {
	if b.columns.Contains(columnID) {
		return
	}
	b.columns.Append(columnID)
	b.cards[columnID] = NewList()
}

func (b *Board) RemoveColumn(columnID types.ID) {
	b.columns.Remove(columnID)
	delete(b.cards, columnID)
}

func (b *Board) AddCard(columnID, cardID types.ID) error {
	l, ok := b.cards[columnID]
	if !ok {
		return fmt.Errorf("%w: column %s", models.ErrNotFound, columnID)
	}
	if l.Contains(cardID) {
		return nil
	}
	l.Append(cardID)
	return nil
}

func (b *Board) RemoveCard(cardID types.ID) bool {
	if col, ok := b.ColumnOf(cardID); ok {
		return b.cards[col].Remove(cardID)
	}
	return false
}

// ColumnOf finds the column currently holding cardID.
func (b *Board) ColumnOf(cardID types.ID) (types.ID, bool) {
	for col, l := range b.cards {
		if l.Contains(cardID) {
			return col, true
		}
	}
	return "", false
}

// MoveColumn relocates a column after newPrev (head when nil).
func (b *Board) MoveColumn(moved types.ID, newPrev *types.ID) error {
	return b.columns.Move(moved, newPrev)
}

// MoveCard relocates a card into toColumn after newPrev (head when nil).
// Source and destination may be the same column.
func (b *Board) MoveCard(moved, toColumn types.ID, newPrev *types.ID) error {
	from, ok := b.ColumnOf(moved)
	if !ok {
		return fmt.Errorf("%w: card %s", models.ErrNotFound, moved)
	}
	if toColumn.IsZero() {
		toColumn = from
	}
	if from == toColumn {
		return b.cards[from].Move(moved, newPrev)
	}

	dest, ok := b.cards[toColumn]
	if !ok {
		return fmt.Errorf("%w: column %s", models.ErrNotFound, toColumn)
	}
	if newPrev != nil && !dest.Contains(*newPrev) {
		return fmt.Errorf("%w: predecessor %s not in column %s", models.ErrInvalidArgument, *newPrev, toColumn)
	}
	b.cards[from].Remove(moved)
	return dest.Insert(moved, newPrev)
}

// DropColumn ends a drag of a column at index and returns the predecessor
// the server needs.
func (b *Board) DropColumn(moved types.ID, index int) (*types.ID, error) {
	return b.columns.MoveToIndex(moved, index)
}

// DropCard ends a drag of a card at index of toColumn and returns the
// predecessor the server needs. An empty toColumn keeps the card's column.
// Dropping into another column accepts index == its length, the tail.
func (b *Board) DropCard(moved, toColumn types.ID, index int) (*types.ID, error) {
	from, ok := b.ColumnOf(moved)
	if !ok {
		return nil, fmt.Errorf("%w: card %s", models.ErrNotFound, moved)
	}
	if toColumn.IsZero() {
		toColumn = from
	}
	if from == toColumn {
		return b.cards[from].MoveToIndex(moved, index)
	}

	dest, ok := b.cards[toColumn]
	if !ok {
		return nil, fmt.Errorf("%w: column %s", models.ErrNotFound, toColumn)
	}
	if index < 0 || index > dest.Len() {
		return nil, fmt.Errorf("%w: index %d out of range", models.ErrInvalidArgument, index)
	}
	var prev *types.ID
	if index > 0 {
		prev = dest.ids[index-1].Ptr()
	}
	b.cards[from].Remove(moved)
	if err := dest.Insert(moved, prev); err != nil {
		return nil, err
	}
	return prev, nil
}
