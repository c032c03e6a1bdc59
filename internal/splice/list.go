// Package splice holds the client-side mirror of an ordered collection.
// Local drags and remote move notifications go through the same Move, so
// both converge on the order the server materializes.
package splice

import (
	"fmt"
	"slices"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// List is an in-memory ordered sequence of ids. Not safe for concurrent use.
type List struct {
	ids []types.ID
}

// NewList copies ids into a new list.
func NewList(ids ...types.ID) *List {
	return &List{ids: slices.Clone(ids)}
}

// IDs returns a copy of the current order, never nil.
func (l *List) IDs() []types.ID {
	return append([]types.ID{}, l.ids...)
}

func (l *List) Len() int {
	return len(l.ids)
}

// Index returns the position of id, or -1.
func (l *List) Index(id types.ID) int {
	return slices.Index(l.ids, id)
}

func (l *List) Contains(id types.ID) bool {
	return l.Index(id) >= 0
}

// PrevOf returns the predecessor of id, nil when id is the head.
func (l *List) PrevOf(id types.ID) (*types.ID, error) {
	i := l.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if i == 0 {
		return nil, nil
	}
	return l.ids[i-1].Ptr(), nil
}

// Append adds id at the tail, matching server-side creation.
func (l *List) Append(id types.ID) {
	l.ids = append(l.ids, id)
}

// Insert places id directly after prev, or at the head when prev is nil.
func (l *List) Insert(id types.ID, prev *types.ID) error {
	if prev == nil {
		l.ids = slices.Insert(l.ids, 0, id)
		return nil
	}
	i := l.Index(*prev)
	if i < 0 {
		return fmt.Errorf("%w: predecessor %s", models.ErrNotFound, *prev)
	}
	l.ids = slices.Insert(l.ids, i+1, id)
	return nil
}

// Remove drops id and reports whether it was present.
func (l *List) Remove(id types.ID) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	l.ids = slices.Delete(l.ids, i, i+1)
	return true
}

// Move relocates moved to directly after newPrev (head when nil).
// The list is left untouched when Move returns an error.
func (l *List) Move(moved types.ID, newPrev *types.ID) error {
	if newPrev != nil && *newPrev == moved {
		return fmt.Errorf("%w: %s cannot follow itself", models.ErrInvalidArgument, moved)
	}
	if !l.Contains(moved) {
		return fmt.Errorf("%w: %s", models.ErrNotFound, moved)
	}
	if newPrev != nil && !l.Contains(*newPrev) {
		return fmt.Errorf("%w: predecessor %s", models.ErrNotFound, *newPrev)
	}
	l.Remove(moved)
	return l.Insert(moved, newPrev)
}

// MoveToIndex performs a drag that drops moved at index and returns the
// predecessor to send to the server.
func (l *List) MoveToIndex(moved types.ID, index int) (*types.ID, error) {
	if !l.Contains(moved) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, moved)
	}
	if index < 0 || index >= len(l.ids) {
		return nil, fmt.Errorf("%w: index %d out of range", models.ErrInvalidArgument, index)
	}
	l.Remove(moved)
	l.ids = slices.Insert(l.ids, index, moved)
	return l.PrevOf(moved)
}
