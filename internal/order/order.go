// Package order rebuilds the linear order of a linked collection from an
// unordered batch of records.
package order

import (
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Linked is implemented by any record that carries prev/next sibling ids.
type Linked interface {
	LinkID() types.ID
	LinkPrev() *types.ID
	LinkNext() *types.ID
}

// Materialize walks items from the unique head (no prev) to the tail.
// It fails with models.ErrInvariantViolation instead of guessing whenever the
// chain has no head, several heads, a dangling next, a cycle, or items the
// walk never reaches. An empty batch yields an empty sequence.
func Materialize[T Linked](items []T) ([]T, error) {
	if len(items) == 0 {
		return []T{}, nil
	}

	byID := make(map[types.ID]T, len(items))
	var head T
	heads := 0
	for _, item := range items {
		id := item.LinkID()
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", models.ErrInvariantViolation, id)
		}
		byID[id] = item
		if item.LinkPrev() == nil {
			head = item
			heads++
		}
	}

	switch {
	case heads == 0:
		return nil, fmt.Errorf("%w: no head among %d items", models.ErrInvariantViolation, len(items))
	case heads > 1:
		return nil, fmt.Errorf("%w: %d heads", models.ErrInvariantViolation, heads)
	}

	ordered := make([]T, 0, len(items))
	visited := make(map[types.ID]bool, len(items))
	current := head
	for {
		id := current.LinkID()
		if visited[id] {
			return nil, fmt.Errorf("%w: cycle at %s", models.ErrInvariantViolation, id)
		}
		visited[id] = true
		ordered = append(ordered, current)

		next := current.LinkNext()
		if next == nil {
			break
		}
		nextItem, ok := byID[*next]
		if !ok {
			return nil, fmt.Errorf("%w: %s points to missing %s", models.ErrInvariantViolation, id, *next)
		}
		if !types.Equal(nextItem.LinkPrev(), &id) {
			return nil, fmt.Errorf("%w: %s.next=%s but %s.prev=%s",
				models.ErrInvariantViolation, id, *next, *next, types.Deref(nextItem.LinkPrev()))
		}
		current = nextItem
	}

	if len(ordered) != len(items) {
		return nil, fmt.Errorf("%w: walk visited %d of %d items", models.ErrInvariantViolation, len(ordered), len(items))
	}
	return ordered, nil
}

// Verify reports whether items form one well-formed chain.
func Verify[T Linked](items []T) error {
	_, err := Materialize(items)
	return err
}

// IDs projects a materialized sequence to its ids.
func IDs[T Linked](items []T) []types.ID {
	ids := make([]types.ID, len(items))
	for i, item := range items {
		ids[i] = item.LinkID()
	}
	return ids
}
