package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// family describes one table of linked rows and the table that owns them.
// Table and column names are fixed at compile time and never user input.
type family struct {
	table          string // e.g. "columns"
	containerCol   string // e.g. "board_id"
	containerTable string // e.g. "boards"
	noun           string // used in error messages
}

var (
	columnFamily = family{table: "columns", containerCol: "board_id", containerTable: "boards", noun: "column"}
	cardFamily   = family{table: "cards", containerCol: "column_id", containerTable: "columns", noun: "card"}
)

// links is the position state of one row.
type links struct {
	container types.ID
	prev      *types.ID
	next      *types.ID
}

// MoveResult describes what a Move did.
type MoveResult struct {
	From    types.ID // container before the move
	To      types.ID // container after the move
	Changed bool     // false when the move was a no-op
}

// ledger performs the linked-list surgery for one family.
// Every method runs inside a caller-supplied transaction and never touches
// rows outside the affected containers.
type ledger struct {
	fam family
}

func (l ledger) links(ctx context.Context, tx *sql.Tx, id types.ID) (*links, error) {
	var container string
	var prev, next sql.NullString
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s, prev_id, next_id FROM %s WHERE id = ?`, l.fam.containerCol, l.fam.table),
		string(id),
	).Scan(&container, &prev, &next)
	if err != nil {
		return nil, notFound(err, l.fam.noun, id)
	}
	return &links{
		container: types.ID(container),
		prev:      nullStringToID(prev),
		next:      nullStringToID(next),
	}, nil
}

func (l ledger) containerExists(ctx context.Context, tx *sql.Tx, containerID types.ID) error {
	var one int
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT 1 FROM %s WHERE id = ?`, l.fam.containerTable),
		string(containerID),
	).Scan(&one)
	if err != nil {
		return notFound(err, l.fam.containerTable, containerID)
	}
	return nil
}

// endOf finds the unique row of a container whose pointerCol is NULL,
// skipping exclude. It returns nil for an empty container.
func (l ledger) endOf(ctx context.Context, tx *sql.Tx, containerID types.ID, pointerCol string, exclude types.ID) (*types.ID, error) {
	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE %s = ? AND %s IS NULL AND id != ? LIMIT 2`,
			l.fam.table, l.fam.containerCol, pointerCol),
		string(containerID), string(exclude),
	)
	if err != nil {
		return nil, fmt.Errorf("finding %s end of %s: %w", l.fam.noun, containerID, err)
	}
	defer rows.Close()

	var found []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning %s end: %w", l.fam.noun, err)
		}
		found = append(found, types.ID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0].Ptr(), nil
	default:
		return nil, fmt.Errorf("%w: %s %s has several rows with %s NULL",
			models.ErrInvariantViolation, l.fam.containerTable, containerID, pointerCol)
	}
}

func (l ledger) setPrev(ctx context.Context, tx *sql.Tx, id types.ID, prev *types.ID) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET prev_id = ? WHERE id = ?`, l.fam.table),
		nullID(prev), string(id))
	return err
}

func (l ledger) setNext(ctx context.Context, tx *sql.Tx, id types.ID, next *types.ID) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET next_id = ? WHERE id = ?`, l.fam.table),
		nullID(next), string(id))
	return err
}

func (l ledger) place(ctx context.Context, tx *sql.Tx, id types.ID, prev, next *types.ID, containerID types.ID) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET prev_id = ?, next_id = ?, %s = ? WHERE id = ?`, l.fam.table, l.fam.containerCol),
		nullID(prev), nullID(next), string(containerID), string(id))
	return err
}

// detach unlinks id from its neighbors and clears its own pointers first,
// so no intermediate statement ever duplicates a prev_id or next_id.
func (l ledger) detach(ctx context.Context, tx *sql.Tx, id types.ID, cur *links) error {
	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET prev_id = NULL, next_id = NULL WHERE id = ?`, l.fam.table),
		string(id))
	if err != nil {
		return fmt.Errorf("clearing %s %s: %w", l.fam.noun, id, err)
	}
	if cur.prev != nil {
		if err := l.setNext(ctx, tx, *cur.prev, cur.next); err != nil {
			return fmt.Errorf("relinking previous %s: %w", l.fam.noun, err)
		}
	}
	if cur.next != nil {
		if err := l.setPrev(ctx, tx, *cur.next, cur.prev); err != nil {
			return fmt.Errorf("relinking next %s: %w", l.fam.noun, err)
		}
	}
	return nil
}

// tailFor returns the predecessor a new row should get when appended.
func (l ledger) tailFor(ctx context.Context, tx *sql.Tx, containerID types.ID) (*types.ID, error) {
	if err := l.containerExists(ctx, tx, containerID); err != nil {
		return nil, err
	}
	return l.endOf(ctx, tx, containerID, "next_id", "")
}

// linkAppended points the old tail at a freshly inserted row.
func (l ledger) linkAppended(ctx context.Context, tx *sql.Tx, tail *types.ID, id types.ID) error {
	if tail == nil {
		return nil
	}
	if err := l.setNext(ctx, tx, *tail, id.Ptr()); err != nil {
		return fmt.Errorf("linking tail %s: %w", l.fam.noun, err)
	}
	return nil
}

// move relocates moved to directly after newPrev in destination, or to the
// head of destination when newPrev is nil.
func (l ledger) move(ctx context.Context, tx *sql.Tx, moved types.ID, newPrev *types.ID, destination types.ID) (MoveResult, error) {
	if moved.IsZero() {
		return MoveResult{}, fmt.Errorf("%w: moved id is required", models.ErrInvalidArgument)
	}
	if newPrev != nil && *newPrev == moved {
		return MoveResult{}, fmt.Errorf("%w: %s %s cannot follow itself", models.ErrInvalidArgument, l.fam.noun, moved)
	}

	cur, err := l.links(ctx, tx, moved)
	if err != nil {
		return MoveResult{}, err
	}
	if destination.IsZero() {
		destination = cur.container
	}
	result := MoveResult{From: cur.container, To: destination}

	if destination != cur.container {
		if err := l.containerExists(ctx, tx, destination); err != nil {
			return result, err
		}
	}
	if newPrev != nil {
		anchor, err := l.links(ctx, tx, *newPrev)
		if err != nil {
			return result, err
		}
		if anchor.container != destination {
			return result, fmt.Errorf("%w: %s %s is not in %s %s",
				models.ErrInvalidArgument, l.fam.noun, *newPrev, l.fam.containerTable, destination)
		}
	}

	if destination == cur.container && types.Equal(cur.prev, newPrev) {
		return result, nil
	}

	if err := l.detach(ctx, tx, moved, cur); err != nil {
		return result, err
	}

	if newPrev == nil {
		head, err := l.endOf(ctx, tx, destination, "prev_id", moved)
		if err != nil {
			return result, err
		}
		if head != nil {
			if err := l.setPrev(ctx, tx, *head, moved.Ptr()); err != nil {
				return result, fmt.Errorf("relinking head %s: %w", l.fam.noun, err)
			}
		}
		if err := l.place(ctx, tx, moved, nil, head, destination); err != nil {
			return result, fmt.Errorf("placing %s at head: %w", l.fam.noun, err)
		}
		result.Changed = true
		return result, nil
	}

	// Read the anchor again: it may have been a neighbor of moved.
	anchor, err := l.links(ctx, tx, *newPrev)
	if err != nil {
		return result, err
	}
	if err := l.setNext(ctx, tx, *newPrev, moved.Ptr()); err != nil {
		return result, fmt.Errorf("relinking new previous %s: %w", l.fam.noun, err)
	}
	if anchor.next != nil {
		if err := l.setPrev(ctx, tx, *anchor.next, moved.Ptr()); err != nil {
			return result, fmt.Errorf("relinking new next %s: %w", l.fam.noun, err)
		}
	}
	if err := l.place(ctx, tx, moved, newPrev, anchor.next, destination); err != nil {
		return result, fmt.Errorf("placing %s: %w", l.fam.noun, err)
	}
	result.Changed = true
	return result, nil
}

// remove splices id out of its chain and deletes the row. Owned rows go
// with it through ON DELETE CASCADE.
func (l ledger) remove(ctx context.Context, tx *sql.Tx, id types.ID) (types.ID, error) {
	cur, err := l.links(ctx, tx, id)
	if err != nil {
		return "", err
	}
	if err := l.detach(ctx, tx, id, cur); err != nil {
		return "", err
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, l.fam.table), string(id))
	if err != nil {
		return "", fmt.Errorf("deleting %s %s: %w", l.fam.noun, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", fmt.Errorf("%w: %s %s", models.ErrNotFound, l.fam.noun, id)
	}
	return cur.container, nil
}
