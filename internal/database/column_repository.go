package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/order"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ColumnRepo handles all column-related database operations.
type ColumnRepo struct {
	db     *sql.DB
	ledger ledger
}

func NewColumnRepo(db *sql.DB) *ColumnRepo {
	return &ColumnRepo{db: db, ledger: ledger{fam: columnFamily}}
}

// Create appends a new column to the tail of the board's list.
func (r *ColumnRepo) Create(ctx context.Context, boardID types.ID, title string) (*models.Column, error) {
	column := &models.Column{ID: types.NewID(), BoardID: boardID, Title: title}

	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		tail, err := r.ledger.tailFor(ctx, tx, boardID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO columns (id, board_id, title, prev_id, next_id) VALUES (?, ?, ?, ?, NULL)`,
			string(column.ID), string(boardID), title, nullID(tail),
		)
		if err != nil {
			return fmt.Errorf("inserting column: %w", err)
		}

		column.PrevID = tail
		column.NextID = nil
		return r.ledger.linkAppended(ctx, tx, tail, column.ID)
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

// GetByBoard returns the board's columns in head-to-tail order.
func (r *ColumnRepo) GetByBoard(ctx context.Context, boardID types.ID) ([]*models.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, board_id, title, prev_id, next_id FROM columns WHERE board_id = ?`,
		string(boardID))
	if err != nil {
		return nil, fmt.Errorf("querying columns for board: %w", err)
	}
	defer rows.Close()

	var columns []*models.Column
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}

	ordered, err := order.Materialize(columns)
	if err != nil {
		return nil, fmt.Errorf("columns of board %s: %w", boardID, err)
	}
	return ordered, nil
}

// GetByID retrieves a column by its ID
func (r *ColumnRepo) GetByID(ctx context.Context, id types.ID) (*models.Column, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, board_id, title, prev_id, next_id FROM columns WHERE id = ?`,
		string(id))
	col, err := scanColumn(row)
	if err != nil {
		return nil, notFound(err, "column", id)
	}
	return col, nil
}

// UpdateTitle replaces the title of an existing column
func (r *ColumnRepo) UpdateTitle(ctx context.Context, id types.ID, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE columns SET title = ? WHERE id = ?`, title, string(id))
	if err != nil {
		return classifyStoreError(err)
	}
	return requireAffected(res, "column", id)
}

// Move places the column after newPrev on the same board, or at the head
// when newPrev is nil.
func (r *ColumnRepo) Move(ctx context.Context, id types.ID, newPrev *types.ID) (MoveResult, error) {
	var result MoveResult
	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		result, err = r.ledger.move(ctx, tx, id, newPrev, "")
		return err
	})
	return result, err
}

// Delete splices the column out and removes it with all of its cards.
// It returns the board the column belonged to.
func (r *ColumnRepo) Delete(ctx context.Context, id types.ID) (types.ID, error) {
	var boardID types.ID
	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		boardID, err = r.ledger.remove(ctx, tx, id)
		return err
	})
	return boardID, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanColumn(s rowScanner) (*models.Column, error) {
	var id, boardID, title string
	var prev, next sql.NullString
	if err := s.Scan(&id, &boardID, &title, &prev, &next); err != nil {
		return nil, err
	}
	return &models.Column{
		ID:      types.ID(id),
		BoardID: types.ID(boardID),
		Title:   title,
		PrevID:  nullStringToID(prev),
		NextID:  nullStringToID(next),
	}, nil
}

func requireAffected(res sql.Result, what string, id types.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, what, id)
	}
	return nil
}
