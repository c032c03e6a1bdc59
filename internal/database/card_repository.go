package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/order"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// CardRepo handles all card-related database operations.
type CardRepo struct {
	db     *sql.DB
	ledger ledger
}

func NewCardRepo(db *sql.DB) *CardRepo {
	return &CardRepo{db: db, ledger: ledger{fam: cardFamily}}
}

const cardColumns = `id, column_id, title, description, prev_id, next_id, created_at`

// Create appends a new card to the tail of the column's list.
func (r *CardRepo) Create(ctx context.Context, columnID types.ID, title, description string) (*models.Card, error) {
	card := &models.Card{ID: types.NewID(), ColumnID: columnID, Title: title, Description: description}

	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		tail, err := r.ledger.tailFor(ctx, tx, columnID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO cards (id, column_id, title, description, prev_id, next_id) VALUES (?, ?, ?, ?, ?, NULL)`,
			string(card.ID), string(columnID), title, description, nullID(tail),
		)
		if err != nil {
			return fmt.Errorf("inserting card: %w", err)
		}

		card.PrevID = tail
		card.NextID = nil
		return r.ledger.linkAppended(ctx, tx, tail, card.ID)
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// GetByColumn returns the column's cards in head-to-tail order.
func (r *CardRepo) GetByColumn(ctx context.Context, columnID types.ID) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE column_id = ?`,
		string(columnID))
	if err != nil {
		return nil, fmt.Errorf("querying cards for column: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}

	ordered, err := order.Materialize(cards)
	if err != nil {
		return nil, fmt.Errorf("cards of column %s: %w", columnID, err)
	}
	return ordered, nil
}

// GetByID retrieves a card by its ID
func (r *CardRepo) GetByID(ctx context.Context, id types.ID) (*models.Card, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, string(id)))
	if err != nil {
		return nil, notFound(err, "card", id)
	}
	return card, nil
}

// BoardOf resolves the board that owns a card.
func (r *CardRepo) BoardOf(ctx context.Context, cardID types.ID) (types.ID, error) {
	var boardID string
	err := r.db.QueryRowContext(ctx,
		`SELECT c.board_id FROM cards k JOIN columns c ON c.id = k.column_id WHERE k.id = ?`,
		string(cardID),
	).Scan(&boardID)
	if err != nil {
		return "", notFound(err, "card", cardID)
	}
	return types.ID(boardID), nil
}

func (r *CardRepo) UpdateTitle(ctx context.Context, id types.ID, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cards SET title = ? WHERE id = ?`, title, string(id))
	if err != nil {
		return classifyStoreError(err)
	}
	return requireAffected(res, "card", id)
}

func (r *CardRepo) UpdateDescription(ctx context.Context, id types.ID, description string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cards SET description = ? WHERE id = ?`, description, string(id))
	if err != nil {
		return classifyStoreError(err)
	}
	return requireAffected(res, "card", id)
}

// Move places the card after newPrev in toColumn, or at the head of toColumn
// when newPrev is nil. An empty toColumn keeps the card's current column.
func (r *CardRepo) Move(ctx context.Context, id, toColumn types.ID, newPrev *types.ID) (MoveResult, error) {
	var result MoveResult
	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		result, err = r.ledger.move(ctx, tx, id, newPrev, toColumn)
		return err
	})
	return result, err
}

// Delete splices the card out and removes it with its comments and
// attachments. It returns the column the card belonged to.
func (r *CardRepo) Delete(ctx context.Context, id types.ID) (types.ID, error) {
	var columnID types.ID
	err := withRetryTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		columnID, err = r.ledger.remove(ctx, tx, id)
		return err
	})
	return columnID, err
}

func scanCard(s rowScanner) (*models.Card, error) {
	var id, columnID string
	var prev, next sql.NullString
	card := &models.Card{}
	if err := s.Scan(&id, &columnID, &card.Title, &card.Description, &prev, &next, &card.CreatedAt); err != nil {
		return nil, err
	}
	card.ID = types.ID(id)
	card.ColumnID = types.ID(columnID)
	card.PrevID = nullStringToID(prev)
	card.NextID = nullStringToID(next)
	return card, nil
}
