package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// BoardRepo stores boards and personal access grants.
type BoardRepo struct {
	db *sql.DB
}

func NewBoardRepo(db *sql.DB) *BoardRepo {
	return &BoardRepo{db: db}
}

// Create inserts a board owned by owner. publicLevel is only consulted when
// isPublic is set.
func (r *BoardRepo) Create(ctx context.Context, title string, owner types.UserID, isPublic bool, publicLevel *models.AccessLevel) (*models.Board, error) {
	board := &models.Board{
		ID:          types.NewID(),
		Title:       title,
		OwnerID:     owner,
		IsPublic:    isPublic,
		PublicLevel: publicLevel,
	}

	var level sql.NullString
	if publicLevel != nil {
		level = sql.NullString{String: publicLevel.String(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (id, title, owner_id, is_public, public_level) VALUES (?, ?, ?, ?, ?)`,
		string(board.ID), title, string(owner), isPublic, level)
	if err != nil {
		return nil, fmt.Errorf("inserting board: %w", classifyStoreError(err))
	}
	return board, nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id types.ID) (*models.Board, error) {
	var boardID, owner string
	var level sql.NullString
	board := &models.Board{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, owner_id, is_public, public_level, created_at FROM boards WHERE id = ?`,
		string(id),
	).Scan(&boardID, &board.Title, &owner, &board.IsPublic, &level, &board.CreatedAt)
	if err != nil {
		return nil, notFound(err, "board", id)
	}

	board.ID = types.ID(boardID)
	board.OwnerID = types.UserID(owner)
	if level.Valid {
		parsed, err := models.ParseAccessLevel(level.String)
		if err != nil {
			return nil, fmt.Errorf("board %s public level: %w", id, err)
		}
		board.PublicLevel = &parsed
	}
	return board, nil
}

// GetAccess resolves a user's level on a board: owner first, then a personal
// grant, then the public default. It returns nil when none applies.
func (r *BoardRepo) GetAccess(ctx context.Context, userID types.UserID, boardID types.ID) (*models.AccessLevel, error) {
	board, err := r.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if board.OwnerID == userID {
		level := models.AccessOwner
		return &level, nil
	}

	var granted string
	err = r.db.QueryRowContext(ctx,
		`SELECT level FROM board_grants WHERE board_id = ? AND user_id = ?`,
		string(boardID), string(userID),
	).Scan(&granted)
	switch {
	case err == nil:
		level, err := models.ParseAccessLevel(granted)
		if err != nil {
			return nil, fmt.Errorf("grant for %s on %s: %w", userID, boardID, err)
		}
		return &level, nil
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("loading grant: %w", err)
	}

	if board.IsPublic && board.PublicLevel != nil {
		level := *board.PublicLevel
		return &level, nil
	}
	return nil, nil
}

// SetGrant creates or replaces a personal grant.
func (r *BoardRepo) SetGrant(ctx context.Context, grant models.AccessGrant) error {
	if !grant.Level.Valid() {
		return fmt.Errorf("%w: access level %d", models.ErrInvalidArgument, grant.Level)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO board_grants (board_id, user_id, level) VALUES (?, ?, ?)
		 ON CONFLICT (board_id, user_id) DO UPDATE SET level = excluded.level`,
		string(grant.BoardID), string(grant.UserID), grant.Level.String())
	if err != nil {
		return fmt.Errorf("saving grant: %w", classifyStoreError(err))
	}
	return nil
}

// RemoveGrant deletes a personal grant; removing a missing grant is not an error.
func (r *BoardRepo) RemoveGrant(ctx context.Context, boardID types.ID, userID types.UserID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM board_grants WHERE board_id = ? AND user_id = ?`,
		string(boardID), string(userID))
	return classifyStoreError(err)
}

// SetPublic changes whether a board is public and the level anyone gets
// from that. publicLevel is kept even when isPublic is false.
func (r *BoardRepo) SetPublic(ctx context.Context, id types.ID, isPublic bool, publicLevel *models.AccessLevel) error {
	var level sql.NullString
	if publicLevel != nil {
		if !publicLevel.Valid() {
			return fmt.Errorf("%w: access level %d", models.ErrInvalidArgument, *publicLevel)
		}
		level = sql.NullString{String: publicLevel.String(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE boards SET is_public = ?, public_level = ? WHERE id = ?`,
		isPublic, level, string(id))
	if err != nil {
		return fmt.Errorf("updating board visibility: %w", classifyStoreError(err))
	}
	return requireAffected(res, "board", id)
}

// Delete removes a board and, through cascades, everything on it.
func (r *BoardRepo) Delete(ctx context.Context, id types.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, string(id))
	if err != nil {
		return classifyStoreError(err)
	}
	return requireAffected(res, "board", id)
}
