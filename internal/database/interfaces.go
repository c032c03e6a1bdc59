package database

import (
	"context"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// ColumnRepository is the column storage the column service depends on.
type ColumnRepository interface {
	Create(ctx context.Context, boardID types.ID, title string) (*models.Column, error)
	GetByBoard(ctx context.Context, boardID types.ID) ([]*models.Column, error)
	GetByID(ctx context.Context, id types.ID) (*models.Column, error)
	UpdateTitle(ctx context.Context, id types.ID, title string) error
	Move(ctx context.Context, id types.ID, newPrev *types.ID) (MoveResult, error)
	Delete(ctx context.Context, id types.ID) (types.ID, error)
}

// CardRepository is the card storage the card service depends on.
type CardRepository interface {
	Create(ctx context.Context, columnID types.ID, title, description string) (*models.Card, error)
	GetByColumn(ctx context.Context, columnID types.ID) ([]*models.Card, error)
	GetByID(ctx context.Context, id types.ID) (*models.Card, error)
	BoardOf(ctx context.Context, cardID types.ID) (types.ID, error)
	UpdateTitle(ctx context.Context, id types.ID, title string) error
	UpdateDescription(ctx context.Context, id types.ID, description string) error
	Move(ctx context.Context, id, toColumn types.ID, newPrev *types.ID) (MoveResult, error)
	Delete(ctx context.Context, id types.ID) (types.ID, error)
}

// CommentRepository is the storage behind a card's comments and attachments.
type CommentRepository interface {
	AddComment(ctx context.Context, cardID types.ID, author types.UserID, body string) (*models.Comment, error)
	ListCommentsPage(ctx context.Context, cardID types.ID, limit, offset int) ([]*models.Comment, error)
	CountComments(ctx context.Context, cardID types.ID) (int, error)
	GetComment(ctx context.Context, id types.ID) (*models.Comment, error)
	UpdateComment(ctx context.Context, id types.ID, body string) error
	DeleteComment(ctx context.Context, id types.ID) error
	AddAttachment(ctx context.Context, cardID types.ID, fileName string) (*models.Attachment, error)
	ListAttachments(ctx context.Context, cardID types.ID) ([]*models.Attachment, error)
}

var (
	_ ColumnRepository  = (*ColumnRepo)(nil)
	_ CardRepository    = (*CardRepo)(nil)
	_ CommentRepository = (*CommentRepo)(nil)
)
