package column

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/boardsync/internal/access"
	"github.com/thenoetrevino/boardsync/internal/converters"
	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/services"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Service defines all column-related business operations.
// Every operation checks the caller's access first, and every write
// notifies the board group only after it has been committed.
type Service interface {
	// Read operations
	GetAll(ctx context.Context, caller services.Caller, boardID types.ID) ([]*models.Column, error)
	GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Column, error)

	// Write operations
	Create(ctx context.Context, caller services.Caller, req CreateColumnRequest) (*models.Column, error)
	UpdateTitle(ctx context.Context, caller services.Caller, id types.ID, title string) error
	Move(ctx context.Context, caller services.Caller, id types.ID, newPrevID *types.ID) error
	Delete(ctx context.Context, caller services.Caller, id types.ID) error
}

// CreateColumnRequest encapsulates data for creating a column
type CreateColumnRequest struct {
	BoardID types.ID
	Title   string
}

type service struct {
	repo     database.ColumnRepository
	access   access.Resolver
	notifier events.Notifier
	logger   *slog.Logger
}

// NewService creates a new column service
func NewService(repo database.ColumnRepository, resolver access.Resolver, notifier events.Notifier, logger *slog.Logger) Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:     repo,
		access:   resolver,
		notifier: notifier,
		logger:   logger.With("service", "column"),
	}
}

// GetAll returns the board's columns in order
func (s *service) GetAll(ctx context.Context, caller services.Caller, boardID types.ID) ([]*models.Column, error) {
	if boardID.IsZero() {
		return nil, ErrInvalidBoardID
	}
	if err := access.Check(ctx, s.access, caller.UserID, boardID, access.ReadLevel); err != nil {
		return nil, err
	}
	return s.repo.GetByBoard(ctx, boardID)
}

// GetByID retrieves a specific column
func (s *service) GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Column, error) {
	col, err := s.load(ctx, caller, id, access.ReadLevel)
	if err != nil {
		return nil, err
	}
	return col, nil
}

// Create appends a new column at the tail of the board
func (s *service) Create(ctx context.Context, caller services.Caller, req CreateColumnRequest) (*models.Column, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if req.BoardID.IsZero() {
		return nil, ErrInvalidBoardID
	}
	if err := access.Check(ctx, s.access, caller.UserID, req.BoardID, access.WriteLevel); err != nil {
		return nil, err
	}

	col, err := s.repo.Create(ctx, req.BoardID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.notifier.NotifyGroup(req.BoardID, events.EventColumnCreated, events.ColumnCreated{
		BoardID: req.BoardID,
		Column:  converters.ColumnToDTO(col),
	}, caller.Except()...)
	return col, nil
}

// UpdateTitle replaces a column's title
func (s *service) UpdateTitle(ctx context.Context, caller services.Caller, id types.ID, title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}
	col, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}

	s.notifier.NotifyGroup(col.BoardID, events.EventColumnTitleUpdated, events.ColumnTitleUpdated{
		BoardID:  col.BoardID,
		ColumnID: id,
		Title:    title,
	}, caller.Except()...)
	return nil
}

// Move relinks a column after newPrevID, or at the head when it is nil.
// A move that changes nothing succeeds without notifying anyone.
func (s *service) Move(ctx context.Context, caller services.Caller, id types.ID, newPrevID *types.ID) error {
	col, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	res, err := s.repo.Move(ctx, id, newPrevID)
	if err != nil {
		return fmt.Errorf("failed to move column: %w", err)
	}
	if !res.Changed {
		return nil
	}

	s.logger.Debug("column moved", "column", id, "new_prev", types.Deref(newPrevID), "user", caller.UserID)
	s.notifier.NotifyGroup(col.BoardID, events.EventColumnMoved, events.ColumnMoved{
		BoardID:   col.BoardID,
		MovedID:   id,
		NewPrevID: newPrevID,
	}, caller.Except()...)
	return nil
}

// Delete removes a column together with its cards
func (s *service) Delete(ctx context.Context, caller services.Caller, id types.ID) error {
	col, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}

	s.notifier.NotifyGroup(col.BoardID, events.EventColumnDeleted, events.ColumnDeleted{
		BoardID:  col.BoardID,
		ColumnID: id,
	}, caller.Except()...)
	return nil
}

// load fetches a column and checks the caller's level on its board.
func (s *service) load(ctx context.Context, caller services.Caller, id types.ID, min models.AccessLevel) (*models.Column, error) {
	if id.IsZero() {
		return nil, ErrInvalidColumnID
	}
	col, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(ctx, s.access, caller.UserID, col.BoardID, min); err != nil {
		return nil, err
	}
	return col, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}
