package card

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

// Service defines all card-related business operations
type Service interface {
	// Read operations
	GetAll(ctx context.Context, caller services.Caller, columnID types.ID) ([]*models.Card, error)
	GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Card, error)

	// Write operations
	Create(ctx context.Context, caller services.Caller, req CreateCardRequest) (*models.Card, error)
	UpdateTitle(ctx context.Context, caller services.Caller, id types.ID, title string) error
	UpdateDescription(ctx context.Context, caller services.Caller, id types.ID, description string) error
	Move(ctx context.Context, caller services.Caller, req MoveCardRequest) error
	Delete(ctx context.Context, caller services.Caller, id types.ID) error
}

// CreateCardRequest encapsulates data for creating a card
type CreateCardRequest struct {
	ColumnID    types.ID
	Title       string
	Description string
}

// MoveCardRequest places CardID after NewPrevID in ToColumnID. An empty
// ToColumnID keeps the card's column; a nil NewPrevID means the head.
type MoveCardRequest struct {
	CardID     types.ID
	ToColumnID types.ID
	NewPrevID  *types.ID
}

// columnLookup resolves the board that owns a column.
type columnLookup interface {
	GetByID(ctx context.Context, id types.ID) (*models.Column, error)
}

type service struct {
	repo     database.CardRepository
	columns  columnLookup
	access   access.Resolver
	notifier events.Notifier
	logger   *slog.Logger
}

// NewService creates a new card service
func NewService(repo database.CardRepository, columns columnLookup, resolver access.Resolver, notifier events.Notifier, logger *slog.Logger) Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:     repo,
		columns:  columns,
		access:   resolver,
		notifier: notifier,
		logger:   logger.With("service", "card"),
	}
}

// GetAll returns a column's cards in order
func (s *service) GetAll(ctx context.Context, caller services.Caller, columnID types.ID) ([]*models.Card, error) {
	if _, err := s.column(ctx, caller, columnID, access.ReadLevel); err != nil {
		return nil, err
	}
	return s.repo.GetByColumn(ctx, columnID)
}

// GetByID retrieves a specific card
func (s *service) GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Card, error) {
	card, _, err := s.load(ctx, caller, id, access.ReadLevel)
	return card, err
}

// Create appends a new card at the tail of its column
func (s *service) Create(ctx context.Context, caller services.Caller, req CreateCardRequest) (*models.Card, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if len(req.Description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}
	col, err := s.column(ctx, caller, req.ColumnID, access.WriteLevel)
	if err != nil {
		return nil, err
	}

	card, err := s.repo.Create(ctx, req.ColumnID, title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.notifier.NotifyGroup(col.BoardID, events.EventCardCreated, events.CardCreated{
		BoardID: col.BoardID,
		Card:    converters.CardToDTO(card),
	}, caller.Except()...)
	return card, nil
}

// UpdateTitle replaces a card's title
func (s *service) UpdateTitle(ctx context.Context, caller services.Caller, id types.ID, title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}
	_, boardID, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	s.notifyBoardAndCard(boardID, id, events.EventCardTitleUpdated, events.CardTitleUpdated{
		BoardID: boardID,
		CardID:  id,
		Title:   title,
	}, caller)
	return nil
}

// UpdateDescription replaces a card's description
func (s *service) UpdateDescription(ctx context.Context, caller services.Caller, id types.ID, description string) error {
	if len(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	_, boardID, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateDescription(ctx, id, description); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	s.notifyBoardAndCard(boardID, id, events.EventCardDescriptionUpdated, events.CardDescriptionUpdated{
		BoardID:     boardID,
		CardID:      id,
		Description: description,
	}, caller)
	return nil
}

// Move relinks a card, possibly into another column of the same board.
// The whole board is notified since both columns may be on screen.
func (s *service) Move(ctx context.Context, caller services.Caller, req MoveCardRequest) error {
	card, boardID, err := s.load(ctx, caller, req.CardID, access.WriteLevel)
	if err != nil {
		return err
	}

	dest := req.ToColumnID
	if dest.IsZero() {
		dest = card.ColumnID
	}
	if dest != card.ColumnID {
		destCol, err := s.columns.GetByID(ctx, dest)
		if err != nil {
			return err
		}
		if destCol.BoardID != boardID {
			return ErrCrossBoardMove
		}
	}

	res, err := s.repo.Move(ctx, req.CardID, dest, req.NewPrevID)
	if err != nil {
		return fmt.Errorf("failed to move card: %w", err)
	}
	if !res.Changed {
		return nil
	}

	s.logger.Debug("card moved",
		"card", req.CardID,
		"from", res.From,
		"to", res.To,
		"new_prev", types.Deref(req.NewPrevID),
		"user", caller.UserID)
	s.notifier.NotifyGroup(boardID, events.EventCardMoved, events.CardMoved{
		BoardID:      boardID,
		FromColumnID: res.From,
		ToColumnID:   res.To,
		MovedID:      req.CardID,
		NewPrevID:    req.NewPrevID,
	}, caller.Except()...)
	return nil
}

// Delete removes a card with its comments and attachments
func (s *service) Delete(ctx context.Context, caller services.Caller, id types.ID) error {
	card, boardID, err := s.load(ctx, caller, id, access.WriteLevel)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	s.notifyBoardAndCard(boardID, id, events.EventCardDeleted, events.CardDeleted{
		BoardID:  boardID,
		ColumnID: card.ColumnID,
		CardID:   id,
	}, caller)
	return nil
}

// load fetches a card, resolves its board and checks the caller's level.
func (s *service) load(ctx context.Context, caller services.Caller, id types.ID, min models.AccessLevel) (*models.Card, types.ID, error) {
	if id.IsZero() {
		return nil, "", ErrInvalidCardID
	}
	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	boardID, err := s.repo.BoardOf(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if err := access.Check(ctx, s.access, caller.UserID, boardID, min); err != nil {
		return nil, "", err
	}
	return card, boardID, nil
}

// column fetches a column and checks the caller's level on its board.
func (s *service) column(ctx context.Context, caller services.Caller, id types.ID, min models.AccessLevel) (*models.Column, error) {
	if id.IsZero() {
		return nil, ErrInvalidColumnID
	}
	col, err := s.columns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(ctx, s.access, caller.UserID, col.BoardID, min); err != nil {
		return nil, err
	}
	return col, nil
}

// notifyBoardAndCard reaches both the board view and any open editor of the card.
func (s *service) notifyBoardAndCard(boardID, cardID types.ID, name events.EventName, payload any, caller services.Caller) {
	s.notifier.NotifyGroup(boardID, name, payload, caller.Except()...)
	s.notifier.NotifyGroup(cardID, name, payload, caller.Except()...)
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
