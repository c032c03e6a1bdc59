package comment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/thenoetrevino/boardsync/internal/access"
	"github.com/thenoetrevino/boardsync/internal/converters"
	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/services"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Service defines the operations on a card's comments and attachments.
// Changes are pushed to the card's group only.
type Service interface {
	// Read operations
	GetComments(ctx context.Context, caller services.Caller, cardID types.ID, limit, offset int) ([]*models.Comment, error)
	Count(ctx context.Context, caller services.Caller, cardID types.ID) (int, error)
	GetAttachments(ctx context.Context, caller services.Caller, cardID types.ID) ([]*models.Attachment, error)

	// Write operations
	Create(ctx context.Context, caller services.Caller, cardID types.ID, body string) (*models.Comment, error)
	Update(ctx context.Context, caller services.Caller, id types.ID, body string) error
	Delete(ctx context.Context, caller services.Caller, id types.ID) error
	AddAttachment(ctx context.Context, caller services.Caller, cardID types.ID, fileName string) (*models.Attachment, error)
}

// boardLookup resolves the board a card lives on.
type boardLookup interface {
	BoardOf(ctx context.Context, cardID types.ID) (types.ID, error)
}

type service struct {
	repo     database.CommentRepository
	cards    boardLookup
	access   access.Resolver
	notifier events.Notifier
	logger   *slog.Logger
}

// NewService creates a new comment service
func NewService(repo database.CommentRepository, cards boardLookup, resolver access.Resolver, notifier events.Notifier, logger *slog.Logger) Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:     repo,
		cards:    cards,
		access:   resolver,
		notifier: notifier,
		logger:   logger.With("service", "comment"),
	}
}

// GetComments pages through a card's comments, oldest first. A zero limit
// returns all of them.
func (s *service) GetComments(ctx context.Context, caller services.Caller, cardID types.ID, limit, offset int) ([]*models.Comment, error) {
	if limit < 0 || limit > MaxPageSize || offset < 0 {
		return nil, ErrBadPage
	}
	if err := s.check(ctx, caller, cardID, access.ReadLevel); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = -1
	}
	return s.repo.ListCommentsPage(ctx, cardID, limit, offset)
}

func (s *service) Count(ctx context.Context, caller services.Caller, cardID types.ID) (int, error) {
	if err := s.check(ctx, caller, cardID, access.ReadLevel); err != nil {
		return 0, err
	}
	return s.repo.CountComments(ctx, cardID)
}

func (s *service) GetAttachments(ctx context.Context, caller services.Caller, cardID types.ID) ([]*models.Attachment, error) {
	if err := s.check(ctx, caller, cardID, access.ReadLevel); err != nil {
		return nil, err
	}
	return s.repo.ListAttachments(ctx, cardID)
}

// Create adds a comment written by the caller
func (s *service) Create(ctx context.Context, caller services.Caller, cardID types.ID, body string) (*models.Comment, error) {
	body, err := validateBody(body)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, caller, cardID, access.WriteLevel); err != nil {
		return nil, err
	}

	comment, err := s.repo.AddComment(ctx, cardID, caller.UserID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	// The insert does not read back the stored timestamp.
	if stored, err := s.repo.GetComment(ctx, comment.ID); err == nil {
		comment = stored
	}

	s.notifier.NotifyGroup(cardID, events.EventCommentCreated, events.CommentCreated{
		CardID:  cardID,
		Comment: converters.CommentToDTO(comment),
	}, caller.Except()...)
	return comment, nil
}

// Update replaces the text of a comment
func (s *service) Update(ctx context.Context, caller services.Caller, id types.ID, body string) error {
	body, err := validateBody(body)
	if err != nil {
		return err
	}
	comment, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateComment(ctx, id, body); err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	s.notifier.NotifyGroup(comment.CardID, events.EventCommentUpdated, events.CommentUpdated{
		CardID:    comment.CardID,
		CommentID: id,
		Body:      body,
	}, caller.Except()...)
	return nil
}

func (s *service) Delete(ctx context.Context, caller services.Caller, id types.ID) error {
	comment, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.notifier.NotifyGroup(comment.CardID, events.EventCommentDeleted, events.CommentDeleted{
		CardID:    comment.CardID,
		CommentID: id,
	}, caller.Except()...)
	return nil
}

// AddAttachment records a file on a card. Only the base name is kept.
func (s *service) AddAttachment(ctx context.Context, caller services.Caller, cardID types.ID, fileName string) (*models.Attachment, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName != "" {
		fileName = filepath.Base(filepath.Clean(fileName))
	}
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, ErrEmptyFileName
	}
	if len(fileName) > MaxFileNameLength {
		return nil, ErrFileNameTooLong
	}
	if err := s.check(ctx, caller, cardID, access.WriteLevel); err != nil {
		return nil, err
	}

	att, err := s.repo.AddAttachment(ctx, cardID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to add attachment: %w", err)
	}

	s.logger.Debug("attachment added", "card", cardID, "file", fileName, "user", caller.UserID)
	s.notifier.NotifyGroup(cardID, events.EventAttachmentAdded, events.AttachmentAdded{
		CardID:     cardID,
		Attachment: converters.AttachmentToDTO(att),
	}, caller.Except()...)
	return att, nil
}

// check resolves the card's board and requires min there.
func (s *service) check(ctx context.Context, caller services.Caller, cardID types.ID, min models.AccessLevel) error {
	if cardID.IsZero() {
		return ErrInvalidCardID
	}
	boardID, err := s.cards.BoardOf(ctx, cardID)
	if err != nil {
		return err
	}
	return access.Check(ctx, s.access, caller.UserID, boardID, min)
}

// load fetches a comment for a write by the caller.
func (s *service) load(ctx context.Context, caller services.Caller, id types.ID) (*models.Comment, error) {
	if id.IsZero() {
		return nil, ErrInvalidID
	}
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, caller, comment.CardID, access.WriteLevel); err != nil {
		return nil, err
	}
	return comment, nil
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if len(body) > MaxBodyLength {
		return "", ErrBodyTooLong
	}
	return body, nil
}
