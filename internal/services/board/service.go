package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/thenoetrevino/boardsync/internal/access"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/services"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// Store is the board persistence the service needs.
type Store interface {
	access.Resolver
	Create(ctx context.Context, title string, owner types.UserID, isPublic bool, publicLevel *models.AccessLevel) (*models.Board, error)
	GetByID(ctx context.Context, id types.ID) (*models.Board, error)
	SetGrant(ctx context.Context, grant models.AccessGrant) error
	RemoveGrant(ctx context.Context, boardID types.ID, userID types.UserID) error
	SetPublic(ctx context.Context, id types.ID, isPublic bool, publicLevel *models.AccessLevel) error
	Delete(ctx context.Context, id types.ID) error
}

// Presence is the live side of every hub that follows boards: who is
// watching one, and a way to cut off connections that may no longer.
type Presence interface {
	Viewers(boardID types.ID) []types.UserID
	EvictBoard(boardID types.ID, gone func(types.UserID) bool, name events.EventName, payload any, except ...types.ConnID) int
}

// Service manages boards and who may see them.
type Service interface {
	Create(ctx context.Context, caller services.Caller, req CreateBoardRequest) (*models.Board, error)
	GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Board, error)
	GetAccess(ctx context.Context, caller services.Caller, id types.ID) (*models.AccessLevel, error)
	GetViewers(ctx context.Context, caller services.Caller, id types.ID) ([]types.UserID, error)
	SetAccess(ctx context.Context, caller services.Caller, req SetAccessRequest) error
	UpdatePublicAccess(ctx context.Context, caller services.Caller, req PublicAccessRequest) error
	Delete(ctx context.Context, caller services.Caller, id types.ID) error
}

// CreateBoardRequest encapsulates data for creating a board
type CreateBoardRequest struct {
	Title       string
	IsPublic    bool
	PublicLevel *models.AccessLevel
}

// SetAccessRequest grants Level to UserID. A nil Level revokes the grant.
type SetAccessRequest struct {
	BoardID types.ID
	UserID  types.UserID
	Level   *models.AccessLevel
}

// PublicAccessRequest sets what everyone gets on a board. A nil Level
// with IsPublic set leaves the board listed but grants nothing by default.
type PublicAccessRequest struct {
	BoardID  types.ID
	IsPublic bool
	Level    *models.AccessLevel
}

type service struct {
	store    Store
	notifier events.Notifier
	presence Presence
	logger   *slog.Logger
}

// nobody is the Presence of a service with no live connections.
type nobody struct{}

func (nobody) Viewers(types.ID) []types.UserID { return nil }
func (nobody) EvictBoard(types.ID, func(types.UserID) bool, events.EventName, any, ...types.ConnID) int {
	return 0
}

// NewService creates a new board service. notifier reaches user groups on
// the access hub; presence covers the hubs whose connections follow boards.
func NewService(store Store, notifier events.Notifier, presence Presence, logger *slog.Logger) Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	if presence == nil {
		presence = nobody{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{store: store, notifier: notifier, presence: presence, logger: logger.With("service", "board")}
}

func (s *service) Create(ctx context.Context, caller services.Caller, req CreateBoardRequest) (*models.Board, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if caller.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.PublicLevel != nil && !req.PublicLevel.Valid() {
		return nil, fmt.Errorf("%w: public level %d", models.ErrInvalidArgument, *req.PublicLevel)
	}
	return s.store.Create(ctx, title, caller.UserID, req.IsPublic, req.PublicLevel)
}

func (s *service) GetByID(ctx context.Context, caller services.Caller, id types.ID) (*models.Board, error) {
	if id.IsZero() {
		return nil, ErrInvalidBoardID
	}
	if err := access.Check(ctx, s.store, caller.UserID, id, access.ReadLevel); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// GetAccess returns the caller's own level, nil when they have none.
func (s *service) GetAccess(ctx context.Context, caller services.Caller, id types.ID) (*models.AccessLevel, error) {
	if id.IsZero() {
		return nil, ErrInvalidBoardID
	}
	return s.store.GetAccess(ctx, caller.UserID, id)
}

// GetViewers lists the users with a live connection on the board.
func (s *service) GetViewers(ctx context.Context, caller services.Caller, id types.ID) ([]types.UserID, error) {
	if id.IsZero() {
		return nil, ErrInvalidBoardID
	}
	if err := access.Check(ctx, s.store, caller.UserID, id, access.ReadLevel); err != nil {
		return nil, err
	}
	return s.presence.Viewers(id), nil
}

// SetAccess lets the owner grant or revoke a personal level, then tells
// every connection of the affected user. Connections of a user left with
// no level are taken off the board.
func (s *service) SetAccess(ctx context.Context, caller services.Caller, req SetAccessRequest) error {
	if req.BoardID.IsZero() {
		return ErrInvalidBoardID
	}
	if req.UserID == "" {
		return ErrInvalidUserID
	}
	if req.Level != nil && (!req.Level.Valid() || *req.Level == models.AccessOwner) {
		return fmt.Errorf("%w: cannot grant %s", models.ErrInvalidArgument, *req.Level)
	}

	board, err := s.store.GetByID(ctx, req.BoardID)
	if err != nil {
		return err
	}
	if err := access.Check(ctx, s.store, caller.UserID, req.BoardID, access.AdminLevel); err != nil {
		return err
	}
	if board.OwnerID == req.UserID {
		return ErrOwnerGrant
	}

	payload := events.AccessChanged{BoardID: req.BoardID, UserID: req.UserID}
	if req.Level == nil {
		if err := s.store.RemoveGrant(ctx, req.BoardID, req.UserID); err != nil {
			return fmt.Errorf("failed to revoke access: %w", err)
		}
	} else {
		grant := models.AccessGrant{UserID: req.UserID, BoardID: req.BoardID, Level: *req.Level}
		if err := s.store.SetGrant(ctx, grant); err != nil {
			return fmt.Errorf("failed to grant access: %w", err)
		}
		payload.Level = req.Level.String()
	}

	s.logger.Info("access changed", "board", req.BoardID, "user", req.UserID, "level", payload.Level)
	s.notifier.NotifyUser(req.UserID, events.EventAccessChanged, payload)

	if req.Level == nil {
		lost := s.lostAccess(ctx, req.BoardID)
		s.evict(req.BoardID, req.UserID, func(user types.UserID) bool {
			return user == req.UserID && lost(user)
		})
	}
	return nil
}

// UpdatePublicAccess lets the owner change the board's public default.
// Viewers who only had the old default are taken off the board.
func (s *service) UpdatePublicAccess(ctx context.Context, caller services.Caller, req PublicAccessRequest) error {
	if req.BoardID.IsZero() {
		return ErrInvalidBoardID
	}
	if req.Level != nil && (!req.Level.Valid() || *req.Level == models.AccessOwner) {
		return fmt.Errorf("%w: cannot make %s public", models.ErrInvalidArgument, *req.Level)
	}
	if err := access.Check(ctx, s.store, caller.UserID, req.BoardID, access.AdminLevel); err != nil {
		return err
	}

	if err := s.store.SetPublic(ctx, req.BoardID, req.IsPublic, req.Level); err != nil {
		return fmt.Errorf("failed to update public access: %w", err)
	}
	level := ""
	if req.Level != nil {
		level = req.Level.String()
	}
	s.logger.Info("public access changed", "board", req.BoardID, "public", req.IsPublic, "level", level)

	s.evict(req.BoardID, "", s.lostAccess(ctx, req.BoardID))
	return nil
}

// Delete removes a board with everything on it. Every connection following
// the board or one of its cards is told and taken off it.
func (s *service) Delete(ctx context.Context, caller services.Caller, id types.ID) error {
	if id.IsZero() {
		return ErrInvalidBoardID
	}
	if err := access.Check(ctx, s.store, caller.UserID, id, access.WriteLevel); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	n := s.presence.EvictBoard(id, func(types.UserID) bool { return true },
		events.EventBoardDeleted, events.BoardDeleted{BoardID: id}, caller.Except()...)
	s.logger.Info("board deleted", "board", id, "user", caller.UserID, "evicted", n)
	return nil
}

// lostAccess reports, once per user, whether they can no longer read the
// board. Lookup failures keep the user on; the next call re-checks anyway.
func (s *service) lostAccess(ctx context.Context, boardID types.ID) func(types.UserID) bool {
	var mu sync.Mutex
	seen := make(map[types.UserID]bool)
	return func(user types.UserID) bool {
		mu.Lock()
		defer mu.Unlock()
		if lost, ok := seen[user]; ok {
			return lost
		}
		level, err := s.store.GetAccess(ctx, user, boardID)
		if err != nil {
			s.logger.Warn("failed to re-check access", "board", boardID, "user", user, "error", err)
		}
		lost := err == nil && (level == nil || !level.AtLeast(access.ReadLevel))
		seen[user] = lost
		return lost
	}
}

// evict takes users that gone reports off the board on every hub. user is
// stamped on the access_changed they receive; it is empty when the public
// default changed.
func (s *service) evict(boardID types.ID, user types.UserID, gone func(types.UserID) bool) {
	payload := events.AccessChanged{BoardID: boardID, UserID: user}
	n := s.presence.EvictBoard(boardID, gone, events.EventAccessChanged, payload)
	if n > 0 {
		s.logger.Info("connections evicted from board", "board", boardID, "count", n)
	}
}
