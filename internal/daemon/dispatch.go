package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/thenoetrevino/boardsync/internal/converters"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/registry"
	"github.com/thenoetrevino/boardsync/internal/services"
	boardservice "github.com/thenoetrevino/boardsync/internal/services/board"
	cardservice "github.com/thenoetrevino/boardsync/internal/services/card"
	columnservice "github.com/thenoetrevino/boardsync/internal/services/column"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// handlerFunc runs one hub method. A nil result is sent as an empty result.
type handlerFunc func(ctx context.Context, caller services.Caller, args json.RawMessage) (any, error)

// scopeFunc decides which group a new connection joins from its handshake.
type scopeFunc func(ctx context.Context, r *http.Request, user types.UserID) (registry.Scope, error)

type hub struct {
	name         string
	registry     *registry.Registry
	methods      map[string]handlerFunc
	resolveScope scopeFunc
}

func (h *hub) call(ctx context.Context, caller services.Caller, method string, args json.RawMessage) (any, error) {
	fn, ok := h.methods[method]
	if !ok {
		return nil, &events.Error{
			Code:    events.CodeUnknownMethod,
			Message: fmt.Sprintf("hub %s has no method %q", h.name, method),
		}
	}
	return fn(ctx, caller, args)
}

// handle decodes the arguments of a method into A before calling fn.
func handle[A any](fn func(ctx context.Context, caller services.Caller, args A) (any, error)) handlerFunc {
	return func(ctx context.Context, caller services.Caller, raw json.RawMessage) (any, error) {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: bad arguments: %v", models.ErrInvalidArgument, err)
			}
		}
		return fn(ctx, caller, args)
	}
}

// validIDs rejects malformed identifiers before they reach a query.
// Empty ids are left to the services, which know which ones are optional.
func validIDs(ids ...types.ID) error {
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, err := types.ParseID(string(id)); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
		}
	}
	return nil
}

func (s *Server) buildHubs() map[string]*hub {
	hubs := map[string]*hub{
		events.HubBoards:   {name: events.HubBoards, methods: s.boardMethods(), resolveScope: s.boardScope},
		events.HubColumns:  {name: events.HubColumns, methods: s.columnMethods(), resolveScope: s.boardScope},
		events.HubCards:    {name: events.HubCards, methods: s.cardMethods(), resolveScope: s.cardScope},
		events.HubComments: {name: events.HubComments, methods: s.commentMethods(), resolveScope: s.commentScope},
		events.HubAccess:   {name: events.HubAccess, methods: s.accessMethods(), resolveScope: noScope},
	}
	for name, h := range hubs {
		h.registry = s.app.Registry(name)
	}
	return hubs
}

func (s *Server) boardMethods() map[string]handlerFunc {
	boards := s.app.BoardService
	return map[string]handlerFunc{
		events.MethodGetBoard: handle(func(ctx context.Context, caller services.Caller, a events.GetBoardArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			board, err := boards.GetByID(ctx, caller, a.BoardID)
			if err != nil {
				return nil, err
			}
			level, err := boards.GetAccess(ctx, caller, a.BoardID)
			if err != nil {
				return nil, err
			}
			return converters.BoardToDTO(board, level), nil
		}),
		events.MethodDeleteBoard: handle(func(ctx context.Context, caller services.Caller, a events.DeleteBoardArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			return nil, boards.Delete(ctx, caller, a.BoardID)
		}),
		events.MethodGetViewers: handle(func(ctx context.Context, caller services.Caller, a events.GetViewersArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			return boards.GetViewers(ctx, caller, a.BoardID)
		}),
	}
}

func (s *Server) columnMethods() map[string]handlerFunc {
	columns := s.app.ColumnService
	return map[string]handlerFunc{
		events.MethodGetColumns: handle(func(ctx context.Context, caller services.Caller, a events.GetColumnsArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			cols, err := columns.GetAll(ctx, caller, a.BoardID)
			if err != nil {
				return nil, err
			}
			return converters.ColumnsToDTOs(cols), nil
		}),
		events.MethodCreateColumn: handle(func(ctx context.Context, caller services.Caller, a events.CreateColumnArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			col, err := columns.Create(ctx, caller, columnservice.CreateColumnRequest{BoardID: a.BoardID, Title: a.Title})
			if err != nil {
				return nil, err
			}
			return converters.ColumnToDTO(col), nil
		}),
		events.MethodUpdateColumnTitle: handle(func(ctx context.Context, caller services.Caller, a events.UpdateColumnTitleArgs) (any, error) {
			if err := validIDs(a.ColumnID); err != nil {
				return nil, err
			}
			return nil, columns.UpdateTitle(ctx, caller, a.ColumnID, a.Title)
		}),
		events.MethodMoveColumn: handle(func(ctx context.Context, caller services.Caller, a events.MoveColumnArgs) (any, error) {
			if err := validIDs(a.ColumnID, types.Deref(a.NewPrevID)); err != nil {
				return nil, err
			}
			return nil, columns.Move(ctx, caller, a.ColumnID, a.NewPrevID)
		}),
		events.MethodDeleteColumn: handle(func(ctx context.Context, caller services.Caller, a events.DeleteColumnArgs) (any, error) {
			if err := validIDs(a.ColumnID); err != nil {
				return nil, err
			}
			return nil, columns.Delete(ctx, caller, a.ColumnID)
		}),
	}
}

func (s *Server) cardMethods() map[string]handlerFunc {
	cards := s.app.CardService
	return map[string]handlerFunc{
		events.MethodGetCards: handle(func(ctx context.Context, caller services.Caller, a events.GetCardsArgs) (any, error) {
			if err := validIDs(a.ColumnID); err != nil {
				return nil, err
			}
			list, err := cards.GetAll(ctx, caller, a.ColumnID)
			if err != nil {
				return nil, err
			}
			return converters.CardsToDTOs(list), nil
		}),
		events.MethodGetCard: handle(func(ctx context.Context, caller services.Caller, a events.GetCardArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			card, err := cards.GetByID(ctx, caller, a.CardID)
			if err != nil {
				return nil, err
			}
			return converters.CardToDTO(card), nil
		}),
		events.MethodCreateCard: handle(func(ctx context.Context, caller services.Caller, a events.CreateCardArgs) (any, error) {
			if err := validIDs(a.ColumnID); err != nil {
				return nil, err
			}
			card, err := cards.Create(ctx, caller, cardservice.CreateCardRequest{
				ColumnID:    a.ColumnID,
				Title:       a.Title,
				Description: a.Description,
			})
			if err != nil {
				return nil, err
			}
			return converters.CardToDTO(card), nil
		}),
		events.MethodUpdateCardTitle: handle(func(ctx context.Context, caller services.Caller, a events.UpdateCardTitleArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			return nil, cards.UpdateTitle(ctx, caller, a.CardID, a.Title)
		}),
		events.MethodUpdateCardDescription: handle(func(ctx context.Context, caller services.Caller, a events.UpdateCardDescriptionArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			return nil, cards.UpdateDescription(ctx, caller, a.CardID, a.Description)
		}),
		events.MethodMoveCard: handle(func(ctx context.Context, caller services.Caller, a events.MoveCardArgs) (any, error) {
			if err := validIDs(a.CardID, a.ToColumnID, types.Deref(a.NewPrevID)); err != nil {
				return nil, err
			}
			return nil, cards.Move(ctx, caller, cardservice.MoveCardRequest{
				CardID:     a.CardID,
				ToColumnID: a.ToColumnID,
				NewPrevID:  a.NewPrevID,
			})
		}),
		events.MethodDeleteCard: handle(func(ctx context.Context, caller services.Caller, a events.DeleteCardArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			return nil, cards.Delete(ctx, caller, a.CardID)
		}),
	}
}

func (s *Server) commentMethods() map[string]handlerFunc {
	comments := s.app.CommentService
	return map[string]handlerFunc{
		events.MethodGetComments: handle(func(ctx context.Context, caller services.Caller, a events.GetCommentsArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			list, err := comments.GetComments(ctx, caller, a.CardID, a.Limit, a.Offset)
			if err != nil {
				return nil, err
			}
			return converters.CommentsToDTOs(list), nil
		}),
		events.MethodGetCommentsCount: handle(func(ctx context.Context, caller services.Caller, a events.GetCommentsCountArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			return comments.Count(ctx, caller, a.CardID)
		}),
		events.MethodCreateComment: handle(func(ctx context.Context, caller services.Caller, a events.CreateCommentArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			comment, err := comments.Create(ctx, caller, a.CardID, a.Body)
			if err != nil {
				return nil, err
			}
			return converters.CommentToDTO(comment), nil
		}),
		events.MethodUpdateComment: handle(func(ctx context.Context, caller services.Caller, a events.UpdateCommentArgs) (any, error) {
			if err := validIDs(a.CommentID); err != nil {
				return nil, err
			}
			return nil, comments.Update(ctx, caller, a.CommentID, a.Body)
		}),
		events.MethodDeleteComment: handle(func(ctx context.Context, caller services.Caller, a events.DeleteCommentArgs) (any, error) {
			if err := validIDs(a.CommentID); err != nil {
				return nil, err
			}
			return nil, comments.Delete(ctx, caller, a.CommentID)
		}),
		events.MethodAddAttachment: handle(func(ctx context.Context, caller services.Caller, a events.AddAttachmentArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			att, err := comments.AddAttachment(ctx, caller, a.CardID, a.FileName)
			if err != nil {
				return nil, err
			}
			return converters.AttachmentToDTO(att), nil
		}),
		events.MethodGetAttachments: handle(func(ctx context.Context, caller services.Caller, a events.GetAttachmentsArgs) (any, error) {
			if err := validIDs(a.CardID); err != nil {
				return nil, err
			}
			list, err := comments.GetAttachments(ctx, caller, a.CardID)
			if err != nil {
				return nil, err
			}
			return converters.AttachmentsToDTOs(list), nil
		}),
	}
}

func (s *Server) accessMethods() map[string]handlerFunc {
	boards := s.app.BoardService
	return map[string]handlerFunc{
		events.MethodGetAccess: handle(func(ctx context.Context, caller services.Caller, a events.GetAccessArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			level, err := boards.GetAccess(ctx, caller, a.BoardID)
			if err != nil || level == nil {
				return "", err
			}
			return level.String(), nil
		}),
		events.MethodUpdatePublicAccess: handle(func(ctx context.Context, caller services.Caller, a events.UpdatePublicAccessArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			level, err := parseLevel(a.Level)
			if err != nil {
				return nil, err
			}
			return nil, boards.UpdatePublicAccess(ctx, caller, boardservice.PublicAccessRequest{
				BoardID:  a.BoardID,
				IsPublic: a.IsPublic,
				Level:    level,
			})
		}),
		events.MethodSetAccess: handle(func(ctx context.Context, caller services.Caller, a events.SetAccessArgs) (any, error) {
			if err := validIDs(a.BoardID); err != nil {
				return nil, err
			}
			level, err := parseLevel(a.Level)
			if err != nil {
				return nil, err
			}
			return nil, boards.SetAccess(ctx, caller, boardservice.SetAccessRequest{
				BoardID: a.BoardID,
				UserID:  a.UserID,
				Level:   level,
			})
		}),
	}
}

// parseLevel reads an optional level; empty means none.
func parseLevel(raw string) (*models.AccessLevel, error) {
	if raw == "" {
		return nil, nil
	}
	level, err := models.ParseAccessLevel(raw)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// boardScope joins the connection to the board it names, after checking the
// user can read it. A connection without board_id only receives replies.
func (s *Server) boardScope(ctx context.Context, r *http.Request, user types.UserID) (registry.Scope, error) {
	raw := r.URL.Query().Get("board_id")
	if raw == "" {
		return registry.Scope{}, nil
	}
	id, err := types.ParseID(raw)
	if err != nil {
		return registry.Scope{}, fmt.Errorf("%w: board_id: %v", models.ErrInvalidArgument, err)
	}
	if _, err := s.app.BoardService.GetByID(ctx, services.Caller{UserID: user}, id); err != nil {
		return registry.Scope{}, err
	}
	return registry.Scope{Kind: registry.ScopeBoard, ID: id, Board: id}, nil
}

// cardScope follows a single card when card_id is given, otherwise a board.
func (s *Server) cardScope(ctx context.Context, r *http.Request, user types.UserID) (registry.Scope, error) {
	if r.URL.Query().Get("card_id") == "" {
		return s.boardScope(ctx, r, user)
	}
	return s.commentScope(ctx, r, user)
}

// commentScope follows the card named by card_id; comments live in no
// other group. The card's board is kept so access changes can find it.
func (s *Server) commentScope(ctx context.Context, r *http.Request, user types.UserID) (registry.Scope, error) {
	raw := r.URL.Query().Get("card_id")
	if raw == "" {
		return registry.Scope{}, fmt.Errorf("%w: card_id is required", models.ErrInvalidArgument)
	}
	id, err := types.ParseID(raw)
	if err != nil {
		return registry.Scope{}, fmt.Errorf("%w: card_id: %v", models.ErrInvalidArgument, err)
	}
	if _, err := s.app.CardService.GetByID(ctx, services.Caller{UserID: user}, id); err != nil {
		return registry.Scope{}, err
	}
	boardID, err := s.app.Repo().Cards.BoardOf(ctx, id)
	if err != nil {
		return registry.Scope{}, err
	}
	return registry.Scope{Kind: registry.ScopeCard, ID: id, Board: boardID}, nil
}

// noScope is used by the access hub, which only routes to user groups.
func noScope(context.Context, *http.Request, types.UserID) (registry.Scope, error) {
	return registry.Scope{}, nil
}
