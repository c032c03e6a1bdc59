package events

import (
	"encoding/json"
	"time"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// ProtocolVersion is stamped on every frame the server writes.
const ProtocolVersion = 1

// Frame types
const (
	TypeInvoke = "invoke"
	TypeResult = "result"
	TypeEvent  = "event"
)

// Hubs. Each hub has its own connection registry.
const (
	HubColumns  = "columns"
	HubCards    = "cards"
	HubAccess   = "access"
	HubBoards   = "boards"
	HubComments = "comments"
)

// Methods callable over the columns hub.
const (
	MethodCreateColumn      = "CreateColumn"
	MethodGetColumns        = "GetColumns"
	MethodUpdateColumnTitle = "UpdateColumnTitle"
	MethodMoveColumn        = "MoveColumn"
	MethodDeleteColumn      = "DeleteColumn"
)

// Methods callable over the cards hub.
const (
	MethodCreateCard            = "CreateCard"
	MethodGetCards              = "GetCards"
	MethodGetCard               = "GetCard"
	MethodUpdateCardTitle       = "UpdateCardTitle"
	MethodUpdateCardDescription = "UpdateCardDescription"
	MethodMoveCard              = "MoveCard"
	MethodDeleteCard            = "DeleteCard"
)

// Methods callable over the access hub.
const (
	MethodSetAccess          = "SetAccess"
	MethodGetAccess          = "GetAccess"
	MethodUpdatePublicAccess = "UpdatePublicAccess"
)

// Methods callable over the boards hub.
const (
	MethodGetBoard    = "GetBoard"
	MethodDeleteBoard = "DeleteBoard"
	MethodGetViewers  = "GetViewers"
)

// Methods callable over the comments hub.
const (
	MethodCreateComment    = "CreateComment"
	MethodGetComments      = "GetComments"
	MethodGetCommentsCount = "GetCommentsCount"
	MethodUpdateComment    = "UpdateComment"
	MethodDeleteComment    = "DeleteComment"
	MethodAddAttachment    = "AddAttachment"
	MethodGetAttachments   = "GetAttachments"
)

// EventName identifies a push notification.
type EventName string

const (
	EventColumnCreated          EventName = "column_created"
	EventColumnMoved            EventName = "column_moved"
	EventColumnDeleted          EventName = "column_deleted"
	EventColumnTitleUpdated     EventName = "column_title_updated"
	EventCardCreated            EventName = "card_created"
	EventCardMoved              EventName = "card_moved"
	EventCardDeleted            EventName = "card_deleted"
	EventCardTitleUpdated       EventName = "card_title_updated"
	EventCardDescriptionUpdated EventName = "card_description_updated"
	EventAccessChanged          EventName = "access_changed"
	EventBoardDeleted           EventName = "board_deleted"
	EventCommentCreated         EventName = "comment_created"
	EventCommentUpdated         EventName = "comment_updated"
	EventCommentDeleted         EventName = "comment_deleted"
	EventAttachmentAdded        EventName = "attachment_added"

	// EventResync never comes from the server. A Client puts it on its
	// Listen stream when it knows events were lost: after a reconnect or
	// when its own buffer overflowed.
	EventResync EventName = "resync"
)

// Event is a server push. Seq counts the events sent to one connection,
// starting at 1, so a skipped number means the server dropped an event.
type Event struct {
	Name    EventName       `json:"name"`
	Seq     int64           `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Message is one JSON frame on the wire in either direction.
type Message struct {
	Version int             `json:"version,omitempty"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	Event   *Event          `json:"event,omitempty"`
}

// ============================================================================
// Client-facing shapes
// ============================================================================

type Column struct {
	ID      types.ID  `json:"id"`
	BoardID types.ID  `json:"boardId"`
	Title   string    `json:"title"`
	PrevID  *types.ID `json:"prevId"`
	NextID  *types.ID `json:"nextId"`
}

func (c Column) GetID() types.ID { return c.ID }

type Card struct {
	ID          types.ID  `json:"id"`
	ColumnID    types.ID  `json:"columnId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PrevID      *types.ID `json:"prevId"`
	NextID      *types.ID `json:"nextId"`
}

func (c Card) GetID() types.ID { return c.ID }

// Board carries Level, the caller's own access level on it.
type Board struct {
	ID          types.ID     `json:"id"`
	Title       string       `json:"title"`
	OwnerID     types.UserID `json:"ownerId"`
	IsPublic    bool         `json:"isPublic"`
	PublicLevel string       `json:"publicLevel,omitempty"`
	Level       string       `json:"level,omitempty"`
}

type Comment struct {
	ID        types.ID     `json:"id"`
	CardID    types.ID     `json:"cardId"`
	AuthorID  types.UserID `json:"authorId"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Attachment struct {
	ID       types.ID `json:"id"`
	CardID   types.ID `json:"cardId"`
	FileName string   `json:"fileName"`
}

// ============================================================================
// Invocation arguments
// ============================================================================

type CreateColumnArgs struct {
	BoardID types.ID `json:"boardId"`
	Title   string   `json:"title"`
}

type GetColumnsArgs struct {
	BoardID types.ID `json:"boardId"`
}

type UpdateColumnTitleArgs struct {
	ColumnID types.ID `json:"columnId"`
	Title    string   `json:"title"`
}

// MoveColumnArgs carries only the moved id and its new predecessor.
type MoveColumnArgs struct {
	ColumnID  types.ID  `json:"columnId"`
	NewPrevID *types.ID `json:"newPrevId"`
}

type DeleteColumnArgs struct {
	ColumnID types.ID `json:"columnId"`
}

type CreateCardArgs struct {
	ColumnID    types.ID `json:"columnId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
}

type GetCardsArgs struct {
	ColumnID types.ID `json:"columnId"`
}

type GetCardArgs struct {
	CardID types.ID `json:"cardId"`
}

type UpdateCardTitleArgs struct {
	CardID types.ID `json:"cardId"`
	Title  string   `json:"title"`
}

type UpdateCardDescriptionArgs struct {
	CardID      types.ID `json:"cardId"`
	Description string   `json:"description"`
}

// MoveCardArgs moves a card into ToColumnID after NewPrevID (head when nil).
type MoveCardArgs struct {
	CardID     types.ID  `json:"cardId"`
	ToColumnID types.ID  `json:"toColumnId"`
	NewPrevID  *types.ID `json:"newPrevId"`
}

type DeleteCardArgs struct {
	CardID types.ID `json:"cardId"`
}

// SetAccessArgs grants Level to UserID on BoardID. An empty level revokes.
type SetAccessArgs struct {
	BoardID types.ID     `json:"boardId"`
	UserID  types.UserID `json:"userId"`
	Level   string       `json:"level"`
}

// GetAccessArgs asks for the caller's own level on BoardID.
type GetAccessArgs struct {
	BoardID types.ID `json:"boardId"`
}

// UpdatePublicAccessArgs sets what everyone gets on a public board. An empty
// Level leaves only personal grants in force.
type UpdatePublicAccessArgs struct {
	BoardID  types.ID `json:"boardId"`
	IsPublic bool     `json:"isPublic"`
	Level    string   `json:"level"`
}

type GetBoardArgs struct {
	BoardID types.ID `json:"boardId"`
}

type DeleteBoardArgs struct {
	BoardID types.ID `json:"boardId"`
}

type GetViewersArgs struct {
	BoardID types.ID `json:"boardId"`
}

type CreateCommentArgs struct {
	CardID types.ID `json:"cardId"`
	Body   string   `json:"body"`
}

// GetCommentsArgs pages through a card's comments, oldest first. A zero
// Limit returns every comment.
type GetCommentsArgs struct {
	CardID types.ID `json:"cardId"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}

type GetCommentsCountArgs struct {
	CardID types.ID `json:"cardId"`
}

type UpdateCommentArgs struct {
	CommentID types.ID `json:"commentId"`
	Body      string   `json:"body"`
}

type DeleteCommentArgs struct {
	CommentID types.ID `json:"commentId"`
}

type AddAttachmentArgs struct {
	CardID   types.ID `json:"cardId"`
	FileName string   `json:"fileName"`
}

type GetAttachmentsArgs struct {
	CardID types.ID `json:"cardId"`
}

// ============================================================================
// Event payloads
// ============================================================================

type ColumnCreated struct {
	BoardID types.ID `json:"boardId"`
	Column  Column   `json:"column"`
}

// ColumnMoved is the minimal move delta; its size does not depend on how
// many columns the board has.
type ColumnMoved struct {
	BoardID   types.ID  `json:"boardId"`
	MovedID   types.ID  `json:"movedId"`
	NewPrevID *types.ID `json:"newPrevId"`
}

type ColumnDeleted struct {
	BoardID  types.ID `json:"boardId"`
	ColumnID types.ID `json:"columnId"`
}

type ColumnTitleUpdated struct {
	BoardID  types.ID `json:"boardId"`
	ColumnID types.ID `json:"columnId"`
	Title    string   `json:"title"`
}

type CardCreated struct {
	BoardID types.ID `json:"boardId"`
	Card    Card     `json:"card"`
}

// CardMoved carries source and destination columns so a cross-column move
// can be replayed without a re-read.
type CardMoved struct {
	BoardID      types.ID  `json:"boardId"`
	FromColumnID types.ID  `json:"fromColumnId"`
	ToColumnID   types.ID  `json:"toColumnId"`
	MovedID      types.ID  `json:"movedId"`
	NewPrevID    *types.ID `json:"newPrevId"`
}

type CardDeleted struct {
	BoardID  types.ID `json:"boardId"`
	ColumnID types.ID `json:"columnId"`
	CardID   types.ID `json:"cardId"`
}

type CardTitleUpdated struct {
	BoardID types.ID `json:"boardId"`
	CardID  types.ID `json:"cardId"`
	Title   string   `json:"title"`
}

type CardDescriptionUpdated struct {
	BoardID     types.ID `json:"boardId"`
	CardID      types.ID `json:"cardId"`
	Description string   `json:"description"`
}

// AccessChanged tells a user their level on a board changed. An empty Level
// means access was revoked.
type AccessChanged struct {
	BoardID types.ID     `json:"boardId"`
	UserID  types.UserID `json:"userId"`
	Level   string       `json:"level"`
}

// BoardDeleted is sent to every group following the board, on every hub.
type BoardDeleted struct {
	BoardID types.ID `json:"boardId"`
}

type CommentCreated struct {
	CardID  types.ID `json:"cardId"`
	Comment Comment  `json:"comment"`
}

type CommentUpdated struct {
	CardID    types.ID `json:"cardId"`
	CommentID types.ID `json:"commentId"`
	Body      string   `json:"body"`
}

type CommentDeleted struct {
	CardID    types.ID `json:"cardId"`
	CommentID types.ID `json:"commentId"`
}

type AttachmentAdded struct {
	CardID     types.ID   `json:"cardId"`
	Attachment Attachment `json:"attachment"`
}
