package events

import (
	"context"

	"github.com/thenoetrevino/boardsync/internal/types"
)

// Typed wrappers over the hub methods. They work with any Invoker.

func GetColumns(ctx context.Context, inv Invoker, boardID types.ID) ([]Column, error) {
	var cols []Column
	err := inv.Invoke(ctx, MethodGetColumns, GetColumnsArgs{BoardID: boardID}, &cols)
	return cols, err
}

func CreateColumn(ctx context.Context, inv Invoker, boardID types.ID, title string) (Column, error) {
	var col Column
	err := inv.Invoke(ctx, MethodCreateColumn, CreateColumnArgs{BoardID: boardID, Title: title}, &col)
	return col, err
}

func UpdateColumnTitle(ctx context.Context, inv Invoker, columnID types.ID, title string) error {
	return inv.Invoke(ctx, MethodUpdateColumnTitle, UpdateColumnTitleArgs{ColumnID: columnID, Title: title}, nil)
}

// MoveColumn places columnID after newPrevID, or at the head when nil.
func MoveColumn(ctx context.Context, inv Invoker, columnID types.ID, newPrevID *types.ID) error {
	return inv.Invoke(ctx, MethodMoveColumn, MoveColumnArgs{ColumnID: columnID, NewPrevID: newPrevID}, nil)
}

func DeleteColumn(ctx context.Context, inv Invoker, columnID types.ID) error {
	return inv.Invoke(ctx, MethodDeleteColumn, DeleteColumnArgs{ColumnID: columnID}, nil)
}

func GetCards(ctx context.Context, inv Invoker, columnID types.ID) ([]Card, error) {
	var cards []Card
	err := inv.Invoke(ctx, MethodGetCards, GetCardsArgs{ColumnID: columnID}, &cards)
	return cards, err
}

func GetCard(ctx context.Context, inv Invoker, cardID types.ID) (Card, error) {
	var card Card
	err := inv.Invoke(ctx, MethodGetCard, GetCardArgs{CardID: cardID}, &card)
	return card, err
}

func CreateCard(ctx context.Context, inv Invoker, columnID types.ID, title, description string) (Card, error) {
	var card Card
	err := inv.Invoke(ctx, MethodCreateCard, CreateCardArgs{ColumnID: columnID, Title: title, Description: description}, &card)
	return card, err
}

func UpdateCardTitle(ctx context.Context, inv Invoker, cardID types.ID, title string) error {
	return inv.Invoke(ctx, MethodUpdateCardTitle, UpdateCardTitleArgs{CardID: cardID, Title: title}, nil)
}

func UpdateCardDescription(ctx context.Context, inv Invoker, cardID types.ID, description string) error {
	return inv.Invoke(ctx, MethodUpdateCardDescription, UpdateCardDescriptionArgs{CardID: cardID, Description: description}, nil)
}

// MoveCard places cardID in toColumnID after newPrevID, or at the head when nil.
func MoveCard(ctx context.Context, inv Invoker, cardID, toColumnID types.ID, newPrevID *types.ID) error {
	return inv.Invoke(ctx, MethodMoveCard, MoveCardArgs{CardID: cardID, ToColumnID: toColumnID, NewPrevID: newPrevID}, nil)
}

func DeleteCard(ctx context.Context, inv Invoker, cardID types.ID) error {
	return inv.Invoke(ctx, MethodDeleteCard, DeleteCardArgs{CardID: cardID}, nil)
}

// SetAccess grants level on boardID to userID. An empty level revokes.
func SetAccess(ctx context.Context, inv Invoker, boardID types.ID, userID types.UserID, level string) error {
	return inv.Invoke(ctx, MethodSetAccess, SetAccessArgs{BoardID: boardID, UserID: userID, Level: level}, nil)
}

// GetAccess returns the caller's level on boardID, empty when it has none.
func GetAccess(ctx context.Context, inv Invoker, boardID types.ID) (string, error) {
	var level string
	err := inv.Invoke(ctx, MethodGetAccess, GetAccessArgs{BoardID: boardID}, &level)
	return level, err
}

func UpdatePublicAccess(ctx context.Context, inv Invoker, boardID types.ID, isPublic bool, level string) error {
	return inv.Invoke(ctx, MethodUpdatePublicAccess, UpdatePublicAccessArgs{BoardID: boardID, IsPublic: isPublic, Level: level}, nil)
}

func GetBoard(ctx context.Context, inv Invoker, boardID types.ID) (Board, error) {
	var board Board
	err := inv.Invoke(ctx, MethodGetBoard, GetBoardArgs{BoardID: boardID}, &board)
	return board, err
}

func DeleteBoard(ctx context.Context, inv Invoker, boardID types.ID) error {
	return inv.Invoke(ctx, MethodDeleteBoard, DeleteBoardArgs{BoardID: boardID}, nil)
}

// GetViewers lists the users with a live connection on boardID.
func GetViewers(ctx context.Context, inv Invoker, boardID types.ID) ([]types.UserID, error) {
	var users []types.UserID
	err := inv.Invoke(ctx, MethodGetViewers, GetViewersArgs{BoardID: boardID}, &users)
	return users, err
}

func CreateComment(ctx context.Context, inv Invoker, cardID types.ID, body string) (Comment, error) {
	var comment Comment
	err := inv.Invoke(ctx, MethodCreateComment, CreateCommentArgs{CardID: cardID, Body: body}, &comment)
	return comment, err
}

// GetComments pages through a card's comments. A zero limit returns all of them.
func GetComments(ctx context.Context, inv Invoker, cardID types.ID, limit, offset int) ([]Comment, error) {
	var comments []Comment
	err := inv.Invoke(ctx, MethodGetComments, GetCommentsArgs{CardID: cardID, Limit: limit, Offset: offset}, &comments)
	return comments, err
}

func GetCommentsCount(ctx context.Context, inv Invoker, cardID types.ID) (int, error) {
	var n int
	err := inv.Invoke(ctx, MethodGetCommentsCount, GetCommentsCountArgs{CardID: cardID}, &n)
	return n, err
}

func UpdateComment(ctx context.Context, inv Invoker, commentID types.ID, body string) error {
	return inv.Invoke(ctx, MethodUpdateComment, UpdateCommentArgs{CommentID: commentID, Body: body}, nil)
}

func DeleteComment(ctx context.Context, inv Invoker, commentID types.ID) error {
	return inv.Invoke(ctx, MethodDeleteComment, DeleteCommentArgs{CommentID: commentID}, nil)
}

func AddAttachment(ctx context.Context, inv Invoker, cardID types.ID, fileName string) (Attachment, error) {
	var att Attachment
	err := inv.Invoke(ctx, MethodAddAttachment, AddAttachmentArgs{CardID: cardID, FileName: fileName}, &att)
	return att, err
}

func GetAttachments(ctx context.Context, inv Invoker, cardID types.ID) ([]Attachment, error) {
	var atts []Attachment
	err := inv.Invoke(ctx, MethodGetAttachments, GetAttachmentsArgs{CardID: cardID}, &atts)
	return atts, err
}
