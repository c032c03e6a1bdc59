package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

// CommentRepo stores the rows a card owns: comments and attachment records.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) AddComment(ctx context.Context, cardID types.ID, author types.UserID, body string) (*models.Comment, error) {
	comment := &models.Comment{ID: types.NewID(), CardID: cardID, AuthorID: author, Body: body}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, card_id, author_id, body) VALUES (?, ?, ?, ?)`,
		string(comment.ID), string(cardID), string(author), body)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", classifyStoreError(err))
	}
	return comment, nil
}

func (r *CommentRepo) ListComments(ctx context.Context, cardID types.ID) ([]*models.Comment, error) {
	return r.ListCommentsPage(ctx, cardID, -1, 0)
}

// ListCommentsPage returns at most limit comments of a card, oldest first,
// skipping offset. A negative limit means no limit.
func (r *CommentRepo) ListCommentsPage(ctx context.Context, cardID types.ID, limit, offset int) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, card_id, author_id, body, created_at FROM comments
		 WHERE card_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		string(cardID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) CountComments(ctx context.Context, cardID types.ID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE card_id = ?`, string(cardID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting comments: %w", err)
	}
	return n, nil
}

func (r *CommentRepo) GetComment(ctx context.Context, id types.ID) (*models.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, card_id, author_id, body, created_at FROM comments WHERE id = ?`,
		string(id))
	c, err := scanComment(row)
	if err != nil {
		return nil, notFound(err, "comment", id)
	}
	return c, nil
}

func (r *CommentRepo) UpdateComment(ctx context.Context, id types.ID, body string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET body = ? WHERE id = ?`, body, string(id))
	if err != nil {
		return fmt.Errorf("updating comment: %w", classifyStoreError(err))
	}
	return requireAffected(res, "comment", id)
}

func (r *CommentRepo) DeleteComment(ctx context.Context, id types.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("deleting comment: %w", classifyStoreError(err))
	}
	return requireAffected(res, "comment", id)
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var id, card, author string
	c := &models.Comment{}
	if err := row.Scan(&id, &card, &author, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID, c.CardID, c.AuthorID = types.ID(id), types.ID(card), types.UserID(author)
	return c, nil
}

func (r *CommentRepo) AddAttachment(ctx context.Context, cardID types.ID, fileName string) (*models.Attachment, error) {
	att := &models.Attachment{ID: types.NewID(), CardID: cardID, FileName: fileName}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attachments (id, card_id, file_name) VALUES (?, ?, ?)`,
		string(att.ID), string(cardID), fileName)
	if err != nil {
		return nil, fmt.Errorf("inserting attachment: %w", classifyStoreError(err))
	}
	return att, nil
}

func (r *CommentRepo) ListAttachments(ctx context.Context, cardID types.ID) ([]*models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, card_id, file_name FROM attachments WHERE card_id = ? ORDER BY id`,
		string(cardID))
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	atts := []*models.Attachment{}
	for rows.Next() {
		var id, card, name string
		if err := rows.Scan(&id, &card, &name); err != nil {
			return nil, fmt.Errorf("scanning attachment row: %w", err)
		}
		atts = append(atts, &models.Attachment{ID: types.ID(id), CardID: types.ID(card), FileName: name})
	}
	return atts, rows.Err()
}
