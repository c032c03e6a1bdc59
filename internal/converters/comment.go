package converters

import (
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
)

// CommentToDTO converts a models.Comment to its wire shape
func CommentToDTO(c *models.Comment) events.Comment {
	return events.Comment{
		ID:        c.ID,
		CardID:    c.CardID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// CommentsToDTOs converts a page of comments, keeping the order
func CommentsToDTOs(comments []*models.Comment) []events.Comment {
	result := make([]events.Comment, len(comments))
	for i, c := range comments {
		result[i] = CommentToDTO(c)
	}
	return result
}

// AttachmentToDTO converts a models.Attachment to its wire shape
func AttachmentToDTO(a *models.Attachment) events.Attachment {
	return events.Attachment{ID: a.ID, CardID: a.CardID, FileName: a.FileName}
}

// AttachmentsToDTOs converts attachment records, keeping the order
func AttachmentsToDTOs(atts []*models.Attachment) []events.Attachment {
	result := make([]events.Attachment, len(atts))
	for i, a := range atts {
		result[i] = AttachmentToDTO(a)
	}
	return result
}
