// Package converters maps stored models to the shapes sent to clients.
package converters

import (
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
)

// ColumnToDTO converts a models.Column to its wire shape
func ColumnToDTO(c *models.Column) events.Column {
	return events.Column{
		ID:      c.ID,
		BoardID: c.BoardID,
		Title:   c.Title,
		PrevID:  c.PrevID,
		NextID:  c.NextID,
	}
}

// ColumnsToDTOs converts an ordered slice, keeping the order
func ColumnsToDTOs(cols []*models.Column) []events.Column {
	result := make([]events.Column, len(cols))
	for i, c := range cols {
		result[i] = ColumnToDTO(c)
	}
	return result
}

// ColumnFromDTO rebuilds a models.Column on the client side
func ColumnFromDTO(c events.Column) *models.Column {
	return &models.Column{
		ID:      c.ID,
		BoardID: c.BoardID,
		Title:   c.Title,
		PrevID:  c.PrevID,
		NextID:  c.NextID,
	}
}
