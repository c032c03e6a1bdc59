package converters

import (
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
)

// CardToDTO converts a models.Card to its wire shape
func CardToDTO(c *models.Card) events.Card {
	return events.Card{
		ID:          c.ID,
		ColumnID:    c.ColumnID,
		Title:       c.Title,
		Description: c.Description,
		PrevID:      c.PrevID,
		NextID:      c.NextID,
	}
}

// CardsToDTOs converts an ordered slice, keeping the order
func CardsToDTOs(cards []*models.Card) []events.Card {
	result := make([]events.Card, len(cards))
	for i, c := range cards {
		result[i] = CardToDTO(c)
	}
	return result
}

// CardFromDTO rebuilds a models.Card on the client side
func CardFromDTO(c events.Card) *models.Card {
	return &models.Card{
		ID:          c.ID,
		ColumnID:    c.ColumnID,
		Title:       c.Title,
		Description: c.Description,
		PrevID:      c.PrevID,
		NextID:      c.NextID,
	}
}
