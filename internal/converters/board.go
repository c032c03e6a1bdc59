package converters

import (
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/models"
)

// BoardToDTO converts a models.Board, stamping the viewer's own level
func BoardToDTO(b *models.Board, level *models.AccessLevel) events.Board {
	dto := events.Board{
		ID:       b.ID,
		Title:    b.Title,
		OwnerID:  b.OwnerID,
		IsPublic: b.IsPublic,
	}
	if b.PublicLevel != nil {
		dto.PublicLevel = b.PublicLevel.String()
	}
	if level != nil {
		dto.Level = level.String()
	}
	return dto
}
