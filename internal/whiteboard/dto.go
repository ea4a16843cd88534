package whiteboard

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// WhiteboardDTO is the API shape of a whiteboard.
type WhiteboardDTO struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	OwnerName string          `json:"owner_name,omitempty"`
	Name      string          `json:"name"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateRequest names a new whiteboard with optional initial content.
type CreateRequest struct {
	Name    string          `json:"name" validate:"required"`
	Content json.RawMessage `json:"content"`
}

// UpdateParams patches a whiteboard. Nil fields are left unchanged; an
// explicit empty JSON document replaces the content.
type UpdateParams struct {
	Name    *string         `json:"name"`
	Content json.RawMessage `json:"content"`
}

func fromModel(board *models.Whiteboard, includeContent bool) WhiteboardDTO {
	dto := WhiteboardDTO{
		ID:        board.ID,
		OwnerID:   board.OwnerID,
		Name:      board.Name,
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
	}
	if includeContent {
		dto.Content = board.Content
	}
	if board.Owner != nil {
		dto.OwnerName = board.Owner.DisplayName()
	}
	return dto
}
