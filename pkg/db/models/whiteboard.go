package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Whiteboard is a freeform canvas of notes. Content is an opaque JSON
// document owned by the client; the server only stores and returns it.
type Whiteboard struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	Owner     *User           `gorm:"foreignKey:OwnerID"`
	Name      string          `gorm:"column:name;not null"`
	Content   json.RawMessage `gorm:"column:content;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
