package models

import (
	"time"

	"github.com/google/uuid"
)

// UpdateRequest tracks an outbound request for a schedule update. Its status
// bucket is derived from sent_at and reply_confirmed_at at read time; there
// is no stored status column to drift.
type UpdateRequest struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID        uuid.UUID  `gorm:"column:project_id;type:uuid;not null"`
	Project          *Project   `gorm:"foreignKey:ProjectID"`
	WorkItemID       *uuid.UUID `gorm:"column:work_item_id;type:uuid"`
	Recipient        string     `gorm:"column:recipient;not null"`
	Subject          string     `gorm:"column:subject;not null"`
	SentAt           time.Time  `gorm:"column:sent_at;not null"`
	ReplyConfirmedAt *time.Time `gorm:"column:reply_confirmed_at"`
	CreatedByID      *uuid.UUID `gorm:"column:created_by_id;type:uuid"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
