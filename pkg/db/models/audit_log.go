package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// AuditLog captures who did what to which record.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	User       *User             `gorm:"foreignKey:UserID"`
	EntityName string            `gorm:"column:entity_name;not null"`
	ObjectID   uuid.UUID         `gorm:"column:object_id;type:uuid;not null"`
	ObjectRepr string            `gorm:"column:object_repr;not null"`
	Action     enums.AuditAction `gorm:"column:action;type:audit_action;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
