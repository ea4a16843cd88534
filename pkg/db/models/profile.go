package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// Profile attaches a role to a user. A user without a profile row has no
// role: authorization fails closed while display paths default to scheduler.
type Profile struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;unique"`
	Role      enums.Role `gorm:"column:role;type:role;not null;default:'scheduler'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
