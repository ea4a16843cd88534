package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// TimeEntry records hours a user logged against a project, optionally tied
// to a work item.
type TimeEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	User        *User           `gorm:"foreignKey:UserID"`
	ProjectID   uuid.UUID       `gorm:"column:project_id;type:uuid;not null"`
	Project     *Project        `gorm:"foreignKey:ProjectID"`
	WorkItemID  *uuid.UUID      `gorm:"column:work_item_id;type:uuid"`
	WorkItem    *WorkItem       `gorm:"foreignKey:WorkItemID"`
	WorkCode    *enums.WorkCode `gorm:"column:work_code;type:work_code"`
	Date        time.Time       `gorm:"column:date;type:date;not null"`
	Hours       decimal.Decimal `gorm:"column:hours;type:numeric(6,2);not null"`
	Description string          `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
