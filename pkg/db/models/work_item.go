package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// WorkItem is a task, optionally tied to a project. Deletion is soft: the
// deleted_at/deleted_by tombstone hides the row from default queries until
// it is restored or purged.
type WorkItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     *uuid.UUID           `gorm:"column:project_id;type:uuid"`
	Project       *Project             `gorm:"foreignKey:ProjectID"`
	Title         string               `gorm:"column:title;not null"`
	WorkType      enums.WorkType       `gorm:"column:work_type;type:work_type;not null;default:'schedule_update'"`
	WorkTypeOther string               `gorm:"column:work_type_other"`
	Priority      enums.Priority       `gorm:"column:priority;type:priority;not null;default:'medium'"`
	Status        enums.WorkItemStatus `gorm:"column:status;type:work_item_status;not null;default:'open'"`
	DueDate       *time.Time           `gorm:"column:due_date;type:date"`
	MeetingAt     *time.Time           `gorm:"column:meeting_at"`
	AssignedToID  *uuid.UUID           `gorm:"column:assigned_to_id;type:uuid"`
	AssignedTo    *User                `gorm:"foreignKey:AssignedToID"`
	RequestedBy   string               `gorm:"column:requested_by"`
	Notes         string               `gorm:"column:notes"`
	CreatedByID   *uuid.UUID           `gorm:"column:created_by_id;type:uuid"`
	UpdatedByID   *uuid.UUID           `gorm:"column:updated_by_id;type:uuid"`
	DeletedAt     *time.Time           `gorm:"column:deleted_at"`
	DeletedByID   *uuid.UUID           `gorm:"column:deleted_by_id;type:uuid"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayWorkType renders the work type label, expanding the "other" qualifier.
func (w WorkItem) DisplayWorkType() string {
	if w.WorkType == enums.WorkTypeOther && w.WorkTypeOther != "" {
		return "Other: " + w.WorkTypeOther
	}
	return w.WorkType.Label()
}

// PurgeEligibleAt returns the instant the soft-deleted item becomes a purge
// candidate, or nil when the item is not deleted.
func (w WorkItem) PurgeEligibleAt(retention time.Duration) *time.Time {
	if w.DeletedAt == nil {
		return nil
	}
	at := w.DeletedAt.Add(retention)
	return &at
}
