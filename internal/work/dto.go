package work

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	"github.com/calebmorton/schedtrack-backend/pkg/pagination"
)

// WorkItemDTO is the transport shape for a work item.
type WorkItemDTO struct {
	ID              uuid.UUID            `json:"id"`
	ProjectID       *uuid.UUID           `json:"project_id,omitempty"`
	ProjectNumber   string               `json:"project_number,omitempty"`
	ProjectName     string               `json:"project_name,omitempty"`
	Title           string               `json:"title"`
	WorkType        enums.WorkType       `json:"work_type"`
	WorkTypeOther   string               `json:"work_type_other,omitempty"`
	WorkTypeDisplay string               `json:"work_type_display"`
	Priority        enums.Priority       `json:"priority"`
	Status          enums.WorkItemStatus `json:"status"`
	DueDate         *time.Time           `json:"due_date,omitempty"`
	MeetingAt       *time.Time           `json:"meeting_at,omitempty"`
	AssignedToID    *uuid.UUID           `json:"assigned_to_id,omitempty"`
	AssignedToName  string               `json:"assigned_to_name,omitempty"`
	RequestedBy     string               `json:"requested_by,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	DeletedAt       *time.Time           `json:"deleted_at,omitempty"`
	PurgeEligibleAt *time.Time           `json:"purge_eligible_at,omitempty"`
	NeedsCompletion bool                 `json:"needs_completion,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// CreateRequest carries the fields accepted when creating a work item.
type CreateRequest struct {
	ProjectID     *uuid.UUID `json:"project_id"`
	Title         string     `json:"title" validate:"required,max=255"`
	WorkType      string     `json:"work_type" validate:"omitempty,oneof=baseline_schedule_review schedule_update schedule_update_review claim_analysis other"`
	WorkTypeOther string     `json:"work_type_other" validate:"max=255"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status        string     `json:"status" validate:"omitempty,oneof=open in_progress done"`
	DueDate       *time.Time `json:"due_date"`
	MeetingAt     *time.Time `json:"meeting_at"`
	AssignedToID  *uuid.UUID `json:"assigned_to_id"`
	RequestedBy   string     `json:"requested_by" validate:"max=255"`
	Notes         string     `json:"notes"`
}

// UpdateRequest carries a partial work item patch. Nil fields are untouched.
type UpdateRequest struct {
	ProjectID     *uuid.UUID `json:"project_id"`
	ClearProject  bool       `json:"clear_project,omitempty"`
	Title         *string    `json:"title" validate:"omitempty,max=255"`
	WorkType      *string    `json:"work_type" validate:"omitempty,oneof=baseline_schedule_review schedule_update schedule_update_review claim_analysis other"`
	WorkTypeOther *string    `json:"work_type_other" validate:"omitempty,max=255"`
	Priority      *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status        *string    `json:"status" validate:"omitempty,oneof=open in_progress done"`
	DueDate       *time.Time `json:"due_date"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	MeetingAt     *time.Time `json:"meeting_at"`
	AssignedToID  *uuid.UUID `json:"assigned_to_id"`
	RequestedBy   *string    `json:"requested_by" validate:"omitempty,max=255"`
	Notes         *string    `json:"notes"`
}

// CompleteRequest finishes a work item and logs the hours spent in one step.
type CompleteRequest struct {
	Hours       decimal.Decimal `json:"hours" validate:"required"`
	Date        *time.Time      `json:"date"`
	WorkCode    string          `json:"work_code" validate:"omitempty,oneof=schedule_update baseline_update schedule_analysis"`
	Description string          `json:"description"`
}

// ListRequest configures work item listing.
type ListRequest struct {
	Status       *enums.WorkItemStatus
	Priority     *enums.Priority
	WorkType     *enums.WorkType
	ProjectID    *uuid.UUID
	AssignedToID *uuid.UUID
	Search       string
	Limit        int
	Cursor       *pagination.Cursor
}

// ListResponse pairs a page of items with the cursor for the next page.
type ListResponse struct {
	Items      []WorkItemDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// PurgeResult reports which soft-deleted items fell out of the retention
// window. In dry-run mode nothing was removed.
type PurgeResult struct {
	DryRun bool        `json:"dry_run"`
	Count  int         `json:"count"`
	IDs    []uuid.UUID `json:"ids"`
}

// FromModel maps a work item to its DTO.
func FromModel(w *models.WorkItem, retention time.Duration) *WorkItemDTO {
	if w == nil {
		return nil
	}
	dto := &WorkItemDTO{
		ID:              w.ID,
		ProjectID:       w.ProjectID,
		Title:           w.Title,
		WorkType:        w.WorkType,
		WorkTypeOther:   w.WorkTypeOther,
		WorkTypeDisplay: w.DisplayWorkType(),
		Priority:        w.Priority,
		Status:          w.Status,
		DueDate:         w.DueDate,
		MeetingAt:       w.MeetingAt,
		AssignedToID:    w.AssignedToID,
		RequestedBy:     w.RequestedBy,
		Notes:           w.Notes,
		DeletedAt:       w.DeletedAt,
		PurgeEligibleAt: w.PurgeEligibleAt(retention),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if w.Project != nil {
		dto.ProjectNumber = w.Project.ProjectNumber
		dto.ProjectName = w.Project.Name
	}
	if w.AssignedTo != nil {
		dto.AssignedToName = w.AssignedTo.DisplayName()
	}
	return dto
}
