package timetracking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// TimeEntryDTO is the transport shape for a logged block of hours.
type TimeEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	ProjectID     uuid.UUID       `json:"project_id"`
	ProjectNumber string          `json:"project_number,omitempty"`
	ProjectName   string          `json:"project_name,omitempty"`
	WorkItemID    *uuid.UUID      `json:"work_item_id,omitempty"`
	WorkItemTitle string          `json:"work_item_title,omitempty"`
	WorkCode      *enums.WorkCode `json:"work_code,omitempty"`
	Date          time.Time       `json:"date"`
	Hours         decimal.Decimal `json:"hours"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateRequest carries the fields accepted when logging hours.
type CreateRequest struct {
	ProjectID   uuid.UUID       `json:"project_id" validate:"required"`
	WorkItemID  *uuid.UUID      `json:"work_item_id"`
	WorkCode    string          `json:"work_code" validate:"omitempty,oneof=schedule_update baseline_update schedule_analysis"`
	Date        time.Time       `json:"date" validate:"required"`
	Hours       decimal.Decimal `json:"hours" validate:"required"`
	Description string          `json:"description"`
}

// UpdateRequest carries a partial time entry patch. Nil fields are untouched.
type UpdateRequest struct {
	ProjectID   *uuid.UUID       `json:"project_id"`
	WorkItemID  *uuid.UUID       `json:"work_item_id"`
	ClearItem   bool             `json:"clear_work_item,omitempty"`
	WorkCode    *string          `json:"work_code" validate:"omitempty,oneof=schedule_update baseline_update schedule_analysis"`
	Date        *time.Time       `json:"date"`
	Hours       *decimal.Decimal `json:"hours"`
	Description *string          `json:"description"`
}

// WeekRequest selects a week of entries.
type WeekRequest struct {
	Anchor time.Time
	UserID *uuid.UUID
}

// WeekResponse is a week of entries plus the per-day and week totals.
type WeekResponse struct {
	WeekStart time.Time                  `json:"week_start"`
	WeekEnd   time.Time                  `json:"week_end"`
	Entries   []TimeEntryDTO             `json:"entries"`
	DayTotals map[string]decimal.Decimal `json:"day_totals"`
	WeekTotal decimal.Decimal            `json:"week_total"`
}

// SummaryRow aggregates hours for one project and work type pairing.
type SummaryRow struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	ProjectNumber string          `json:"project_number"`
	ProjectName   string          `json:"project_name"`
	WorkType      string          `json:"work_type"`
	TotalHours    decimal.Decimal `json:"total_hours"`
}

// RangeRequest selects entries between two dates inclusive.
type RangeRequest struct {
	From      time.Time
	To        time.Time
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
}

// FromModel maps a time entry to its DTO.
func FromModel(e *models.TimeEntry) *TimeEntryDTO {
	if e == nil {
		return nil
	}
	dto := &TimeEntryDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		ProjectID:   e.ProjectID,
		WorkItemID:  e.WorkItemID,
		WorkCode:    e.WorkCode,
		Date:        e.Date,
		Hours:       e.Hours,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.User != nil {
		dto.UserName = e.User.DisplayName()
	}
	if e.Project != nil {
		dto.ProjectNumber = e.Project.ProjectNumber
		dto.ProjectName = e.Project.Name
	}
	if e.WorkItem != nil {
		dto.WorkItemTitle = e.WorkItem.Title
	}
	return dto
}
