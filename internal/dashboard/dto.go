package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// ItemSummary is the trimmed work-item view shown on the dashboard.
type ItemSummary struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	ProjectName  string               `json:"project_name,omitempty"`
	AssigneeName string               `json:"assignee_name,omitempty"`
	Priority     enums.Priority       `json:"priority"`
	Status       enums.WorkItemStatus `json:"status"`
	DueDate      *time.Time           `json:"due_date,omitempty"`
}

// ProjectHours is a week's logged hours rolled up per project.
type ProjectHours struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	ProjectNumber string          `json:"project_number"`
	ProjectName   string          `json:"project_name"`
	Hours         decimal.Decimal `json:"hours"`
}

// UserHours is a week's logged hours rolled up per user.
type UserHours struct {
	UserID   uuid.UUID       `json:"user_id"`
	UserName string          `json:"user_name"`
	Hours    decimal.Decimal `json:"hours"`
}

// OverviewRequest selects the week to aggregate. A nil anchor means the
// current week.
type OverviewRequest struct {
	WeekAnchor *time.Time
}

// OverviewDTO is the full dashboard payload.
type OverviewDTO struct {
	WeekStart          time.Time       `json:"week_start"`
	WeekEnd            time.Time       `json:"week_end"`
	OverdueItems       []ItemSummary   `json:"overdue_items"`
	DueThisWeek        []ItemSummary   `json:"due_this_week"`
	OpenCount          int64           `json:"open_count"`
	OverdueCount       int64           `json:"overdue_count"`
	CompletedThisWeek  int64           `json:"completed_this_week"`
	ActiveProjectCount int64           `json:"active_project_count"`
	HoursByProject     []ProjectHours  `json:"hours_by_project"`
	HoursByUser        []UserHours     `json:"hours_by_user,omitempty"`
	WeekTotal          decimal.Decimal `json:"week_total"`
}
