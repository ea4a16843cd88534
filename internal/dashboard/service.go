package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/internal/timetracking"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service assembles the read-only dashboard overview. Schedulers see only
// their own assignments and hours; managers see the whole team.
type Service interface {
	Overview(ctx context.Context, actor Actor, req OverviewRequest) (*OverviewDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

// NewService builds a dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dashboard repository is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{repo: params.Repo, now: params.Now}, nil
}

func (s *service) Overview(ctx context.Context, actor Actor, req OverviewRequest) (*OverviewDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDashboard); err != nil {
		return nil, err
	}

	anchor := s.now()
	if req.WeekAnchor != nil {
		anchor = *req.WeekAnchor
	}
	weekStart, weekEnd := timetracking.WeekRange(anchor)

	teamWide := roles.Allowed(actor.Role, roles.CapabilityViewAllWork)
	var assigneeID *uuid.UUID
	var hoursUserID *uuid.UUID
	if !teamWide {
		assigneeID = &actor.UserID
		hoursUserID = &actor.UserID
	}

	asOf := s.now()
	overdue, err := s.repo.OverdueItems(ctx, asOf, assigneeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load overdue items")
	}
	dueThisWeek, err := s.repo.DueBetween(ctx, weekStart, weekEnd, assigneeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load items due this week")
	}
	openCount, err := s.repo.OpenCount(ctx, assigneeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count open items")
	}
	overdueCount, err := s.repo.OverdueCount(ctx, asOf, assigneeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count overdue items")
	}
	completedCount, err := s.repo.CompletedBetween(ctx, weekStart, weekEnd.Add(24*time.Hour), assigneeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count completed items")
	}
	projectCount, err := s.repo.ActiveProjectCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count active projects")
	}
	projectRows, err := s.repo.HoursByProject(ctx, weekStart, weekEnd, hoursUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate project hours")
	}

	dto := &OverviewDTO{
		WeekStart:          weekStart,
		WeekEnd:            weekEnd,
		OverdueItems:       toItemSummaries(overdue),
		DueThisWeek:        toItemSummaries(dueThisWeek),
		OpenCount:          openCount,
		OverdueCount:       overdueCount,
		CompletedThisWeek:  completedCount,
		ActiveProjectCount: projectCount,
		HoursByProject:     make([]ProjectHours, 0, len(projectRows)),
		WeekTotal:          decimal.Zero,
	}
	for _, row := range projectRows {
		dto.HoursByProject = append(dto.HoursByProject, ProjectHours{
			ProjectID:     row.ProjectID,
			ProjectNumber: row.ProjectNumber,
			ProjectName:   row.ProjectName,
			Hours:         row.TotalHours,
		})
		dto.WeekTotal = dto.WeekTotal.Add(row.TotalHours)
	}

	// The per-user breakdown covers the team and is manager-only.
	if teamWide {
		userRows, err := s.repo.HoursByUser(ctx, weekStart, weekEnd)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to aggregate user hours")
		}
		dto.HoursByUser = make([]UserHours, 0, len(userRows))
		for _, row := range userRows {
			dto.HoursByUser = append(dto.HoursByUser, UserHours{
				UserID:   row.UserID,
				UserName: displayName(row.FirstName, row.LastName, row.Email),
				Hours:    row.TotalHours,
			})
		}
	}

	return dto, nil
}

func toItemSummaries(items []models.WorkItem) []ItemSummary {
	out := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		summary := ItemSummary{
			ID:       item.ID,
			Title:    item.Title,
			Priority: item.Priority,
			Status:   item.Status,
			DueDate:  item.DueDate,
		}
		if item.Project != nil {
			summary.ProjectName = item.Project.Name
		}
		if item.AssignedTo != nil {
			summary.AssigneeName = item.AssignedTo.DisplayName()
		}
		out = append(out, summary)
	}
	return out
}

func displayName(first, last, email string) string {
	name := strings.TrimSpace(first + " " + last)
	if name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
