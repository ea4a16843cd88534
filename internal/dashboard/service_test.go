package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

func TestOverviewManagerSeesTeamBreakdown(t *testing.T) {
	repo := newStubDashboardRepo()
	repo.projectHours = []projectHoursRow{
		{ProjectID: uuid.New(), ProjectNumber: "24-001", ProjectName: "Riverside", TotalHours: decimal.NewFromFloat(12.5)},
		{ProjectID: uuid.New(), ProjectNumber: "24-002", ProjectName: "Clovis Yard", TotalHours: decimal.NewFromFloat(4)},
	}
	repo.userHours = []userHoursRow{
		{UserID: uuid.New(), FirstName: "Sam", LastName: "Lee", TotalHours: decimal.NewFromFloat(16.5)},
	}
	svc := newDashboardService(t, repo)

	manager := Actor{UserID: uuid.New(), Role: enums.RoleManager}
	dto, err := svc.Overview(context.Background(), manager, OverviewRequest{})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if !dto.WeekTotal.Equal(decimal.NewFromFloat(16.5)) {
		t.Fatalf("week total = %s, want 16.5", dto.WeekTotal)
	}
	if len(dto.HoursByUser) != 1 || dto.HoursByUser[0].UserName != "Sam Lee" {
		t.Fatalf("hours by user = %+v", dto.HoursByUser)
	}
	// Managers aggregate over everyone.
	if repo.lastAssigneeID != nil || repo.lastHoursUserID != nil {
		t.Fatalf("manager queries must not be scoped to one user")
	}
}

func TestOverviewSchedulerScopedToOwnWork(t *testing.T) {
	repo := newStubDashboardRepo()
	svc := newDashboardService(t, repo)

	scheduler := Actor{UserID: uuid.New(), Role: enums.RoleScheduler}
	dto, err := svc.Overview(context.Background(), scheduler, OverviewRequest{})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if repo.lastAssigneeID == nil || *repo.lastAssigneeID != scheduler.UserID {
		t.Fatalf("scheduler item queries not pinned to self")
	}
	if repo.lastHoursUserID == nil || *repo.lastHoursUserID != scheduler.UserID {
		t.Fatalf("scheduler hours not pinned to self")
	}
	if dto.HoursByUser != nil {
		t.Fatalf("per-user breakdown is manager-only")
	}
}

func TestOverviewWeekAnchorSelectsWeek(t *testing.T) {
	repo := newStubDashboardRepo()
	svc := newDashboardService(t, repo)

	anchor := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC) // a Wednesday
	manager := Actor{UserID: uuid.New(), Role: enums.RoleManager}
	dto, err := svc.Overview(context.Background(), manager, OverviewRequest{WeekAnchor: &anchor})
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	wantStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if !dto.WeekStart.Equal(wantStart) || !dto.WeekEnd.Equal(wantEnd) {
		t.Fatalf("week = %v..%v, want %v..%v", dto.WeekStart, dto.WeekEnd, wantStart, wantEnd)
	}
}

func TestOverviewRequiresRole(t *testing.T) {
	svc := newDashboardService(t, newStubDashboardRepo())

	_, err := svc.Overview(context.Background(), Actor{UserID: uuid.New()}, OverviewRequest{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func newDashboardService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Now:  func() time.Time { return time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubDashboardRepo struct {
	overdue         []models.WorkItem
	due             []models.WorkItem
	projectHours    []projectHoursRow
	userHours       []userHoursRow
	lastAssigneeID  *uuid.UUID
	lastHoursUserID *uuid.UUID
}

func newStubDashboardRepo() *stubDashboardRepo {
	return &stubDashboardRepo{}
}

func (s *stubDashboardRepo) OverdueItems(_ context.Context, _ time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error) {
	s.lastAssigneeID = assigneeID
	return s.overdue, nil
}

func (s *stubDashboardRepo) DueBetween(_ context.Context, _, _ time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error) {
	s.lastAssigneeID = assigneeID
	return s.due, nil
}

func (s *stubDashboardRepo) OpenCount(_ context.Context, assigneeID *uuid.UUID) (int64, error) {
	s.lastAssigneeID = assigneeID
	return int64(len(s.due)), nil
}

func (s *stubDashboardRepo) OverdueCount(_ context.Context, _ time.Time, assigneeID *uuid.UUID) (int64, error) {
	s.lastAssigneeID = assigneeID
	return int64(len(s.overdue)), nil
}

func (s *stubDashboardRepo) CompletedBetween(_ context.Context, _, _ time.Time, assigneeID *uuid.UUID) (int64, error) {
	s.lastAssigneeID = assigneeID
	return 0, nil
}

func (s *stubDashboardRepo) ActiveProjectCount(_ context.Context) (int64, error) {
	return int64(len(s.projectHours)), nil
}

func (s *stubDashboardRepo) HoursByProject(_ context.Context, _, _ time.Time, userID *uuid.UUID) ([]projectHoursRow, error) {
	s.lastHoursUserID = userID
	return s.projectHours, nil
}

func (s *stubDashboardRepo) HoursByUser(_ context.Context, _, _ time.Time) ([]userHoursRow, error) {
	return s.userHours, nil
}
