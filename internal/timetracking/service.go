package timetracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service orchestrates time tracking. Entries are always logged under the
// actor's own account; managers can additionally read everyone's hours.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*TimeEntryDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*TimeEntryDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*TimeEntryDTO, error)
	Week(ctx context.Context, actor Actor, req WeekRequest) (*WeekResponse, error)
	Summary(ctx context.Context, actor Actor, req RangeRequest) ([]SummaryRow, error)
	ExportCSV(ctx context.Context, actor Actor, req RangeRequest) ([]byte, error)
}

type workItemFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error)
}

type service struct {
	repo      Repository
	workItems workItemFinder
}

// ServiceParams groups dependencies for the time tracking service.
type ServiceParams struct {
	Repo      Repository
	WorkItems workItemFinder
}

// NewService builds a time tracking service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("time entry repository is required")
	}
	if params.WorkItems == nil {
		return nil, fmt.Errorf("work item finder is required")
	}
	return &service{repo: params.Repo, workItems: params.WorkItems}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*TimeEntryDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityTrackTime); err != nil {
		return nil, err
	}
	if req.Hours.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hours must be zero or positive")
	}
	if req.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project is required")
	}

	entry := &models.TimeEntry{
		UserID:      actor.UserID,
		ProjectID:   req.ProjectID,
		WorkItemID:  req.WorkItemID,
		Date:        req.Date,
		Hours:       req.Hours,
		Description: req.Description,
	}
	if v := strings.TrimSpace(req.WorkCode); v != "" {
		parsed, err := enums.ParseWorkCode(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		entry.WorkCode = &parsed
	}

	if err := s.checkItemProject(ctx, entry.WorkItemID, entry.ProjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create time entry")
	}
	return s.hydrate(ctx, entry.ID)
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*TimeEntryDTO, error) {
	entry, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		entry.ProjectID = *req.ProjectID
	}
	if req.ClearItem {
		entry.WorkItemID = nil
	} else if req.WorkItemID != nil {
		entry.WorkItemID = req.WorkItemID
	}
	if req.WorkCode != nil {
		if v := strings.TrimSpace(*req.WorkCode); v == "" {
			entry.WorkCode = nil
		} else {
			parsed, err := enums.ParseWorkCode(v)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
			}
			entry.WorkCode = &parsed
		}
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Hours != nil {
		if req.Hours.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "hours must be zero or positive")
		}
		entry.Hours = *req.Hours
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}

	if err := s.checkItemProject(ctx, entry.WorkItemID, entry.ProjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update time entry")
	}
	return s.hydrate(ctx, entry.ID)
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	entry, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete time entry")
	}
	return nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*TimeEntryDTO, error) {
	entry, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(entry), nil
}

func (s *service) Week(ctx context.Context, actor Actor, req WeekRequest) (*WeekResponse, error) {
	if err := roles.Check(actor.Role, roles.CapabilityTrackTime); err != nil {
		return nil, err
	}

	anchor := req.Anchor
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}
	start, end := WeekRange(anchor)

	rangeReq := RangeRequest{From: start, To: end}
	if roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		rangeReq.UserID = req.UserID
	} else {
		self := actor.UserID
		rangeReq.UserID = &self
	}

	entries, err := s.repo.ListRange(ctx, rangeReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list week entries")
	}

	resp := &WeekResponse{
		WeekStart: start,
		WeekEnd:   end,
		Entries:   make([]TimeEntryDTO, 0, len(entries)),
		DayTotals: make(map[string]decimal.Decimal),
		WeekTotal: decimal.Zero,
	}
	for i := range entries {
		dto := FromModel(&entries[i])
		resp.Entries = append(resp.Entries, *dto)
		day := dto.Date.Format("2006-01-02")
		resp.DayTotals[day] = resp.DayTotals[day].Add(dto.Hours)
		resp.WeekTotal = resp.WeekTotal.Add(dto.Hours)
	}
	return resp, nil
}

func (s *service) Summary(ctx context.Context, actor Actor, req RangeRequest) ([]SummaryRow, error) {
	if err := roles.Check(actor.Role, roles.CapabilityTrackTime); err != nil {
		return nil, err
	}
	s.scopeRange(actor, &req)

	rows, err := s.repo.SummaryRange(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize time entries")
	}

	out := make([]SummaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, SummaryRow{
			ProjectID:     row.ProjectID,
			ProjectNumber: row.ProjectNumber,
			ProjectName:   row.ProjectName,
			WorkType:      row.WorkType,
			TotalHours:    row.TotalHours,
		})
	}
	return out, nil
}

func (s *service) findOwned(ctx context.Context, actor Actor, id uuid.UUID) (*models.TimeEntry, error) {
	if err := roles.Check(actor.Role, roles.CapabilityTrackTime); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "time entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find time entry")
	}

	if entry.UserID != actor.UserID && !roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "time entry not found")
	}
	return entry, nil
}

// scopeRange pins non-managers to their own entries.
func (s *service) scopeRange(actor Actor, req *RangeRequest) {
	if !roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		self := actor.UserID
		req.UserID = &self
	}
}

// checkItemProject rejects entries whose linked work item sits on a
// different project than the entry itself.
func (s *service) checkItemProject(ctx context.Context, workItemID *uuid.UUID, projectID uuid.UUID) error {
	if workItemID == nil {
		return nil
	}
	item, err := s.workItems.FindByID(ctx, *workItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "work item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find work item")
	}
	if item.ProjectID == nil || *item.ProjectID != projectID {
		return pkgerrors.New(pkgerrors.CodeValidation, "work item belongs to a different project")
	}
	return nil
}

func (s *service) hydrate(ctx context.Context, id uuid.UUID) (*TimeEntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload time entry")
	}
	return FromModel(entry), nil
}
