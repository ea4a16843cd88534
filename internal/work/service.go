package work

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/pagination"
)

const entityName = "work_item"

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service orchestrates the work item lifecycle. Managers see every item;
// schedulers only the ones assigned to them, and anything out of scope
// reads as not found rather than forbidden.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*WorkItemDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*WorkItemDTO, error)
	List(ctx context.Context, actor Actor, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*WorkItemDTO, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID, req CompleteRequest) (*WorkItemDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor Actor, id uuid.UUID) (*WorkItemDTO, error)
	ListDeleted(ctx context.Context, actor Actor) ([]WorkItemDTO, error)
	PurgeExpired(ctx context.Context, dryRun bool) (*PurgeResult, error)
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type timeEntryWriter interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, entry *models.TimeEntry) error
}

type service struct {
	repo        Repository
	timeEntries timeEntryWriter
	recorder    *audit.Recorder
	tx          transactor
	retention   time.Duration
	now         func() time.Time
}

// ServiceParams groups dependencies for the work service.
type ServiceParams struct {
	Repo            Repository
	TimeEntryWriter timeEntryWriter
	Recorder        *audit.Recorder
	Tx              transactor
	RetentionDays   int
	Now             func() time.Time
}

// NewService builds a work service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("work repository is required")
	}
	if params.TimeEntryWriter == nil {
		return nil, fmt.Errorf("time entry writer is required")
	}
	if params.Recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor is required")
	}
	if params.RetentionDays <= 0 {
		params.RetentionDays = 30
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:        params.Repo,
		timeEntries: params.TimeEntryWriter,
		recorder:    params.Recorder,
		tx:          params.Tx,
		retention:   time.Duration(params.RetentionDays) * 24 * time.Hour,
		now:         now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*WorkItemDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWork); err != nil {
		return nil, err
	}

	item := &models.WorkItem{
		ProjectID:    req.ProjectID,
		Title:        strings.TrimSpace(req.Title),
		WorkType:     enums.WorkTypeUpdate,
		Priority:     enums.PriorityMedium,
		Status:       enums.WorkItemStatusOpen,
		DueDate:      req.DueDate,
		MeetingAt:    req.MeetingAt,
		AssignedToID: req.AssignedToID,
		RequestedBy:  strings.TrimSpace(req.RequestedBy),
		Notes:        req.Notes,
		CreatedByID:  &actor.UserID,
		UpdatedByID:  &actor.UserID,
	}
	if item.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if v := strings.TrimSpace(req.WorkType); v != "" {
		parsed, err := enums.ParseWorkType(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		item.WorkType = parsed
	}
	if item.WorkType == enums.WorkTypeOther {
		item.WorkTypeOther = strings.TrimSpace(req.WorkTypeOther)
	}
	if v := strings.TrimSpace(req.Priority); v != "" {
		parsed, err := enums.ParsePriority(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		item.Priority = parsed
	}
	needsCompletion := false
	if v := strings.TrimSpace(req.Status); v != "" {
		parsed, err := enums.ParseWorkItemStatus(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		if parsed == enums.WorkItemStatusDone {
			// Done is only reachable through Complete, which logs hours.
			// The item is created open and the caller is told to finish it.
			needsCompletion = true
		} else {
			item.Status = parsed
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create work item")
	}

	s.record(ctx, nil, actor, item, enums.AuditActionCreate)
	dto, err := s.hydrate(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	dto.NeedsCompletion = needsCompletion
	return dto, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*WorkItemDTO, error) {
	item, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(item, s.retention), nil
}

func (s *service) List(ctx context.Context, actor Actor, req ListRequest) (*ListResponse, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWork); err != nil {
		return nil, err
	}

	// Schedulers are pinned to their own assignments regardless of the
	// filter they asked for.
	if !roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		assigned := actor.UserID
		req.AssignedToID = &assigned
	}
	req.Search = strings.TrimSpace(req.Search)

	items, next, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list work items")
	}

	resp := &ListResponse{Items: make([]WorkItemDTO, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, *FromModel(&items[i], s.retention))
	}
	if next != nil {
		resp.NextCursor = pagination.EncodeCursor(*next)
	}
	return resp, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*WorkItemDTO, error) {
	item, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(item, req); err != nil {
		return nil, err
	}
	item.UpdatedByID = &actor.UserID

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update work item")
	}

	s.record(ctx, nil, actor, item, enums.AuditActionUpdate)
	return s.hydrate(ctx, item.ID)
}

// Complete marks the item done and logs the hours spent against its project
// in one transaction, so the status flip and the time entry land together.
func (s *service) Complete(ctx context.Context, actor Actor, id uuid.UUID, req CompleteRequest) (*WorkItemDTO, error) {
	item, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if item.Status == enums.WorkItemStatusDone {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "work item is already done")
	}
	if req.Hours.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hours must be zero or positive")
	}
	if item.ProjectID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work item has no project to log hours against")
	}

	var workCode *enums.WorkCode
	if v := strings.TrimSpace(req.WorkCode); v != "" {
		parsed, err := enums.ParseWorkCode(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		workCode = &parsed
	}

	now := s.now()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item.Status = enums.WorkItemStatusDone
		item.UpdatedByID = &actor.UserID
		if err := repo.Save(ctx, item); err != nil {
			return fmt.Errorf("mark done: %w", err)
		}

		entry := &models.TimeEntry{
			UserID:      actor.UserID,
			ProjectID:   *item.ProjectID,
			WorkItemID:  &item.ID,
			WorkCode:    workCode,
			Date:        date,
			Hours:       req.Hours,
			Description: req.Description,
		}
		if err := s.timeEntries.CreateInTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("log hours: %w", err)
		}

		return s.recorder.Record(ctx, tx, audit.Entry{
			UserID:     &actor.UserID,
			EntityName: entityName,
			ObjectID:   item.ID,
			ObjectRepr: item.Title,
			Action:     enums.AuditActionUpdate,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete work item")
	}

	return s.hydrate(ctx, item.ID)
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	item, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}

	now := s.now()
	item.DeletedAt = &now
	item.DeletedByID = &actor.UserID
	if err := s.repo.Save(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete work item")
	}

	s.record(ctx, nil, actor, item, enums.AuditActionDelete)
	return nil
}

func (s *service) Restore(ctx context.Context, actor Actor, id uuid.UUID) (*WorkItemDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityRestoreWork); err != nil {
		return nil, err
	}

	item, err := s.repo.FindDeletedByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deleted work item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find deleted work item")
	}

	// Schedulers may only restore items assigned to them. Out-of-scope ids
	// read as not found, same as the live finders.
	if !roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		if item.AssignedToID == nil || *item.AssignedToID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deleted work item not found")
		}
	}

	// The day the retention window closes still counts as restorable.
	if eligible := item.PurgeEligibleAt(s.retention); eligible != nil && s.now().After(*eligible) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "retention window has passed; item is awaiting purge")
	}

	item.DeletedAt = nil
	item.DeletedByID = nil
	item.UpdatedByID = &actor.UserID
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore work item")
	}

	s.record(ctx, nil, actor, item, enums.AuditActionRestore)
	return s.hydrate(ctx, item.ID)
}

func (s *service) ListDeleted(ctx context.Context, actor Actor) ([]WorkItemDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDeletedWork); err != nil {
		return nil, err
	}

	items, err := s.repo.ListDeleted(ctx, s.now().Add(-s.retention))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deleted work items")
	}

	out := make([]WorkItemDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i], s.retention))
	}
	return out, nil
}

// PurgeExpired removes soft-deleted items older than the retention window.
// Role checks happen at the caller: the cron worker runs it unauthenticated
// and the HTTP surface guards it with the purge capability.
func (s *service) PurgeExpired(ctx context.Context, dryRun bool) (*PurgeResult, error) {
	cutoff := s.now().Add(-s.retention)
	items, err := s.repo.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purge candidates")
	}

	result := &PurgeResult{DryRun: dryRun, Count: len(items), IDs: make([]uuid.UUID, 0, len(items))}
	for i := range items {
		result.IDs = append(result.IDs, items[i].ID)
	}
	if dryRun || len(items) == 0 {
		return result, nil
	}

	if _, err := s.repo.HardDelete(ctx, result.IDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purge work items")
	}
	return result, nil
}

// findVisible loads a live item the actor is allowed to see. Items outside
// a scheduler's assignments read as not found, not forbidden.
func (s *service) findVisible(ctx context.Context, actor Actor, id uuid.UUID) (*models.WorkItem, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWork); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find work item")
	}

	if !roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		if item.AssignedToID == nil || *item.AssignedToID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "work item not found")
		}
	}
	return item, nil
}

func (s *service) hydrate(ctx context.Context, id uuid.UUID) (*WorkItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload work item")
	}
	return FromModel(item, s.retention), nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, actor Actor, item *models.WorkItem, action enums.AuditAction) {
	userID := actor.UserID
	_ = s.recorder.Record(ctx, tx, audit.Entry{
		UserID:     &userID,
		EntityName: entityName,
		ObjectID:   item.ID,
		ObjectRepr: item.Title,
		Action:     action,
	})
}

func applyPatch(item *models.WorkItem, req UpdateRequest) error {
	if req.ClearProject {
		item.ProjectID = nil
	} else if req.ProjectID != nil {
		item.ProjectID = req.ProjectID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
		}
		item.Title = title
	}
	if req.WorkType != nil {
		parsed, err := enums.ParseWorkType(strings.TrimSpace(*req.WorkType))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		item.WorkType = parsed
		if parsed != enums.WorkTypeOther {
			item.WorkTypeOther = ""
		}
	}
	if req.WorkTypeOther != nil && item.WorkType == enums.WorkTypeOther {
		item.WorkTypeOther = strings.TrimSpace(*req.WorkTypeOther)
	}
	if req.Priority != nil {
		parsed, err := enums.ParsePriority(strings.TrimSpace(*req.Priority))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		item.Priority = parsed
	}
	if req.Status != nil {
		parsed, err := enums.ParseWorkItemStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		if parsed == enums.WorkItemStatusDone && item.Status != enums.WorkItemStatusDone {
			return pkgerrors.New(pkgerrors.CodeValidation, "use the complete operation to finish an item with hours")
		}
		item.Status = parsed
	}
	if req.ClearDueDate {
		item.DueDate = nil
	} else if req.DueDate != nil {
		item.DueDate = req.DueDate
	}
	if req.MeetingAt != nil {
		item.MeetingAt = req.MeetingAt
	}
	if req.AssignedToID != nil {
		item.AssignedToID = req.AssignedToID
	}
	if req.RequestedBy != nil {
		item.RequestedBy = strings.TrimSpace(*req.RequestedBy)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	return nil
}
