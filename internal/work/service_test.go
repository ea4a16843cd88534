package work

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/pagination"
)

func TestServiceCreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	dto, err := env.svc.Create(context.Background(), env.manager, CreateRequest{Title: "  Review baseline  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Title != "Review baseline" {
		t.Fatalf("title not trimmed: %q", dto.Title)
	}
	if dto.WorkType != enums.WorkTypeUpdate {
		t.Fatalf("unexpected work type default %s", dto.WorkType)
	}
	if dto.Priority != enums.PriorityMedium {
		t.Fatalf("unexpected priority default %s", dto.Priority)
	}
	if dto.Status != enums.WorkItemStatusOpen {
		t.Fatalf("unexpected status default %s", dto.Status)
	}
}

func TestServiceCreateWithDoneRoutesToCompletion(t *testing.T) {
	env := newTestEnv(t)

	dto, err := env.svc.Create(context.Background(), env.manager, CreateRequest{Title: "x", Status: "done"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.WorkItemStatusOpen {
		t.Fatalf("expected item held open, got %s", dto.Status)
	}
	if !dto.NeedsCompletion {
		t.Fatal("expected needs_completion flag")
	}
}

func TestServiceSchedulerSeesOnlyAssigned(t *testing.T) {
	env := newTestEnv(t)
	mine := env.seedItem(func(i *models.WorkItem) {
		i.AssignedToID = &env.scheduler.UserID
	})
	other := env.seedItem(nil)

	if _, err := env.svc.Get(context.Background(), env.scheduler, mine.ID); err != nil {
		t.Fatalf("get assigned item: %v", err)
	}

	// An item outside the scheduler's scope reads as missing, not forbidden.
	_, err := env.svc.Get(context.Background(), env.scheduler, other.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListPinsSchedulerToOwnAssignments(t *testing.T) {
	env := newTestEnv(t)
	env.seedItem(func(i *models.WorkItem) { i.AssignedToID = &env.scheduler.UserID })
	env.seedItem(nil)

	// Even an explicit filter for someone else is overridden.
	someoneElse := uuid.New()
	resp, err := env.svc.List(context.Background(), env.scheduler, ListRequest{AssignedToID: &someoneElse})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].AssignedToID == nil || *resp.Items[0].AssignedToID != env.scheduler.UserID {
		t.Fatalf("leaked item assigned elsewhere: %+v", resp.Items[0])
	}
}

func TestServiceCompleteMarksDoneAndLogsHours(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	item := env.seedItem(func(i *models.WorkItem) {
		i.ProjectID = &projectID
		i.AssignedToID = &env.scheduler.UserID
	})

	dto, err := env.svc.Complete(context.Background(), env.scheduler, item.ID, CompleteRequest{
		Hours:    decimal.NewFromFloat(2.5),
		WorkCode: "schedule_update",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.Status != enums.WorkItemStatusDone {
		t.Fatalf("expected done, got %s", dto.Status)
	}

	if len(env.timeEntries.entries) != 1 {
		t.Fatalf("expected one time entry, got %d", len(env.timeEntries.entries))
	}
	entry := env.timeEntries.entries[0]
	if entry.ProjectID != projectID {
		t.Fatalf("entry on wrong project %s", entry.ProjectID)
	}
	if entry.WorkItemID == nil || *entry.WorkItemID != item.ID {
		t.Fatalf("entry not linked to item")
	}
	if !entry.Hours.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("unexpected hours %s", entry.Hours)
	}
	if entry.WorkCode == nil || *entry.WorkCode != enums.WorkCodeScheduleUpdate {
		t.Fatalf("unexpected work code %v", entry.WorkCode)
	}
}

func TestServiceCompleteAlreadyDone(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(func(i *models.WorkItem) { i.Status = enums.WorkItemStatusDone })

	_, err := env.svc.Complete(context.Background(), env.manager, item.ID, CompleteRequest{Hours: decimal.NewFromInt(1)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServiceCompleteNegativeHours(t *testing.T) {
	env := newTestEnv(t)
	projectID := uuid.New()
	item := env.seedItem(func(i *models.WorkItem) { i.ProjectID = &projectID })

	_, err := env.svc.Complete(context.Background(), env.manager, item.ID, CompleteRequest{Hours: decimal.NewFromInt(-1)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCompleteWithoutProject(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)

	_, err := env.svc.Complete(context.Background(), env.manager, item.ID, CompleteRequest{Hours: decimal.NewFromInt(1)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateCannotSneakDoneStatus(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)

	done := "done"
	_, err := env.svc.Update(context.Background(), env.manager, item.ID, UpdateRequest{Status: &done})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDeleteAndRestore(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)

	if err := env.svc.Delete(context.Background(), env.manager, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Deleted items vanish from the live finder.
	if _, err := env.svc.Get(context.Background(), env.manager, item.ID); pkgerrors.As(err) == nil {
		t.Fatalf("expected not found for deleted item, got %v", err)
	}

	deleted, err := env.svc.ListDeleted(context.Background(), env.manager)
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != item.ID {
		t.Fatalf("deleted list wrong: %+v", deleted)
	}
	if deleted[0].PurgeEligibleAt == nil {
		t.Fatalf("purge eligibility missing")
	}

	restored, err := env.svc.Restore(context.Background(), env.manager, item.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("tombstone not cleared")
	}
}

func TestServiceRestoreSchedulerOwnItem(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(func(i *models.WorkItem) { i.AssignedToID = &env.scheduler.UserID })
	if err := env.svc.Delete(context.Background(), env.scheduler, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	restored, err := env.svc.Restore(context.Background(), env.scheduler, item.ID)
	if err != nil {
		t.Fatalf("restore own item: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("tombstone not cleared")
	}
}

func TestServiceRestoreSchedulerCannotReachOthersItems(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)
	if err := env.svc.Delete(context.Background(), env.manager, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Unassigned tombstones read as not found to a scheduler.
	_, err := env.svc.Restore(context.Background(), env.scheduler, item.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceRestoreAtRetentionBoundary(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)
	if err := env.svc.Delete(context.Background(), env.manager, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Exactly 30 days after deletion is still inside the window.
	env.advance(30 * 24 * time.Hour)

	restored, err := env.svc.Restore(context.Background(), env.manager, item.ID)
	if err != nil {
		t.Fatalf("restore at boundary: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("tombstone not cleared")
	}
}

func TestServiceRestoreAfterRetentionWindow(t *testing.T) {
	env := newTestEnv(t)
	item := env.seedItem(nil)
	if err := env.svc.Delete(context.Background(), env.manager, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	env.advance(31 * 24 * time.Hour)

	_, err := env.svc.Restore(context.Background(), env.manager, item.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServicePurgeExpired(t *testing.T) {
	env := newTestEnv(t)
	old := env.seedItem(nil)
	recent := env.seedItem(nil)

	if err := env.svc.Delete(context.Background(), env.manager, old.ID); err != nil {
		t.Fatalf("delete old: %v", err)
	}
	env.advance(31 * 24 * time.Hour)
	if err := env.svc.Delete(context.Background(), env.manager, recent.ID); err != nil {
		t.Fatalf("delete recent: %v", err)
	}

	dry, err := env.svc.PurgeExpired(context.Background(), true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !dry.DryRun || dry.Count != 1 || dry.IDs[0] != old.ID {
		t.Fatalf("unexpected dry run result %+v", dry)
	}
	if _, ok := env.repo.items[old.ID]; !ok {
		t.Fatalf("dry run removed rows")
	}

	res, err := env.svc.PurgeExpired(context.Background(), false)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("unexpected purge count %d", res.Count)
	}
	if _, ok := env.repo.items[old.ID]; ok {
		t.Fatalf("expired item not removed")
	}
	if _, ok := env.repo.items[recent.ID]; !ok {
		t.Fatalf("recent tombstone purged early")
	}
}

type testEnv struct {
	svc         Service
	repo        *stubRepo
	timeEntries *stubTimeEntryWriter
	manager     Actor
	scheduler   Actor
	clock       *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newStubRepo()
	timeEntries := &stubTimeEntryWriter{}
	recorder, err := audit.NewRecorder(&stubAuditRepo{})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	clock := &fakeClock{at: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{
		Repo:            repo,
		TimeEntryWriter: timeEntries,
		Recorder:        recorder,
		Tx:              stubTransactor{},
		RetentionDays:   30,
		Now:             clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{
		svc:         svc,
		repo:        repo,
		timeEntries: timeEntries,
		manager:     Actor{UserID: uuid.New(), Role: enums.RoleManager},
		scheduler:   Actor{UserID: uuid.New(), Role: enums.RoleScheduler},
		clock:       clock,
	}
}

func (e *testEnv) seedItem(mutate func(*models.WorkItem)) *models.WorkItem {
	item := &models.WorkItem{
		ID:        uuid.New(),
		Title:     "Task",
		WorkType:  enums.WorkTypeUpdate,
		Priority:  enums.PriorityMedium,
		Status:    enums.WorkItemStatusOpen,
		CreatedAt: e.clock.Now(),
	}
	if mutate != nil {
		mutate(item)
	}
	e.repo.items[item.ID] = item
	return item
}

func (e *testEnv) advance(d time.Duration) {
	e.clock.at = e.clock.at.Add(d)
}

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time { return c.at }

type stubTransactor struct{}

func (stubTransactor) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTimeEntryWriter struct {
	entries []models.TimeEntry
}

func (s *stubTimeEntryWriter) CreateInTx(ctx context.Context, tx *gorm.DB, entry *models.TimeEntry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

type stubAuditRepo struct {
	entries []models.AuditLog
}

func (s *stubAuditRepo) WithTx(tx *gorm.DB) audit.Repository { return s }

func (s *stubAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) ListRecent(ctx context.Context, params audit.ListQuery) ([]models.AuditLog, error) {
	return s.entries, nil
}

type stubRepo struct {
	items map[uuid.UUID]*models.WorkItem
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[uuid.UUID]*models.WorkItem)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, item *models.WorkItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubRepo) Save(ctx context.Context, item *models.WorkItem) error {
	s.items[item.ID] = item
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error) {
	item, ok := s.items[id]
	if !ok || item.DeletedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubRepo) FindDeletedByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error) {
	item, ok := s.items[id]
	if !ok || item.DeletedAt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, params ListRequest) ([]models.WorkItem, *pagination.Cursor, error) {
	var out []models.WorkItem
	for _, item := range s.items {
		if item.DeletedAt != nil {
			continue
		}
		if params.AssignedToID != nil {
			if item.AssignedToID == nil || *item.AssignedToID != *params.AssignedToID {
				continue
			}
		}
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, nil, nil
}

func (s *stubRepo) ListDeleted(ctx context.Context, since time.Time) ([]models.WorkItem, error) {
	var out []models.WorkItem
	for _, item := range s.items {
		if item.DeletedAt != nil && !item.DeletedAt.Before(since) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubRepo) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.WorkItem, error) {
	var out []models.WorkItem
	for _, item := range s.items {
		if item.DeletedAt != nil && item.DeletedAt.Before(cutoff) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubRepo) HardDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if item, ok := s.items[id]; ok && item.DeletedAt != nil {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}
