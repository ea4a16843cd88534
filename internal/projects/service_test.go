package projects

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

func TestServiceCreateRequiresManager(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Create(context.Background(), schedulerActor(), CreateRequest{
		ProjectNumber: "24-001",
		Name:          "Riverside Medical",
		Client:        "ACME Health",
		PM:            "T. Alvarez",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceCreateDefaultsAndAudit(t *testing.T) {
	svc, stubs := buildTestService(t)

	dto, err := svc.Create(context.Background(), managerActor(), CreateRequest{
		ProjectNumber: " 24-001 ",
		Name:          "Riverside Medical",
		Client:        "ACME Health",
		PM:            "T. Alvarez",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.ProjectStatusActive {
		t.Fatalf("expected active default, got %s", dto.Status)
	}
	if dto.ProjectNumber != "24-001" {
		t.Fatalf("project number not trimmed: %q", dto.ProjectNumber)
	}
	if dto.Country != "US" {
		t.Fatalf("expected US country default, got %q", dto.Country)
	}
	if !dto.TotalHours.Equal(decimal.Zero) {
		t.Fatalf("expected zero hours on create, got %s", dto.TotalHours)
	}
	if len(stubs.audit.entries) != 1 || stubs.audit.entries[0].Action != enums.AuditActionCreate {
		t.Fatalf("expected create audit entry, got %+v", stubs.audit.entries)
	}
}

func TestServiceCreateDuplicateNumberConflict(t *testing.T) {
	svc, stubs := buildTestService(t)
	stubs.repo.createErr = errors.New(`duplicate key value violates unique constraint "projects_project_number_key"`)

	_, err := svc.Create(context.Background(), managerActor(), CreateRequest{
		ProjectNumber: "24-001",
		Name:          "Riverside Medical",
		Client:        "ACME Health",
		PM:            "T. Alvarez",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceUpdateAppliesPatchOnly(t *testing.T) {
	svc, stubs := buildTestService(t)
	existing := &models.Project{
		ID:            uuid.New(),
		ProjectNumber: "24-002",
		Name:          "Warehouse Expansion",
		Client:        "ACME Logistics",
		PM:            "J. Kim",
		Status:        enums.ProjectStatusActive,
	}
	stubs.repo.projects[existing.ID] = existing

	newStatus := "on_hold"
	dto, err := svc.Update(context.Background(), managerActor(), existing.ID, UpdateRequest{
		Status: &newStatus,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.ProjectStatusOnHold {
		t.Fatalf("status not applied, got %s", dto.Status)
	}
	if dto.Name != "Warehouse Expansion" {
		t.Fatalf("untouched field changed: %q", dto.Name)
	}
}

func TestServiceUpdateInvalidStatus(t *testing.T) {
	svc, stubs := buildTestService(t)
	existing := &models.Project{ID: uuid.New(), ProjectNumber: "24-003", Status: enums.ProjectStatusActive}
	stubs.repo.projects[existing.ID] = existing

	bogus := "cancelled"
	_, err := svc.Update(context.Background(), managerActor(), existing.ID, UpdateRequest{Status: &bogus})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Get(context.Background(), managerActor(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDeleteRecordsAudit(t *testing.T) {
	svc, stubs := buildTestService(t)
	existing := &models.Project{ID: uuid.New(), ProjectNumber: "24-004", Name: "Bridge Retrofit"}
	stubs.repo.projects[existing.ID] = existing

	if err := svc.Delete(context.Background(), managerActor(), existing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := stubs.repo.projects[existing.ID]; ok {
		t.Fatalf("project not deleted")
	}
	if len(stubs.audit.entries) != 1 || stubs.audit.entries[0].Action != enums.AuditActionDelete {
		t.Fatalf("expected delete audit entry, got %+v", stubs.audit.entries)
	}
}

type testStubs struct {
	repo  *stubRepo
	audit *stubAuditRepo
}

func buildTestService(t *testing.T) (Service, *testStubs) {
	t.Helper()
	repo := newStubRepo()
	auditRepo := &stubAuditRepo{}
	recorder, err := audit.NewRecorder(auditRepo)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc, err := NewService(ServiceParams{Repo: repo, Recorder: recorder})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, &testStubs{repo: repo, audit: auditRepo}
}

func managerActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleManager}
}

func schedulerActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleScheduler}
}

type stubRepo struct {
	projects  map[uuid.UUID]*models.Project
	createErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{projects: make(map[uuid.UUID]*models.Project)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, project *models.Project) error {
	if s.createErr != nil {
		return s.createErr
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	s.projects[project.ID] = project
	return nil
}

func (s *stubRepo) Update(ctx context.Context, project *models.Project) error {
	s.projects[project.ID] = project
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.projects, id)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *project
	return &copied, nil
}

func (s *stubRepo) List(ctx context.Context, params ListRequest) ([]models.Project, error) {
	var out []models.Project
	for _, p := range s.projects {
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) TotalHours(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return map[uuid.UUID]decimal.Decimal{}, nil
}

func (s *stubRepo) ListWithAddress(ctx context.Context) ([]models.Project, error) {
	return nil, nil
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
