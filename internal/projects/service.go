package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/pkg/db"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const entityName = "project"

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service orchestrates project management. All mutations are manager-only.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*ProjectDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*ProjectDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*ProjectDTO, error)
	List(ctx context.Context, actor Actor, req ListRequest) ([]ProjectDTO, error)
}

type service struct {
	repo     Repository
	recorder *audit.Recorder
}

// ServiceParams groups dependencies for the project service.
type ServiceParams struct {
	Repo     Repository
	Recorder *audit.Recorder
}

// NewService builds a project service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("project repository is required")
	}
	if params.Recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{repo: params.Repo, recorder: params.Recorder}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*ProjectDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageProjects); err != nil {
		return nil, err
	}

	project := req.toModel()
	if !project.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", project.Status))
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("project number %q already exists", project.ProjectNumber))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create project")
	}

	s.record(ctx, actor, project, enums.AuditActionCreate)
	return FromModel(project, decimal.Zero), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*ProjectDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageProjects); err != nil {
		return nil, err
	}

	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(project, req)
	if !project.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", project.Status))
	}

	if err := s.repo.Update(ctx, project); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("project number %q already exists", project.ProjectNumber))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update project")
	}

	s.record(ctx, actor, project, enums.AuditActionUpdate)

	totals, err := s.repo.TotalHours(ctx, []uuid.UUID{project.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum project hours")
	}
	return FromModel(project, totals[project.ID]), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := roles.Check(actor.Role, roles.CapabilityManageProjects); err != nil {
		return err
	}

	project, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, project.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete project")
	}

	s.record(ctx, actor, project, enums.AuditActionDelete)
	return nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*ProjectDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDashboard); err != nil {
		return nil, err
	}

	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.TotalHours(ctx, []uuid.UUID{project.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum project hours")
	}
	return FromModel(project, totals[project.ID]), nil
}

func (s *service) List(ctx context.Context, actor Actor, req ListRequest) ([]ProjectDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDashboard); err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *req.Status))
	}
	req.Search = strings.TrimSpace(req.Search)

	projects, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list projects")
	}

	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	totals, err := s.repo.TotalHours(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum project hours")
	}

	out := make([]ProjectDTO, 0, len(projects))
	for i := range projects {
		out = append(out, *FromModel(&projects[i], totals[projects[i].ID]))
	}
	return out, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find project")
	}
	return project, nil
}

// record writes the audit trail. Failures here are swallowed so a logging
// hiccup cannot fail a mutation that already committed.
func (s *service) record(ctx context.Context, actor Actor, project *models.Project, action enums.AuditAction) {
	userID := actor.UserID
	_ = s.recorder.Record(ctx, nil, audit.Entry{
		UserID:     &userID,
		EntityName: entityName,
		ObjectID:   project.ID,
		ObjectRepr: fmt.Sprintf("%s %s", project.ProjectNumber, project.Name),
		Action:     action,
	})
}

func applyPatch(project *models.Project, req UpdateRequest) {
	if req.ProjectNumber != nil {
		project.ProjectNumber = strings.TrimSpace(*req.ProjectNumber)
	}
	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.AddressLine1 != nil {
		project.AddressLine1 = strings.TrimSpace(*req.AddressLine1)
	}
	if req.AddressLine2 != nil {
		project.AddressLine2 = strings.TrimSpace(*req.AddressLine2)
	}
	if req.City != nil {
		project.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		project.State = strings.TrimSpace(*req.State)
	}
	if req.ZipCode != nil {
		project.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.Country != nil {
		project.Country = strings.TrimSpace(*req.Country)
	}
	if req.Client != nil {
		project.Client = strings.TrimSpace(*req.Client)
	}
	if req.PM != nil {
		project.PM = strings.TrimSpace(*req.PM)
	}
	if req.ProjectManagerID != nil {
		project.ProjectManagerID = req.ProjectManagerID
	}
	if req.Status != nil {
		project.Status = enums.ProjectStatus(strings.TrimSpace(*req.Status))
	}
	if req.Notes != nil {
		project.Notes = *req.Notes
	}
}
