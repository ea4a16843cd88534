package updaterequests

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
)

const entityName = "update_request"

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service manages outbound update requests. All operations are staff-level.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*UpdateRequestDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateParams) (*UpdateRequestDTO, error)
	ConfirmReply(ctx context.Context, actor Actor, id uuid.UUID) (*UpdateRequestDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*UpdateRequestDTO, error)
	List(ctx context.Context, actor Actor, req ListRequest) (*ListResponse, error)
}

type service struct {
	repo     Repository
	recorder *audit.Recorder
	now      func() time.Time
}

// ServiceParams groups dependencies for the update request service.
type ServiceParams struct {
	Repo     Repository
	Recorder *audit.Recorder
	Now      func() time.Time
}

// NewService builds an update request service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("update request repository is required")
	}
	if params.Recorder == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{repo: params.Repo, recorder: params.Recorder, now: params.Now}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*UpdateRequestDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return nil, err
	}
	if req.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project is required")
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}

	now := s.now()
	sentAt := now
	if req.SentAt != nil {
		sentAt = *req.SentAt
	}

	model := &models.UpdateRequest{
		ProjectID:   req.ProjectID,
		WorkItemID:  req.WorkItemID,
		Recipient:   recipient,
		Subject:     subject,
		SentAt:      sentAt,
		CreatedByID: &actor.UserID,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create update request")
	}
	s.record(ctx, actor, model, enums.AuditActionCreate)

	return s.hydrate(ctx, model.ID, now)
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateParams) (*UpdateRequestDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return nil, err
	}
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Recipient != nil {
		recipient := strings.TrimSpace(*req.Recipient)
		if recipient == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
		}
		model.Recipient = recipient
	}
	if req.Subject != nil {
		subject := strings.TrimSpace(*req.Subject)
		if subject == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
		}
		model.Subject = subject
	}
	if req.SentAt != nil {
		model.SentAt = *req.SentAt
	}

	if err := s.repo.Save(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update update request")
	}
	s.record(ctx, actor, model, enums.AuditActionUpdate)

	dto := fromModel(model, s.now())
	return &dto, nil
}

func (s *service) ConfirmReply(ctx context.Context, actor Actor, id uuid.UUID) (*UpdateRequestDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return nil, err
	}
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.ReplyConfirmedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reply already confirmed")
	}

	now := s.now()
	model.ReplyConfirmedAt = &now
	if err := s.repo.Save(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to confirm reply")
	}
	s.record(ctx, actor, model, enums.AuditActionUpdate)

	dto := fromModel(model, now)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return err
	}
	model, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, model.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete update request")
	}
	s.record(ctx, actor, model, enums.AuditActionDelete)
	return nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*UpdateRequestDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return nil, err
	}
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(model, s.now())
	return &dto, nil
}

func (s *service) List(ctx context.Context, actor Actor, req ListRequest) (*ListResponse, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageUpdateRequests); err != nil {
		return nil, err
	}
	reqs, err := s.repo.List(ctx, req.ProjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list update requests")
	}

	now := s.now()
	resp := &ListResponse{
		Items:   make([]UpdateRequestDTO, 0, len(reqs)),
		Buckets: map[enums.UpdateRequestBucket]int64{},
	}
	for i := range reqs {
		dto := fromModel(&reqs[i], now)
		// Counts span every bucket; the bucket filter narrows items only.
		resp.Buckets[dto.Bucket]++
		if req.Bucket != nil && dto.Bucket != *req.Bucket {
			continue
		}
		resp.Items = append(resp.Items, dto)
	}
	return resp, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.UpdateRequest, error) {
	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "update request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load update request")
	}
	return model, nil
}

func (s *service) hydrate(ctx context.Context, id uuid.UUID, now time.Time) (*UpdateRequestDTO, error) {
	model, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(model, now)
	return &dto, nil
}

// record writes the audit row best effort; a failed write never fails the
// operation it describes.
func (s *service) record(ctx context.Context, actor Actor, model *models.UpdateRequest, action enums.AuditAction) {
	_ = s.recorder.Record(ctx, nil, audit.Entry{
		UserID:     &actor.UserID,
		EntityName: entityName,
		ObjectID:   model.ID,
		ObjectRepr: fmt.Sprintf("%s to %s", model.Subject, model.Recipient),
		Action:     action,
	})
}
