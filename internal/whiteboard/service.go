package whiteboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
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

// Service manages whiteboards. Boards are owner-scoped; a board outside the
// actor's scope reads as missing. Managers may list everyone's boards.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*WhiteboardDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateParams) (*WhiteboardDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*WhiteboardDTO, error)
	List(ctx context.Context, actor Actor, all bool) ([]WhiteboardDTO, error)
}

type service struct {
	repo Repository
}

// ServiceParams groups dependencies for the whiteboard service.
type ServiceParams struct {
	Repo Repository
}

// NewService builds a whiteboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("whiteboard repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*WhiteboardDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWhiteboards); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	content := req.Content
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}

	board := &models.Whiteboard{
		OwnerID: actor.UserID,
		Name:    name,
		Content: content,
	}
	if err := s.repo.Create(ctx, board); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create whiteboard")
	}
	dto := fromModel(board, true)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateParams) (*WhiteboardDTO, error) {
	board, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		board.Name = name
	}
	if req.Content != nil {
		if err := validateContent(req.Content); err != nil {
			return nil, err
		}
		board.Content = req.Content
	}

	if err := s.repo.Save(ctx, board); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save whiteboard")
	}
	dto := fromModel(board, true)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	board, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, board.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete whiteboard")
	}
	return nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*WhiteboardDTO, error) {
	board, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(board, true)
	return &dto, nil
}

// List returns the actor's boards without content. Managers may request
// everyone's boards with all=true.
func (s *service) List(ctx context.Context, actor Actor, all bool) ([]WhiteboardDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWhiteboards); err != nil {
		return nil, err
	}

	var (
		boards []models.Whiteboard
		err    error
	)
	if all && roles.Allowed(actor.Role, roles.CapabilityViewAllWork) {
		boards, err = s.repo.ListAll(ctx)
	} else {
		boards, err = s.repo.ListByOwner(ctx, actor.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list whiteboards")
	}

	out := make([]WhiteboardDTO, 0, len(boards))
	for i := range boards {
		out = append(out, fromModel(&boards[i], false))
	}
	return out, nil
}

// findOwned loads a board the actor may touch. Someone else's board reads
// as missing rather than forbidden.
func (s *service) findOwned(ctx context.Context, actor Actor, id uuid.UUID) (*models.Whiteboard, error) {
	if err := roles.Check(actor.Role, roles.CapabilityManageWhiteboards); err != nil {
		return nil, err
	}
	board, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "whiteboard not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load whiteboard")
	}
	if board.OwnerID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "whiteboard not found")
	}
	return board, nil
}

func validateContent(content json.RawMessage) error {
	if len(content) == 0 {
		return nil
	}
	if !json.Valid(content) {
		return pkgerrors.New(pkgerrors.CodeValidation, "content must be a valid JSON document")
	}
	return nil
}
