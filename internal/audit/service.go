package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes the activity feed.
type Service interface {
	ListActivity(ctx context.Context, actorRole enums.Role, query ListQuery) ([]ActivityDTO, error)
}

// ActivityDTO is one row of the activity feed.
type ActivityDTO struct {
	ID         uuid.UUID         `json:"id"`
	UserName   string            `json:"user_name"`
	EntityName string            `json:"entity_name"`
	ObjectID   uuid.UUID         `json:"object_id"`
	ObjectRepr string            `json:"object_repr"`
	Action     enums.AuditAction `json:"action"`
	CreatedAt  time.Time         `json:"created_at"`
}

type service struct {
	repo Repository
}

// NewService builds the activity feed service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActivity(ctx context.Context, actorRole enums.Role, query ListQuery) ([]ActivityDTO, error) {
	if err := roles.Check(actorRole, roles.CapabilityViewActivity); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListRecent(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list activity")
	}

	out := make([]ActivityDTO, 0, len(entries))
	for _, entry := range entries {
		userName := ""
		if entry.User != nil {
			userName = entry.User.DisplayName()
		}
		out = append(out, ActivityDTO{
			ID:         entry.ID,
			UserName:   userName,
			EntityName: entry.EntityName,
			ObjectID:   entry.ObjectID,
			ObjectRepr: entry.ObjectRepr,
			Action:     entry.Action,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return out, nil
}
