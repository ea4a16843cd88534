package audit

import (
	"context"
	"fmt"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Object representations are truncated so a pathological title cannot bloat
// the activity feed.
const maxObjectReprLen = 300

// Entry describes a single audited mutation.
type Entry struct {
	UserID     *uuid.UUID
	EntityName string
	ObjectID   uuid.UUID
	ObjectRepr string
	Action     enums.AuditAction
}

// Recorder writes audit log rows. It is safe to share between services.
type Recorder struct {
	repo Repository
}

// NewRecorder builds a recorder on top of the audit repository.
func NewRecorder(repo Repository) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &Recorder{repo: repo}, nil
}

// Record persists the entry. Pass a non-nil tx to write inside the caller's
// transaction so the audit row commits or rolls back with the mutation.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if entry.EntityName == "" {
		return fmt.Errorf("entity name is required")
	}
	if entry.ObjectID == uuid.Nil {
		return fmt.Errorf("object id is required")
	}
	if !entry.Action.IsValid() {
		return fmt.Errorf("invalid audit action %q", entry.Action)
	}

	repr := entry.ObjectRepr
	if len(repr) > maxObjectReprLen {
		repr = repr[:maxObjectReprLen]
	}

	repo := r.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.Create(ctx, &models.AuditLog{
		UserID:     entry.UserID,
		EntityName: entry.EntityName,
		ObjectID:   entry.ObjectID,
		ObjectRepr: repr,
		Action:     entry.Action,
	})
}
