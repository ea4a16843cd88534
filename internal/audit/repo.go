package audit

import (
	"context"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles audit log persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, params ListQuery) ([]models.AuditLog, error)
}

type repository struct {
	db *gorm.DB
}

// ListQuery configures the activity feed query.
type ListQuery struct {
	Limit      int
	EntityName string
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListRecent(ctx context.Context, params ListQuery) ([]models.AuditLog, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Preload("User")
	if params.EntityName != "" {
		query = query.Where("entity_name = ?", params.EntityName)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
