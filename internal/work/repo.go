package work

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/pagination"
)

// Repository handles work item persistence. Finders exclude soft-deleted
// rows unless the method name says otherwise.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.WorkItem) error
	Save(ctx context.Context, item *models.WorkItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error)
	FindDeletedByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error)
	List(ctx context.Context, params ListRequest) ([]models.WorkItem, *pagination.Cursor, error)
	ListDeleted(ctx context.Context, since time.Time) ([]models.WorkItem, error)
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.WorkItem, error)
	HardDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a work item repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.WorkItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Save(ctx context.Context, item *models.WorkItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Where("deleted_at IS NULL").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindDeletedByID(ctx context.Context, id uuid.UUID) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Where("deleted_at IS NOT NULL").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params ListRequest) ([]models.WorkItem, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Preload("Project").
		Preload("AssignedTo").
		Where("deleted_at IS NULL")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Priority != nil {
		query = query.Where("priority = ?", *params.Priority)
	}
	if params.WorkType != nil {
		query = query.Where("work_type = ?", *params.WorkType)
	}
	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}
	if params.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *params.AssignedToID)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR notes ILIKE ? OR requested_by ILIKE ?", pattern, pattern, pattern)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.WorkItem
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > limit {
		items = items[:limit]
		// The cursor marks the last row handed out; the next query resumes
		// strictly after it.
		last := items[limit-1]
		return items, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return items, nil, nil
}

// ListDeleted returns tombstones still inside the retention window. Older
// tombstones are invisible here; they only surface to the purge sweep.
func (r *repository) ListDeleted(ctx context.Context, since time.Time) ([]models.WorkItem, error) {
	var items []models.WorkItem
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedTo").
		Where("deleted_at IS NOT NULL AND deleted_at >= ?", since).
		Order("deleted_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.WorkItem, error) {
	var items []models.WorkItem
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) HardDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL").
		Delete(&models.WorkItem{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}
