package updaterequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// Repository persists update requests.
type Repository interface {
	Create(ctx context.Context, req *models.UpdateRequest) error
	Save(ctx context.Context, req *models.UpdateRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.UpdateRequest, error)
	List(ctx context.Context, projectID *uuid.UUID) ([]models.UpdateRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an update request repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req *models.UpdateRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) Save(ctx context.Context, req *models.UpdateRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.UpdateRequest{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UpdateRequest, error) {
	var req models.UpdateRequest
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) List(ctx context.Context, projectID *uuid.UUID) ([]models.UpdateRequest, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UpdateRequest{}).
		Preload("Project").
		Order("sent_at DESC, created_at DESC")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var reqs []models.UpdateRequest
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}
