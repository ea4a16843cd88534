package whiteboard

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// Repository persists whiteboards.
type Repository interface {
	Create(ctx context.Context, board *models.Whiteboard) error
	Save(ctx context.Context, board *models.Whiteboard) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Whiteboard, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Whiteboard, error)
	ListAll(ctx context.Context) ([]models.Whiteboard, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a whiteboard repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, board *models.Whiteboard) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *repository) Save(ctx context.Context, board *models.Whiteboard) error {
	return r.db.WithContext(ctx).Save(board).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Whiteboard{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Whiteboard, error) {
	var board models.Whiteboard
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&board).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Whiteboard, error) {
	var boards []models.Whiteboard
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&boards).Error
	return boards, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Whiteboard, error) {
	var boards []models.Whiteboard
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("updated_at DESC").
		Find(&boards).Error
	return boards, err
}
