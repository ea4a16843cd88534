package timetracking

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// Repository handles time entry persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.TimeEntry) error
	CreateInTx(ctx context.Context, tx *gorm.DB, entry *models.TimeEntry) error
	Save(ctx context.Context, entry *models.TimeEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error)
	ListRange(ctx context.Context, params RangeRequest) ([]models.TimeEntry, error)
	SummaryRange(ctx context.Context, params RangeRequest) ([]summaryScanRow, error)
}

type repository struct {
	db *gorm.DB
}

type summaryScanRow struct {
	ProjectID     uuid.UUID
	ProjectNumber string
	ProjectName   string
	WorkType      string
	TotalHours    decimal.Decimal
}

// NewRepository returns a time entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreateInTx(ctx context.Context, tx *gorm.DB, entry *models.TimeEntry) error {
	if tx == nil {
		return r.Create(ctx, entry)
	}
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *repository) Save(ctx context.Context, entry *models.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TimeEntry{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		Preload("WorkItem").
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListRange(ctx context.Context, params RangeRequest) ([]models.TimeEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Preload("User").
		Preload("Project").
		Preload("WorkItem").
		Where("date BETWEEN ? AND ?", params.From, params.To)
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}

	var entries []models.TimeEntry
	if err := query.Order("date ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SummaryRange(ctx context.Context, params RangeRequest) ([]summaryScanRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select(`time_entries.project_id AS project_id,
			projects.project_number AS project_number,
			projects.name AS project_name,
			COALESCE(work_items.work_type, 'other') AS work_type,
			COALESCE(SUM(time_entries.hours), 0) AS total_hours`).
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Joins("LEFT JOIN work_items ON work_items.id = time_entries.work_item_id").
		Where("time_entries.date BETWEEN ? AND ?", params.From, params.To).
		Group("time_entries.project_id, projects.project_number, projects.name, work_items.work_type").
		Order("projects.project_number ASC, work_type ASC")
	if params.UserID != nil {
		query = query.Where("time_entries.user_id = ?", *params.UserID)
	}
	if params.ProjectID != nil {
		query = query.Where("time_entries.project_id = ?", *params.ProjectID)
	}

	var rows []summaryScanRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
