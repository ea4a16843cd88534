package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// overdueListLimit bounds the item lists embedded in the overview payload.
const overdueListLimit = 25

// Repository runs the aggregate queries behind the dashboard. All work-item
// queries exclude soft-deleted rows.
type Repository interface {
	OverdueItems(ctx context.Context, asOf time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error)
	DueBetween(ctx context.Context, from, to time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error)
	OpenCount(ctx context.Context, assigneeID *uuid.UUID) (int64, error)
	OverdueCount(ctx context.Context, asOf time.Time, assigneeID *uuid.UUID) (int64, error)
	CompletedBetween(ctx context.Context, from, to time.Time, assigneeID *uuid.UUID) (int64, error)
	ActiveProjectCount(ctx context.Context) (int64, error)
	HoursByProject(ctx context.Context, from, to time.Time, userID *uuid.UUID) ([]projectHoursRow, error)
	HoursByUser(ctx context.Context, from, to time.Time) ([]userHoursRow, error)
}

type repository struct {
	db *gorm.DB
}

type projectHoursRow struct {
	ProjectID     uuid.UUID
	ProjectNumber string
	ProjectName   string
	TotalHours    decimal.Decimal
}

type userHoursRow struct {
	UserID     uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	TotalHours decimal.Decimal
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) activeItems(ctx context.Context, assigneeID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("deleted_at IS NULL")
	if assigneeID != nil {
		query = query.Where("assigned_to_id = ?", *assigneeID)
	}
	return query
}

func (r *repository) OverdueItems(ctx context.Context, asOf time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.activeItems(ctx, assigneeID).
		Where("status <> ?", enums.WorkItemStatusDone).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Preload("Project").
		Preload("AssignedTo").
		Order("due_date ASC, created_at ASC").
		Limit(overdueListLimit).
		Find(&items).Error
	return items, err
}

func (r *repository) DueBetween(ctx context.Context, from, to time.Time, assigneeID *uuid.UUID) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.activeItems(ctx, assigneeID).
		Where("status <> ?", enums.WorkItemStatusDone).
		Where("due_date >= ? AND due_date <= ?", from, to).
		Preload("Project").
		Preload("AssignedTo").
		Order("due_date ASC, created_at ASC").
		Limit(overdueListLimit).
		Find(&items).Error
	return items, err
}

func (r *repository) OpenCount(ctx context.Context, assigneeID *uuid.UUID) (int64, error) {
	var count int64
	err := r.activeItems(ctx, assigneeID).
		Where("status <> ?", enums.WorkItemStatusDone).
		Count(&count).Error
	return count, err
}

func (r *repository) OverdueCount(ctx context.Context, asOf time.Time, assigneeID *uuid.UUID) (int64, error) {
	var count int64
	err := r.activeItems(ctx, assigneeID).
		Where("status <> ?", enums.WorkItemStatusDone).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Count(&count).Error
	return count, err
}

func (r *repository) CompletedBetween(ctx context.Context, from, to time.Time, assigneeID *uuid.UUID) (int64, error) {
	var count int64
	err := r.activeItems(ctx, assigneeID).
		Where("status = ?", enums.WorkItemStatusDone).
		Where("updated_at >= ? AND updated_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) ActiveProjectCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("status = ?", enums.ProjectStatusActive).
		Count(&count).Error
	return count, err
}

func (r *repository) HoursByProject(ctx context.Context, from, to time.Time, userID *uuid.UUID) ([]projectHoursRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select(`time_entries.project_id AS project_id,
			projects.project_number AS project_number,
			projects.name AS project_name,
			COALESCE(SUM(time_entries.hours), 0) AS total_hours`).
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Where("time_entries.date BETWEEN ? AND ?", from, to).
		Group("time_entries.project_id, projects.project_number, projects.name").
		Order("projects.project_number ASC")
	if userID != nil {
		query = query.Where("time_entries.user_id = ?", *userID)
	}

	var rows []projectHoursRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) HoursByUser(ctx context.Context, from, to time.Time) ([]userHoursRow, error) {
	var rows []userHoursRow
	err := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select(`time_entries.user_id AS user_id,
			users.first_name AS first_name,
			users.last_name AS last_name,
			users.email AS email,
			COALESCE(SUM(time_entries.hours), 0) AS total_hours`).
		Joins("JOIN users ON users.id = time_entries.user_id").
		Where("time_entries.date BETWEEN ? AND ?", from, to).
		Group("time_entries.user_id, users.first_name, users.last_name, users.email").
		Order("users.first_name ASC, users.last_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
