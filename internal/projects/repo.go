package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// Repository handles project persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params ListRequest) ([]models.Project, error)
	TotalHours(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	ListWithAddress(ctx context.Context) ([]models.Project, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a project repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *repository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) List(ctx context.Context, params ListRequest) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.Where(
			"project_number ILIKE ? OR name ILIKE ? OR client ILIKE ? OR pm ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var projects []models.Project
	if err := query.Order("project_number ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// TotalHours sums logged time per project. Projects without entries are
// absent from the result map.
func (r *repository) TotalHours(ctx context.Context, projectIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(projectIDs))
	if len(projectIDs) == 0 {
		return totals, nil
	}

	type row struct {
		ProjectID uuid.UUID
		Total     decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.TimeEntry{}).
		Select("project_id AS project_id, COALESCE(SUM(hours), 0) AS total").
		Where("project_id IN ?", projectIDs).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		totals[r.ProjectID] = r.Total
	}
	return totals, nil
}

// ListWithAddress returns active projects that have enough location data to
// geocode, for the weather refresh sweep.
func (r *repository) ListWithAddress(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Where("city <> '' OR state <> ''").
		Order("project_number ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
