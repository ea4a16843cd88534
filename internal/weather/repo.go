package weather

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
)

// Repository persists geocoded project locations and cached forecasts.
type Repository interface {
	FindLocation(ctx context.Context, projectID uuid.UUID) (*models.ProjectWeatherLocation, error)
	UpsertLocation(ctx context.Context, location *models.ProjectWeatherLocation) error
	FindCache(ctx context.Context, projectID uuid.UUID) (*models.ProjectWeatherCache, error)
	UpsertCache(ctx context.Context, cache *models.ProjectWeatherCache) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gorm-backed weather repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindLocation(ctx context.Context, projectID uuid.UUID) (*models.ProjectWeatherLocation, error) {
	var location models.ProjectWeatherLocation
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) UpsertLocation(ctx context.Context, location *models.ProjectWeatherLocation) error {
	var existing models.ProjectWeatherLocation
	err := r.db.WithContext(ctx).Where("project_id = ?", location.ProjectID).First(&existing).Error
	if err == nil {
		existing.Lat = location.Lat
		existing.Lon = location.Lon
		existing.GeocodeSource = location.GeocodeSource
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *repository) FindCache(ctx context.Context, projectID uuid.UUID) (*models.ProjectWeatherCache, error) {
	var cache models.ProjectWeatherCache
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&cache).Error
	if err != nil {
		return nil, err
	}
	return &cache, nil
}

func (r *repository) UpsertCache(ctx context.Context, cache *models.ProjectWeatherCache) error {
	var existing models.ProjectWeatherCache
	err := r.db.WithContext(ctx).Where("project_id = ?", cache.ProjectID).First(&existing).Error
	if err == nil {
		existing.ForecastJSON = cache.ForecastJSON
		existing.FetchedAt = cache.FetchedAt
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(cache).Error
}
