package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProjectWeatherCache holds the raw 7-day forecast payload for a project.
// A row is only written after a fully successful fetch; failed refreshes
// leave the previous payload in place.
type ProjectWeatherCache struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID       `gorm:"column:project_id;type:uuid;not null;unique"`
	ForecastJSON json.RawMessage `gorm:"column:forecast_json;type:jsonb;not null"`
	FetchedAt    time.Time       `gorm:"column:fetched_at;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Fresh reports whether the cached payload is within the TTL as of now.
func (c ProjectWeatherCache) Fresh(now time.Time, ttl time.Duration) bool {
	if len(c.ForecastJSON) == 0 {
		return false
	}
	return now.Sub(c.FetchedAt) < ttl
}

// ProjectWeatherLocation stores the geocoded coordinates for a project.
type ProjectWeatherLocation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     uuid.UUID `gorm:"column:project_id;type:uuid;not null;unique"`
	Lat           float64   `gorm:"column:lat;type:numeric(9,6);not null"`
	Lon           float64   `gorm:"column:lon;type:numeric(9,6);not null"`
	GeocodeSource string    `gorm:"column:geocode_source;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
