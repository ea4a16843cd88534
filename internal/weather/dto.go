package weather

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// ProjectWeatherDTO is the forecast risk summary returned for a project.
type ProjectWeatherDTO struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	Risk          enums.RiskLevel `json:"risk"`
	MaxPrecipProb *float64        `json:"max_precip_prob,omitempty"`
	Days          []DayRisk       `json:"days,omitempty"`
	HasLocation   bool            `json:"has_location"`
	FetchedAt     *time.Time      `json:"fetched_at,omitempty"`
	// Stale is set when the cached forecast is past its TTL but a refresh
	// attempt failed; the previous payload is served rather than nothing.
	Stale bool `json:"stale,omitempty"`
}
