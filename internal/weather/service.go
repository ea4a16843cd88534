package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/roles"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
	"github.com/calebmorton/schedtrack-backend/pkg/openmeteo"
)

const defaultCacheTTL = 15 * time.Minute

// errNoGeocodeMatch marks a project whose address the geocoder cannot
// resolve. Callers treat it as "no location" rather than a failure.
var errNoGeocodeMatch = errors.New("no geocoding match")

// stateNames expands the two-letter codes used in project addresses.
// Open-Meteo's geocoder matches full state names far more reliably.
var stateNames = map[string]string{
	"AZ": "Arizona",
	"CA": "California",
	"NV": "Nevada",
	"OR": "Oregon",
	"WA": "Washington",
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service resolves per-project forecast risk, caching upstream payloads.
type Service interface {
	ProjectWeather(ctx context.Context, actor Actor, projectID uuid.UUID, force bool) (*ProjectWeatherDTO, error)
	Table(ctx context.Context, actor Actor) ([]ProjectWeatherDTO, error)
	RefreshAll(ctx context.Context) (int, error)
}

type projectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListWithAddress(ctx context.Context) ([]models.Project, error)
}

type forecaster interface {
	Geocode(ctx context.Context, query string) (*openmeteo.Location, error)
	DailyForecast(ctx context.Context, lat, lon float64, timezone string) (*openmeteo.Forecast, error)
}

type service struct {
	repo     Repository
	projects projectFinder
	client   forecaster
	logg     *logger.Logger
	cacheTTL time.Duration
	timezone string
	now      func() time.Time
}

// ServiceParams groups dependencies for the weather service.
type ServiceParams struct {
	Repo     Repository
	Projects projectFinder
	Client   forecaster
	Logger   *logger.Logger
	CacheTTL time.Duration
	Timezone string
	Now      func() time.Time
}

// NewService builds a weather service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("weather repository is required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("project finder is required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("forecast client is required")
	}
	if params.CacheTTL <= 0 {
		params.CacheTTL = defaultCacheTTL
	}
	if params.Timezone == "" {
		params.Timezone = "America/Los_Angeles"
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:     params.Repo,
		projects: params.Projects,
		client:   params.Client,
		logg:     params.Logger,
		cacheTTL: params.CacheTTL,
		timezone: params.Timezone,
		now:      params.Now,
	}, nil
}

func (s *service) ProjectWeather(ctx context.Context, actor Actor, projectID uuid.UUID, force bool) (*ProjectWeatherDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDashboard); err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load project")
	}

	if !project.HasAddress() {
		return unknownWeather(project.ID, false), nil
	}

	cache, err := s.repo.FindCache(ctx, project.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load weather cache")
	}

	now := s.now()
	if !force && cache != nil && cache.Fresh(now, s.cacheTTL) {
		return s.fromCache(project.ID, cache, false), nil
	}

	refreshed, refreshErr := s.refresh(ctx, project, now)
	if refreshErr == nil {
		return s.fromCache(project.ID, refreshed, false), nil
	}
	if errors.Is(refreshErr, errNoGeocodeMatch) {
		return unknownWeather(project.ID, false), nil
	}
	s.warnRefreshFailed(ctx, project, refreshErr)
	// Upstream failure degrades the read, it never fails it. A stale
	// payload beats an empty answer; with no payload at all the risk
	// is UNKNOWN.
	if cache != nil {
		return s.fromCache(project.ID, cache, true), nil
	}
	return unknownWeather(project.ID, true), nil
}

// Table reads the cached risk for every project with an address. It
// never calls upstream so a large project list renders in one pass;
// rows past the TTL are marked stale and the refresh job or a forced
// per-project read brings them current.
func (s *service) Table(ctx context.Context, actor Actor) ([]ProjectWeatherDTO, error) {
	if err := roles.Check(actor.Role, roles.CapabilityViewDashboard); err != nil {
		return nil, err
	}

	projects, err := s.projects.ListWithAddress(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list projects for weather table")
	}

	now := s.now()
	rows := make([]ProjectWeatherDTO, 0, len(projects))
	for i := range projects {
		project := &projects[i]
		cache, err := s.repo.FindCache(ctx, project.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load weather cache")
			}
			rows = append(rows, *unknownWeather(project.ID, true))
			continue
		}
		rows = append(rows, *s.fromCache(project.ID, cache, !cache.Fresh(now, s.cacheTTL)))
	}
	return rows, nil
}

func (s *service) warnRefreshFailed(ctx context.Context, project *models.Project, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"project_id":     project.ID.String(),
		"project_number": project.ProjectNumber,
		"error":          err.Error(),
	})
	s.logg.Warn(ctx, "weather refresh failed")
}

// RefreshAll fetches fresh forecasts for every active project with an
// address. It returns the number of projects refreshed; per-project
// failures are accumulated rather than aborting the sweep.
func (s *service) RefreshAll(ctx context.Context) (int, error) {
	projects, err := s.projects.ListWithAddress(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list projects for weather refresh")
	}

	var (
		refreshed int
		errs      error
	)
	for i := range projects {
		project := &projects[i]
		if _, err := s.refresh(ctx, project, s.now()); err != nil {
			if errors.Is(err, errNoGeocodeMatch) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("project %s: %w", project.ProjectNumber, err))
			continue
		}
		refreshed++
	}
	return refreshed, errs
}

// refresh geocodes the project if needed, fetches a 7-day forecast, and
// overwrites the cache. The cache is written only after a fully
// successful fetch so a failed refresh never clobbers usable data.
func (s *service) refresh(ctx context.Context, project *models.Project, now time.Time) (*models.ProjectWeatherCache, error) {
	location, err := s.locateProject(ctx, project)
	if err != nil {
		return nil, err
	}

	forecast, err := s.client.DailyForecast(ctx, location.Lat, location.Lon, s.timezone)
	if err != nil {
		return nil, err
	}

	cache := &models.ProjectWeatherCache{
		ProjectID:    project.ID,
		ForecastJSON: forecast.Raw,
		FetchedAt:    now,
	}
	if err := s.repo.UpsertCache(ctx, cache); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to store weather cache")
	}
	return cache, nil
}

func (s *service) locateProject(ctx context.Context, project *models.Project) (*models.ProjectWeatherLocation, error) {
	location, err := s.repo.FindLocation(ctx, project.ID)
	if err == nil {
		return location, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load weather location")
	}

	query := locationQuery(project.City, project.State)
	match, err := s.client.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	if match == nil {
		// Retry with the full state name before giving up.
		if full, ok := stateNames[strings.ToUpper(strings.TrimSpace(project.State))]; ok {
			retry := locationQuery(project.City, full)
			if retry != query {
				query = retry
				match, err = s.client.Geocode(ctx, query)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	if match == nil {
		return nil, errNoGeocodeMatch
	}

	location = &models.ProjectWeatherLocation{
		ProjectID:     project.ID,
		Lat:           match.Latitude,
		Lon:           match.Longitude,
		GeocodeSource: query,
	}
	if err := s.repo.UpsertLocation(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to store weather location")
	}
	return location, nil
}

func (s *service) fromCache(projectID uuid.UUID, cache *models.ProjectWeatherCache, stale bool) *ProjectWeatherDTO {
	days, err := EvaluateForecast(cache.ForecastJSON)
	if err != nil {
		// A corrupt payload reads as no data, never as clear skies.
		dto := unknownWeather(projectID, true)
		dto.FetchedAt = &cache.FetchedAt
		dto.Stale = stale
		return dto
	}

	max := MaxPrecipProb(days)
	return &ProjectWeatherDTO{
		ProjectID:     projectID,
		Risk:          RiskFromProb(max),
		MaxPrecipProb: max,
		Days:          days,
		HasLocation:   true,
		FetchedAt:     &cache.FetchedAt,
		Stale:         stale,
	}
}

func unknownWeather(projectID uuid.UUID, hasLocation bool) *ProjectWeatherDTO {
	return &ProjectWeatherDTO{
		ProjectID:   projectID,
		Risk:        enums.RiskLevelUnknown,
		HasLocation: hasLocation,
	}
}

func locationQuery(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
