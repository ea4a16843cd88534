package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
	"github.com/calebmorton/schedtrack-backend/pkg/openmeteo"
)

var highRiskPayload = json.RawMessage(`{"daily":{
	"time":["2026-03-02"],
	"precipitation_probability_max":[80]
}}`)

var lowRiskPayload = json.RawMessage(`{"daily":{
	"time":["2026-03-02"],
	"precipitation_probability_max":[12]
}}`)

func TestProjectWeatherNoAddress(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(func(p *models.Project) {
		p.City = ""
		p.State = ""
	})

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if dto.Risk != enums.RiskLevelUnknown {
		t.Fatalf("risk = %s, want UNKNOWN", dto.Risk)
	}
	if dto.HasLocation {
		t.Fatalf("expected no location")
	}
	if env.client.geocodeCalls != 0 || env.client.forecastCalls != 0 {
		t.Fatalf("expected no upstream calls")
	}
}

func TestProjectWeatherFirstFetchGeocodesAndCaches(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if dto.Risk != enums.RiskLevelHigh {
		t.Fatalf("risk = %s, want HIGH", dto.Risk)
	}
	if dto.MaxPrecipProb == nil || *dto.MaxPrecipProb != 80 {
		t.Fatalf("max prob = %v, want 80", dto.MaxPrecipProb)
	}
	if env.client.geocodeQueries[0] != "Fresno, CA" {
		t.Fatalf("geocode query = %q", env.client.geocodeQueries[0])
	}

	loc, err := env.repo.FindLocation(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("location not stored: %v", err)
	}
	if loc.Lat != 36.75 || loc.Lon != -119.77 {
		t.Fatalf("stored coords %v,%v", loc.Lat, loc.Lon)
	}

	cache, err := env.repo.FindCache(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("cache not stored: %v", err)
	}
	if string(cache.ForecastJSON) != string(highRiskPayload) {
		t.Fatalf("cache payload mismatch")
	}
}

func TestProjectWeatherServesFreshCacheWithoutFetch(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.seedCache(project.ID, lowRiskPayload, env.clock.now.Add(-5*time.Minute))

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if dto.Risk != enums.RiskLevelLow {
		t.Fatalf("risk = %s, want LOW", dto.Risk)
	}
	if dto.Stale {
		t.Fatalf("fresh cache should not be stale")
	}
	if env.client.forecastCalls != 0 {
		t.Fatalf("fresh cache must not trigger a fetch")
	}
}

func TestProjectWeatherForceBypassesFreshCache(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.seedLocation(project.ID)
	env.seedCache(project.ID, lowRiskPayload, env.clock.now.Add(-5*time.Minute))

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, true)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if env.client.forecastCalls != 1 {
		t.Fatalf("force should refetch, calls = %d", env.client.forecastCalls)
	}
	if dto.Risk != enums.RiskLevelHigh {
		t.Fatalf("risk = %s, want HIGH from refetched payload", dto.Risk)
	}
}

func TestProjectWeatherServesStaleOnFetchFailure(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.seedLocation(project.ID)
	fetchedAt := env.clock.now.Add(-2 * time.Hour)
	env.seedCache(project.ID, lowRiskPayload, fetchedAt)
	env.client.forecastErr = pkgerrors.New(pkgerrors.CodeDependency, "forecast request failed")

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("expected stale payload, got error: %v", err)
	}
	if !dto.Stale {
		t.Fatalf("expected stale flag")
	}
	if dto.Risk != enums.RiskLevelLow {
		t.Fatalf("risk = %s, want LOW from stale payload", dto.Risk)
	}
	if dto.FetchedAt == nil || !dto.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("fetched_at = %v, want %v", dto.FetchedAt, fetchedAt)
	}

	// The failed refresh must not clobber the cached payload.
	cache, err := env.repo.FindCache(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("cache lookup: %v", err)
	}
	if string(cache.ForecastJSON) != string(lowRiskPayload) {
		t.Fatalf("cache was overwritten by a failed fetch")
	}
}

func TestProjectWeatherFetchFailureWithoutCacheDegrades(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.seedLocation(project.ID)
	env.client.forecastErr = pkgerrors.New(pkgerrors.CodeDependency, "forecast request failed")

	// An upstream failure is never surfaced to the caller.
	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("expected degraded read, got error: %v", err)
	}
	if dto.Risk != enums.RiskLevelUnknown {
		t.Fatalf("risk = %s, want UNKNOWN", dto.Risk)
	}
}

func TestProjectWeatherGeocodeRetriesFullStateName(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.client.geocodeByQuery = map[string]*openmeteo.Location{
		"Fresno, California": {Latitude: 36.75, Longitude: -119.77},
	}

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if dto.Risk != enums.RiskLevelHigh {
		t.Fatalf("risk = %s, want HIGH", dto.Risk)
	}
	want := []string{"Fresno, CA", "Fresno, California"}
	if len(env.client.geocodeQueries) != 2 ||
		env.client.geocodeQueries[0] != want[0] ||
		env.client.geocodeQueries[1] != want[1] {
		t.Fatalf("geocode queries = %v, want %v", env.client.geocodeQueries, want)
	}
}

func TestProjectWeatherUnresolvableAddress(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)
	env.client.geocodeByQuery = map[string]*openmeteo.Location{}

	dto, err := env.svc.ProjectWeather(context.Background(), env.manager, project.ID, false)
	if err != nil {
		t.Fatalf("project weather: %v", err)
	}
	if dto.Risk != enums.RiskLevelUnknown {
		t.Fatalf("risk = %s, want UNKNOWN", dto.Risk)
	}
}

func TestProjectWeatherUnknownProject(t *testing.T) {
	env := newWeatherEnv(t)

	_, err := env.svc.ProjectWeather(context.Background(), env.manager, uuid.New(), false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProjectWeatherRequiresRole(t *testing.T) {
	env := newWeatherEnv(t)
	project := env.seedProject(nil)

	_, err := env.svc.ProjectWeather(context.Background(), Actor{UserID: uuid.New()}, project.ID, false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRefreshAllSweepsAddressedProjects(t *testing.T) {
	env := newWeatherEnv(t)
	first := env.seedProject(nil)
	second := env.seedProject(func(p *models.Project) {
		p.ProjectNumber = "24-002"
		p.City = "Clovis"
	})
	env.client.geocodeByQuery = map[string]*openmeteo.Location{
		"Fresno, CA": {Latitude: 36.75, Longitude: -119.77},
		"Clovis, CA": {Latitude: 36.83, Longitude: -119.70},
	}

	count, err := env.svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("refresh all: %v", err)
	}
	if count != 2 {
		t.Fatalf("refreshed = %d, want 2", count)
	}
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		if _, err := env.repo.FindCache(context.Background(), id); err != nil {
			t.Fatalf("cache missing for %s: %v", id, err)
		}
	}
}

func TestTableServesCacheWithoutFetching(t *testing.T) {
	env := newWeatherEnv(t)
	fresh := env.seedProject(nil)
	stale := env.seedProject(func(p *models.Project) {
		p.ProjectNumber = "24-002"
		p.City = "Clovis"
	})
	uncached := env.seedProject(func(p *models.Project) {
		p.ProjectNumber = "24-003"
		p.City = "Madera"
	})
	env.seedCache(fresh.ID, highRiskPayload, env.clock.now.Add(-5*time.Minute))
	env.seedCache(stale.ID, lowRiskPayload, env.clock.now.Add(-2*time.Hour))

	rows, err := env.svc.Table(context.Background(), env.manager)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if env.client.geocodeCalls != 0 || env.client.forecastCalls != 0 {
		t.Fatalf("table hit upstream: geocode=%d forecast=%d", env.client.geocodeCalls, env.client.forecastCalls)
	}

	byProject := map[uuid.UUID]ProjectWeatherDTO{}
	for _, row := range rows {
		byProject[row.ProjectID] = row
	}
	if got := byProject[fresh.ID]; got.Risk != enums.RiskLevelHigh || got.Stale {
		t.Fatalf("fresh row = %+v", got)
	}
	if got := byProject[stale.ID]; !got.Stale {
		t.Fatalf("expired cache not marked stale: %+v", got)
	}
	if got := byProject[uncached.ID]; got.Risk != enums.RiskLevelUnknown || !got.HasLocation {
		t.Fatalf("uncached row = %+v", got)
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type stubProjects struct {
	byID map[uuid.UUID]*models.Project
}

func (s *stubProjects) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (s *stubProjects) ListWithAddress(_ context.Context) ([]models.Project, error) {
	var out []models.Project
	for _, project := range s.byID {
		if project.HasAddress() {
			out = append(out, *project)
		}
	}
	return out, nil
}

type stubWeatherRepo struct {
	locations map[uuid.UUID]*models.ProjectWeatherLocation
	caches    map[uuid.UUID]*models.ProjectWeatherCache
}

func (s *stubWeatherRepo) FindLocation(_ context.Context, projectID uuid.UUID) (*models.ProjectWeatherLocation, error) {
	location, ok := s.locations[projectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return location, nil
}

func (s *stubWeatherRepo) UpsertLocation(_ context.Context, location *models.ProjectWeatherLocation) error {
	s.locations[location.ProjectID] = location
	return nil
}

func (s *stubWeatherRepo) FindCache(_ context.Context, projectID uuid.UUID) (*models.ProjectWeatherCache, error) {
	cache, ok := s.caches[projectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cache, nil
}

func (s *stubWeatherRepo) UpsertCache(_ context.Context, cache *models.ProjectWeatherCache) error {
	s.caches[cache.ProjectID] = cache
	return nil
}

type stubForecaster struct {
	// geocodeByQuery nil means every query matches the default coords.
	geocodeByQuery map[string]*openmeteo.Location
	geocodeQueries []string
	geocodeCalls   int
	forecastCalls  int
	forecastErr    error
	payload        json.RawMessage
}

func (s *stubForecaster) Geocode(_ context.Context, query string) (*openmeteo.Location, error) {
	s.geocodeCalls++
	s.geocodeQueries = append(s.geocodeQueries, query)
	if s.geocodeByQuery == nil {
		return &openmeteo.Location{Latitude: 36.75, Longitude: -119.77}, nil
	}
	return s.geocodeByQuery[query], nil
}

func (s *stubForecaster) DailyForecast(_ context.Context, _, _ float64, _ string) (*openmeteo.Forecast, error) {
	s.forecastCalls++
	if s.forecastErr != nil {
		return nil, s.forecastErr
	}
	return &openmeteo.Forecast{Raw: s.payload}, nil
}

type weatherEnv struct {
	svc      Service
	repo     *stubWeatherRepo
	projects *stubProjects
	client   *stubForecaster
	clock    *fakeClock
	manager  Actor
}

func newWeatherEnv(t *testing.T) *weatherEnv {
	t.Helper()

	env := &weatherEnv{
		repo: &stubWeatherRepo{
			locations: map[uuid.UUID]*models.ProjectWeatherLocation{},
			caches:    map[uuid.UUID]*models.ProjectWeatherCache{},
		},
		projects: &stubProjects{byID: map[uuid.UUID]*models.Project{}},
		client:   &stubForecaster{payload: highRiskPayload},
		clock:    &fakeClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)},
		manager:  Actor{UserID: uuid.New(), Role: enums.RoleManager},
	}

	svc, err := NewService(ServiceParams{
		Repo:     env.repo,
		Projects: env.projects,
		Client:   env.client,
		CacheTTL: 15 * time.Minute,
		Timezone: "America/Los_Angeles",
		Now:      env.clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	env.svc = svc
	return env
}

func (e *weatherEnv) seedProject(mutate func(*models.Project)) *models.Project {
	project := &models.Project{
		ID:            uuid.New(),
		ProjectNumber: fmt.Sprintf("24-%03d", len(e.projects.byID)+1),
		Name:          "Riverside",
		City:          "Fresno",
		State:         "CA",
	}
	if mutate != nil {
		mutate(project)
	}
	e.projects.byID[project.ID] = project
	return project
}

func (e *weatherEnv) seedLocation(projectID uuid.UUID) {
	e.repo.locations[projectID] = &models.ProjectWeatherLocation{
		ProjectID: projectID,
		Lat:       36.75,
		Lon:       -119.77,
	}
}

func (e *weatherEnv) seedCache(projectID uuid.UUID, payload json.RawMessage, fetchedAt time.Time) {
	e.repo.caches[projectID] = &models.ProjectWeatherCache{
		ProjectID:    projectID,
		ForecastJSON: payload,
		FetchedAt:    fetchedAt,
	}
}
