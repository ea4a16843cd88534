package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/calebmorton/schedtrack-backend/api/routes"
	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/internal/auth"
	"github.com/calebmorton/schedtrack-backend/internal/dashboard"
	"github.com/calebmorton/schedtrack-backend/internal/projects"
	"github.com/calebmorton/schedtrack-backend/internal/timetracking"
	"github.com/calebmorton/schedtrack-backend/internal/updaterequests"
	"github.com/calebmorton/schedtrack-backend/internal/users"
	"github.com/calebmorton/schedtrack-backend/internal/weather"
	"github.com/calebmorton/schedtrack-backend/internal/whiteboard"
	"github.com/calebmorton/schedtrack-backend/internal/work"
	"github.com/calebmorton/schedtrack-backend/pkg/auth/session"
	"github.com/calebmorton/schedtrack-backend/pkg/config"
	"github.com/calebmorton/schedtrack-backend/pkg/db"
	"github.com/calebmorton/schedtrack-backend/pkg/env"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
	"github.com/calebmorton/schedtrack-backend/pkg/migrate"
	"github.com/calebmorton/schedtrack-backend/pkg/openmeteo"
	"github.com/calebmorton/schedtrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessionManager *session.Manager) (routes.Services, error) {
	gormDB := dbClient.DB()

	userRepo := users.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)

	recorder, err := audit.NewRecorder(auditRepo)
	if err != nil {
		return routes.Services{}, err
	}
	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	projectRepo := projects.NewRepository(gormDB)
	projectService, err := projects.NewService(projects.ServiceParams{
		Repo:     projectRepo,
		Recorder: recorder,
	})
	if err != nil {
		return routes.Services{}, err
	}

	workRepo := work.NewRepository(gormDB)
	timeRepo := timetracking.NewRepository(gormDB)
	workService, err := work.NewService(work.ServiceParams{
		Repo:            workRepo,
		TimeEntryWriter: timeRepo,
		Recorder:        recorder,
		Tx:              dbClient,
		RetentionDays:   cfg.Work.DeletedRetentionDays,
	})
	if err != nil {
		return routes.Services{}, err
	}

	timeService, err := timetracking.NewService(timetracking.ServiceParams{
		Repo:      timeRepo,
		WorkItems: workRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo: dashboard.NewRepository(gormDB),
	})
	if err != nil {
		return routes.Services{}, err
	}

	weatherClient := openmeteo.NewClient(
		cfg.Weather.Timeout,
		openmeteo.WithGeocodeBaseURL(cfg.Weather.GeocodeBaseURL),
		openmeteo.WithForecastBaseURL(cfg.Weather.ForecastBaseURL),
	)
	weatherService, err := weather.NewService(weather.ServiceParams{
		Repo:     weather.NewRepository(gormDB),
		Projects: projectRepo,
		Client:   weatherClient,
		Logger:   logg,
		CacheTTL: cfg.Weather.CacheTTL,
		Timezone: cfg.Weather.Timezone,
	})
	if err != nil {
		return routes.Services{}, err
	}

	updateRequestService, err := updaterequests.NewService(updaterequests.ServiceParams{
		Repo:     updaterequests.NewRepository(gormDB),
		Recorder: recorder,
	})
	if err != nil {
		return routes.Services{}, err
	}

	whiteboardService, err := whiteboard.NewService(whiteboard.ServiceParams{
		Repo: whiteboard.NewRepository(gormDB),
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:           authService,
		Users:          userRepo,
		Projects:       projectService,
		Work:           workService,
		TimeTracking:   timeService,
		Dashboard:      dashboardService,
		Weather:        weatherService,
		UpdateRequests: updateRequestService,
		Whiteboards:    whiteboardService,
		Audit:          auditService,
	}, nil
}
