package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/internal/cron"
	"github.com/calebmorton/schedtrack-backend/internal/projects"
	"github.com/calebmorton/schedtrack-backend/internal/timetracking"
	"github.com/calebmorton/schedtrack-backend/internal/weather"
	"github.com/calebmorton/schedtrack-backend/internal/work"
	"github.com/calebmorton/schedtrack-backend/pkg/config"
	"github.com/calebmorton/schedtrack-backend/pkg/db"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
	"github.com/calebmorton/schedtrack-backend/pkg/metrics"
	"github.com/calebmorton/schedtrack-backend/pkg/migrate"
	"github.com/calebmorton/schedtrack-backend/pkg/openmeteo"
	"github.com/calebmorton/schedtrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	gormDB := dbClient.DB()

	recorder, err := audit.NewRecorder(audit.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	workService, err := work.NewService(work.ServiceParams{
		Repo:            work.NewRepository(gormDB),
		TimeEntryWriter: timetracking.NewRepository(gormDB),
		Recorder:        recorder,
		Tx:              dbClient,
		RetentionDays:   cfg.Work.DeletedRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create work service", err)
		os.Exit(1)
	}

	weatherClient := openmeteo.NewClient(
		cfg.Weather.Timeout,
		openmeteo.WithGeocodeBaseURL(cfg.Weather.GeocodeBaseURL),
		openmeteo.WithForecastBaseURL(cfg.Weather.ForecastBaseURL),
	)
	weatherService, err := weather.NewService(weather.ServiceParams{
		Repo:     weather.NewRepository(gormDB),
		Projects: projects.NewRepository(gormDB),
		Client:   weatherClient,
		Logger:   logg,
		CacheTTL: cfg.Weather.CacheTTL,
		Timezone: cfg.Weather.Timezone,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create weather service", err)
		os.Exit(1)
	}

	purgeJob, err := cron.NewTaskPurgeJob(cron.TaskPurgeJobParams{Logger: logg, Work: workService})
	if err != nil {
		logg.Error(context.Background(), "failed to create task purge job", err)
		os.Exit(1)
	}
	refreshJob, err := cron.NewWeatherRefreshJob(cron.WeatherRefreshJobParams{Logger: logg, Weather: weatherService})
	if err != nil {
		logg.Error(context.Background(), "failed to create weather refresh job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Cron.LockKey), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(purgeJob, refreshJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg.App.Port)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics endpoint stopped unexpectedly", err)
	}
}
