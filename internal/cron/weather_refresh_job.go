package cron

import (
	"context"
	"fmt"

	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

type forecastRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// WeatherRefreshJobParams configure the forecast refresh job.
type WeatherRefreshJobParams struct {
	Logger  *logger.Logger
	Weather forecastRefresher
}

// NewWeatherRefreshJob builds the job that refreshes cached forecasts for
// every active project with an address.
func NewWeatherRefreshJob(params WeatherRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Weather == nil {
		return nil, fmt.Errorf("weather service required")
	}
	return &weatherRefreshJob{logg: params.Logger, weather: params.Weather}, nil
}

type weatherRefreshJob struct {
	logg    *logger.Logger
	weather forecastRefresher
}

func (j *weatherRefreshJob) Name() string { return "weather-refresh" }

func (j *weatherRefreshJob) Run(ctx context.Context) error {
	// RefreshAll keeps sweeping past per-project failures and reports
	// them combined; a partial sweep still refreshed what it could.
	refreshed, err := j.weather.RefreshAll(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"projects_refreshed": refreshed,
	})
	if err != nil {
		j.logg.Warn(logCtx, "weather refresh finished with failures")
		return fmt.Errorf("weather refresh: %w", err)
	}
	j.logg.Info(logCtx, "weather refresh complete")
	return nil
}
