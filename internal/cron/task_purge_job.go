package cron

import (
	"context"
	"fmt"

	"github.com/calebmorton/schedtrack-backend/internal/work"
	"github.com/calebmorton/schedtrack-backend/pkg/logger"
)

type taskPurger interface {
	PurgeExpired(ctx context.Context, dryRun bool) (*work.PurgeResult, error)
}

// TaskPurgeJobParams configure the deleted-task purge job.
type TaskPurgeJobParams struct {
	Logger *logger.Logger
	Work   taskPurger
}

// NewTaskPurgeJob builds the job that permanently removes soft-deleted
// work items past their retention window.
func NewTaskPurgeJob(params TaskPurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Work == nil {
		return nil, fmt.Errorf("work service required")
	}
	return &taskPurgeJob{logg: params.Logger, work: params.Work}, nil
}

type taskPurgeJob struct {
	logg *logger.Logger
	work taskPurger
}

func (j *taskPurgeJob) Name() string { return "task-purge" }

func (j *taskPurgeJob) Run(ctx context.Context) error {
	result, err := j.work.PurgeExpired(ctx, false)
	if err != nil {
		return fmt.Errorf("task purge: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"rows_purged": result.Count,
	})
	j.logg.Info(logCtx, "task purge complete")
	return nil
}
