package work

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

func setupWorkTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:work_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	projects := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  project_number TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  address_line1 TEXT,
  address_line2 TEXT,
  city TEXT,
  state TEXT,
  zip_code TEXT,
  country TEXT NOT NULL DEFAULT 'US',
  client TEXT NOT NULL,
  pm TEXT NOT NULL,
  project_manager_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	workItems := `
CREATE TABLE IF NOT EXISTS work_items (
  id TEXT PRIMARY KEY,
  project_id TEXT,
  title TEXT NOT NULL,
  work_type TEXT NOT NULL DEFAULT 'schedule_update',
  work_type_other TEXT,
  priority TEXT NOT NULL DEFAULT 'medium',
  status TEXT NOT NULL DEFAULT 'open',
  due_date DATE,
  meeting_at DATETIME,
  assigned_to_id TEXT,
  requested_by TEXT,
  notes TEXT,
  created_by_id TEXT,
  updated_by_id TEXT,
  deleted_at DATETIME,
  deleted_by_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{users, projects, workItems} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedWorkItem(t *testing.T, db *gorm.DB, mutate func(*models.WorkItem)) *models.WorkItem {
	t.Helper()

	item := &models.WorkItem{
		ID:       uuid.New(),
		Title:    "Review baseline",
		WorkType: enums.WorkTypeBaselineReview,
		Priority: enums.PriorityMedium,
		Status:   enums.WorkItemStatusOpen,
	}
	if mutate != nil {
		mutate(item)
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestWorkRepoFindByIDExcludesDeleted(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	live := seedWorkItem(t, db, nil)
	deletedAt := time.Now().UTC().Add(-time.Hour)
	tombstoned := seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Old review"
		w.DeletedAt = &deletedAt
	})

	found, err := repo.FindByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.ID, found.ID)

	_, err = repo.FindByID(ctx, tombstoned.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	recovered, err := repo.FindDeletedByID(ctx, tombstoned.ID)
	require.NoError(t, err)
	assert.Equal(t, tombstoned.ID, recovered.ID)

	_, err = repo.FindDeletedByID(ctx, live.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWorkRepoListFilters(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	assignee := uuid.New()
	seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Status = enums.WorkItemStatusInProgress
		w.AssignedToID = &assignee
	})
	seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Claim review"
		w.Status = enums.WorkItemStatusOpen
	})
	deletedAt := time.Now().UTC()
	seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Hidden"
		w.Status = enums.WorkItemStatusInProgress
		w.DeletedAt = &deletedAt
	})

	inProgress := enums.WorkItemStatusInProgress
	items, next, err := repo.List(ctx, ListRequest{Status: &inProgress})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, next)
	assert.Equal(t, &assignee, items[0].AssignedToID)

	items, _, err = repo.List(ctx, ListRequest{AssignedToID: &assignee})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, _, err = repo.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2, "deleted rows must not appear in default listings")
}

func TestWorkRepoListCursorPagination(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		seedWorkItem(t, db, func(w *models.WorkItem) {
			w.Title = fmt.Sprintf("Task %d", i)
			w.CreatedAt = created
			w.UpdatedAt = created
		})
	}

	first, next, err := repo.List(ctx, ListRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	assert.Equal(t, "Task 4", first[0].Title)
	assert.Equal(t, "Task 3", first[1].Title)

	second, _, err := repo.List(ctx, ListRequest{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "Task 2", second[0].Title)
	assert.Equal(t, "Task 1", second[1].Title)
}

func TestWorkRepoPurgeFlow(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-31 * 24 * time.Hour)
	recent := time.Now().UTC().Add(-2 * 24 * time.Hour)
	expired := seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Expired"
		w.DeletedAt = &old
	})
	seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Recent tombstone"
		w.DeletedAt = &recent
	})
	seedWorkItem(t, db, nil)

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	candidates, err := repo.ListDeletedBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, expired.ID, candidates[0].ID)

	removed, err := repo.HardDelete(ctx, []uuid.UUID{expired.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := repo.ListDeleted(ctx, cutoff)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "Recent tombstone", remaining[0].Title)
}

func TestWorkRepoListDeletedHidesExpiredTombstones(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	expired := time.Now().UTC().Add(-31 * 24 * time.Hour)
	seedWorkItem(t, db, func(w *models.WorkItem) {
		w.Title = "Past retention"
		w.DeletedAt = &expired
	})

	since := time.Now().UTC().Add(-30 * 24 * time.Hour)
	listed, err := repo.ListDeleted(ctx, since)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestWorkRepoHardDeleteSkipsLiveRows(t *testing.T) {
	db := setupWorkTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	live := seedWorkItem(t, db, nil)

	removed, err := repo.HardDelete(ctx, []uuid.UUID{live.ID})
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = repo.FindByID(ctx, live.ID)
	assert.NoError(t, err)
}
