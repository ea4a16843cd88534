package updaterequests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebmorton/schedtrack-backend/internal/audit"
	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

func TestCreateDefaultsSentAtToNow(t *testing.T) {
	env := newRequestEnv(t)

	dto, err := env.svc.Create(context.Background(), env.scheduler, CreateRequest{
		ProjectID: uuid.New(),
		Recipient: "  sub@example.com ",
		Subject:   "March lookahead",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.SentAt.Equal(env.clock.now) {
		t.Fatalf("sent_at = %v, want %v", dto.SentAt, env.clock.now)
	}
	if dto.Recipient != "sub@example.com" {
		t.Fatalf("recipient not trimmed: %q", dto.Recipient)
	}
	if dto.Bucket != enums.UpdateRequestAwaitingReply {
		t.Fatalf("bucket = %s, want awaiting_reply", dto.Bucket)
	}
}

func TestCreateRequiresRecipientAndSubject(t *testing.T) {
	env := newRequestEnv(t)

	_, err := env.svc.Create(context.Background(), env.scheduler, CreateRequest{
		ProjectID: uuid.New(),
		Subject:   "x",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), env.scheduler, CreateRequest{
		ProjectID: uuid.New(),
		Recipient: "sub@example.com",
		Subject:   "   ",
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmReplyArchivesOnce(t *testing.T) {
	env := newRequestEnv(t)
	req := env.seedRequest(env.clock.now.Add(-30 * time.Hour))

	dto, err := env.svc.ConfirmReply(context.Background(), env.scheduler, req.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if dto.Bucket != enums.UpdateRequestArchived {
		t.Fatalf("bucket = %s, want archived", dto.Bucket)
	}
	if dto.ReplyConfirmedAt == nil || !dto.ReplyConfirmedAt.Equal(env.clock.now) {
		t.Fatalf("reply_confirmed_at = %v", dto.ReplyConfirmedAt)
	}

	_, err = env.svc.ConfirmReply(context.Background(), env.scheduler, req.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on double confirm, got %v", err)
	}
}

func TestListBucketsAndFilter(t *testing.T) {
	env := newRequestEnv(t)
	env.seedRequest(env.clock.now.Add(-1 * time.Hour))  // awaiting_reply
	env.seedRequest(env.clock.now.Add(-30 * time.Hour)) // follow_up
	env.seedRequest(env.clock.now.Add(-72 * time.Hour)) // no_response
	confirmed := env.seedRequest(env.clock.now.Add(-10 * time.Hour))
	at := env.clock.now.Add(-time.Hour)
	confirmed.ReplyConfirmedAt = &at

	bucket := enums.UpdateRequestFollowUp
	resp, err := env.svc.List(context.Background(), env.scheduler, ListRequest{Bucket: &bucket})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(resp.Items) != 1 {
		t.Fatalf("filtered items = %d, want 1", len(resp.Items))
	}
	// Bucket counts ignore the bucket filter.
	want := map[enums.UpdateRequestBucket]int64{
		enums.UpdateRequestAwaitingReply: 1,
		enums.UpdateRequestFollowUp:      1,
		enums.UpdateRequestNoResponse:    1,
		enums.UpdateRequestArchived:      1,
	}
	for bucket, count := range want {
		if resp.Buckets[bucket] != count {
			t.Fatalf("bucket %s count = %d, want %d", bucket, resp.Buckets[bucket], count)
		}
	}
}

func TestOperationsRequireRole(t *testing.T) {
	env := newRequestEnv(t)
	nobody := Actor{UserID: uuid.New()}

	_, err := env.svc.List(context.Background(), nobody, ListRequest{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

type requestEnv struct {
	svc       Service
	repo      *stubRequestRepo
	clock     *fakeClock
	scheduler Actor
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newRequestEnv(t *testing.T) *requestEnv {
	t.Helper()

	repo := &stubRequestRepo{requests: map[uuid.UUID]*models.UpdateRequest{}}
	recorder, err := audit.NewRecorder(&stubAuditRepo{})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	clock := &fakeClock{now: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{Repo: repo, Recorder: recorder, Now: clock.Now})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &requestEnv{
		svc:       svc,
		repo:      repo,
		clock:     clock,
		scheduler: Actor{UserID: uuid.New(), Role: enums.RoleScheduler},
	}
}

func (e *requestEnv) seedRequest(sentAt time.Time) *models.UpdateRequest {
	req := &models.UpdateRequest{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Recipient: "sub@example.com",
		Subject:   "Schedule update",
		SentAt:    sentAt,
	}
	e.repo.requests[req.ID] = req
	return req
}

type stubRequestRepo struct {
	requests map[uuid.UUID]*models.UpdateRequest
}

func (s *stubRequestRepo) Create(_ context.Context, req *models.UpdateRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	s.requests[req.ID] = req
	return nil
}

func (s *stubRequestRepo) Save(_ context.Context, req *models.UpdateRequest) error {
	s.requests[req.ID] = req
	return nil
}

func (s *stubRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.requests, id)
	return nil
}

func (s *stubRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*models.UpdateRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (s *stubRequestRepo) List(_ context.Context, projectID *uuid.UUID) ([]models.UpdateRequest, error) {
	var out []models.UpdateRequest
	for _, req := range s.requests {
		if projectID != nil && req.ProjectID != *projectID {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

type stubAuditRepo struct {
	entries []models.AuditLog
}

func (s *stubAuditRepo) WithTx(tx *gorm.DB) audit.Repository { return s }

func (s *stubAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) ListRecent(ctx context.Context, params audit.ListQuery) ([]models.AuditLog, error) {
	return s.entries, nil
}
