package updaterequests

import (
	"testing"
	"time"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

func TestBucketBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		age  time.Duration
		want enums.UpdateRequestBucket
	}{
		{"just sent", 0, enums.UpdateRequestAwaitingReply},
		{"under a day", 23*time.Hour + 59*time.Minute, enums.UpdateRequestAwaitingReply},
		{"exactly a day", 24 * time.Hour, enums.UpdateRequestFollowUp},
		{"under two days", 47 * time.Hour, enums.UpdateRequestFollowUp},
		{"exactly two days", 48 * time.Hour, enums.UpdateRequestNoResponse},
		{"long overdue", 30 * 24 * time.Hour, enums.UpdateRequestNoResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &models.UpdateRequest{SentAt: now.Add(-tc.age)}
			if got := Bucket(req, now); got != tc.want {
				t.Fatalf("bucket at age %s = %s, want %s", tc.age, got, tc.want)
			}
		})
	}
}

func TestBucketConfirmedReplyArchivesRegardlessOfAge(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	confirmed := now.Add(-time.Hour)

	req := &models.UpdateRequest{
		SentAt:           now.Add(-100 * 24 * time.Hour),
		ReplyConfirmedAt: &confirmed,
	}
	if got := Bucket(req, now); got != enums.UpdateRequestArchived {
		t.Fatalf("bucket = %s, want archived", got)
	}
}
