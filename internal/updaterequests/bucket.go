package updaterequests

import (
	"time"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

const (
	followUpAfter   = 24 * time.Hour
	noResponseAfter = 48 * time.Hour
)

// Bucket classifies a request purely from its timestamps. A confirmed reply
// archives the request regardless of age; otherwise the bucket follows the
// elapsed time since sent_at.
func Bucket(req *models.UpdateRequest, now time.Time) enums.UpdateRequestBucket {
	if req.ReplyConfirmedAt != nil {
		return enums.UpdateRequestArchived
	}
	age := now.Sub(req.SentAt)
	switch {
	case age >= noResponseAfter:
		return enums.UpdateRequestNoResponse
	case age >= followUpAfter:
		return enums.UpdateRequestFollowUp
	default:
		return enums.UpdateRequestAwaitingReply
	}
}
