package updaterequests

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebmorton/schedtrack-backend/pkg/db/models"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// UpdateRequestDTO is the API shape of an update request. Bucket is derived
// at read time.
type UpdateRequestDTO struct {
	ID               uuid.UUID                 `json:"id"`
	ProjectID        uuid.UUID                 `json:"project_id"`
	ProjectNumber    string                    `json:"project_number,omitempty"`
	ProjectName      string                    `json:"project_name,omitempty"`
	WorkItemID       *uuid.UUID                `json:"work_item_id,omitempty"`
	Recipient        string                    `json:"recipient"`
	Subject          string                    `json:"subject"`
	SentAt           time.Time                 `json:"sent_at"`
	ReplyConfirmedAt *time.Time                `json:"reply_confirmed_at,omitempty"`
	Bucket           enums.UpdateRequestBucket `json:"bucket"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// CreateRequest carries a new update request. SentAt defaults to now.
type CreateRequest struct {
	ProjectID  uuid.UUID  `json:"project_id" validate:"required"`
	WorkItemID *uuid.UUID `json:"work_item_id"`
	Recipient  string     `json:"recipient" validate:"required"`
	Subject    string     `json:"subject" validate:"required"`
	SentAt     *time.Time `json:"sent_at"`
}

// UpdateParams patches an update request. Nil fields are left unchanged.
type UpdateParams struct {
	Recipient *string    `json:"recipient"`
	Subject   *string    `json:"subject"`
	SentAt    *time.Time `json:"sent_at"`
}

// ListRequest filters the listing.
type ListRequest struct {
	ProjectID *uuid.UUID                 `json:"project_id"`
	Bucket    *enums.UpdateRequestBucket `json:"bucket"`
}

// ListResponse carries the matching requests plus per-bucket counts over
// the unfiltered bucket dimension.
type ListResponse struct {
	Items   []UpdateRequestDTO                  `json:"items"`
	Buckets map[enums.UpdateRequestBucket]int64 `json:"buckets"`
}

func fromModel(req *models.UpdateRequest, now time.Time) UpdateRequestDTO {
	dto := UpdateRequestDTO{
		ID:               req.ID,
		ProjectID:        req.ProjectID,
		WorkItemID:       req.WorkItemID,
		Recipient:        req.Recipient,
		Subject:          req.Subject,
		SentAt:           req.SentAt,
		ReplyConfirmedAt: req.ReplyConfirmedAt,
		Bucket:           Bucket(req, now),
		CreatedAt:        req.CreatedAt,
	}
	if req.Project != nil {
		dto.ProjectNumber = req.Project.ProjectNumber
		dto.ProjectName = req.Project.Name
	}
	return dto
}
