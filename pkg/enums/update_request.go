package enums

import "fmt"

// UpdateRequestBucket is the derived status of a sent update request. It is
// computed from timestamps on read and never stored.
type UpdateRequestBucket string

const (
	UpdateRequestAwaitingReply UpdateRequestBucket = "awaiting_reply"
	UpdateRequestFollowUp      UpdateRequestBucket = "follow_up"
	UpdateRequestNoResponse    UpdateRequestBucket = "no_response"
	UpdateRequestArchived      UpdateRequestBucket = "archived"
)

var validUpdateRequestBuckets = []UpdateRequestBucket{
	UpdateRequestAwaitingReply,
	UpdateRequestFollowUp,
	UpdateRequestNoResponse,
	UpdateRequestArchived,
}

// String implements fmt.Stringer.
func (b UpdateRequestBucket) String() string {
	return string(b)
}

func (b UpdateRequestBucket) IsValid() bool {
	for _, candidate := range validUpdateRequestBuckets {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseUpdateRequestBucket converts raw input into UpdateRequestBucket.
func ParseUpdateRequestBucket(value string) (UpdateRequestBucket, error) {
	for _, candidate := range validUpdateRequestBuckets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid update request bucket %q", value)
}
