package enums

import "fmt"

// WorkItemStatus maps to the status column on work_items.
type WorkItemStatus string

const (
	WorkItemStatusOpen       WorkItemStatus = "open"
	WorkItemStatusInProgress WorkItemStatus = "in_progress"
	WorkItemStatusDone       WorkItemStatus = "done"
)

var validWorkItemStatuses = []WorkItemStatus{
	WorkItemStatusOpen,
	WorkItemStatusInProgress,
	WorkItemStatusDone,
}

// String implements fmt.Stringer.
func (s WorkItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known work item status.
func (s WorkItemStatus) IsValid() bool {
	for _, candidate := range validWorkItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWorkItemStatus converts raw input into WorkItemStatus.
func ParseWorkItemStatus(value string) (WorkItemStatus, error) {
	for _, candidate := range validWorkItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid work item status %q", value)
}

// Priority maps to the priority column on work_items.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// IsValid reports whether the value matches a known priority.
func (p Priority) IsValid() bool {
	for _, candidate := range validPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriority converts raw input into Priority.
func ParsePriority(value string) (Priority, error) {
	for _, candidate := range validPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q", value)
}

// WorkType maps to the work_type column on work_items.
type WorkType string

const (
	WorkTypeBaselineReview WorkType = "baseline_schedule_review"
	WorkTypeUpdate         WorkType = "schedule_update"
	WorkTypeUpdateReview   WorkType = "schedule_update_review"
	WorkTypeClaimAnalysis  WorkType = "claim_analysis"
	WorkTypeOther          WorkType = "other"
)

var validWorkTypes = []WorkType{
	WorkTypeBaselineReview,
	WorkTypeUpdate,
	WorkTypeUpdateReview,
	WorkTypeClaimAnalysis,
	WorkTypeOther,
}

var workTypeLabels = map[WorkType]string{
	WorkTypeBaselineReview: "Baseline schedule review",
	WorkTypeUpdate:         "Schedule update",
	WorkTypeUpdateReview:   "Schedule update review",
	WorkTypeClaimAnalysis:  "Claim analysis",
	WorkTypeOther:          "Other",
}

// String implements fmt.Stringer.
func (w WorkType) String() string {
	return string(w)
}

// Label returns the human-readable display name for the work type.
func (w WorkType) Label() string {
	if label, ok := workTypeLabels[w]; ok {
		return label
	}
	return string(w)
}

// IsValid reports whether the value matches a known work type.
func (w WorkType) IsValid() bool {
	for _, candidate := range validWorkTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorkType converts raw input into WorkType.
func ParseWorkType(value string) (WorkType, error) {
	for _, candidate := range validWorkTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid work type %q", value)
}
