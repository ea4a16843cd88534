package enums

import "fmt"

// WorkCode maps to the optional work_code column on time_entries.
type WorkCode string

const (
	WorkCodeScheduleUpdate   WorkCode = "schedule_update"
	WorkCodeBaselineUpdate   WorkCode = "baseline_update"
	WorkCodeScheduleAnalysis WorkCode = "schedule_analysis"
)

var validWorkCodes = []WorkCode{
	WorkCodeScheduleUpdate,
	WorkCodeBaselineUpdate,
	WorkCodeScheduleAnalysis,
}

// String implements fmt.Stringer.
func (w WorkCode) String() string {
	return string(w)
}

// IsValid reports whether the value matches a known work code.
func (w WorkCode) IsValid() bool {
	for _, candidate := range validWorkCodes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorkCode converts raw input into WorkCode.
func ParseWorkCode(value string) (WorkCode, error) {
	for _, candidate := range validWorkCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid work code %q", value)
}
