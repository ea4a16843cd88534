package timetracking

import "time"

// WeekRange returns the Monday..Sunday span containing the anchor date.
// Both bounds are dates at midnight in the anchor's location; End is the
// Sunday itself, not an exclusive bound.
func WeekRange(anchor time.Time) (start, end time.Time) {
	anchor = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	weekday := int(anchor.Weekday())
	// time.Sunday is 0; shift so Monday starts the week.
	if weekday == 0 {
		weekday = 7
	}
	start = anchor.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 6)
	return start, end
}
