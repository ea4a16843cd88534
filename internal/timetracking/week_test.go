package timetracking

import (
	"testing"
	"time"
)

func TestWeekRange(t *testing.T) {
	cases := []struct {
		name      string
		anchor    time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "wednesday",
			anchor:    time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC),
			wantStart: "2026-03-02",
			wantEnd:   "2026-03-08",
		},
		{
			name:      "monday is its own start",
			anchor:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			wantStart: "2026-03-02",
			wantEnd:   "2026-03-08",
		},
		{
			name:      "sunday belongs to the ending week",
			anchor:    time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			wantStart: "2026-03-02",
			wantEnd:   "2026-03-08",
		},
		{
			name:      "year boundary",
			anchor:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			wantStart: "2025-12-29",
			wantEnd:   "2026-01-04",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := WeekRange(tc.anchor)
			if got := start.Format("2006-01-02"); got != tc.wantStart {
				t.Errorf("start = %s, want %s", got, tc.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tc.wantEnd {
				t.Errorf("end = %s, want %s", got, tc.wantEnd)
			}
		})
	}
}
