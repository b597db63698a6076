package rails

import "time"

// AddBusinessDays returns t advanced by n business days, skipping weekends.
// n == 0 returns the next business day if t falls on a weekend, else t.
func AddBusinessDays(t time.Time, n int) time.Time {
	for isWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	for i := 0; i < n; i++ {
		t = t.AddDate(0, 0, 1)
		for isWeekend(t) {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
