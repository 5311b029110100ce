package model

import "time"

// ClockTime is a wall-clock time of day picked by the user for a due date.
type ClockTime struct {
	Hour   int
	Minute int
}

// NextDueAfterCompletion anchors the next due instant strictly to the
// completion instant, never to the current wall clock, so a late completion
// does not let the schedule creep. Non-hourly intervals land at start of day.
func NextDueAfterCompletion(completedAt time.Time, interval Interval) time.Time {
	base := completedAt
	if interval != IntervalHourly {
		base = startOfDay(base)
	}
	return advance(base, interval)
}

// NextDueForNewTask computes the first due instant for a task that has never
// been completed. With a picked clock time the time of day is preserved and
// only the date advances; without one, non-hourly intervals land at start of
// day and hourly lands at the top of the next hour.
//
// This intentionally anchors to the picked due time rather than to the
// creation instant, which differs from the post-completion path; both
// behaviors are kept as observed and callers choose between them.
func NextDueForNewTask(now time.Time, interval Interval, clock *ClockTime) time.Time {
	if interval == IntervalHourly {
		y, m, d := now.Date()
		return time.Date(y, m, d, now.Hour(), 0, 0, 0, now.Location()).Add(time.Hour)
	}
	base := startOfDay(now)
	if clock != nil {
		y, m, d := now.Date()
		base = time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, now.Location())
	}
	return advance(base, interval)
}

func advance(base time.Time, interval Interval) time.Time {
	switch interval {
	case IntervalHourly:
		return base.Add(time.Hour)
	case IntervalWeekly:
		return base.AddDate(0, 0, 7)
	case IntervalBiweekly:
		return base.AddDate(0, 0, 14)
	default:
		return base.AddDate(0, 0, 1)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
