package stats

import (
	"time"

	"github.com/example/dropd/internal/model"
)

const trendDays = 30

// Summary is a point-in-time analytics snapshot over the whole task list.
type Summary struct {
	TotalTasks        int
	ActiveTasks       int
	CompletedToday    int
	CompletionRate    float64
	AverageStreak     float64
	LongestStreak     int
	CompletedLastWeek int
	ByCategory        map[string]int
	ByPriority        map[string]int
	DueToday          int
	Overdue           int
	Trend             []TrendPoint
}

// TrendPoint counts completions recorded on one calendar day.
type TrendPoint struct {
	Day       time.Time
	Completed int
}

// Summarize computes the dashboard numbers for tasks as of now. The
// completion rate is completions today over active tasks; due-today and
// overdue partition the active set by the now..end-of-day window, so no task
// lands in both buckets.
func Summarize(tasks []model.Task, now time.Time) Summary {
	summary := Summary{
		TotalTasks: len(tasks),
		ByCategory: make(map[string]int),
		ByPriority: make(map[string]int),
	}

	dayStart := startOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -6)
	trendStart := dayStart.AddDate(0, 0, -(trendDays - 1))
	trendCounts := make(map[time.Time]int)

	streakSum := 0
	for _, task := range tasks {
		summary.ByCategory[task.Category]++
		summary.ByPriority[string(task.Priority)]++
		streakSum += task.Streak
		if task.Streak > summary.LongestStreak {
			summary.LongestStreak = task.Streak
		}

		if task.LastCompleted != nil {
			// Stored instants are UTC; bucket them by the caller's day
			// boundaries so today/week/trend agree on what "a day" is.
			done := task.LastCompleted.In(now.Location())
			doneDay := startOfDay(done)
			if !doneDay.Before(dayStart) && doneDay.Before(dayEnd) {
				summary.CompletedToday++
			}
			if !doneDay.Before(weekStart) && doneDay.Before(dayEnd) {
				summary.CompletedLastWeek++
			}
			if !doneDay.Before(trendStart) && doneDay.Before(dayEnd) {
				trendCounts[doneDay]++
			}
		}

		if !task.IsActive {
			continue
		}
		summary.ActiveTasks++
		switch {
		case task.NextDue.Before(now):
			summary.Overdue++
		case task.NextDue.Before(dayEnd):
			summary.DueToday++
		}
	}

	if summary.TotalTasks > 0 {
		summary.AverageStreak = float64(streakSum) / float64(summary.TotalTasks)
	}
	if summary.ActiveTasks > 0 {
		summary.CompletionRate = float64(summary.CompletedToday) / float64(summary.ActiveTasks)
	}

	summary.Trend = make([]TrendPoint, 0, trendDays)
	for day := trendStart; day.Before(dayEnd); day = day.AddDate(0, 0, 1) {
		summary.Trend = append(summary.Trend, TrendPoint{Day: day, Completed: trendCounts[day]})
	}
	return summary
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
