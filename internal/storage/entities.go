package storage

import "time"

type Task struct {
	ID             string
	Name           string
	Description    string
	Interval       string
	Streak         int
	LastCompleted  *time.Time
	NextDue        time.Time
	IsActive       bool
	Category       string
	Priority       string
	Color          string
	NotificationID *int32
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Steps          []Step
}

type Step struct {
	ID          string
	TaskID      string
	Title       string
	Description string
	IsCompleted bool
	OrderIdx    int
}

type TaskListFilter struct {
	ActiveOnly bool
	Category   string
	Limit      int
	Offset     int
}
