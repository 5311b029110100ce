package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidInterval = errors.New("model: invalid task interval")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Interval string

const (
	IntervalHourly   Interval = "hourly"
	IntervalDaily    Interval = "daily"
	IntervalWeekly   Interval = "weekly"
	IntervalBiweekly Interval = "biweekly"
)

func (i Interval) IsValid() bool {
	switch i {
	case IntervalHourly, IntervalDaily, IntervalWeekly, IntervalBiweekly:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Step struct {
	ID          string
	Title       string
	Description string
	IsCompleted bool
	Order       int
}

// Task is one recurring airdrop chore. NextDue is always set; NotificationID
// mirrors the platform notification currently scheduled for it, if any.
type Task struct {
	ID             string
	Name           string
	Description    string
	Interval       Interval
	Steps          []Step
	Streak         int
	LastCompleted  *time.Time
	NextDue        time.Time
	IsActive       bool
	Category       string
	Priority       Priority
	Color          string
	NotificationID *int32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: task name is required")
	}
	if !t.Interval.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, t.Interval)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.Streak < 0 {
		return errors.New("model: task streak must not be negative")
	}
	if t.NextDue.IsZero() {
		return errors.New("model: task next_due is required")
	}
	return nil
}

// Complete records one completion: the streak always advances by exactly one
// (lateness carries no penalty), the next due date is re-anchored to this
// completion, and every step resets for the next cycle.
func (t *Task) Complete(now time.Time) {
	done := now
	t.LastCompleted = &done
	t.NextDue = NextDueAfterCompletion(now, t.Interval)
	t.Streak++
	for i := range t.Steps {
		t.Steps[i].IsCompleted = false
	}
	t.UpdatedAt = now
}

// NormalizeSteps sorts steps by their user-assigned order and rewrites Order
// into a contiguous 1-based sequence.
func NormalizeSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}
