package model

import (
	"errors"
	"testing"
	"time"
)

func validTask() Task {
	return Task{
		ID:       "task-1",
		Name:     "Daily check-in",
		Interval: IntervalDaily,
		Priority: PriorityMedium,
		NextDue:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		IsActive: true,
		Category: "DeFi",
	}
}

func TestTaskValidate(t *testing.T) {
	if err := validTask().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	noName := validTask()
	noName.Name = "  "
	if err := noName.Validate(); err == nil {
		t.Fatal("expected empty name to be rejected")
	}

	badInterval := validTask()
	badInterval.Interval = "fortnightly"
	if err := badInterval.Validate(); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	badPriority := validTask()
	badPriority.Priority = "urgent"
	if err := badPriority.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestCompleteBumpsStreakAndResetsSteps(t *testing.T) {
	task := validTask()
	task.Steps = []Step{
		{ID: "s1", Title: "Claim", IsCompleted: true, Order: 1},
		{ID: "s2", Title: "Verify", IsCompleted: true, Order: 2},
	}
	now := time.Date(2024, 1, 2, 23, 50, 0, 0, time.UTC)

	task.Complete(now)

	if task.Streak != 1 {
		t.Fatalf("expected streak 1, got %d", task.Streak)
	}
	if task.LastCompleted == nil || !task.LastCompleted.Equal(now) {
		t.Fatalf("unexpected last completed: %v", task.LastCompleted)
	}
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if !task.NextDue.Equal(want) {
		t.Fatalf("unexpected next due: %s", task.NextDue.Format(time.RFC3339))
	}
	for _, s := range task.Steps {
		if s.IsCompleted {
			t.Fatalf("step %s not reset", s.ID)
		}
	}
}

func TestStreakNeverDecreasesAndIgnoresLateness(t *testing.T) {
	task := validTask()
	prev := 0
	// Completions wander late by days at a time; the streak only climbs.
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		at = at.AddDate(0, 0, 1+i%3).Add(time.Duration(i) * time.Hour)
		task.Complete(at)
		if task.Streak != prev+1 {
			t.Fatalf("completion %d: streak %d, want %d", i, task.Streak, prev+1)
		}
		prev = task.Streak
	}
}

func TestNormalizeSteps(t *testing.T) {
	steps := []Step{
		{ID: "c", Order: 9},
		{ID: "a", Order: 2},
		{ID: "b", Order: 5},
	}
	out := NormalizeSteps(steps)
	if out[0].ID != "a" || out[1].ID != "b" || out[2].ID != "c" {
		t.Fatalf("unexpected step order: %#v", out)
	}
	for i, s := range out {
		if s.Order != i+1 {
			t.Fatalf("expected contiguous order, got %#v", out)
		}
	}
}
