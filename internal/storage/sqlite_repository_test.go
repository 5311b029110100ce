package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dropd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func sampleTask(t *testing.T, id string) Task {
	t.Helper()
	created := parseRFC3339(t, "2024-01-01T09:00:00Z")
	return Task{
		ID:          id,
		Name:        "Daily check-in",
		Description: "Claim the faucet and sign",
		Interval:    "daily",
		Streak:      0,
		NextDue:     parseRFC3339(t, "2024-01-02T09:00:00Z"),
		IsActive:    true,
		Category:    "DeFi",
		Priority:    "medium",
		Color:       "bg-blue-500",
		CreatedAt:   created,
		UpdatedAt:   created,
		Steps: []Step{
			{ID: id + "-s1", TaskID: id, Title: "Open dapp", OrderIdx: 1},
			{ID: id + "-s2", TaskID: id, Title: "Claim", OrderIdx: 2},
		},
	}
}

func TestTaskCRUDWithSteps(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	task := sampleTask(t, "task-1")
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != task.Name || got.Interval != "daily" || !got.IsActive {
		t.Fatalf("unexpected task: %#v", got)
	}
	if len(got.Steps) != 2 || got.Steps[0].OrderIdx != 1 || got.Steps[1].Title != "Claim" {
		t.Fatalf("unexpected steps: %#v", got.Steps)
	}
	if got.NotificationID != nil {
		t.Fatalf("expected nil notification id, got %d", *got.NotificationID)
	}

	nid := int32(1424436592)
	done := parseRFC3339(t, "2024-01-02T23:50:00Z")
	task.Streak = 1
	task.LastCompleted = &done
	task.NextDue = parseRFC3339(t, "2024-01-03T00:00:00Z")
	task.NotificationID = &nid
	task.Steps = task.Steps[:1]
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err = repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task after update: %v", err)
	}
	if got.Streak != 1 || got.LastCompleted == nil || !got.LastCompleted.Equal(done) {
		t.Fatalf("unexpected task after update: %#v", got)
	}
	if got.NotificationID == nil || *got.NotificationID != nid {
		t.Fatalf("unexpected notification id: %v", got.NotificationID)
	}
	if len(got.Steps) != 1 {
		t.Fatalf("expected steps replaced, got %#v", got.Steps)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := repo.GetTask(ctx, task.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteTask(ctx, task.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got: %v", err)
	}
}

func TestListTasksFiltersAndOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := sampleTask(t, "task-a")
	a.NextDue = parseRFC3339(t, "2024-01-05T00:00:00Z")
	b := sampleTask(t, "task-b")
	b.NextDue = parseRFC3339(t, "2024-01-02T00:00:00Z")
	b.Category = "NFT"
	c := sampleTask(t, "task-c")
	c.IsActive = false
	for _, task := range []Task{a, b, c} {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	all, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}

	active, err := repo.ListTasks(ctx, TaskListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[0].ID != "task-b" || active[1].ID != "task-a" {
		t.Fatalf("unexpected active list: %#v", active)
	}

	nft, err := repo.ListTasks(ctx, TaskListFilter{Category: "NFT"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(nft) != 1 || nft[0].ID != "task-b" {
		t.Fatalf("unexpected category list: %#v", nft)
	}

	paged, err := repo.ListTasks(ctx, TaskListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected 1 paged task, got %d", len(paged))
	}
}

func TestListTasksOrdersSubSecondDues(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// A whole-second due and a fractional one inside the same second: the
	// stored text must sort chronologically, fractional digits and all.
	whole := sampleTask(t, "task-whole")
	whole.NextDue = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	frac := sampleTask(t, "task-frac")
	frac.NextDue = time.Date(2024, 1, 2, 9, 0, 0, 500_000_000, time.UTC)
	for _, task := range []Task{frac, whole} {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	got, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "task-whole" || got[1].ID != "task-frac" {
		t.Fatalf("unexpected order: %#v", got)
	}
	if !got[1].NextDue.Equal(frac.NextDue) {
		t.Fatalf("fractional due lost in round trip: %s", got[1].NextDue.Format(time.RFC3339Nano))
	}
}

func TestSubscribeDeliversPutsAndDeletes(t *testing.T) {
	repo := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := repo.Subscribe(ctx)

	task := sampleTask(t, "task-sub")
	if err := repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	change := waitChange(t, changes)
	if change.Type != ChangePut || change.TaskID != "task-sub" || change.Task == nil {
		t.Fatalf("unexpected change: %#v", change)
	}

	if err := repo.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	change = waitChange(t, changes)
	if change.Type != ChangeDelete || change.TaskID != "task-sub" {
		t.Fatalf("unexpected change: %#v", change)
	}

	cancel()
	// Channel closes after unsubscribe; writes after that are not delivered.
	for range changes {
	}
}

func waitChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case change := <-ch:
		return change
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}
