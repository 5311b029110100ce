package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type ChangeType string

const (
	ChangePut    ChangeType = "put"
	ChangeDelete ChangeType = "delete"
)

// Change is one entry of the store's live feed, mirroring the document
// store's snapshot subscription the UI layers consume.
type Change struct {
	Type   ChangeType
	TaskID string
	Task   *Task
}

type Repository interface {
	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	// Subscribe delivers changes until ctx is cancelled. Slow consumers may
	// miss entries; the feed is a refresh hint, not a replication log.
	Subscribe(ctx context.Context) <-chan Change
}
