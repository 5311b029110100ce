package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/dropd/internal/export"
	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/settings"
	"github.com/example/dropd/internal/stats"
	"github.com/example/dropd/internal/storage"
)

var (
	ErrTaskNotFound = errors.New("service: task not found")
	ErrInvalidInput = errors.New("service: invalid input")
)

// TaskService orchestrates the task lifecycle: persistence through the
// repository, due-date recurrence, and notification scheduling. Store writes
// and notification side effects are deliberately non-transactional; a failed
// notification never blocks persistence.
type TaskService struct {
	repo     storage.Repository
	notifier *notify.Scheduler
	cfgStore *settings.Store
	log      zerolog.Logger

	mu  sync.Mutex
	cfg settings.Settings

	now   func() time.Time
	newID func() string
}

func New(repo storage.Repository, notifier *notify.Scheduler, cfgStore *settings.Store, cfg settings.Settings, log zerolog.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		notifier: notifier,
		cfgStore: cfgStore,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

type StepInput struct {
	Title       string
	Description string
}

type CreateInput struct {
	Name        string
	Description string
	Interval    model.Interval
	Steps       []StepInput
	Category    string
	Priority    model.Priority
	Color       string
	DueClock    *model.ClockTime
}

// Create stores a new task with a fresh id and its first due instant, then
// schedules its reminder.
func (s *TaskService) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	now := s.now()
	task := model.Task{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Interval:    in.Interval,
		Streak:      0,
		NextDue:     model.NextDueForNewTask(now, in.Interval, in.DueClock),
		IsActive:    true,
		Category:    in.Category,
		Priority:    in.Priority,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, step := range in.Steps {
		task.Steps = append(task.Steps, model.Step{
			ID:          s.newID(),
			Title:       step.Title,
			Description: step.Description,
			Order:       i + 1,
		})
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	task.NotificationID = s.notifier.Schedule(ctx, s.settings(), task, task.NextDue)
	if err := s.repo.CreateTask(ctx, toRecord(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: create task: %w", err)
	}
	s.log.Info().Str("task_id", task.ID).Str("interval", string(task.Interval)).Time("next_due", task.NextDue).Msg("task created")
	return task, nil
}

type EditInput struct {
	Name        *string
	Description *string
	Interval    *model.Interval
	Steps       *[]StepInput
	Category    *string
	Priority    *model.Priority
	Color       *string
}

// Edit applies the provided fields. The next due instant is recomputed only
// when the interval actually changes: from the last completion when one
// exists, otherwise from now as for a new task.
func (s *TaskService) Edit(ctx context.Context, id string, in EditInput) (model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	now := s.now()

	if in.Name != nil {
		task.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Category != nil {
		task.Category = *in.Category
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Color != nil {
		task.Color = *in.Color
	}
	if in.Steps != nil {
		task.Steps = nil
		for i, step := range *in.Steps {
			task.Steps = append(task.Steps, model.Step{
				ID:          s.newID(),
				Title:       step.Title,
				Description: step.Description,
				Order:       i + 1,
			})
		}
	}
	if in.Interval != nil && *in.Interval != task.Interval {
		task.Interval = *in.Interval
		if task.LastCompleted != nil {
			task.NextDue = model.NextDueAfterCompletion(*task.LastCompleted, task.Interval)
		} else {
			task.NextDue = model.NextDueForNewTask(now, task.Interval, nil)
		}
	}
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.notifier.Cancel(ctx, task.ID)
	task.NotificationID = nil
	if task.IsActive {
		task.NotificationID = s.notifier.Schedule(ctx, s.settings(), task, task.NextDue)
	}
	if err := s.repo.UpdateTask(ctx, toRecord(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: edit task: %w", err)
	}
	return task, nil
}

// Complete records one completion and schedules the reminder for the next
// cycle. The old reminder is always cancelled before the new one is placed.
func (s *TaskService) Complete(ctx context.Context, id string) (model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	task.Complete(s.now())

	s.notifier.Cancel(ctx, task.ID)
	task.NotificationID = nil
	if task.IsActive {
		task.NotificationID = s.notifier.Schedule(ctx, s.settings(), task, task.NextDue)
	}
	if err := s.repo.UpdateTask(ctx, toRecord(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: complete task: %w", err)
	}
	s.log.Info().Str("task_id", task.ID).Int("streak", task.Streak).Time("next_due", task.NextDue).Msg("task completed")
	return task, nil
}

// ToggleActive pauses or resumes a task. Pausing cancels the pending
// reminder and clears its stored id; resuming schedules a fresh one. The due
// date itself is untouched.
func (s *TaskService) ToggleActive(ctx context.Context, id string) (model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	task.IsActive = !task.IsActive
	task.UpdatedAt = s.now()

	s.notifier.Cancel(ctx, task.ID)
	task.NotificationID = nil
	if task.IsActive {
		task.NotificationID = s.notifier.Schedule(ctx, s.settings(), task, task.NextDue)
	}
	if err := s.repo.UpdateTask(ctx, toRecord(task)); err != nil {
		return model.Task{}, fmt.Errorf("service: toggle task: %w", err)
	}
	return task, nil
}

// Delete cancels the task's pending reminder before removing the record, so
// a notification can never outlive its task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.notifier.Cancel(ctx, id)
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("service: delete task: %w", err)
	}
	return nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	rec, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, fmt.Errorf("service: get task: %w", err)
	}
	return fromRecord(rec), nil
}

func (s *TaskService) List(ctx context.Context, filter storage.TaskListFilter) ([]model.Task, error) {
	recs, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: list tasks: %w", err)
	}
	return fromRecords(recs), nil
}

// Subscribe exposes the repository's live change feed to the UI layers.
func (s *TaskService) Subscribe(ctx context.Context) <-chan storage.Change {
	return s.repo.Subscribe(ctx)
}

// Stats summarizes the whole task list as of now.
func (s *TaskService) Stats(ctx context.Context) (stats.Summary, error) {
	tasks, err := s.List(ctx, storage.TaskListFilter{})
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(tasks, s.now()), nil
}

// ExportTasks writes every task to w as a JSON document array.
func (s *TaskService) ExportTasks(ctx context.Context, w io.Writer) error {
	tasks, err := s.List(ctx, storage.TaskListFilter{})
	if err != nil {
		return err
	}
	return export.Export(w, tasks)
}

// ImportTasks upserts every decodable document from r. Imported tasks never
// carry a notification id and nothing is scheduled for them; the next
// completion or toggle re-enters them into the reminder flow. Returns the
// number of imported and skipped documents.
func (s *TaskService) ImportTasks(ctx context.Context, r io.Reader) (int, int, error) {
	tasks, skipped, err := export.Import(r, s.now())
	if err != nil {
		return 0, 0, err
	}
	imported := 0
	for _, task := range tasks {
		rec := toRecord(task)
		err := s.repo.UpdateTask(ctx, rec)
		if errors.Is(err, storage.ErrNotFound) {
			err = s.repo.CreateTask(ctx, rec)
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("service: import task %s: %w", task.ID, err)
		}
		imported++
	}
	s.log.Info().Int("imported", imported).Int("skipped", skipped).Msg("tasks imported")
	return imported, skipped, nil
}

// Settings returns the current settings snapshot.
func (s *TaskService) Settings() settings.Settings {
	return s.settings()
}

// SetNotificationsEnabled flips the global toggle and persists it. Disabling
// cancels every platform notification and clears the stored ids; enabling
// reschedules every active task whose due instant is still ahead.
func (s *TaskService) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	s.cfg.NotificationsEnabled = enabled
	cfg := s.cfg
	s.mu.Unlock()

	if s.cfgStore != nil {
		if err := s.cfgStore.Save(cfg); err != nil {
			return err
		}
	}

	if !enabled {
		s.notifier.CancelAll(ctx)
	}

	recs, err := s.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return fmt.Errorf("service: list tasks for notification toggle: %w", err)
	}
	for _, rec := range recs {
		task := fromRecord(rec)
		var id *int32
		if enabled && task.IsActive {
			id = s.notifier.Schedule(ctx, cfg, task, task.NextDue)
		}
		if equalID(task.NotificationID, id) {
			continue
		}
		task.NotificationID = id
		if err := s.repo.UpdateTask(ctx, toRecord(task)); err != nil {
			return fmt.Errorf("service: store notification id for %s: %w", task.ID, err)
		}
	}
	return nil
}

// SetTheme persists the theme choice; it has no scheduling side effects.
func (s *TaskService) SetTheme(theme string) error {
	s.mu.Lock()
	s.cfg.Theme = theme
	cfg := s.cfg
	s.mu.Unlock()
	if s.cfgStore == nil {
		return nil
	}
	return s.cfgStore.Save(cfg)
}

func (s *TaskService) settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func equalID(a, b *int32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
