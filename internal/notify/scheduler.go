package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/settings"
)

// Request is a notification handed to the platform layer.
type Request struct {
	ID      int32
	Title   string
	Body    string
	FireAt  time.Time
	Payload map[string]string
}

// Platform is the OS or browser notification collaborator. Implementations
// own delivery; the scheduler only decides whether and with what id to call.
type Platform interface {
	Schedule(ctx context.Context, req Request) error
	Cancel(ctx context.Context, id int32) error
	CancelAll(ctx context.Context) error
}

// Scheduler gates platform calls on the settings toggle and the fire instant.
// Platform failures are logged and swallowed: notifications are a soft
// feature and must never block task completion or persistence.
type Scheduler struct {
	platform Platform
	log      zerolog.Logger
	now      func() time.Time
}

func NewScheduler(platform Platform, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		platform: platform,
		log:      log,
		now:      time.Now,
	}
}

// Schedule returns the notification id on success and nil when scheduling was
// skipped (notifications disabled, fire instant not in the future) or the
// platform call failed.
func (s *Scheduler) Schedule(ctx context.Context, cfg settings.Settings, task model.Task, fireAt time.Time) *int32 {
	if !cfg.NotificationsEnabled {
		s.log.Debug().Str("task_id", task.ID).Msg("notifications disabled, not scheduling")
		return nil
	}
	if !fireAt.After(s.now()) {
		s.log.Debug().Str("task_id", task.ID).Time("fire_at", fireAt).Msg("fire instant in the past, not scheduling")
		return nil
	}

	id := DeriveNotificationID(task.ID)
	req := Request{
		ID:     id,
		Title:  fmt.Sprintf("Reminder: %s", task.Name),
		Body:   fmt.Sprintf("Your task %q is due soon! Don't miss out.", task.Name),
		FireAt: fireAt,
		Payload: map[string]string{
			"taskId":                task.ID,
			"taskName":              task.Name,
			"numericNotificationId": strconv.FormatInt(int64(id), 10),
			"source":                "dropd",
		},
	}
	if err := s.platform.Schedule(ctx, req); err != nil {
		s.log.Warn().Err(err).Str("task_id", task.ID).Int32("notification_id", id).Msg("platform schedule failed")
		return nil
	}
	return &id
}

// Cancel removes any pending notification for the task. Cancelling a task
// with nothing scheduled is not an error.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) {
	id := DeriveNotificationID(taskID)
	if err := s.platform.Cancel(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("task_id", taskID).Int32("notification_id", id).Msg("platform cancel failed")
	}
}

func (s *Scheduler) CancelAll(ctx context.Context) {
	if err := s.platform.CancelAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("platform cancel-all failed")
	}
}
