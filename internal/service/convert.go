package service

import (
	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/storage"
)

func toRecord(task model.Task) storage.Task {
	rec := storage.Task{
		ID:             task.ID,
		Name:           task.Name,
		Description:    task.Description,
		Interval:       string(task.Interval),
		Streak:         task.Streak,
		LastCompleted:  task.LastCompleted,
		NextDue:        task.NextDue,
		IsActive:       task.IsActive,
		Category:       task.Category,
		Priority:       string(task.Priority),
		Color:          task.Color,
		NotificationID: task.NotificationID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
	for _, step := range task.Steps {
		rec.Steps = append(rec.Steps, storage.Step{
			ID:          step.ID,
			TaskID:      task.ID,
			Title:       step.Title,
			Description: step.Description,
			IsCompleted: step.IsCompleted,
			OrderIdx:    step.Order,
		})
	}
	return rec
}

func fromRecord(rec storage.Task) model.Task {
	task := model.Task{
		ID:             rec.ID,
		Name:           rec.Name,
		Description:    rec.Description,
		Interval:       model.Interval(rec.Interval),
		Streak:         rec.Streak,
		LastCompleted:  rec.LastCompleted,
		NextDue:        rec.NextDue,
		IsActive:       rec.IsActive,
		Category:       rec.Category,
		Priority:       model.Priority(rec.Priority),
		Color:          rec.Color,
		NotificationID: rec.NotificationID,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	for _, step := range rec.Steps {
		task.Steps = append(task.Steps, model.Step{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			IsCompleted: step.IsCompleted,
			Order:       step.OrderIdx,
		})
	}
	return task
}

func fromRecords(recs []storage.Task) []model.Task {
	tasks := make([]model.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, fromRecord(rec))
	}
	return tasks
}
