package server

import (
	"time"

	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/stats"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type stepPayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type createTaskRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Interval    string        `json:"interval"`
	Steps       []stepPayload `json:"steps"`
	Category    string        `json:"category"`
	Priority    string        `json:"priority"`
	Color       string        `json:"color"`
	DueHour     *int          `json:"dueHour"`
	DueMinute   *int          `json:"dueMinute"`
}

type editTaskRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Interval    *string        `json:"interval"`
	Steps       *[]stepPayload `json:"steps"`
	Category    *string        `json:"category"`
	Priority    *string        `json:"priority"`
	Color       *string        `json:"color"`
}

type stepResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

type taskResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Interval       string         `json:"interval"`
	Steps          []stepResponse `json:"steps,omitempty"`
	Streak         int            `json:"streak"`
	LastCompleted  *time.Time     `json:"lastCompleted,omitempty"`
	NextDue        time.Time      `json:"nextDue"`
	IsActive       bool           `json:"isActive"`
	Category       string         `json:"category"`
	Priority       string         `json:"priority"`
	Color          string         `json:"color"`
	NotificationID *int32         `json:"notificationId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type trendPointResponse struct {
	Day       time.Time `json:"day"`
	Completed int       `json:"completed"`
}

type statsResponse struct {
	TotalTasks        int                  `json:"totalTasks"`
	ActiveTasks       int                  `json:"activeTasks"`
	CompletedToday    int                  `json:"completedToday"`
	CompletionRate    float64              `json:"completionRate"`
	AverageStreak     float64              `json:"averageStreak"`
	LongestStreak     int                  `json:"longestStreak"`
	CompletedLastWeek int                  `json:"completedLastWeek"`
	ByCategory        map[string]int       `json:"byCategory"`
	ByPriority        map[string]int       `json:"byPriority"`
	DueToday          int                  `json:"dueToday"`
	Overdue           int                  `json:"overdue"`
	Trend             []trendPointResponse `json:"trend"`
}

type settingsResponse struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Theme                string `json:"theme"`
}

type notificationsRequest struct {
	Enabled bool `json:"enabled"`
}

type importResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func toTaskResponse(task model.Task) taskResponse {
	resp := taskResponse{
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
		resp.Steps = append(resp.Steps, stepResponse{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			IsCompleted: step.IsCompleted,
			Order:       step.Order,
		})
	}
	return resp
}

func toTaskResponses(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	return out
}

func toStatsResponse(summary stats.Summary) statsResponse {
	resp := statsResponse{
		TotalTasks:        summary.TotalTasks,
		ActiveTasks:       summary.ActiveTasks,
		CompletedToday:    summary.CompletedToday,
		CompletionRate:    summary.CompletionRate,
		AverageStreak:     summary.AverageStreak,
		LongestStreak:     summary.LongestStreak,
		CompletedLastWeek: summary.CompletedLastWeek,
		ByCategory:        summary.ByCategory,
		ByPriority:        summary.ByPriority,
		DueToday:          summary.DueToday,
		Overdue:           summary.Overdue,
	}
	for _, point := range summary.Trend {
		resp.Trend = append(resp.Trend, trendPointResponse{Day: point.Day, Completed: point.Completed})
	}
	return resp
}

func toStepInputs(steps []stepPayload) []service.StepInput {
	out := make([]service.StepInput, 0, len(steps))
	for _, step := range steps {
		out = append(out, service.StepInput{Title: step.Title, Description: step.Description})
	}
	return out
}
