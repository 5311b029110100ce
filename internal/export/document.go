package export

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/dropd/internal/model"
)

var ErrMissingName = errors.New("export: task document has no name")

const (
	defaultInterval = model.IntervalDaily
	defaultPriority = model.PriorityMedium
	defaultCategory = "DeFi"
	defaultColor    = "bg-blue-500"
)

// DecodeDocument turns one loose task document into a Task, filling every
// missing or malformed field with its documented default. Only the name is
// mandatory; a nameless document is rejected with ErrMissingName. The
// notification id is always cleared because an imported task cannot own a
// notification that is actually scheduled.
func DecodeDocument(doc map[string]any, now time.Time) (model.Task, error) {
	name := stringField(doc, "name", "")
	if name == "" {
		return model.Task{}, ErrMissingName
	}

	interval := model.Interval(stringField(doc, "interval", string(defaultInterval)))
	if !interval.IsValid() {
		interval = defaultInterval
	}
	priority := model.Priority(stringField(doc, "priority", string(defaultPriority)))
	if !priority.IsValid() {
		priority = defaultPriority
	}

	task := model.Task{
		ID:            stringField(doc, "id", ""),
		Name:          name,
		Description:   stringField(doc, "description", ""),
		Interval:      interval,
		Steps:         stepsField(doc, "steps"),
		Streak:        intField(doc, "streak", 0),
		LastCompleted: timeField(doc, "lastCompleted"),
		NextDue:       now,
		IsActive:      boolField(doc, "isActive", true),
		Category:      stringField(doc, "category", defaultCategory),
		Priority:      priority,
		Color:         stringField(doc, "color", defaultColor),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Streak < 0 {
		task.Streak = 0
	}
	if due := timeField(doc, "nextDue"); due != nil {
		task.NextDue = *due
	}
	if created := timeField(doc, "createdAt"); created != nil {
		task.CreatedAt = *created
	}
	if updated := timeField(doc, "updatedAt"); updated != nil {
		task.UpdatedAt = *updated
	}
	return task, nil
}

func stringField(doc map[string]any, key, fallback string) string {
	if value, ok := doc[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

func boolField(doc map[string]any, key string, fallback bool) bool {
	if value, ok := doc[key].(bool); ok {
		return value
	}
	return fallback
}

func intField(doc map[string]any, key string, fallback int) int {
	// encoding/json decodes every JSON number into float64.
	if value, ok := doc[key].(float64); ok {
		return int(value)
	}
	return fallback
}

func timeField(doc map[string]any, key string) *time.Time {
	value, ok := doc[key].(string)
	if !ok {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func stepsField(doc map[string]any, key string) []model.Step {
	raw, ok := doc[key].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	steps := make([]model.Step, 0, len(raw))
	for i, entry := range raw {
		stepDoc, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		step := model.Step{
			ID:          stringField(stepDoc, "id", ""),
			Title:       stringField(stepDoc, "title", ""),
			Description: stringField(stepDoc, "description", ""),
			IsCompleted: boolField(stepDoc, "isCompleted", false),
			Order:       intField(stepDoc, "order", i+1),
		}
		if step.ID == "" {
			step.ID = uuid.NewString()
		}
		steps = append(steps, step)
	}
	return model.NormalizeSteps(steps)
}
