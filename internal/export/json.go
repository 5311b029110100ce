package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/example/dropd/internal/model"
)

type taskDocument struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Interval       string         `json:"interval"`
	Steps          []stepDocument `json:"steps,omitempty"`
	Streak         int            `json:"streak"`
	LastCompleted  *string        `json:"lastCompleted,omitempty"`
	NextDue        string         `json:"nextDue"`
	IsActive       bool           `json:"isActive"`
	Category       string         `json:"category"`
	Priority       string         `json:"priority"`
	Color          string         `json:"color"`
	NotificationID *int32         `json:"notificationId,omitempty"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}

type stepDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

// Export writes tasks as an indented JSON array of task documents with
// RFC 3339 timestamps, the same loose shape Import accepts back.
func Export(w io.Writer, tasks []model.Task) error {
	docs := make([]taskDocument, 0, len(tasks))
	for _, task := range tasks {
		docs = append(docs, encodeTask(task))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("export: encode tasks: %w", err)
	}
	return nil
}

// Import reads a JSON array of loose task documents and decodes each through
// DecodeDocument. Nameless documents are skipped, not fatal; the skip count
// is returned alongside the decoded tasks.
func Import(r io.Reader, now time.Time) ([]model.Task, int, error) {
	var docs []map[string]any
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, 0, fmt.Errorf("export: decode import file: %w", err)
	}
	tasks := make([]model.Task, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		task, err := DecodeDocument(doc, now)
		if err != nil {
			skipped++
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, skipped, nil
}

func encodeTask(task model.Task) taskDocument {
	doc := taskDocument{
		ID:             task.ID,
		Name:           task.Name,
		Description:    task.Description,
		Interval:       string(task.Interval),
		Streak:         task.Streak,
		NextDue:        task.NextDue.Format(time.RFC3339),
		IsActive:       task.IsActive,
		Category:       task.Category,
		Priority:       string(task.Priority),
		Color:          task.Color,
		NotificationID: task.NotificationID,
		CreatedAt:      task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      task.UpdatedAt.Format(time.RFC3339),
	}
	if task.LastCompleted != nil {
		formatted := task.LastCompleted.Format(time.RFC3339)
		doc.LastCompleted = &formatted
	}
	for _, step := range task.Steps {
		doc.Steps = append(doc.Steps, stepDocument{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			IsCompleted: step.IsCompleted,
			Order:       step.Order,
		})
	}
	return doc
}
